package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendgridEndpoint = "/v3/mail/send"

type SendGridConfig struct {
	APIKey string

	// Accept messages without delivering them
	Sandbox bool

	// API host, https://api.sendgrid.com if empty
	Host string
}

type SendGridTransport struct {
	apiKey  string
	host    string
	from    From
	sandbox bool
}

func NewSendGridTransport(cfg SendGridConfig, from From) (*SendGridTransport, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("sendgrid API key is required")
	}
	if from.Address == "" {
		return nil, errors.New("from address is required")
	}

	host := cfg.Host
	if host == "" {
		host = "https://api.sendgrid.com"
	}

	return &SendGridTransport{
		apiKey:  cfg.APIKey,
		host:    host,
		from:    from,
		sandbox: cfg.Sandbox,
	}, nil
}

// Send ignores ctx: sendgrid client has no context support
func (t *SendGridTransport) Send(_ context.Context, msg Message) error {
	m, err := t.build(msg)
	if err != nil {
		return err
	}

	request := sendgrid.GetRequest(t.apiKey, sendgridEndpoint, t.host)
	request.Method = http.MethodPost
	request.Body = sgmail.GetRequestBody(m)

	resp, err := sendgrid.API(request)
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid responded with status %d: %s", resp.StatusCode, resp.Body)
	}

	return nil
}

func (t *SendGridTransport) build(msg Message) (*sgmail.SGMailV3, error) {
	if err := msg.validate(); err != nil {
		return nil, err
	}

	from := sgmail.NewEmail(t.from.Name, t.from.Address)
	to := sgmail.NewEmail("", msg.To)
	m := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	if t.sandbox {
		ms := sgmail.NewMailSettings()
		ms.SetSandboxMode(sgmail.NewSetting(true))
		m.SetMailSettings(ms)
	}

	return m, nil
}
