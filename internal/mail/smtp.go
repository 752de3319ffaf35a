package mail

import (
	"context"
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	TLS      bool
}

// SMTPTransport dials server for every message
type SMTPTransport struct {
	cfg  SMTPConfig
	from From
}

func NewSMTPTransport(cfg SMTPConfig, from From) (*SMTPTransport, error) {
	if cfg.Host == "" {
		return nil, errors.New("SMTP host is required")
	}
	if from.Address == "" {
		return nil, errors.New("from address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}

	return &SMTPTransport{cfg: cfg, from: from}, nil
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m, err := t.build(msg)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(t.cfg.Host, t.options()...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}

func (t *SMTPTransport) build(msg Message) (*gomail.Msg, error) {
	if err := msg.validate(); err != nil {
		return nil, err
	}

	m := gomail.NewMsg()

	if t.from.Name != "" {
		if err := m.FromFormat(t.from.Name, t.from.Address); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := m.From(t.from.Address); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	m.Subject(msg.Subject)

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBodyString(gomail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	default:
		m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	}

	return m, nil
}

func (t *SMTPTransport) options() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(t.cfg.Port),
	}

	// Implicit TLS on 465, STARTTLS elsewhere
	if t.cfg.TLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
		if t.cfg.Port == 465 {
			opts = append(opts, gomail.WithSSL())
		}
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	if t.cfg.Username != "" && t.cfg.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(t.cfg.Username),
			gomail.WithPassword(t.cfg.Password),
		)
	}

	return opts
}
