package notify

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/matheusdealcantara/tabnews.com.br/internal/i18n"
	"github.com/matheusdealcantara/tabnews.com.br/internal/logger"
	"github.com/matheusdealcantara/tabnews.com.br/internal/mail"
	"github.com/matheusdealcantara/tabnews.com.br/internal/metrics"
	"github.com/matheusdealcantara/tabnews.com.br/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var recoveryHTML = template.Must(template.ParseFS(templateFS, "templates/recovery.html"))

// Path of the page where user sets new password, token id is appended
const recoveryPath = "/cadastro/recuperar/"

type Config struct {
	// Public address of the web frontend, like https://www.tabnews.com.br
	WebserverHost string
}

// Dispatcher sends recovery emails
// Delivery failures are logged and never returned: recovery response must not depend on email transport
type Dispatcher struct {
	cfg       Config
	transport mail.Transport
	tr        *i18n.Translator
	log       logger.Logger
	metrics   *metrics.Recorder
}

func NewDispatcher(cfg Config, transport mail.Transport, tr *i18n.Translator, l logger.Logger, m *metrics.Recorder) (*Dispatcher, error) {
	if transport == nil || tr == nil || l == nil {
		return nil, errors.New("transport, translator and logger must not be nil")
	}

	host, err := url.Parse(cfg.WebserverHost)
	if err != nil || host.Scheme == "" || host.Host == "" {
		return nil, fmt.Errorf("webserver host must be absolute url, got %q", cfg.WebserverHost)
	}
	cfg.WebserverHost = strings.TrimSuffix(cfg.WebserverHost, "/")

	return &Dispatcher{
		cfg:       cfg,
		transport: transport,
		tr:        tr,
		log:       l.WithGroup("notify"),
		metrics:   m,
	}, nil
}

// RecoveryURL is the link sent to user
func (d *Dispatcher) RecoveryURL(token models.RecoveryToken) string {
	return d.cfg.WebserverHost + recoveryPath + token.ID.String()
}

func (d *Dispatcher) SendRecoveryEmail(ctx context.Context, user models.User, token models.RecoveryToken) {
	log := d.log.With("user_id", user.ID, "token_id", token.ID)

	msg, err := d.recoveryMessage(ctx, user, token)
	if err != nil {
		log.Error("can't build recovery email", "error", err.Error())
		d.metrics.EmailDelivered(metrics.EmailFailed)
		return
	}

	if err := d.transport.Send(ctx, msg); err != nil {
		log.Error("recovery email not sent", "error", err.Error())
		d.metrics.EmailDelivered(metrics.EmailFailed)
		return
	}

	log.Info("recovery email sent")
	d.metrics.EmailDelivered(metrics.EmailSent)
}

func (d *Dispatcher) recoveryMessage(ctx context.Context, user models.User, token models.RecoveryToken) (mail.Message, error) {
	if user.Email == "" {
		return mail.Message{}, errors.New("user has no email")
	}

	data := map[string]any{
		"Username": user.Username,
		"Minutes":  int(token.ExpiresAt.Sub(token.CreatedAt).Minutes()),
	}
	link := d.RecoveryURL(token)

	greeting := d.tr.T(ctx, "recovery_email_greeting", data)
	intro := d.tr.T(ctx, "recovery_email_intro", data)
	action := d.tr.T(ctx, "recovery_email_action", data)
	expiration := d.tr.T(ctx, "recovery_email_expiration", data)
	signature := d.tr.T(ctx, "recovery_email_signature", data)

	text := strings.Join([]string{greeting, intro, action, link, expiration, signature}, "\n\n")

	var html bytes.Buffer
	err := recoveryHTML.Execute(&html, map[string]any{
		"Lang":        i18n.Locale(ctx, d.tr.Default()).String(),
		"Greeting":    greeting,
		"Intro":       intro,
		"Action":      action,
		"RecoveryURL": link,
		"Expiration":  expiration,
		"Signature":   strings.Split(signature, "\n"),
	})
	if err != nil {
		return mail.Message{}, fmt.Errorf("rendering html: %w", err)
	}

	return mail.Message{
		To:      user.Email,
		Subject: d.tr.T(ctx, "recovery_email_subject", data),
		Text:    text,
		HTML:    html.String(),
	}, nil
}
