package mail

import (
	"context"
)

type logger interface {
	Info(msg string, args ...any)
}

// LogTransport writes messages to log instead of delivering them
type LogTransport struct {
	log logger
}

func NewLogTransport(l logger) *LogTransport {
	return &LogTransport{log: l}
}

func (t *LogTransport) Send(_ context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	t.log.Info("email not delivered, log transport in use",
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}
