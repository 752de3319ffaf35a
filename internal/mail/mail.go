package mail

import (
	"context"
	"errors"
)

// Message is transport independent email
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender address shared by all transports
type From struct {
	Address string
	Name    string
}

var ErrInvalidMessage = errors.New("invalid message")

type Transport interface {
	Send(ctx context.Context, msg Message) error
}

func (m Message) validate() error {
	switch {
	case m.To == "":
		return errors.Join(ErrInvalidMessage, errors.New("recipient is empty"))
	case m.Subject == "":
		return errors.Join(ErrInvalidMessage, errors.New("subject is empty"))
	case m.Text == "" && m.HTML == "":
		return errors.Join(ErrInvalidMessage, errors.New("body is empty"))
	default:
		return nil
	}
}
