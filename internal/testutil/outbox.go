package testutil

import (
	"context"
	"sync"

	"github.com/matheusdealcantara/tabnews.com.br/internal/mail"
)

// Outbox is mail transport that keeps messages in memory
// Set Err to make every Send fail
type Outbox struct {
	mu       sync.Mutex
	messages []mail.Message
	Err      error
}

func (o *Outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.Err != nil {
		return o.Err
	}
	o.messages = append(o.messages, msg)
	return nil
}

// Messages sent so far
func (o *Outbox) Messages() []mail.Message {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]mail.Message(nil), o.messages...)
}

// Last message sent, ok is false if outbox is empty
func (o *Outbox) Last() (mail.Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.messages) == 0 {
		return mail.Message{}, false
	}
	return o.messages[len(o.messages)-1], true
}
