package mail

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type loggerFunc func(string, ...any)

func (f loggerFunc) Info(msg string, v ...any) { f(msg, v...) }

func TestLogTransport(t *testing.T) {
	var args []any
	transport := NewLogTransport(loggerFunc(func(_ string, v ...any) { args = v }))

	err := transport.Send(t.Context(), Message{To: "user@example.com", Subject: "Recuperação de Senha", Text: "Olá"})

	require.NoError(t, err)
	require.Equal(t, []any{"to", "user@example.com", "subject", "Recuperação de Senha", "text", "Olá"}, args)

	err = transport.Send(t.Context(), Message{To: "user@example.com"})
	require.ErrorIs(t, err, ErrInvalidMessage)
}
