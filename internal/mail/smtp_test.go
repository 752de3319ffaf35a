package mail

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type smtpSession struct {
	from string
	to   string
	data string
}

// Start plain text SMTP server that accepts one connection
func startSMTPServer(t *testing.T) (addr string, port int, got <-chan smtpSession) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	sessions := make(chan smtpSession, 1)

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close() // nolint:errcheck
		_ = c.SetDeadline(time.Now().Add(5 * time.Second))

		r := bufio.NewReader(c)
		reply := func(s string) { _, _ = c.Write([]byte(s + "\r\n")) }

		var s smtpSession
		reply("220 localhost ESMTP")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\r\n")
			cmd := strings.ToUpper(line)

			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				reply("250 localhost")
			case strings.HasPrefix(cmd, "MAIL FROM:"):
				s.from = line[len("MAIL FROM:"):]
				reply("250 OK")
			case strings.HasPrefix(cmd, "RCPT TO:"):
				s.to = line[len("RCPT TO:"):]
				reply("250 OK")
			case cmd == "DATA":
				reply("354 End data with <CR><LF>.<CR><LF>")
				var data strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					data.WriteString(l)
				}
				s.data = data.String()
				sessions <- s
				reply("250 OK")
			case cmd == "QUIT":
				reply("221 Bye")
				return
			default:
				reply("250 OK")
			}
		}
	}()

	tcpAddr := ln.Addr().(*net.TCPAddr)
	return tcpAddr.IP.String(), tcpAddr.Port, sessions
}

func TestSMTPTransport(t *testing.T) {
	t.Run("send ok", func(t *testing.T) {
		host, port, sessions := startSMTPServer(t)
		transport, err := NewSMTPTransport(SMTPConfig{Host: host, Port: port}, From{Address: "contato@tabnews.com.br", Name: "TabNews"})
		require.NoError(t, err)

		err = transport.Send(t.Context(), Message{
			To:      "recuperando@example.com",
			Subject: "Recuperação de Senha",
			Text:    "Olá, Recuperando!",
			HTML:    "<p>Olá, Recuperando!</p>",
		})
		require.NoError(t, err)

		select {
		case s := <-sessions:
			require.Contains(t, s.from, "contato@tabnews.com.br")
			require.Contains(t, s.to, "recuperando@example.com")
			require.Contains(t, s.data, "multipart/alternative")
			require.Contains(t, s.data, "TabNews")
		case <-time.After(5 * time.Second):
			t.Fatal("smtp server got no message")
		}
	})

	t.Run("server unavailable", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:")
		require.NoError(t, err)
		port := ln.Addr().(*net.TCPAddr).Port
		require.NoError(t, ln.Close())

		transport, err := NewSMTPTransport(SMTPConfig{Host: "127.0.0.1", Port: port}, From{Address: "contato@tabnews.com.br"})
		require.NoError(t, err)

		err = transport.Send(t.Context(), Message{To: "user@example.com", Subject: "s", Text: "t"})

		require.Error(t, err)
	})

	t.Run("invalid message not sent", func(t *testing.T) {
		transport, err := NewSMTPTransport(SMTPConfig{Host: "127.0.0.1", Port: 1}, From{Address: "contato@tabnews.com.br"})
		require.NoError(t, err)

		err = transport.Send(t.Context(), Message{Subject: "s", Text: "t"})

		require.ErrorIs(t, err, ErrInvalidMessage)
	})

	t.Run("config required", func(t *testing.T) {
		_, err := NewSMTPTransport(SMTPConfig{}, From{Address: "contato@tabnews.com.br"})
		require.Error(t, err, "host is required")

		_, err = NewSMTPTransport(SMTPConfig{Host: "localhost"}, From{})
		require.Error(t, err, "from is required")
	})

	t.Run("default port", func(t *testing.T) {
		transport, err := NewSMTPTransport(SMTPConfig{Host: "localhost"}, From{Address: "a@example.com"})
		require.NoError(t, err)

		require.Equal(t, 587, transport.cfg.Port, "default port is "+strconv.Itoa(587))
	})
}
