package mailer

import (
	"context"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

// listen starts a local SMTP endpoint whose connections are handled by serve.
func listen(t *testing.T, serve func(net.Conn)) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serve(conn)
		}
	}()
	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

// smtpSession answers every command with success and hands each message
// body to out.
func smtpSession(out chan<- string) func(net.Conn) {
	return func(conn net.Conn) {
		defer conn.Close()
		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			switch strings.ToUpper(strings.Fields(line + " x")[0]) {
			case "EHLO", "HELO":
				_ = tp.PrintfLine("250 localhost")
			case "DATA":
				_ = tp.PrintfLine("354 end with .")
				lines, err := tp.ReadDotLines()
				if err != nil {
					return
				}
				out <- strings.Join(lines, "\n")
				_ = tp.PrintfLine("250 queued")
			case "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("250 ok")
			}
		}
	}
}

func TestSMTPSenderSend(t *testing.T) {
	received := make(chan string, 1)
	host, port := listen(t, smtpSession(received))

	s := NewSMTPSender(SMTPConfig{Host: host, Port: port, From: "noreply@example.com", Signature: "The Admin Team"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Send(ctx, "Jane", "Verify your email", "jane@example.com", "482913"))

	select {
	case msg := <-received:
		assert.Contains(t, msg, "Subject: Verify your email")
		assert.Contains(t, msg, "jane@example.com")
		assert.Contains(t, msg, "noreply@example.com")
		assert.Contains(t, msg, "482913")
	case <-time.After(5 * time.Second):
		t.Fatal("no message delivered")
	}
}

func TestSMTPSenderHonoursContextOnSilentServer(t *testing.T) {
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	host, port := listen(t, func(conn net.Conn) {
		// accept and never greet
		<-done
		conn.Close()
	})

	s := NewSMTPSender(SMTPConfig{Host: host, Port: port, From: "noreply@example.com"})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	errCh := make(chan error, 1)
	start := time.Now()
	go func() { errCh <- s.Send(ctx, "", "Code", "a@example.com", "111111") }()

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "a@example.com")
		assert.Less(t, time.Since(start), 2*time.Second)
	case <-time.After(3 * time.Second):
		t.Fatal("Send did not return after the context deadline")
	}
}

func TestSMTPSenderConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	s := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: port, From: "noreply@example.com"})
	err = s.Send(context.Background(), "", "Code", "a@example.com", "111111")
	require.Error(t, err)
}

func TestSMTPSenderMessage(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25, From: "noreply@example.com", Signature: "The Admin Team"})

	m, err := s.message("Jane <Doe>", "Verify\r\nBcc: x", "jane@example.com", "482913")
	require.NoError(t, err)

	rcpts, err := m.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@example.com"}, rcpts)

	subject := m.GetGenHeader(mail.HeaderSubject)
	require.Len(t, subject, 1)
	assert.NotContains(t, subject[0], "\n")

	parts := m.GetParts()
	require.Len(t, parts, 1)
	body, err := parts[0].GetContent()
	require.NoError(t, err)
	assert.Contains(t, string(body), "Please use this OTP: <b>482913</b>")
	assert.Contains(t, string(body), "Jane &lt;Doe&gt;")
	assert.Contains(t, string(body), "The Admin Team")

	m, err = s.message("", "Code", "a@example.com", "111111")
	require.NoError(t, err)
	body, err = m.GetParts()[0].GetContent()
	require.NoError(t, err)
	assert.Contains(t, string(body), "<p>Hi , Please use this OTP")
}

func TestSMTPSenderRejectsBadAddress(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25, From: "noreply@example.com"})
	_, err := s.message("", "Code", "not an address", "111111")
	assert.Error(t, err)
}

func TestNewSMTPSenderDefaultsTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewSMTPSender(SMTPConfig{}).cfg.Timeout)
	assert.Equal(t, time.Second, NewSMTPSender(SMTPConfig{Timeout: time.Second}).cfg.Timeout)
}

func TestLogSender(t *testing.T) {
	var s Sender = NewLogSender(logr.Discard())
	assert.NoError(t, s.Send(context.Background(), "Jane", "Code", "jane@example.com", "123456"))
}
