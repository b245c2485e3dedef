// Package mailer delivers one-time codes to email addresses.
package mailer

import (
	"context"
	"fmt"
	"html/template"
	"net"
	"time"

	"github.com/go-logr/logr"
	"github.com/wneessen/go-mail"
)

// Sender delivers a one-time code to address.
type Sender interface {
	Send(ctx context.Context, name, subject, address, code string) error
}

var otpTemplate = template.Must(template.New("otp").Parse(
	`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">` +
		`<p>Hi {{if .Name}}<b>{{.Name}}</b>{{end}}, Please use this OTP: <b>{{.Code}}</b></p><br/><br/>` +
		`<p><b>Best regards,<br> {{.Signature}}</b></p></div>`))

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	Signature string
	// Timeout bounds one delivery when the caller's context has no earlier
	// deadline. Zero means DefaultTimeout.
	Timeout time.Duration
}

const DefaultTimeout = 15 * time.Second

type SMTPSender struct {
	cfg  SMTPConfig
	dial mail.DialContextFunc
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &SMTPSender{cfg: cfg, dial: dialWithDeadline}
}

// Send delivers the code. The whole SMTP session, greeting included, ends
// when ctx does.
func (s *SMTPSender) Send(ctx context.Context, name, subject, address, code string) error {
	msg, err := s.message(name, subject, address, code)
	if err != nil {
		return err
	}
	client, err := s.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", address, err)
	}
	return nil
}

func (s *SMTPSender) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(s.cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithDialContextFunc(s.dial),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return mail.NewClient(s.cfg.Host, opts...)
}

func (s *SMTPSender) message(name, subject, address, code string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("mail sender %q: %w", s.cfg.From, err)
	}
	if err := m.To(address); err != nil {
		return nil, fmt.Errorf("mail recipient %q: %w", address, err)
	}
	m.Subject(subject)
	data := struct{ Name, Code, Signature string }{name, code, s.cfg.Signature}
	if err := m.SetBodyHTMLTemplate(otpTemplate, data); err != nil {
		return nil, fmt.Errorf("render mail: %w", err)
	}
	return m, nil
}

// dialWithDeadline applies the dial context's deadline to the connection, so
// a server that accepts and then stalls cannot hold the caller past it.
func dialWithDeadline(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

// LogSender writes the code to the log instead of sending mail. Used when
// SMTP is not configured.
type LogSender struct {
	log logr.Logger
}

func NewLogSender(log logr.Logger) *LogSender {
	return &LogSender{log: log.WithName("mailer")}
}

func (s *LogSender) Send(_ context.Context, name, subject, address, code string) error {
	s.log.Info("mail delivery disabled, code logged", "to", address, "name", name, "subject", subject, "code", code)
	return nil
}
