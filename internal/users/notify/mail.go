package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"signup/internal/platform/config"
)

// Message is a plain-text email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers through an SMTP relay. A fresh client is dialled per
// message; registrations are rare enough that pooling buys nothing.
type SMTPMailer struct {
	cfg config.Mail
}

// NewSMTPMailer checks the relay settings by building a client once.
func NewSMTPMailer(cfg config.Mail) (*SMTPMailer, error) {
	m := &SMTPMailer{cfg: cfg}
	if _, err := m.client(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SMTPMailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(m.cfg.Timeout))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	c, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return c, nil
}

// Send dials the relay and delivers msg.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out, err := buildMsg(msg)
	if err != nil {
		return err
	}
	c, err := m.client()
	if err != nil {
		return err
	}
	if err := c.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMsg(msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(msg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	return out, nil
}

// LogMailer writes messages to the log instead of delivering them. It stands
// in for SMTP in development setups.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "email not delivered, no SMTP relay configured",
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
