package email

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/smtp"

	"github.com/zunayedTheCreator/property-prospect-server/internal/config"
)

// ErrNoRecipients is returned when a message has nobody to go to.
var ErrNoRecipients = errors.New("email has no recipients")

// Sender delivers a fully rendered message (headers and body).
type Sender interface {
	Send(ctx context.Context, to []string, subject string, rawMessage []byte) error
}

// SMTPSender delivers through a plain-auth SMTP relay.
type SMTPSender struct {
	from string
	auth smtp.Auth
	addr string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender returns an SMTPSender, or a LoggingSender when SMTP_HOST is unset.
func NewSMTPSender(cfg *config.Config) Sender {
	if cfg.SmtpHost == "" {
		log.Println("SMTP host not configured, purchase emails will only be logged.")
		return &LoggingSender{from: cfg.SmtpFromAddress}
	}
	return &SMTPSender{
		from: cfg.SmtpFromAddress,
		auth: smtp.PlainAuth("", cfg.SmtpUsername, cfg.SmtpPassword, cfg.SmtpHost),
		addr: fmt.Sprintf("%s:%d", cfg.SmtpHost, cfg.SmtpPort),
		send: smtp.SendMail,
	}
}

// Send relays the message. smtp.SendMail takes no context, so ctx is only
// checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	template := templateOf(rawMessage)
	if err := s.send(s.addr, s.auth, s.from, to, rawMessage); err != nil {
		return fmt.Errorf("smtp send %s to %v: %w", template, to, err)
	}
	log.Printf("Sent %s email to %v via %s", template, to, s.addr)
	return nil
}

// LoggingSender only logs a summary of each message.
type LoggingSender struct {
	from string
}

func (s *LoggingSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}
	log.Printf("Email (not sent) %s from %s to %v: %q, %d bytes", templateOf(rawMessage), s.from, to, subject, len(rawMessage))
	return nil
}

func templateOf(rawMessage []byte) string {
	if id := HeaderValue(rawMessage, TemplateHeader); id != "" {
		return id
	}
	return "untemplated"
}
