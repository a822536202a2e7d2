package mailer

import (
	"context"

	"github.com/tartampluch/birthday-bot/internal/config"
	"gopkg.in/gomail.v2"
)

// SMTPSender delivers through a plain SMTP relay.
type SMTPSender struct {
	host string
	send func(m ...*gomail.Message) error
}

// NewSMTPSender creates a sender for the given relay. Authentication is
// skipped by gomail when user is empty.
func NewSMTPSender(host string, port int, user, password string) *SMTPSender {
	d := gomail.NewDialer(host, port, user, password)
	return &SMTPSender{host: host, send: d.DialAndSend}
}

// Send dials the relay and delivers the email. SMTP has no message id to
// report back, so the relay host is returned instead.
func (s *SMTPSender) Send(ctx context.Context, email Email) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", email.From)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody(config.MimeTextHTML, email.HTML)

	if err := s.send(msg); err != nil {
		return "", err
	}
	return s.host, nil
}

// Provider names the delivery backend in logs and metrics.
func (s *SMTPSender) Provider() string {
	return config.ProviderSMTP
}
