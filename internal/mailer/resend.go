package mailer

import (
	"context"

	"github.com/resend/resend-go/v2"
	"github.com/tartampluch/birthday-bot/internal/config"
)

// ResendSender delivers through the Resend transactional email API.
type ResendSender struct {
	client *resend.Client
}

// NewResendSender creates a sender authenticated with apiKey.
func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

// Send submits the email and returns the Resend message id.
func (s *ResendSender) Send(ctx context.Context, email Email) (string, error) {
	params := &resend.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", err
	}
	return sent.Id, nil
}

// Provider names the delivery backend in logs and metrics.
func (s *ResendSender) Provider() string {
	return config.ProviderResend
}
