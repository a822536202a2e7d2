package mailer

import (
	"context"

	"github.com/tartampluch/birthday-bot/internal/config"
	"github.com/tartampluch/birthday-bot/internal/engine"
)

// Mailer turns matched events into delivered emails; it implements engine.Notifier.
type Mailer struct {
	Composer   *Composer
	Dispatcher *Dispatcher
}

// Notify composes the message for ev and dispatches it.
func (m *Mailer) Notify(ctx context.Context, name string, ev engine.Event) {
	msg := m.Composer.Compose(name, ev)
	m.Dispatcher.Dispatch(ctx, name, ev.Kind.String(), msg)
}

// NewSender selects the delivery backend configured in s.
func NewSender(s config.Settings) Sender {
	if s.MailProvider == config.ProviderSMTP {
		return NewSMTPSender(s.SMTPHost, s.SMTPPort, s.SMTPUser, s.SMTPPassword)
	}
	return NewResendSender(s.APIKey)
}

// OptionsFromSettings maps process settings onto dispatcher options.
func OptionsFromSettings(s config.Settings) Options {
	return Options{
		From:                     s.MailFrom,
		Recipients:               s.Recipients,
		CredentialsMissing:       s.MailProvider == config.ProviderResend && s.APIKey == "",
		DryRunWithoutCredentials: s.DryRunWithoutAPIKey,
		Pause:                    s.SendPause,
	}
}
