package mailer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tartampluch/birthday-bot/internal/config"
	"github.com/tartampluch/birthday-bot/internal/metrics"
)

// Email is the provider-neutral payload handed to a Sender.
type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Sender delivers one email through an external provider.
// It returns the provider's message identifier when one is available.
type Sender interface {
	Send(ctx context.Context, email Email) (string, error)
	Provider() string
}

// Options is the deployment configuration of a Dispatcher. It is built once
// per process and replaces any package-level client handle.
type Options struct {
	From       string
	Recipients string // Comma-separated, as found in NOTIFICATION_EMAIL.

	// CredentialsMissing is set when the provider cannot authenticate
	// (e.g. Resend without an API key).
	CredentialsMissing bool

	// DryRunWithoutCredentials logs the would-be email instead of reporting
	// an error when CredentialsMissing is set.
	DryRunWithoutCredentials bool

	// Pause is a courtesy delay after each successful send. Zero disables it.
	Pause time.Duration
}

// Dispatcher sends composed messages to the configured recipients.
type Dispatcher struct {
	sender     Sender
	opts       Options
	recipients []string
}

// NewDispatcher binds a Sender to its deployment options.
func NewDispatcher(sender Sender, opts Options) *Dispatcher {
	return &Dispatcher{
		sender:     sender,
		opts:       opts,
		recipients: SplitRecipients(opts.Recipients),
	}
}

// Dispatch delivers msg and never reports failure to the caller: every
// outcome is logged and counted, and no retry is attempted.
// Cancelling ctx cuts the courtesy pause short but not the send itself.
func (d *Dispatcher) Dispatch(ctx context.Context, name, kind string, msg Message) {
	log := slog.With(
		config.LogKeyComponent, config.CompMailer,
		config.LogKeyName, name,
		config.LogKeyKind, kind,
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error(config.ErrSendFailed, config.LogKeyError, r)
		}
	}()

	// 1. Credentials
	if d.opts.CredentialsMissing {
		if d.opts.DryRunWithoutCredentials {
			metrics.MailSkipped.WithLabelValues(config.SkipReasonDryRun).Inc()
			log.Info(config.MsgDryRun,
				config.LogKeyDryRun, true,
				config.LogKeySubject, msg.Subject,
				config.LogKeyTo, d.recipients,
			)
			return
		}
		metrics.MailSkipped.WithLabelValues(config.SkipReasonMisconfigured).Inc()
		log.Error(config.ErrMissingAPIKey)
		return
	}

	// 2. Recipients
	if len(d.recipients) == 0 {
		metrics.MailSkipped.WithLabelValues(config.SkipReasonMisconfigured).Inc()
		log.Error(config.ErrMissingRecipient)
		return
	}

	// 3. Delivery. A send already started is not abandoned on shutdown.
	id, err := d.sender.Send(context.WithoutCancel(ctx), Email{
		From:    d.opts.From,
		To:      d.recipients,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		metrics.MailSendFailure.WithLabelValues(d.sender.Provider()).Inc()
		log.Error(config.ErrSendFailed,
			config.LogKeyProvider, d.sender.Provider(),
			config.LogKeyError, err,
		)
		return
	}

	metrics.MailSendSuccess.WithLabelValues(d.sender.Provider()).Inc()
	log.Info(config.MsgProviderResp,
		config.LogKeyProvider, d.sender.Provider(),
		config.LogKeyResponse, id,
	)
	log.Info(config.MsgEmailSent)

	// 4. Courtesy pause towards the provider
	d.pause(ctx)
}

func (d *Dispatcher) pause(ctx context.Context) {
	if d.opts.Pause <= 0 {
		return
	}
	timer := time.NewTimer(d.opts.Pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// SplitRecipients splits a comma-separated address list, trimming whitespace
// and dropping empty entries.
func SplitRecipients(raw string) []string {
	var out []string
	for _, addr := range strings.Split(raw, config.RecipientSeparator) {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
