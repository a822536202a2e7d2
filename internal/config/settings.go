package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

// Settings holds the process-wide deployment options.
// They are read once at startup; the friend list itself is not part of
// Settings because it is reloaded from the environment on every check.
type Settings struct {
	VCardPath     string
	DefaultBefore int

	APIKey              string
	Recipients          string // Raw comma-separated list, split by the mailer.
	MailFrom            string
	MailProvider        string
	DryRunWithoutAPIKey bool
	SendPause           time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	CheckSchedule string
	Location      *time.Location

	Port     string
	BindAddr string
	Debug    bool
}

// SecretLookup resolves a secret from an external store (e.g. the OS keyring).
type SecretLookup func(service, user string) (string, error)

// NewViper returns a viper instance bound to the process environment with
// every default registered.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(EnvDefaultBefore, 0)
	v.SetDefault(EnvMailFrom, DefaultMailFrom)
	v.SetDefault(EnvMailProvider, DefaultMailProvider)
	v.SetDefault(EnvSMTPPort, DefaultSMTPPort)
	v.SetDefault(EnvDryRunWithoutAPIKey, false)
	v.SetDefault(EnvSendPause, DefaultSendPause)
	v.SetDefault(EnvCheckSchedule, DefaultCheckSchedule)
	v.SetDefault(EnvCheckTimezone, DefaultTimezone)
	v.SetDefault(EnvPort, DefaultPort)
	v.SetDefault(EnvBindAddr, DefaultBindAddr)
	v.SetDefault(EnvDebug, false)
	return v
}

// LoadSettings reads and validates Settings from v.
// When the API key is not set in the environment, secrets is consulted
// (pass nil to disable the fallback).
func LoadSettings(v *viper.Viper, secrets SecretLookup) (Settings, error) {
	s := Settings{
		VCardPath:           strings.TrimSpace(v.GetString(EnvFriendsVCardPath)),
		DefaultBefore:       v.GetInt(EnvDefaultBefore),
		APIKey:              strings.TrimSpace(v.GetString(EnvResendAPIKey)),
		Recipients:          v.GetString(EnvNotificationEmail),
		MailFrom:            v.GetString(EnvMailFrom),
		MailProvider:        strings.ToLower(strings.TrimSpace(v.GetString(EnvMailProvider))),
		DryRunWithoutAPIKey: v.GetBool(EnvDryRunWithoutAPIKey),
		SendPause:           v.GetDuration(EnvSendPause),
		SMTPHost:            v.GetString(EnvSMTPHost),
		SMTPPort:            v.GetInt(EnvSMTPPort),
		SMTPUser:            v.GetString(EnvSMTPUser),
		SMTPPassword:        v.GetString(EnvSMTPPassword),
		CheckSchedule:       v.GetString(EnvCheckSchedule),
		Port:                v.GetString(EnvPort),
		BindAddr:            v.GetString(EnvBindAddr),
		Debug:               v.GetBool(EnvDebug),
	}

	if s.APIKey == "" && secrets != nil {
		key, err := secrets(KeyringService, KeyringAPIUser)
		switch {
		case err == nil && key != "":
			s.APIKey = key
			slog.Info(MsgKeyringUsed, LogKeyComponent, CompSettings)
		case err != nil && !errors.Is(err, keyring.ErrNotFound):
			slog.Debug(ErrKeyring, LogKeyComponent, CompSettings, LogKeyError, err)
		}
	}

	loc, err := time.LoadLocation(v.GetString(EnvCheckTimezone))
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrTimezone, err)
	}
	s.Location = loc

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks cross-field constraints of the settings.
func (s Settings) Validate() error {
	if err := ValidatePort(s.Port); err != nil {
		return err
	}

	switch s.MailProvider {
	case ProviderResend:
	case ProviderSMTP:
		if s.SMTPHost == "" {
			return errors.New(ErrSMTPHostEmpty)
		}
		if s.SMTPPort < MinPort || s.SMTPPort > MaxPort {
			return errors.New(ErrPortRange)
		}
	default:
		return fmt.Errorf("%s: %q", ErrProviderUnknown, s.MailProvider)
	}

	if s.SendPause < 0 {
		return errors.New(ErrSendPause)
	}
	if s.DefaultBefore < 0 {
		return errors.New(ErrDefaultBefore)
	}
	if _, err := cron.ParseStandard(s.CheckSchedule); err != nil {
		return fmt.Errorf("%s: %w", ErrSchedule, err)
	}
	return nil
}

// ValidatePort ensures the HTTP port is a number within the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

// KeyringLookup reads a secret from the OS keyring.
func KeyringLookup(service, user string) (string, error) {
	return keyring.Get(service, user)
}
