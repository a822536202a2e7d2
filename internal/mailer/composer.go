package mailer

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/birthday-bot/internal/config"
	"github.com/tartampluch/birthday-bot/internal/engine"
	"golang.org/x/text/language"
)

var (
	//go:embed locales/*.json
	localeFS embed.FS

	//go:embed templates/notification.html
	notificationTemplateRaw string

	notificationTemplate = template.Must(template.New("notification").Parse(notificationTemplateRaw))
)

// Message is a composed notification email.
type Message struct {
	Subject string
	HTML    string
}

// layoutData feeds templates/notification.html. Message is pre-rendered
// markup whose interpolated values were escaped before localization.
type layoutData struct {
	Title     string
	Greeting  string
	Message   template.HTML
	SignOff   string
	Signature string
	Footer    string
}

// Composer renders the three notification templates from the message catalogue.
// It holds no mutable state after construction, so Compose is pure.
type Composer struct {
	localizer *i18n.Localizer
}

// NewComposer loads the embedded message catalogue.
// Missing keys render as the key itself.
func NewComposer() (*Composer, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrLocaleLoad, name, err)
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyFile, name,
		)
	}

	return &Composer{
		localizer: i18n.NewLocalizer(bundle, config.DefaultLanguage),
	}, nil
}

// Compose builds the subject and HTML body for one event.
// Subjects are plain text and carry the name verbatim; every value placed
// in the HTML body is escaped.
func (c *Composer) Compose(name string, ev engine.Event) Message {
	var subjectKey, titleKey, messageKey string
	plain := map[string]any{"Name": name}
	escaped := map[string]any{"Name": template.HTMLEscapeString(name)}

	switch ev.Kind {
	case engine.EventMilestone:
		subjectKey, titleKey, messageKey = config.TKeyMilestoneSubject, config.TKeyMilestoneTitle, config.TKeyMilestoneMessage
		plain["Days"] = ev.Days
		escaped["Days"] = ev.Days
	case engine.EventAdvance:
		subjectKey, titleKey, messageKey = config.TKeyAdvanceSubject, config.TKeyAdvanceTitle, config.TKeyAdvanceMessage
		escaped["Date"] = template.HTMLEscapeString(engine.FormatDayMonth(ev.Date))
	default:
		subjectKey, titleKey, messageKey = config.TKeyBirthdaySubject, config.TKeyBirthdayTitle, config.TKeyBirthdayMessage
	}

	data := layoutData{
		Title:     c.msg(titleKey, nil),
		Greeting:  c.msg(config.TKeyGreeting, nil),
		Message:   template.HTML(c.msg(messageKey, escaped)),
		SignOff:   c.msg(config.TKeySignOff, nil),
		Signature: c.msg(config.TKeySignature, nil),
		Footer:    c.msg(config.TKeyFooter, nil),
	}

	var buf bytes.Buffer
	if err := notificationTemplate.Execute(&buf, data); err != nil {
		// Only reachable if the embedded layout is broken.
		slog.Error(config.ErrLayoutRender,
			config.LogKeyComponent, config.CompComposer,
			config.LogKeyError, err,
		)
	}

	return Message{
		Subject: c.msg(subjectKey, plain),
		HTML:    buf.String(),
	}
}

// Summary renders a calendar event title; it satisfies engine.SummaryFunc.
func (c *Composer) Summary(name string, age int, yearKnown bool) string {
	data := map[string]any{"Name": name, "Age": age}
	switch {
	case !yearKnown:
		return c.msg(config.TKeyEvtSummary, data)
	case age == 0:
		return c.msg(config.TKeyEvtSummaryBirth, data)
	default:
		return c.msg(config.TKeyEvtSummaryAge, data)
	}
}

// msg translates a key safely, returning the key itself when it is missing.
func (c *Composer) msg(key string, data map[string]any) string {
	out, err := c.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return out
}
