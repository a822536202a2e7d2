package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/birthday-bot/internal/config"
)

// SummaryFunc renders the localized SUMMARY of a calendar event.
type SummaryFunc func(name string, age int, yearKnown bool) string

// BuildCalendar renders the configured records as an iCalendar feed.
// Each dated record yields all-day events for the previous, current and next
// year, with a reminder alarm matching its advance-warning lead time.
func BuildCalendar(records []PersonRecord, now time.Time, summary SummaryFunc) ([]byte, error) {
	cal := ical.NewCalendar()

	// Set standard iCalendar headers
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: Suggest a refresh interval
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, rec := range records {
		if rec.Date == "" {
			continue
		}
		d, err := parseRecordDate(rec.Date)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyName, rec.Name,
				config.LogKeyValue, rec.Date)
			continue
		}

		for _, e := range createEvents(rec, d, now, summary) {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	// An empty VCALENDAR would be rejected by the encoder; serve a valid stub instead.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeyEvents, len(cal.Children),
	)
	return buf.Bytes(), nil
}

// createEvents generates events for CurrentYear-1, CurrentYear and CurrentYear+1.
// No event is created before the person is born.
func createEvents(rec PersonRecord, d recordDate, now time.Time, summary SummaryFunc) []*ical.Event {
	currentYear := now.Year()
	loc := now.Location()

	// Deterministic UID generation for stability across refreshes
	input := fmt.Sprintf(config.FormatHashInput, rec.Name, rec.Date, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	uidBase := fmt.Sprintf("%x", hash[:config.UIDHashLength])

	var events []*ical.Event
	for _, y := range []int{currentYear - 1, currentYear, currentYear + 1} {
		if d.yearKnown && y < d.year {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))

		age := 0
		if d.yearKnown {
			age = y - d.year
		}

		text := fmt.Sprintf(config.FallbackSummary, rec.Name)
		if summary != nil {
			text = summary(rec.Name, age, d.yearKnown)
		}
		event.Props.SetText(config.PropSummary, text)

		// time.Date normalizes Feb 29 to Mar 1 outside leap years.
		eventDate := time.Date(y, d.month, d.day, 0, 0, 0, 0, loc)
		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		if rec.NotificationBefore > 0 {
			addAlarm(event, fmt.Sprintf(config.FormatAlarmTrigger, rec.NotificationBefore), text)
		}

		events = append(events, event)
	}
	return events
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// FallbackSummary is the non-localized SummaryFunc.
func FallbackSummary(name string, age int, yearKnown bool) string {
	switch {
	case !yearKnown:
		return fmt.Sprintf(config.FallbackSummary, name)
	case age == 0:
		return fmt.Sprintf(config.FallbackSummaryBirth, name)
	default:
		return fmt.Sprintf(config.FallbackSummaryAge, name, age)
	}
}
