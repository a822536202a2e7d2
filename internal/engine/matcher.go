package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/birthday-bot/internal/config"
)

// recordDate is the parsed form of a "D/M[/Y]" string.
type recordDate struct {
	day       int
	month     time.Month
	year      int
	yearKnown bool
}

// Evaluate returns every event a record triggers on today.
// today must already be normalized to midnight (see Midnight).
// A record without a date yields no events and no error.
func Evaluate(rec PersonRecord, today time.Time) ([]Event, error) {
	if rec.Date == "" {
		return nil, nil
	}

	d, err := parseRecordDate(rec.Date)
	if err != nil {
		return nil, err
	}

	var events []Event

	// 1. Same-day match
	if sameDayMonth(today, d) {
		events = append(events, Event{Kind: EventBirthday})
	}

	// 2. Advance match. AddDate rolls over month and year boundaries.
	if rec.NotificationBefore > 0 {
		candidate := today.AddDate(0, 0, rec.NotificationBefore)
		if sameDayMonth(candidate, d) {
			events = append(events, Event{Kind: EventAdvance, Date: rec.Date})
		}
	}

	// 3. Milestone match
	if d.yearKnown {
		birth := time.Date(d.year, d.month, d.day, 0, 0, 0, 0, today.Location())
		diff := DaysBetween(birth, today)
		if diff > 0 && diff%config.MilestoneInterval == 0 {
			events = append(events, Event{Kind: EventMilestone, Days: diff})
		}
	}

	return events, nil
}

// DaysBetween counts whole calendar days from a to b.
// Both dates are re-anchored to UTC midnight first, so daylight-saving
// transitions in the local zone cannot shift the result by an hour.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	// Unix seconds avoid the ~292 year range limit of time.Duration.
	return int((ub.Unix() - ua.Unix()) / config.SecondsPerDay)
}

func sameDayMonth(t time.Time, d recordDate) bool {
	return t.Day() == d.day && t.Month() == d.month
}

// parseRecordDate splits "D/M" or "D/M/Y". Extra components are ignored.
func parseRecordDate(value string) (recordDate, error) {
	parts := strings.Split(value, config.DateSeparator)
	if len(parts) < 2 {
		return recordDate{}, fmt.Errorf("%s: %q", config.ErrDateFormat, value)
	}

	day, err := atoiPart(parts[0])
	if err != nil {
		return recordDate{}, fmt.Errorf("%s: %q: %w", config.ErrDateFormat, value, err)
	}
	month, err := atoiPart(parts[1])
	if err != nil {
		return recordDate{}, fmt.Errorf("%s: %q: %w", config.ErrDateFormat, value, err)
	}

	d := recordDate{day: day, month: time.Month(month)}

	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		year, err := atoiPart(parts[2])
		if err != nil {
			return recordDate{}, fmt.Errorf("%s: %q: %w", config.ErrDateFormat, value, err)
		}
		// A zero year is treated as unknown.
		if year != 0 {
			d.year = year
			d.yearKnown = true
		}
	}
	return d, nil
}

func atoiPart(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New(config.ErrDateComponent)
	}
	return n, nil
}

// FormatDayMonth keeps only the "D/M" part of a record date.
func FormatDayMonth(value string) string {
	parts := strings.Split(value, config.DateSeparator)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, config.DateSeparator)
}
