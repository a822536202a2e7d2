package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/birthday-bot/internal/config"
	"github.com/tartampluch/birthday-bot/internal/metrics"
)

// Notifier composes and delivers the message for one matched event.
// Implementations must not return errors: delivery failures are logged where
// they happen and never abort a check.
type Notifier interface {
	Notify(ctx context.Context, name string, ev Event)
}

// CalendarPublisher receives the rendered calendar feed after each check.
type CalendarPublisher interface {
	Update(data []byte)
}

// CheckStats summarizes one pass over the records.
type CheckStats struct {
	Total   int
	Matched int
	Skipped int
	Failed  int
}

// Checker is the orchestration routine shared by the HTTP trigger and the
// daily scheduler.
type Checker struct {
	Clock    Clock     // Interface for time mocking.
	Lookup   EnvLookup // nil means os.LookupEnv.
	Notifier Notifier

	// VCardPath optionally adds records from a vCard file.
	VCardPath     string
	DefaultBefore int

	// Publisher and Summary are optional; without a Publisher no feed is built.
	Publisher CalendarPublisher
	Summary   SummaryFunc
}

// Records loads the current record list from configuration.
// The list is never cached: every call re-reads the environment.
func (c *Checker) Records() []PersonRecord {
	records := LoadRecords(c.Lookup)

	if c.VCardPath != "" {
		extra, err := LoadVCardFile(c.VCardPath, c.DefaultBefore)
		if err != nil {
			slog.Error(config.ErrVCardParse,
				config.LogKeyComponent, config.CompLoader,
				config.LogKeyFile, c.VCardPath,
				config.LogKeyError, err,
			)
		} else {
			records = append(records, extra...)
		}
	}
	return records
}

// Count returns the number of records currently configured.
func (c *Checker) Count() int {
	n := len(c.Records())
	metrics.ConfiguredRecords.Set(float64(n))
	return n
}

// RunCheck evaluates every record against today and notifies each match.
// Records are processed sequentially and each notification is awaited before
// the next one starts. Nothing escapes this routine: per-record failures are
// logged and the pass moves on.
func (c *Checker) RunCheck(ctx context.Context, trigger string) CheckStats {
	start := time.Now()
	metrics.ChecksRun.WithLabelValues(trigger).Inc()

	records := c.Records()
	metrics.ConfiguredRecords.Set(float64(len(records)))

	now := c.Clock.Now()
	today := Midnight(now)

	log := slog.With(
		config.LogKeyComponent, config.CompChecker,
		config.LogKeyTrigger, trigger,
	)
	log.InfoContext(ctx, config.MsgRunningChecks,
		config.LogKeyToday, today.Format(config.LogDateLayout),
		config.LogKeyCount, len(records),
	)

	stats := CheckStats{Total: len(records)}
	for _, rec := range records {
		if rec.Date == "" {
			// Skip only this record; the rest of the batch still runs.
			stats.Skipped++
			log.Debug(config.MsgSkippedNoDate, config.LogKeyName, rec.Name)
			continue
		}

		events, err := evaluateSafely(rec, today)
		if err != nil {
			stats.Failed++
			log.Error(config.ErrRecordFailed,
				config.LogKeyName, rec.Name,
				config.LogKeyDate, rec.Date,
				config.LogKeyError, err,
			)
			continue
		}

		for _, ev := range events {
			stats.Matched++
			metrics.EventsMatched.WithLabelValues(ev.Kind.String()).Inc()
			log.Info(config.MsgEventMatched,
				config.LogKeyName, rec.Name,
				config.LogKeyKind, ev.Kind.String(),
				config.LogKeyDays, ev.Days,
			)
			if c.Notifier != nil {
				c.Notifier.Notify(ctx, rec.Name, ev)
			}
		}
	}

	c.publishCalendar(records, now)

	log.Info(config.MsgCheckDone,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.Total),
			slog.Int(config.LogKeyMatched, stats.Matched),
			slog.Int(config.LogKeySkipped, stats.Skipped),
			slog.Int(config.LogKeyFailed, stats.Failed),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return stats
}

// Publish rebuilds the calendar feed from the current records without
// sending anything.
func (c *Checker) Publish() {
	c.publishCalendar(c.Records(), c.Clock.Now())
}

func (c *Checker) publishCalendar(records []PersonRecord, now time.Time) {
	if c.Publisher == nil {
		return
	}
	summary := c.Summary
	if summary == nil {
		summary = FallbackSummary
	}
	data, err := BuildCalendar(records, now, summary)
	if err != nil {
		slog.Error(config.ErrCalendarBuild,
			config.LogKeyComponent, config.CompCalendar,
			config.LogKeyError, err,
		)
		return
	}
	c.Publisher.Update(data)
}

// evaluateSafely confines a panic raised while matching one record to that record.
func evaluateSafely(rec PersonRecord, today time.Time) (events []Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", config.ErrRecordPanic, r)
		}
	}()
	return Evaluate(rec, today)
}
