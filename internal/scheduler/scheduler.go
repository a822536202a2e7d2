package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tartampluch/birthday-bot/internal/config"
)

// Daily runs a job on a cron schedule, independently of the HTTP surface.
type Daily struct {
	cron *cron.Cron
	spec string
	loc  *time.Location
}

// NewDaily registers job under spec (standard 5-field cron syntax) in loc.
func NewDaily(spec string, loc *time.Location, job func()) (*Daily, error) {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, job); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSchedule, err)
	}
	return &Daily{cron: c, spec: spec, loc: loc}, nil
}

// Run starts the scheduler and blocks until ctx is cancelled.
// A job already running when ctx ends is allowed to finish.
func (d *Daily) Run(ctx context.Context) {
	d.cron.Start()
	slog.Info(config.MsgSchedulerStart,
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeySchedule, d.spec,
		config.LogKeyTimezone, d.loc.String(),
	)

	<-ctx.Done()

	<-d.cron.Stop().Done()
	slog.Info(config.MsgSchedulerStop, config.LogKeyComponent, config.CompScheduler)
}

// Next reports when the job fires next; zero before Run starts the scheduler.
func (d *Daily) Next() time.Time {
	entries := d.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
