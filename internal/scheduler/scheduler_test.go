package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/birthday-bot/internal/config"
)

func TestNewDaily_InvalidSpec(t *testing.T) {
	_, err := NewDaily("not a schedule", time.UTC, func() {})
	assert.ErrorContains(t, err, config.ErrSchedule)
}

func TestDaily_Next(t *testing.T) {
	d, err := NewDaily(config.DefaultCheckSchedule, nil, func() {})
	require.NoError(t, err)
	assert.True(t, d.Next().IsZero(), "no next run before the scheduler starts")
	assert.Equal(t, time.Local, d.loc)
}

func TestDaily_RunFiresJob(t *testing.T) {
	var fired atomic.Int32
	d, err := NewDaily("@every 1s", time.UTC, func() { fired.Add(1) })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(ctx)
	}()

	assert.Eventually(t, func() bool { return fired.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	assert.False(t, d.Next().IsZero())

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestDaily_WaitsForRunningJob(t *testing.T) {
	started := make(chan struct{}, 1)
	var finished atomic.Bool
	d, err := NewDaily("@every 1s", time.UTC, func() {
		select {
		case started <- struct{}{}:
		default:
		}
		time.Sleep(200 * time.Millisecond)
		finished.Store(true)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(ctx)
	}()

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job never started")
	}
	cancel()
	<-done
	assert.True(t, finished.Load(), "Run returned before the job finished")
}
