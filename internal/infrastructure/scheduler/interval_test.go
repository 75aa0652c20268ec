package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerFiresOnInterval(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(10 * time.Millisecond)
	fired := make(chan time.Time, 1)

	require.NoError(t, s.Start(context.Background(), func(ts time.Time) {
		select {
		case fired <- ts:
		default:
		}
	}))
	defer s.Stop(context.Background())

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never fired")
	}
}

func TestSchedulerStop(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(5 * time.Millisecond)
	ticks := make(chan struct{}, 64)

	require.NoError(t, s.Start(context.Background(), func(time.Time) {
		ticks <- struct{}{}
	}))

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never fired")
	}

	require.NoError(t, s.Stop(context.Background()))

	// Drain anything in flight, then confirm the ticking stopped.
	time.Sleep(20 * time.Millisecond)
	for len(ticks) > 0 {
		<-ticks
	}
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, ticks)
}

func TestSchedulerNilJob(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(time.Millisecond)
	require.NoError(t, s.Start(context.Background(), nil))
	require.NoError(t, s.Stop(context.Background()))
}

func TestSchedulerContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewIntervalScheduler(5 * time.Millisecond)

	ticks := make(chan struct{}, 64)
	require.NoError(t, s.Start(ctx, func(time.Time) {
		ticks <- struct{}{}
	}))

	cancel()
	time.Sleep(20 * time.Millisecond)
	for len(ticks) > 0 {
		<-ticks
	}
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, ticks)
}
