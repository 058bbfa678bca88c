package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) SweepAutoCompound(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(ctx context.Context) error {
	c.calls.Add(1)
	return c.err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestSweeper_TicksAndStops(t *testing.T) {
	svc := &countingSweeper{}
	sw := NewSweeper(svc, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return svc.calls.Load() >= 2 })
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestSweeper_KeepsRunningOnError(t *testing.T) {
	svc := &countingSweeper{err: errors.New("db down")}
	sw := NewSweeper(svc, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sw.Run(ctx)

	waitFor(t, func() bool { return svc.calls.Load() >= 3 })
}

func TestSweeper_DefaultInterval(t *testing.T) {
	sw := NewSweeper(&countingSweeper{}, 0, zerolog.Nop())
	assert.Equal(t, time.Minute, sw.interval)
}

func TestFxRefresher_RefreshesImmediately(t *testing.T) {
	oracle := &countingRefresher{}
	fr := NewFxRefresher(oracle, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fr.Run(ctx)

	// With an hour-long tick the only call within the deadline is the
	// initial refresh.
	waitFor(t, func() bool { return oracle.calls.Load() == 1 })
}

func TestFxRefresher_TicksAndStops(t *testing.T) {
	oracle := &countingRefresher{}
	fr := NewFxRefresher(oracle, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		fr.Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return oracle.calls.Load() >= 3 })
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop after cancel")
	}
}

func TestFxRefresher_KeepsRunningOnError(t *testing.T) {
	oracle := &countingRefresher{err: errors.New("feed unreachable")}
	fr := NewFxRefresher(oracle, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fr.Run(ctx)

	waitFor(t, func() bool { return oracle.calls.Load() >= 3 })
}
