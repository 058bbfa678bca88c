// Package worker hosts the background loops that run alongside the HTTP
// server: the auto-compound sweeper and the FX rate refresher. Each loop
// owns a ticker and stops when its context is cancelled.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CompoundSweeper is the slice of the investment service the sweeper needs.
type CompoundSweeper interface {
	SweepAutoCompound(ctx context.Context) (int, error)
}

// Sweeper periodically compounds matured accrual for every user with
// auto-compound enabled. Sweeps are idempotent, so overlapping or missed
// ticks are harmless.
type Sweeper struct {
	svc      CompoundSweeper
	interval time.Duration
	log      zerolog.Logger
}

// NewSweeper creates a sweeper ticking at the given interval.
func NewSweeper(svc CompoundSweeper, interval time.Duration, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		svc:      svc,
		interval: interval,
		log:      log.With().Str("worker", "sweeper").Logger(),
	}
}

// Run blocks until ctx is cancelled, sweeping once per tick. A failed
// sweep is logged and the loop keeps going.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Msg("auto-compound sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("auto-compound sweeper stopped")
			return
		case <-ticker.C:
			compounded, err := s.svc.SweepAutoCompound(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("sweep failed")
				continue
			}
			if compounded > 0 {
				s.log.Info().Int("users_compounded", compounded).Msg("sweep completed")
			}
		}
	}
}
