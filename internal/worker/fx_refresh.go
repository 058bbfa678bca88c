package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RateRefresher is the slice of the FX oracle the refresher needs.
type RateRefresher interface {
	Refresh(ctx context.Context) error
}

// FxRefresher keeps market rates for volatile assets current by pulling
// the external price feed on a fixed interval. A failed refresh leaves
// the last stored rates in place.
type FxRefresher struct {
	oracle   RateRefresher
	interval time.Duration
	log      zerolog.Logger
}

// NewFxRefresher creates a refresher ticking at the given interval.
func NewFxRefresher(oracle RateRefresher, interval time.Duration, log zerolog.Logger) *FxRefresher {
	if interval <= 0 {
		interval = time.Hour
	}
	return &FxRefresher{
		oracle:   oracle,
		interval: interval,
		log:      log.With().Str("worker", "fx_refresh").Logger(),
	}
}

// Run refreshes once immediately, then once per tick, until ctx is
// cancelled.
func (r *FxRefresher) Run(ctx context.Context) {
	r.log.Info().Dur("interval", r.interval).Msg("fx refresher started")

	if err := r.oracle.Refresh(ctx); err != nil {
		r.log.Warn().Err(err).Msg("initial fx refresh failed")
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("fx refresher stopped")
			return
		case <-ticker.C:
			if err := r.oracle.Refresh(ctx); err != nil {
				r.log.Warn().Err(err).Msg("fx refresh failed")
			}
		}
	}
}
