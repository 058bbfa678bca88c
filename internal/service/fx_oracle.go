package service

import (
	"context"
	"fmt"
	"strings"

	"crypto-invest-wallet/internal/core/domain"
	"crypto-invest-wallet/internal/core/ports"
	"crypto-invest-wallet/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// FxOracleImpl implements ports.FxOracle on top of a durable rate table with
// a redis read-through cache. Refresh pulls spot prices from the feed before
// touching storage, so a feed outage never disturbs the served rates.
type FxOracleImpl struct {
	rateRepo       ports.RateRepository
	rateCache      ports.RateCache
	feed           ports.PriceFeed
	volatileAssets []string
	log            zerolog.Logger
}

// NewFxOracle creates a new FxOracleImpl.
func NewFxOracle(rateRepo ports.RateRepository, rateCache ports.RateCache, feed ports.PriceFeed, volatileAssets []string, log zerolog.Logger) *FxOracleImpl {
	return &FxOracleImpl{
		rateRepo:       rateRepo,
		rateCache:      rateCache,
		feed:           feed,
		volatileAssets: volatileAssets,
		log:            log,
	}
}

// GetRate returns the rate for a "<ASSET>-USD" pair, consulting the cache
// first and falling back to the durable table on a miss.
func (s *FxOracleImpl) GetRate(ctx context.Context, pair string) (decimal.Decimal, error) {
	pair = normalizePair(pair)

	cached, err := s.rateCache.Get(ctx, pair)
	if err != nil {
		// Cache trouble is not fatal; the table is authoritative.
		s.log.Warn().Err(err).Str("pair", pair).Msg("rate cache read failed")
	}
	if cached != nil {
		return *cached, nil
	}

	rate, err := s.rateRepo.Get(ctx, pair)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("get rate: %w", err))
	}
	if rate == nil {
		return decimal.Zero, apperror.ErrUnknownPair(pair)
	}

	if err := s.rateCache.Set(ctx, pair, rate.Rate); err != nil {
		s.log.Warn().Err(err).Str("pair", pair).Msg("rate cache write failed")
	}
	return rate.Rate, nil
}

// USDValue converts an asset amount to its USD valuation at the current rate.
func (s *FxOracleImpl) USDValue(ctx context.Context, asset string, amount decimal.Decimal) (decimal.Decimal, error) {
	rate, err := s.GetRate(ctx, domain.USDPair(asset))
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// SetRate administratively overrides a pair's rate. The rate must be
// strictly positive.
func (s *FxOracleImpl) SetRate(ctx context.Context, pair string, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return apperror.ErrInvalidRate()
	}
	pair = normalizePair(pair)

	if err := s.rateRepo.Upsert(ctx, pair, rate); err != nil {
		return apperror.InternalError(fmt.Errorf("set rate: %w", err))
	}
	if err := s.rateCache.Set(ctx, pair, rate); err != nil {
		s.log.Warn().Err(err).Str("pair", pair).Msg("rate cache write failed")
	}

	s.log.Info().Str("pair", pair).Str("rate", rate.String()).Msg("rate overridden")
	return nil
}

// ListRates returns the full rate table.
func (s *FxOracleImpl) ListRates(ctx context.Context) ([]domain.FXRate, error) {
	rates, err := s.rateRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list rates: %w", err))
	}
	return rates, nil
}

// Refresh pulls spot USD prices for the configured volatile assets and stores
// them alongside the stable pegs. The feed call happens before any write, so
// a failed fetch leaves the existing table and cache fully intact.
func (s *FxOracleImpl) Refresh(ctx context.Context) error {
	prices, err := s.feed.FetchUSDPrices(ctx, s.volatileAssets)
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}

	for asset, price := range prices {
		if !price.IsPositive() {
			s.log.Warn().Str("asset", asset).Str("price", price.String()).Msg("feed returned non-positive price, skipping")
			continue
		}
		pair := domain.USDPair(asset)
		if err := s.rateRepo.Upsert(ctx, pair, price); err != nil {
			return fmt.Errorf("store rate %s: %w", pair, err)
		}
		if err := s.rateCache.Set(ctx, pair, price); err != nil {
			s.log.Warn().Err(err).Str("pair", pair).Msg("rate cache write failed")
		}
	}

	for _, pair := range domain.PeggedPairs() {
		if err := s.rateRepo.Upsert(ctx, pair, decimal.NewFromInt(1)); err != nil {
			return fmt.Errorf("store peg %s: %w", pair, err)
		}
		if err := s.rateCache.Set(ctx, pair, decimal.NewFromInt(1)); err != nil {
			s.log.Warn().Err(err).Str("pair", pair).Msg("rate cache write failed")
		}
	}

	s.log.Info().Int("assets", len(prices)).Msg("fx rates refreshed")
	return nil
}

func normalizePair(pair string) string {
	return strings.ToUpper(strings.TrimSpace(pair))
}
