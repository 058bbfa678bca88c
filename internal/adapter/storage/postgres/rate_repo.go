package postgres

import (
	"context"
	"errors"
	"fmt"

	"crypto-invest-wallet/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// RateRepo implements ports.RateRepository over the fx_rates table.
type RateRepo struct {
	pool Pool
}

// NewRateRepo creates a new RateRepo.
func NewRateRepo(pool Pool) *RateRepo {
	return &RateRepo{pool: pool}
}

// Get fetches a rate by pair. Returns nil, nil when the pair was never set.
func (r *RateRepo) Get(ctx context.Context, pair string) (*domain.FXRate, error) {
	query := `SELECT pair, rate, updated_at FROM fx_rates WHERE pair = $1`

	fx := &domain.FXRate{}
	err := r.pool.QueryRow(ctx, query, pair).Scan(&fx.Pair, &fx.Rate, &fx.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fx rate: %w", err)
	}
	return fx, nil
}

// Upsert writes a rate, replacing any existing value for the pair.
func (r *RateRepo) Upsert(ctx context.Context, pair string, rate decimal.Decimal) error {
	query := `INSERT INTO fx_rates (pair, rate, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (pair) DO UPDATE SET rate = EXCLUDED.rate, updated_at = NOW()`

	if _, err := r.pool.Exec(ctx, query, pair, rate); err != nil {
		return fmt.Errorf("upsert fx rate: %w", err)
	}
	return nil
}

// List returns the full rate table.
func (r *RateRepo) List(ctx context.Context) ([]domain.FXRate, error) {
	query := `SELECT pair, rate, updated_at FROM fx_rates ORDER BY pair`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list fx rates: %w", err)
	}
	defer rows.Close()

	var rates []domain.FXRate
	for rows.Next() {
		var fx domain.FXRate
		if err := rows.Scan(&fx.Pair, &fx.Rate, &fx.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan fx rate: %w", err)
		}
		rates = append(rates, fx)
	}
	return rates, rows.Err()
}
