package postgres

import (
	"context"
	"fmt"

	"crypto-invest-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PayoutRepo implements ports.PayoutRepository. Payouts are append-only;
// there is no update or delete path.
type PayoutRepo struct {
	pool Pool
}

// NewPayoutRepo creates a new PayoutRepo.
func NewPayoutRepo(pool Pool) *PayoutRepo {
	return &PayoutRepo{pool: pool}
}

// Create appends a payout record within a transaction.
func (r *PayoutRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payout) error {
	query := `INSERT INTO payouts (id, user_id, plan_id, currency, amount, fx_rate, usd_amount, converted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		p.ID, p.UserID, p.PlanID, p.Currency, p.Amount,
		p.Rate, p.USDAmount, p.Converted, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payout: %w", err)
	}
	return nil
}

// ListByUser fetches a user's payout history, newest first.
func (r *PayoutRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payout, error) {
	query := `SELECT id, user_id, plan_id, currency, amount, fx_rate, usd_amount, converted, created_at
		FROM payouts WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	var payouts []domain.Payout
	for rows.Next() {
		var p domain.Payout
		if err := rows.Scan(&p.ID, &p.UserID, &p.PlanID, &p.Currency, &p.Amount,
			&p.Rate, &p.USDAmount, &p.Converted, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payout: %w", err)
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}
