package postgres

import (
	"context"
	"errors"
	"fmt"

	"crypto-invest-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InvestmentRepo implements ports.InvestmentRepository.
type InvestmentRepo struct {
	pool Pool
}

// NewInvestmentRepo creates a new InvestmentRepo.
func NewInvestmentRepo(pool Pool) *InvestmentRepo {
	return &InvestmentRepo{pool: pool}
}

const investmentColumns = `user_id, principal, auto_compound, window_start, created_at, updated_at`

func scanInvestment(row pgx.Row) (*domain.InvestmentRecord, error) {
	rec := &domain.InvestmentRecord{}
	err := row.Scan(&rec.UserID, &rec.Principal, &rec.AutoCompound,
		&rec.WindowStart, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetForUpdate fetches a user's investment record with pessimistic locking.
// This MUST be called within a transaction. Returns nil, nil when the user
// has never invested.
func (r *InvestmentRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.InvestmentRecord, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE user_id = $1 FOR UPDATE`

	rec, err := scanInvestment(tx.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get investment for update: %w", err)
	}
	return rec, nil
}

// Get fetches a user's investment record (non-locking read).
func (r *InvestmentRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.InvestmentRecord, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE user_id = $1`

	rec, err := scanInvestment(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get investment: %w", err)
	}
	return rec, nil
}

// Create inserts a new investment record within a transaction.
func (r *InvestmentRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.InvestmentRecord) error {
	query := `INSERT INTO investments (user_id, principal, auto_compound, window_start, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		rec.UserID, rec.Principal, rec.AutoCompound, rec.WindowStart,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert investment: %w", err)
	}
	return nil
}

// Update writes principal, auto-compound flag and window start within a
// transaction.
func (r *InvestmentRepo) Update(ctx context.Context, tx pgx.Tx, rec *domain.InvestmentRecord) error {
	query := `UPDATE investments SET principal = $1, auto_compound = $2, window_start = $3, updated_at = NOW()
		WHERE user_id = $4`

	tag, err := tx.Exec(ctx, query, rec.Principal, rec.AutoCompound, rec.WindowStart, rec.UserID)
	if err != nil {
		return fmt.Errorf("update investment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("investment not found: %s", rec.UserID)
	}
	return nil
}

// ListAutoCompoundUsers returns the ids of all users eligible for the
// auto-compound sweep: flag enabled, open window, positive principal.
func (r *InvestmentRepo) ListAutoCompoundUsers(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT user_id FROM investments
		WHERE auto_compound = TRUE AND window_start IS NOT NULL AND principal > 0
		ORDER BY user_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list auto-compound users: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
