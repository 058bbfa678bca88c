package postgres

import (
	"context"
	"errors"
	"fmt"

	"crypto-invest-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// GetForUpdate fetches the (user, asset) wallet row with pessimistic locking.
// This MUST be called within a transaction. Returns nil, nil when the wallet
// does not exist yet.
func (r *WalletRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, asset string) (*domain.Wallet, error) {
	query := `SELECT user_id, asset, available, frozen, created_at, updated_at
		FROM wallets WHERE user_id = $1 AND asset = $2 FOR UPDATE`

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, query, userID, asset).Scan(
		&w.UserID, &w.Asset, &w.Available, &w.Frozen, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// Create inserts a new wallet row within a transaction.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO wallets (user_id, asset, available, frozen, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		w.UserID, w.Asset, w.Available, w.Frozen, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// UpdateBalance writes new balances for a wallet within a transaction.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID, asset string, available, frozen decimal.Decimal) error {
	query := `UPDATE wallets SET available = $1, frozen = $2, updated_at = NOW()
		WHERE user_id = $3 AND asset = $4`

	tag, err := tx.Exec(ctx, query, available, frozen, userID, asset)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s/%s", userID, asset)
	}
	return nil
}

// ListByUser fetches all wallets for a user (non-locking read).
func (r *WalletRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	query := `SELECT user_id, asset, available, frozen, created_at, updated_at
		FROM wallets WHERE user_id = $1 ORDER BY asset`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(&w.UserID, &w.Asset, &w.Available, &w.Frozen, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}
