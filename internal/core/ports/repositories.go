package ports

import (
	"context"
	"time"

	"crypto-invest-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateConvertToUSD(ctx context.Context, id uuid.UUID, convert bool) error
}

// WalletRepository defines persistence operations for per-user, per-asset
// wallets. Methods accepting pgx.Tx run inside transaction blocks for
// pessimistic locking.
type WalletRepository interface {
	// GetForUpdate locks the (user, asset) wallet row. Returns nil, nil when
	// no wallet exists yet; wallets are created lazily at zero via Create.
	GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, asset string) (*domain.Wallet, error)
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	UpdateBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID, asset string, available, frozen decimal.Decimal) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
}

// RateRepository is the durable FX rate table keyed by pair string.
type RateRepository interface {
	Get(ctx context.Context, pair string) (*domain.FXRate, error)
	Upsert(ctx context.Context, pair string, rate decimal.Decimal) error
	List(ctx context.Context) ([]domain.FXRate, error)
}

// PayoutRepository is the append-only settlement audit log.
type PayoutRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payout *domain.Payout) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payout, error)
}

// InvestmentRepository defines persistence for investment records.
type InvestmentRepository interface {
	// GetForUpdate locks the user's record row. Returns nil, nil when the
	// user has never invested.
	GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.InvestmentRecord, error)
	Get(ctx context.Context, userID uuid.UUID) (*domain.InvestmentRecord, error)
	Create(ctx context.Context, tx pgx.Tx, record *domain.InvestmentRecord) error
	Update(ctx context.Context, tx pgx.Tx, record *domain.InvestmentRecord) error
	// ListAutoCompoundUsers returns the ids of all users with auto-compounding
	// enabled and an open accrual window.
	ListAutoCompoundUsers(ctx context.Context) ([]uuid.UUID, error)
}

// RateCache is the process-shared FX rate cache in front of RateRepository.
type RateCache interface {
	Get(ctx context.Context, pair string) (*decimal.Decimal, error)
	Set(ctx context.Context, pair string, rate decimal.Decimal) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PriceFeed pulls current USD prices for volatile assets from an external
// market source. Best-effort: callers must tolerate failure by keeping the
// last good cached rates.
type PriceFeed interface {
	FetchUSDPrices(ctx context.Context, assets []string) (map[string]decimal.Decimal, error)
}

// Clock abstracts time for accrual computations.
type Clock func() time.Time
