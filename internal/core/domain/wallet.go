package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is a per-user, per-asset balance record. Available never goes
// negative; Frozen is reserved balance not spendable by current operations.
type Wallet struct {
	UserID    uuid.UUID       `json:"user_id"`
	Asset     string          `json:"asset"`
	Available decimal.Decimal `json:"available"`
	Frozen    decimal.Decimal `json:"frozen"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewWallet returns a zero-balance wallet for the given user and asset.
func NewWallet(userID uuid.UUID, asset string, now time.Time) *Wallet {
	return &Wallet{
		UserID:    userID,
		Asset:     NormalizeAsset(asset),
		Available: decimal.Zero,
		Frozen:    decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanDebit reports whether the available balance covers the given amount.
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return w.Available.GreaterThanOrEqual(amount)
}
