package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payout is an immutable settlement record. Rate and USDAmount are set only
// when the payout was converted to USD at settlement time.
type Payout struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	PlanID    string           `json:"plan_id"`
	Currency  string           `json:"currency"`
	Amount    decimal.Decimal  `json:"amount"`
	Rate      *decimal.Decimal `json:"rate,omitempty"`
	USDAmount *decimal.Decimal `json:"usd_amount,omitempty"`
	Converted bool             `json:"converted"`
	CreatedAt time.Time        `json:"created_at"`
}
