package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. ConvertToUSD is the standing settlement
// preference: when true, ROI payouts are converted to USD at the cached rate
// before being credited.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	ConvertToUSD bool      `json:"convert_to_usd"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
