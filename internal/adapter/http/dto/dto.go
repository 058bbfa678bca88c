package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password     string `json:"password" binding:"required,min=8,max=128"`
	ConvertToUSD bool   `json:"convert_to_usd"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	ConvertToUSD bool   `json:"convert_to_usd"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// PayoutPreferenceRequest updates the standing settlement preference.
type PayoutPreferenceRequest struct {
	ConvertToUSD *bool `json:"convert_to_usd" binding:"required"`
}

// DepositRequest is the request body for a wallet deposit. A negative amount
// is a withdrawal.
type DepositRequest struct {
	Asset  string          `json:"asset" binding:"required,max=10,safe_id"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// DepositResponse reports the balance after a deposit or withdrawal.
type DepositResponse struct {
	Asset   string          `json:"asset"`
	Balance decimal.Decimal `json:"balance"`
}

// BalanceEntry is one wallet line in a balance listing.
type BalanceEntry struct {
	Asset     string          `json:"asset"`
	Available decimal.Decimal `json:"available"`
	Frozen    decimal.Decimal `json:"frozen"`
}

// ConvertRequest is the request body for an asset conversion.
type ConvertRequest struct {
	FromAsset string          `json:"from_asset" binding:"required,max=10,safe_id"`
	ToAsset   string          `json:"to_asset" binding:"required,max=10,safe_id"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	FeePct    decimal.Decimal `json:"fee_pct"`
}

// SetRateRequest is the administrative FX rate override body.
type SetRateRequest struct {
	Pair string          `json:"pair" binding:"required,max=20"`
	Rate decimal.Decimal `json:"rate" binding:"required"`
}

// SettleRequest is the administrative ROI settlement body.
type SettleRequest struct {
	UserID   string          `json:"user_id" binding:"required,uuid"`
	PlanID   string          `json:"plan_id" binding:"required,max=64,safe_id"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency string          `json:"currency" binding:"required,max=10,safe_id"`
}

// InvestDepositRequest is the request body for an investment deposit.
type InvestDepositRequest struct {
	Asset  string          `json:"asset" binding:"required,max=10,safe_id"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// AutoCompoundRequest toggles the auto-compound sweeper opt-in.
type AutoCompoundRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// InvestmentResponse reports an investment record after a mutation.
type InvestmentResponse struct {
	Principal    decimal.Decimal `json:"principal"`
	AutoCompound bool            `json:"auto_compound"`
	WindowStart  *time.Time      `json:"window_start,omitempty"`
}

// ClaimResponse reports the interest credited by a claim.
type ClaimResponse struct {
	Asset   string          `json:"asset"`
	Claimed decimal.Decimal `json:"claimed"`
}

// PortfolioEntry is one asset line in a portfolio breakdown.
type PortfolioEntry struct {
	Asset    string          `json:"asset"`
	Amount   decimal.Decimal `json:"amount"`
	USDValue decimal.Decimal `json:"usd_value"`
	Percent  decimal.Decimal `json:"percent"`
}

// PortfolioResponse is the USD-equivalent portfolio breakdown.
type PortfolioResponse struct {
	TotalUSD decimal.Decimal  `json:"total_usd"`
	Entries  []PortfolioEntry `json:"entries"`
}
