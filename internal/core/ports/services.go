package ports

import (
	"context"
	"time"

	"crypto-invest-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerService is the balance bookkeeping core: credit and debit with
// non-negativity enforcement and lazy wallet creation.
type LedgerService interface {
	// Credit adds amount (> 0) to the user's available balance, rounded to
	// the asset's fixed precision, and returns the new balance.
	Credit(ctx context.Context, userID uuid.UUID, asset string, amount decimal.Decimal) (decimal.Decimal, error)
	// Debit subtracts amount (> 0); fails with InsufficientBalance when the
	// available balance does not cover it.
	Debit(ctx context.Context, userID uuid.UUID, asset string, amount decimal.Decimal) (decimal.Decimal, error)
	// Balances lists all wallets for a user.
	Balances(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
}

// TxLedger performs balance mutations inside a caller-supplied transaction,
// so multi-leg operations (convert, settle, claim) stay atomic.
type TxLedger interface {
	CreditTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, asset string, amount decimal.Decimal) (decimal.Decimal, error)
	DebitTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, asset string, amount decimal.Decimal) (decimal.Decimal, error)
}

// FxOracle holds the cached asset-pair to USD rate table.
type FxOracle interface {
	// GetRate returns the cached rate for a "<ASSET>-USD" pair, or UnknownPair.
	GetRate(ctx context.Context, pair string) (decimal.Decimal, error)
	// USDValue converts an asset amount to its USD valuation.
	USDValue(ctx context.Context, asset string, amount decimal.Decimal) (decimal.Decimal, error)
	// SetRate is an administrative override; rate must be strictly positive.
	SetRate(ctx context.Context, pair string, rate decimal.Decimal) error
	// ListRates returns the full cached rate table.
	ListRates(ctx context.Context) ([]domain.FXRate, error)
	// Refresh pulls current prices for the configured volatile assets and
	// re-pins the stable pegs. On failure the existing cache is untouched and
	// the error is returned for the caller to log and discard.
	Refresh(ctx context.Context) error
}

// ConversionResult reports the executed amounts on both legs of a conversion
// plus the rates used, for audit display.
type ConversionResult struct {
	FromAsset  string          `json:"from_asset"`
	FromAmount decimal.Decimal `json:"from_amount"`
	ToAsset    string          `json:"to_asset"`
	ToAmount   decimal.Decimal `json:"to_amount"`
	FromRate   decimal.Decimal `json:"from_rate"`
	ToRate     decimal.Decimal `json:"to_rate"`
	FeePct     decimal.Decimal `json:"fee_pct"`
	GrossUSD   decimal.Decimal `json:"gross_usd"`
	NetUSD     decimal.Decimal `json:"net_usd"`
}

// ConverterService converts between assets through the USD bridge.
type ConverterService interface {
	Convert(ctx context.Context, userID uuid.UUID, fromAsset, toAsset string, amount, feePct decimal.Decimal) (*ConversionResult, error)
}

// SettlementService resolves ROI payout events into wallet credits plus an
// immutable payout record, honoring the user's convert-to-USD preference.
type SettlementService interface {
	Settle(ctx context.Context, userID uuid.UUID, planID string, amount decimal.Decimal, currency string) (*domain.Payout, error)
	PayoutHistory(ctx context.Context, userID uuid.UUID) ([]domain.Payout, error)
}

// InvestmentStatus is the read-only projection of an investment record.
type InvestmentStatus struct {
	Principal     decimal.Decimal `json:"principal"`
	DailyRate     decimal.Decimal `json:"daily_rate"`
	Accrued       decimal.Decimal `json:"accrued"`
	AutoCompound  bool            `json:"auto_compound"`
	WindowStart   *time.Time      `json:"window_start,omitempty"`
	SecondsToNext *int64          `json:"seconds_to_next,omitempty"`
}

// InvestmentService owns investment records and the accrual model.
type InvestmentService interface {
	// Deposit converts amount of asset to USD, adds it to principal and
	// restarts the accrual window.
	Deposit(ctx context.Context, userID uuid.UUID, asset string, amount decimal.Decimal) (*domain.InvestmentRecord, error)
	Status(ctx context.Context, userID uuid.UUID) (*InvestmentStatus, error)
	// Reinvest folds accrued interest into principal and resets the window.
	Reinvest(ctx context.Context, userID uuid.UUID) (*domain.InvestmentRecord, error)
	// Claim credits accrued interest to the user's USD wallet without
	// changing principal, and resets the window.
	Claim(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	SetAutoCompound(ctx context.Context, userID uuid.UUID, enabled bool) error
	// SweepAutoCompound folds elapsed whole days of interest into principal
	// for every auto-compounding record. Returns the number of records folded.
	SweepAutoCompound(ctx context.Context) (int, error)
}

// PortfolioEntry is one asset line in a portfolio breakdown.
type PortfolioEntry struct {
	Asset    string          `json:"asset"`
	Amount   decimal.Decimal `json:"amount"`
	USDValue decimal.Decimal `json:"usd_value"`
	Percent  decimal.Decimal `json:"percent"`
}

// PortfolioService derives USD-equivalent portfolio breakdowns.
type PortfolioService interface {
	GetPortfolio(ctx context.Context, userID uuid.UUID) (total decimal.Decimal, entries []PortfolioEntry, err error)
}

// ---- Supporting services ----

// RegisterRequest carries the fields for account registration.
type RegisterRequest struct {
	Username     string
	Password     string
	ConvertToUSD bool
}

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, username, password string) (token string, expiresAt time.Time, err error)
	SetPayoutPreference(ctx context.Context, userID uuid.UUID, convertToUSD bool) error
}

// TokenClaims are the claims extracted from a validated token.
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
}

// TokenService issues and validates bearer tokens.
type TokenService interface {
	Generate(userID uuid.UUID, username string) (string, time.Time, error)
	Validate(token string) (*TokenClaims, error)
}

// HashService handles password hashing.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}
