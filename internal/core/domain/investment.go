package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SecondsPerDay is the length of one accrual day.
const SecondsPerDay int64 = 86400

// InvestmentRecord holds a user's USD-denominated investment principal and
// the open accrual window. WindowStart is nil exactly when Principal <= 0:
// the accrual timer is inactive when there is nothing to accrue on.
type InvestmentRecord struct {
	UserID       uuid.UUID       `json:"user_id"`
	Principal    decimal.Decimal `json:"principal"`
	AutoCompound bool            `json:"auto_compound"`
	WindowStart  *time.Time      `json:"window_start,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewInvestmentRecord returns an empty record with no open window.
func NewInvestmentRecord(userID uuid.UUID, now time.Time) *InvestmentRecord {
	return &InvestmentRecord{
		UserID:    userID,
		Principal: decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Active reports whether the accrual timer is running.
func (r *InvestmentRecord) Active() bool {
	return r.WindowStart != nil && r.Principal.IsPositive()
}

// ElapsedSeconds returns the whole seconds elapsed in the open window,
// clamped at zero. Returns 0 when the timer is inactive.
func (r *InvestmentRecord) ElapsedSeconds(now time.Time) int64 {
	if r.WindowStart == nil {
		return 0
	}
	elapsed := int64(now.Sub(*r.WindowStart) / time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Accrued computes simple interest accrued within the open window:
// principal * dailyRate * elapsedSeconds / 86400. Linear in elapsed time;
// compounding only happens when the interest is folded back.
func (r *InvestmentRecord) Accrued(dailyRate decimal.Decimal, now time.Time) decimal.Decimal {
	if !r.Active() {
		return decimal.Zero
	}
	elapsed := r.ElapsedSeconds(now)
	if elapsed == 0 {
		return decimal.Zero
	}
	return r.Principal.
		Mul(dailyRate).
		Mul(decimal.NewFromInt(elapsed)).
		Div(decimal.NewFromInt(SecondsPerDay))
}

// SecondsToNextDay returns the seconds remaining until the next whole accrual
// day boundary, or nil when the timer is inactive.
func (r *InvestmentRecord) SecondsToNextDay(now time.Time) *int64 {
	if !r.Active() {
		return nil
	}
	remaining := SecondsPerDay - r.ElapsedSeconds(now)%SecondsPerDay
	return &remaining
}

// WholeDaysElapsed returns the number of full accrual days in the open window.
func (r *InvestmentRecord) WholeDaysElapsed(now time.Time) int64 {
	return r.ElapsedSeconds(now) / SecondsPerDay
}
