package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetPrecision(t *testing.T) {
	assert.Equal(t, int32(2), AssetPrecision(AssetUSD))
	assert.Equal(t, int32(2), AssetPrecision(AssetUSDT))
	assert.Equal(t, int32(6), AssetPrecision(AssetBTC))
	assert.Equal(t, int32(6), AssetPrecision(AssetTRX))
	assert.Equal(t, int32(6), AssetPrecision("ETH"))
}

func TestRoundAmount(t *testing.T) {
	// 99/64000 = 0.001546875 rounds to 0.001547 at 6 decimals
	raw := decimal.NewFromInt(99).Div(decimal.NewFromInt(64000))
	assert.Equal(t, "0.001547", RoundAmount(AssetBTC, raw).String())

	assert.Equal(t, "10.35", RoundAmount(AssetUSD, decimal.RequireFromString("10.345")).String())
}

func TestUSDPair(t *testing.T) {
	assert.Equal(t, "BTC-USD", USDPair("btc"))
	assert.Equal(t, "USDT-USD", USDPair(" usdt "))
}

func TestWallet_CanDebit(t *testing.T) {
	w := NewWallet(uuid.New(), AssetUSDT, time.Now().UTC())
	assert.False(t, w.CanDebit(decimal.NewFromInt(1)))
	assert.True(t, w.CanDebit(decimal.Zero))

	w.Available = decimal.NewFromInt(100)
	assert.True(t, w.CanDebit(decimal.NewFromInt(100)))
	assert.False(t, w.CanDebit(decimal.RequireFromString("100.01")))
}

func TestInvestmentRecord_AccruedLinear(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rate := decimal.RequireFromString("0.015")
	rec := &InvestmentRecord{
		UserID:      uuid.New(),
		Principal:   decimal.NewFromInt(1000),
		WindowStart: &start,
	}

	// One full day: 1000 * 0.015 = 15.00
	day1 := rec.Accrued(rate, start.Add(time.Duration(SecondsPerDay)*time.Second))
	assert.Equal(t, "15.00", day1.Round(2).StringFixed(2))

	// 48h: linear, not compounded
	day2 := rec.Accrued(rate, start.Add(2*time.Duration(SecondsPerDay)*time.Second))
	assert.Equal(t, "30.00", day2.Round(2).StringFixed(2))

	// Half day accrues half a day's interest
	half := rec.Accrued(rate, start.Add(12*time.Hour))
	assert.Equal(t, "7.50", half.Round(2).StringFixed(2))
}

func TestInvestmentRecord_Inactive(t *testing.T) {
	now := time.Now().UTC()
	rate := decimal.RequireFromString("0.015")

	rec := NewInvestmentRecord(uuid.New(), now)
	assert.False(t, rec.Active())
	assert.True(t, rec.Accrued(rate, now.Add(time.Hour)).IsZero())
	assert.Nil(t, rec.SecondsToNextDay(now))

	// Non-nil window but zero principal is still inactive.
	rec.WindowStart = &now
	assert.False(t, rec.Active())
}

func TestInvestmentRecord_SecondsToNextDay(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rec := &InvestmentRecord{
		UserID:      uuid.New(),
		Principal:   decimal.NewFromInt(500),
		WindowStart: &start,
	}

	next := rec.SecondsToNextDay(start.Add(100 * time.Second))
	require.NotNil(t, next)
	assert.Equal(t, SecondsPerDay-100, *next)

	// Exactly at the boundary a full day remains.
	atBoundary := rec.SecondsToNextDay(start.Add(time.Duration(SecondsPerDay) * time.Second))
	require.NotNil(t, atBoundary)
	assert.Equal(t, SecondsPerDay, *atBoundary)
}

func TestInvestmentRecord_WholeDaysElapsed(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rec := &InvestmentRecord{
		UserID:      uuid.New(),
		Principal:   decimal.NewFromInt(500),
		WindowStart: &start,
	}

	assert.Equal(t, int64(0), rec.WholeDaysElapsed(start.Add(time.Hour)))
	assert.Equal(t, int64(3), rec.WholeDaysElapsed(start.Add(3*24*time.Hour+30*time.Minute)))

	// Clock skew before the window start clamps at zero.
	assert.Equal(t, int64(0), rec.ElapsedSeconds(start.Add(-time.Minute)))
}
