package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Well-known asset symbols. The set of volatile assets is open-ended;
// anything not pegged is treated as volatile.
const (
	AssetUSD  = "USD"
	AssetUSDT = "USDT"
	AssetBTC  = "BTC"
	AssetTRX  = "TRX"
)

const (
	// StablePrecision is the decimal precision for fiat and stablecoin balances.
	StablePrecision int32 = 2
	// VolatilePrecision is the decimal precision for volatile crypto balances.
	VolatilePrecision int32 = 6
)

// IsStableAsset reports whether the asset is USD-pegged (rate fixed at 1).
func IsStableAsset(asset string) bool {
	switch asset {
	case AssetUSD, AssetUSDT:
		return true
	}
	return false
}

// AssetPrecision returns the fixed decimal precision for an asset:
// 2 for fiat/stable assets, 6 for volatile crypto assets.
func AssetPrecision(asset string) int32 {
	if IsStableAsset(asset) {
		return StablePrecision
	}
	return VolatilePrecision
}

// RoundAmount rounds an amount to the asset's fixed precision
// (half away from zero).
func RoundAmount(asset string, amount decimal.Decimal) decimal.Decimal {
	return amount.Round(AssetPrecision(asset))
}

// NormalizeAsset upper-cases and trims an asset symbol.
func NormalizeAsset(asset string) string {
	return strings.ToUpper(strings.TrimSpace(asset))
}

// USDPair builds the canonical "<ASSET>-USD" pair key for an asset.
func USDPair(asset string) string {
	return NormalizeAsset(asset) + "-" + AssetUSD
}
