package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FXRate is a cached asset-to-USD rate keyed by "<ASSET>-USD".
// USD-USD and USDT-USD are pegged to 1 and never refreshed externally.
type FXRate struct {
	Pair      string          `json:"pair"`
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PeggedPairs returns the stable pairs that are always pinned to 1.
func PeggedPairs() []string {
	return []string{USDPair(AssetUSD), USDPair(AssetUSDT)}
}
