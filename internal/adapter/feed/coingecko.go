// Package feed implements the external market price source. It is a
// best-effort, pull-based client: every failure is returned to the caller,
// which keeps the last good cached rates and retries on the next tick.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"crypto-invest-wallet/internal/core/domain"

	"github.com/shopspring/decimal"
)

// coinIDs maps asset symbols to CoinGecko coin ids. Symbols without an entry
// fall back to the lower-cased symbol.
var coinIDs = map[string]string{
	domain.AssetBTC: "bitcoin",
	domain.AssetTRX: "tron",
	"ETH":           "ethereum",
	"BNB":           "binancecoin",
	"SOL":           "solana",
}

// CoinGeckoFeed implements ports.PriceFeed against the CoinGecko
// simple-price endpoint.
type CoinGeckoFeed struct {
	baseURL string
	client  *http.Client
}

// NewCoinGeckoFeed creates a price feed client. baseURL is the API root,
// e.g. https://api.coingecko.com/api/v3.
func NewCoinGeckoFeed(baseURL string, client *http.Client) *CoinGeckoFeed {
	return &CoinGeckoFeed{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// FetchUSDPrices fetches current USD prices for the given asset symbols.
// Every requested asset must come back with a strictly positive price or the
// whole fetch fails; a partial or malformed response never reaches the cache.
func (f *CoinGeckoFeed) FetchUSDPrices(ctx context.Context, assets []string) (map[string]decimal.Decimal, error) {
	if len(assets) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	ids := make([]string, 0, len(assets))
	symbolByID := make(map[string]string, len(assets))
	for _, asset := range assets {
		symbol := domain.NormalizeAsset(asset)
		id, ok := coinIDs[symbol]
		if !ok {
			id = strings.ToLower(symbol)
		}
		ids = append(ids, id)
		symbolByID[id] = symbol
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")
	endpoint := f.baseURL + "/simple/price?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price feed returned status %d", resp.StatusCode)
	}

	var body map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode price response: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(assets))
	for id, symbol := range symbolByID {
		quote, ok := body[id]
		if !ok {
			return nil, fmt.Errorf("price feed missing asset %s", symbol)
		}
		price, ok := quote["usd"]
		if !ok {
			return nil, fmt.Errorf("price feed missing usd quote for %s", symbol)
		}
		if !price.IsPositive() {
			return nil, fmt.Errorf("price feed returned non-positive price %s for %s", price, symbol)
		}
		prices[symbol] = price
	}
	return prices, nil
}
