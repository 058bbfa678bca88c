package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RateCache implements ports.RateCache: the process-shared FX rate cache in
// front of the durable rate table. Entries have no TTL; the refresh loop and
// administrative overrides keep them current, and a stale value is preferred
// over no value when the price feed is down.
type RateCache struct {
	client *goredis.Client
	prefix string
}

// NewRateCache creates a new Redis-backed FX rate cache.
func NewRateCache(client *goredis.Client) *RateCache {
	return &RateCache{
		client: client,
		prefix: "fxrate:",
	}
}

// Get retrieves a cached rate by pair. Returns nil, nil on a cache miss.
func (c *RateCache) Get(ctx context.Context, pair string) (*decimal.Decimal, error) {
	val, err := c.client.Get(ctx, c.prefix+pair).Result()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis rate get: %w", err)
	}

	rate, err := decimal.NewFromString(val)
	if err != nil {
		return nil, fmt.Errorf("redis rate parse %q: %w", val, err)
	}
	return &rate, nil
}

// Set stores a rate for a pair.
func (c *RateCache) Set(ctx context.Context, pair string, rate decimal.Decimal) error {
	if err := c.client.Set(ctx, c.prefix+pair, rate.String(), 0).Err(); err != nil {
		return fmt.Errorf("redis rate set: %w", err)
	}
	return nil
}
