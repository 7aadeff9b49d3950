package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/Farhan-slurrp/mycurrency/internal/rates"
)

// QuoteCache is the short-TTL cache consulted by the remote adapter before
// hitting the upstream. A stale overwrite is harmless (last-write-wins), so
// reads and writes need no coordination. A nil redis client disables caching.
type QuoteCache struct {
	rdb      *redis.Client
	ttl      time.Duration
	provider string
}

// NewQuoteCache creates a cache namespaced to one provider.
func NewQuoteCache(rdb *redis.Client, ttl time.Duration, provider string) *QuoteCache {
	return &QuoteCache{rdb: rdb, ttl: ttl, provider: provider}
}

func (c *QuoteCache) key(source, target string, date time.Time) string {
	return fmt.Sprintf("rates:%s:{%s:%s}:%s", c.provider, source, target, rates.FormatDate(date))
}

// Get returns the cached quote for a pair/date, if present and parseable.
func (c *QuoteCache) Get(ctx context.Context, source, target string, date time.Time) (rates.Quote, bool) {
	if c == nil || c.rdb == nil {
		return rates.Quote{}, false
	}

	val, err := c.rdb.Get(ctx, c.key(source, target, date)).Result()
	if err != nil {
		return rates.Quote{}, false
	}
	rate, err := decimal.NewFromString(val)
	if err != nil {
		return rates.Quote{}, false
	}

	return rates.Quote{
		Source:   source,
		Target:   target,
		Date:     rates.Day(date),
		Rate:     rate,
		Provider: c.provider,
	}, true
}

// Set stores a quote under its pair/date key. Failures are swallowed: the
// cache is an optimization, never a source of truth.
func (c *QuoteCache) Set(ctx context.Context, q rates.Quote) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Set(ctx, c.key(q.Source, q.Target, q.Date), q.Rate.String(), c.ttl)
}
