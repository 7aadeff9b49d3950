package provider

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Farhan-slurrp/mycurrency/internal/rates"
)

func TestQuoteCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("miss then hit", func(t *testing.T) {
		mr.FlushAll()
		c := NewQuoteCache(rdb, 10*time.Second, "test")

		_, ok := c.Get(ctx, "EUR", "USD", date)
		assert.False(t, ok)

		c.Set(ctx, rates.Quote{
			Source: "EUR", Target: "USD", Date: date,
			Rate: decimal.RequireFromString("1.0850"), Provider: "test",
		})

		q, ok := c.Get(ctx, "EUR", "USD", date)
		assert.True(t, ok)
		assert.True(t, q.Rate.Equal(decimal.RequireFromString("1.0850")))
		assert.Equal(t, "test", q.Provider)
	})

	t.Run("keys are pair and date scoped", func(t *testing.T) {
		mr.FlushAll()
		c := NewQuoteCache(rdb, 10*time.Second, "test")

		c.Set(ctx, rates.Quote{Source: "EUR", Target: "USD", Date: date, Rate: rates.One})

		_, ok := c.Get(ctx, "EUR", "GBP", date)
		assert.False(t, ok)
		_, ok = c.Get(ctx, "EUR", "USD", date.AddDate(0, 0, 1))
		assert.False(t, ok)
	})

	t.Run("entry expires", func(t *testing.T) {
		mr.FlushAll()
		c := NewQuoteCache(rdb, 10*time.Second, "test")

		c.Set(ctx, rates.Quote{Source: "EUR", Target: "USD", Date: date, Rate: rates.One})
		mr.FastForward(11 * time.Second)

		_, ok := c.Get(ctx, "EUR", "USD", date)
		assert.False(t, ok)
	})

	t.Run("nil client disables caching", func(t *testing.T) {
		c := NewQuoteCache(nil, 10*time.Second, "test")

		c.Set(ctx, rates.Quote{Source: "EUR", Target: "USD", Date: date, Rate: rates.One})
		_, ok := c.Get(ctx, "EUR", "USD", date)
		assert.False(t, ok)
	})
}
