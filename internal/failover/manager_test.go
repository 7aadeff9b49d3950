package failover

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Farhan-slurrp/mycurrency/internal/provider"
	"github.com/Farhan-slurrp/mycurrency/internal/rates"
)

// newTestRegistry binds adapter identifiers to canned stub providers.
func newTestRegistry(stubs map[string]*stubProvider) *provider.Registry {
	registry := provider.NewRegistry()
	for id, stub := range stubs {
		stub := stub
		registry.Register(id, func(cfg map[string]any) (provider.RateProvider, error) {
			return stub, nil
		})
	}
	return registry
}

func quoteFor(rate string) func(ctx context.Context, source, target string, date time.Time) (rates.Quote, error) {
	return func(ctx context.Context, source, target string, date time.Time) (rates.Quote, error) {
		return rates.Quote{Source: source, Target: target, Date: date,
			Rate: decimal.RequireFromString(rate)}, nil
	}
}

func failWith(err error) func(ctx context.Context, source, target string, date time.Time) (rates.Quote, error) {
	return func(ctx context.Context, source, target string, date time.Time) (rates.Quote, error) {
		return rates.Quote{}, err
	}
}

func TestExecuteWithFailover(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	log := zap.NewNop().Sugar()

	configs := []ProviderConfig{
		{Name: "Primary", Adapter: "primary", Priority: 1, IsActive: true},
		{Name: "Secondary", Adapter: "secondary", Priority: 2, IsActive: true},
	}

	getRate := func(m *Manager) (rates.Quote, error) {
		var q rates.Quote
		err := m.ExecuteWithFailover(ctx, func(ctx context.Context, p provider.RateProvider) error {
			got, err := p.GetRate(ctx, "EUR", "USD", date)
			if err != nil {
				return err
			}
			q = got
			return nil
		})
		return q, err
	}

	t.Run("first provider succeeds", func(t *testing.T) {
		secondaryCalled := false
		registry := newTestRegistry(map[string]*stubProvider{
			"primary": {name: "primary", getRateFunc: quoteFor("1.0850")},
			"secondary": {name: "secondary", getRateFunc: func(ctx context.Context, s, tgt string, d time.Time) (rates.Quote, error) {
				secondaryCalled = true
				return rates.Quote{}, nil
			}},
		})

		m := NewManager(&stubStore{providers: configs}, registry, log)
		q, err := getRate(m)
		assert.NoError(t, err)
		assert.Equal(t, "1.085", q.Rate.String())
		assert.False(t, secondaryCalled)
	})

	t.Run("unavailable provider advances to next", func(t *testing.T) {
		registry := newTestRegistry(map[string]*stubProvider{
			"primary":   {name: "primary", getRateFunc: failWith(rates.ErrProviderUnavailable)},
			"secondary": {name: "secondary", getRateFunc: quoteFor("1.0900")},
		})

		m := NewManager(&stubStore{providers: configs}, registry, log)
		q, err := getRate(m)
		assert.NoError(t, err)
		assert.Equal(t, "1.09", q.Rate.String())
	})

	t.Run("rate not found advances to next", func(t *testing.T) {
		registry := newTestRegistry(map[string]*stubProvider{
			"primary":   {name: "primary", getRateFunc: failWith(rates.ErrRateNotFound)},
			"secondary": {name: "secondary", getRateFunc: quoteFor("1.0900")},
		})

		m := NewManager(&stubStore{providers: configs}, registry, log)
		q, err := getRate(m)
		assert.NoError(t, err)
		assert.Equal(t, "1.09", q.Rate.String())
	})

	t.Run("non-contract error propagates immediately", func(t *testing.T) {
		bugErr := errors.New("nil map write")
		secondaryCalled := false
		registry := newTestRegistry(map[string]*stubProvider{
			"primary": {name: "primary", getRateFunc: failWith(bugErr)},
			"secondary": {name: "secondary", getRateFunc: func(ctx context.Context, s, tgt string, d time.Time) (rates.Quote, error) {
				secondaryCalled = true
				return rates.Quote{}, nil
			}},
		})

		m := NewManager(&stubStore{providers: configs}, registry, log)
		_, err := getRate(m)
		assert.ErrorIs(t, err, bugErr)
		assert.False(t, secondaryCalled)
	})

	t.Run("all providers exhausted", func(t *testing.T) {
		registry := newTestRegistry(map[string]*stubProvider{
			"primary":   {name: "primary", getRateFunc: failWith(rates.ErrProviderUnavailable)},
			"secondary": {name: "secondary", getRateFunc: failWith(rates.ErrRateNotFound)},
		})

		m := NewManager(&stubStore{providers: configs}, registry, log)
		_, err := getRate(m)
		assert.ErrorIs(t, err, rates.ErrAllProvidersExhausted)
	})

	t.Run("no active providers", func(t *testing.T) {
		m := NewManager(&stubStore{}, newTestRegistry(nil), log)
		_, err := getRate(m)
		assert.ErrorIs(t, err, rates.ErrAllProvidersExhausted)
	})

	t.Run("unknown adapter is a config error", func(t *testing.T) {
		m := NewManager(&stubStore{providers: []ProviderConfig{
			{Name: "Broken", Adapter: "does-not-exist", Priority: 1, IsActive: true},
		}}, newTestRegistry(nil), log)

		_, err := getRate(m)
		assert.ErrorIs(t, err, rates.ErrAdapterConfig)
	})
}

func TestAdapterForProvider_Caching(t *testing.T) {
	built := 0
	registry := provider.NewRegistry()
	registry.Register("counted", func(cfg map[string]any) (provider.RateProvider, error) {
		built++
		return &stubProvider{name: "counted"}, nil
	})

	m := NewManager(&stubStore{}, registry, zap.NewNop().Sugar())
	cfg := ProviderConfig{Name: "P", Adapter: "counted", Config: map[string]any{"k": "v"}}

	_, err := m.AdapterForProvider(cfg)
	assert.NoError(t, err)
	_, err = m.AdapterForProvider(cfg)
	assert.NoError(t, err)
	assert.Equal(t, 1, built, "same adapter+config must reuse the cached instance")

	// Different config builds a fresh instance.
	cfg.Config = map[string]any{"k": "other"}
	_, err = m.AdapterForProvider(cfg)
	assert.NoError(t, err)
	assert.Equal(t, 2, built)

	m.InvalidateAdapters()
	_, err = m.AdapterForProvider(cfg)
	assert.NoError(t, err)
	assert.Equal(t, 3, built, "invalidation must drop cached instances")
}
