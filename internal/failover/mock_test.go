package failover

import (
	"context"
	"time"

	"github.com/Farhan-slurrp/mycurrency/internal/provider"
	"github.com/Farhan-slurrp/mycurrency/internal/rates"
)

// stubProvider lets each test script provider behavior per method.
type stubProvider struct {
	name        string
	getRateFunc func(ctx context.Context, source, target string, date time.Time) (rates.Quote, error)
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) GetRate(ctx context.Context, source, target string, date time.Time) (rates.Quote, error) {
	return s.getRateFunc(ctx, source, target, date)
}

func (s *stubProvider) GetRatesForDate(ctx context.Context, source string, date time.Time, targets []string) ([]rates.Quote, error) {
	return nil, nil
}

func (s *stubProvider) GetHistoricalRates(ctx context.Context, source, target string, start, end time.Time) ([]rates.Quote, error) {
	return nil, nil
}

func (s *stubProvider) GetLatestRate(ctx context.Context, source, target string) (rates.Quote, error) {
	return s.getRateFunc(ctx, source, target, rates.Today())
}

var _ provider.RateProvider = (*stubProvider)(nil)

// stubStore serves a fixed provider list.
type stubStore struct {
	providers []ProviderConfig
	listErr   error
}

func (s *stubStore) ListActiveProviders(ctx context.Context) ([]ProviderConfig, error) {
	return s.providers, s.listErr
}

func (s *stubStore) GetActiveProvider(ctx context.Context, name string) (*ProviderConfig, error) {
	for _, p := range s.providers {
		if p.Name == name {
			cfg := p
			return &cfg, nil
		}
	}
	return nil, nil
}
