//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Farhan-slurrp/mycurrency/internal/failover"
	"github.com/Farhan-slurrp/mycurrency/internal/provider"
	"github.com/Farhan-slurrp/mycurrency/internal/repository"
	"github.com/Farhan-slurrp/mycurrency/internal/service"
)

// newTestRateService builds the real service over the test database with
// only the deterministic mock adapter registered. The seeded remote
// provider row is deactivated so failover settles on the mock.
func newTestRateService(t *testing.T, ctx context.Context) *service.RateService {
	t.Helper()

	_, err := testDB.ExecContext(ctx,
		"UPDATE providers SET is_active = false WHERE adapter = 'currencybeacon'")
	if err != nil {
		t.Fatalf("deactivate remote provider: %v", err)
	}
	t.Cleanup(func() {
		_, _ = testDB.ExecContext(context.Background(),
			"UPDATE providers SET is_active = true WHERE adapter = 'currencybeacon'")
	})

	registry := provider.NewRegistry()
	registry.Register(provider.SyntheticName, func(cfg map[string]any) (provider.RateProvider, error) {
		return provider.NewSynthetic(cfg)
	})

	log := zap.NewNop().Sugar()
	providerRepo := repository.NewPostgresProviderRepository(testDB)
	manager := failover.NewManager(providerRepo, registry, log)

	return service.NewRateService(
		repository.NewPostgresRateRepository(testDB),
		repository.NewPostgresCurrencyRepository(testDB),
		providerRepo,
		manager,
		log,
	)
}

func TestService_ResolvePersistsAndReuses(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	svc := newTestRateService(t, ctx)

	date := day(2024, 1, 15)

	first, err := svc.Resolve(ctx, "EUR", "USD", date, "")
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	if !first.Rate.IsPositive() {
		t.Fatalf("expected positive rate, got %s", first.Rate)
	}

	// Second resolution must come from the store, bit-identical.
	second, err := svc.Resolve(ctx, "EUR", "USD", date, "")
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if !first.Rate.Equal(second.Rate) {
		t.Errorf("expected stored rate %s, got %s", first.Rate, second.Rate)
	}

	var count int
	if err := testDB.QueryRowContext(ctx, "SELECT count(*) FROM exchange_rates").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one stored row, got %d", count)
	}
}

func TestService_ResolveUnknownCurrency(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	svc := newTestRateService(t, ctx)

	_, err := svc.Resolve(ctx, "EUR", "ZWL", day(2024, 1, 15), "")
	if err == nil {
		t.Fatal("expected error for currency missing from the store")
	}
}

func TestService_Convert(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	svc := newTestRateService(t, ctx)

	conv, err := svc.Convert(ctx, "EUR", "USD", decimal.NewFromInt(100), day(2024, 1, 15))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	want := decimal.NewFromInt(100).Mul(conv.Rate).Round(2)
	if !conv.ConvertedAmount.Equal(want) {
		t.Errorf("expected %s, got %s", want, conv.ConvertedAmount)
	}
}

func TestService_LoadHistoricalIdempotent(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)
	svc := newTestRateService(t, ctx)

	start, end := day(2024, 1, 10), day(2024, 1, 12)

	saved, err := svc.LoadHistorical(ctx, "EUR", "USD", start, end, "Mock")
	if err != nil {
		t.Fatalf("LoadHistorical: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("expected 3 rates, got %d", len(saved))
	}

	again, err := svc.LoadHistorical(ctx, "EUR", "USD", start, end, "Mock")
	if err != nil {
		t.Fatalf("repeated LoadHistorical: %v", err)
	}
	if len(again) != 3 {
		t.Fatalf("expected 3 rates on repeat, got %d", len(again))
	}

	var count int
	if err := testDB.QueryRowContext(ctx, "SELECT count(*) FROM exchange_rates").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 rows after repeated load, got %d", count)
	}

	// The mock generator is date-deterministic, so the repeat wrote the
	// same values.
	for i := range saved {
		if !saved[i].Rate.Equal(again[i].Rate) {
			t.Errorf("rate drifted on repeat: %s vs %s", saved[i].Rate, again[i].Rate)
		}
	}

	rows, err := svc.RatesForPeriod(ctx, "EUR", start, end, []string{"USD"})
	if err != nil {
		t.Fatalf("RatesForPeriod: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 stored rates for period, got %d", len(rows))
	}
}
