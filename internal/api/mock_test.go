package api

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Farhan-slurrp/mycurrency/internal/rates"
	"github.com/Farhan-slurrp/mycurrency/internal/repository"
	"github.com/Farhan-slurrp/mycurrency/internal/service"
)

type mockRateService struct {
	resolveFunc        func(ctx context.Context, source, target string, date time.Time, providerName string) (*rates.Quote, error)
	convertFunc        func(ctx context.Context, source, target string, amount decimal.Decimal, date time.Time) (*service.Conversion, error)
	loadHistoricalFunc func(ctx context.Context, source, target string, start, end time.Time, providerName string) ([]rates.Quote, error)
	ratesForPeriodFunc func(ctx context.Context, source string, from, to time.Time, targets []string) ([]rates.Quote, error)
}

func (m *mockRateService) Resolve(ctx context.Context, source, target string, date time.Time, providerName string) (*rates.Quote, error) {
	return m.resolveFunc(ctx, source, target, date, providerName)
}

func (m *mockRateService) Convert(ctx context.Context, source, target string, amount decimal.Decimal, date time.Time) (*service.Conversion, error) {
	return m.convertFunc(ctx, source, target, amount, date)
}

func (m *mockRateService) LoadHistorical(ctx context.Context, source, target string, start, end time.Time, providerName string) ([]rates.Quote, error) {
	return m.loadHistoricalFunc(ctx, source, target, start, end, providerName)
}

func (m *mockRateService) RatesForPeriod(ctx context.Context, source string, from, to time.Time, targets []string) ([]rates.Quote, error) {
	return m.ratesForPeriodFunc(ctx, source, from, to, targets)
}

type mockCurrencyRepo struct {
	listFunc   func(ctx context.Context, activeOnly bool) ([]repository.Currency, error)
	createFunc func(ctx context.Context, c repository.Currency) error
}

func (m *mockCurrencyRepo) GetByCode(ctx context.Context, code string) (*repository.Currency, error) {
	return nil, nil
}

func (m *mockCurrencyRepo) List(ctx context.Context, activeOnly bool) ([]repository.Currency, error) {
	return m.listFunc(ctx, activeOnly)
}

func (m *mockCurrencyRepo) KnownCodes(ctx context.Context, codes []string) (map[string]bool, error) {
	return nil, nil
}

func (m *mockCurrencyRepo) Create(ctx context.Context, c repository.Currency) error {
	return m.createFunc(ctx, c)
}
