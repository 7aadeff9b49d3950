// Package service implements the rate resolution core: store-first lookup,
// provider failover on miss, and write-back of whatever was fetched.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Farhan-slurrp/mycurrency/internal/failover"
	"github.com/Farhan-slurrp/mycurrency/internal/provider"
	"github.com/Farhan-slurrp/mycurrency/internal/rates"
	"github.com/Farhan-slurrp/mycurrency/internal/repository"
)

// RateServiceInterface defines the resolution operations exposed to the API
// and worker layers.
type RateServiceInterface interface {
	Resolve(ctx context.Context, source, target string, date time.Time, providerName string) (*rates.Quote, error)
	Convert(ctx context.Context, source, target string, amount decimal.Decimal, date time.Time) (*Conversion, error)
	LoadHistorical(ctx context.Context, source, target string, start, end time.Time, providerName string) ([]rates.Quote, error)
	RatesForPeriod(ctx context.Context, source string, from, to time.Time, targets []string) ([]rates.Quote, error)
}

// Conversion is the result of converting an amount between currencies.
type Conversion struct {
	Source          string
	Target          string
	OriginalAmount  decimal.Decimal
	ConvertedAmount decimal.Decimal
	Rate            decimal.Decimal
	Date            time.Time
}

// RateService resolves currency-pair/date rates. A value found in the
// persistent store is authoritative, however old; providers are only
// consulted on a miss and the fetched quote is persisted before returning.
type RateService struct {
	ratesRepo  repository.RateRepository
	currencies repository.CurrencyRepository
	providers  failover.ConfigStore
	manager    *failover.Manager
	log        *zap.SugaredLogger
}

var _ RateServiceInterface = (*RateService)(nil)

// NewRateService creates a new RateService.
func NewRateService(
	ratesRepo repository.RateRepository,
	currencies repository.CurrencyRepository,
	providers failover.ConfigStore,
	manager *failover.Manager,
	log *zap.SugaredLogger,
) *RateService {
	return &RateService{
		ratesRepo:  ratesRepo,
		currencies: currencies,
		providers:  providers,
		manager:    manager,
		log:        log,
	}
}

// Resolve returns the rate for a pair on a date: persistent store first,
// provider fetch with write-back on miss. A non-empty providerName pins the
// fetch to that single provider instead of failing over.
func (s *RateService) Resolve(ctx context.Context, source, target string, date time.Time, providerName string) (*rates.Quote, error) {
	source, target, err := normalizePair(source, target)
	if err != nil {
		return nil, err
	}
	date = rates.Day(date)

	if source == target {
		q := rates.IdentityQuote(source, date, "")
		return &q, nil
	}

	stored, err := s.ratesRepo.Get(ctx, source, target, date)
	if err != nil {
		return nil, fmt.Errorf("rate lookup: %w", err)
	}
	if stored != nil {
		s.log.Debugw("Rate found in store", "source", source, "target", target, "date", rates.FormatDate(date))
		return stored, nil
	}

	if err := s.requireKnown(ctx, source, target); err != nil {
		return nil, err
	}

	s.log.Infow("Rate not in store, fetching from provider",
		"source", source, "target", target, "date", rates.FormatDate(date))

	var fetched rates.Quote
	err = s.withProvider(ctx, providerName, func(ctx context.Context, p provider.RateProvider) error {
		q, err := p.GetRate(ctx, source, target, date)
		if err != nil {
			return err
		}
		fetched = q
		return nil
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.ratesRepo.Upsert(ctx, fetched)
	if err != nil {
		return nil, fmt.Errorf("persist rate: %w", err)
	}
	return saved, nil
}

// Convert converts an amount between currencies at the rate for the given
// date, rounding the converted amount to 2 fractional digits.
func (s *RateService) Convert(ctx context.Context, source, target string, amount decimal.Decimal, date time.Time) (*Conversion, error) {
	source, target, err := normalizePair(source, target)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = rates.Today()
	}
	date = rates.Day(date)

	if source == target {
		return &Conversion{
			Source:          source,
			Target:          target,
			OriginalAmount:  amount,
			ConvertedAmount: amount,
			Rate:            rates.One,
			Date:            date,
		}, nil
	}

	q, err := s.Resolve(ctx, source, target, date, "")
	if err != nil {
		return nil, err
	}

	return &Conversion{
		Source:          source,
		Target:          target,
		OriginalAmount:  amount,
		ConvertedAmount: amount.Mul(q.Rate).Round(2),
		Rate:            q.Rate,
		Date:            q.Date,
	}, nil
}

// LoadHistorical fetches a date range from a provider (pinned or via
// failover) and bulk-upserts the result in one transaction. Quotes whose
// currencies are not known to the store are skipped and logged. Repeating
// the call over the same range is idempotent.
func (s *RateService) LoadHistorical(ctx context.Context, source, target string, start, end time.Time, providerName string) ([]rates.Quote, error) {
	source, target, err := normalizePair(source, target)
	if err != nil {
		return nil, err
	}

	var fetched []rates.Quote
	err = s.withProvider(ctx, providerName, func(ctx context.Context, p provider.RateProvider) error {
		quotes, err := p.GetHistoricalRates(ctx, source, target, start, end)
		if err != nil {
			return err
		}
		fetched = quotes
		return nil
	})
	if err != nil {
		return nil, err
	}

	known, err := s.knownCodes(ctx, fetched)
	if err != nil {
		return nil, err
	}

	storable := make([]rates.Quote, 0, len(fetched))
	for _, q := range fetched {
		if !known[q.Source] || !known[q.Target] {
			s.log.Warnw("Skipping rate with unknown currency", "source", q.Source, "target", q.Target)
			continue
		}
		storable = append(storable, q)
	}

	saved, err := s.ratesRepo.BulkUpsert(ctx, storable)
	if err != nil {
		return nil, fmt.Errorf("persist historical rates: %w", err)
	}
	s.log.Infow("Historical rates saved", "count", len(saved),
		"source", source, "target", target)
	return saved, nil
}

// RatesForPeriod returns already-resolved rates from the store. It never
// touches providers.
func (s *RateService) RatesForPeriod(ctx context.Context, source string, from, to time.Time, targets []string) ([]rates.Quote, error) {
	source, err := normalizeCode(source)
	if err != nil {
		return nil, err
	}
	if rates.Day(from).After(rates.Day(to)) {
		return nil, rates.ErrInvalidRange
	}

	normTargets := make([]string, 0, len(targets))
	for _, t := range targets {
		code, err := normalizeCode(t)
		if err != nil {
			return nil, err
		}
		normTargets = append(normTargets, code)
	}

	return s.ratesRepo.ListForPeriod(ctx, source, from, to, normTargets)
}

// withProvider runs op against a pinned provider when providerName is set,
// or through the failover manager otherwise. A named but unknown or
// inactive provider fails immediately without any failover attempt.
func (s *RateService) withProvider(ctx context.Context, providerName string, op failover.Operation) error {
	if providerName == "" {
		return s.manager.ExecuteWithFailover(ctx, op)
	}

	cfg, err := s.providers.GetActiveProvider(ctx, providerName)
	if err != nil {
		return fmt.Errorf("provider lookup: %w", err)
	}
	if cfg == nil {
		return fmt.Errorf("%w: %q", ErrProviderNotFound, providerName)
	}

	adapter, err := s.manager.AdapterForProvider(*cfg)
	if err != nil {
		return err
	}
	return op(ctx, adapter)
}

// requireKnown verifies both codes exist in the currency store.
func (s *RateService) requireKnown(ctx context.Context, codes ...string) error {
	known, err := s.currencies.KnownCodes(ctx, codes)
	if err != nil {
		return fmt.Errorf("currency lookup: %w", err)
	}
	for _, code := range codes {
		if !known[code] {
			return fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
		}
	}
	return nil
}

// knownCodes collects the distinct currency codes of quotes and reports
// which exist in the store.
func (s *RateService) knownCodes(ctx context.Context, quotes []rates.Quote) (map[string]bool, error) {
	seen := make(map[string]bool)
	var codes []string
	for _, q := range quotes {
		for _, c := range []string{q.Source, q.Target} {
			if !seen[c] {
				seen[c] = true
				codes = append(codes, c)
			}
		}
	}
	known, err := s.currencies.KnownCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("currency lookup: %w", err)
	}
	return known, nil
}
