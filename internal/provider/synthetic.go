package provider

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Farhan-slurrp/mycurrency/internal/rates"
)

// SyntheticName is the adapter identifier and provider name of the
// deterministic offline generator.
const SyntheticName = "mock"

const defaultVolatility = 0.05

type pairKey struct {
	source string
	target string
}

// defaultBaseRates holds plausible anchors for the major pairs. Pairs not
// listed are triangulated through EUR or drawn pseudo-randomly.
var defaultBaseRates = map[pairKey]decimal.Decimal{
	{"EUR", "USD"}: decimal.RequireFromString("1.08"),
	{"EUR", "GBP"}: decimal.RequireFromString("0.86"),
	{"EUR", "CHF"}: decimal.RequireFromString("0.94"),
	{"USD", "EUR"}: decimal.RequireFromString("0.93"),
	{"USD", "GBP"}: decimal.RequireFromString("0.79"),
	{"USD", "CHF"}: decimal.RequireFromString("0.87"),
	{"GBP", "EUR"}: decimal.RequireFromString("1.16"),
	{"GBP", "USD"}: decimal.RequireFromString("1.27"),
	{"GBP", "CHF"}: decimal.RequireFromString("1.10"),
	{"CHF", "EUR"}: decimal.RequireFromString("1.06"),
	{"CHF", "USD"}: decimal.RequireFromString("1.15"),
	{"CHF", "GBP"}: decimal.RequireFromString("0.91"),
}

var defaultTargets = []string{"EUR", "USD", "GBP", "CHF"}

// Synthetic generates reproducible exchange rates without any network
// dependency. For a pair present in the base-rate table (directly or via the
// EUR pivot) the rate for a given date is bit-identical across calls and
// across instances: the per-date variation comes from a throwaway generator
// seeded with the date key alone.
type Synthetic struct {
	baseRates  map[pairKey]decimal.Decimal
	volatility float64

	// unlisted-pair base rates come from this instance-scoped source so a
	// configured seed keeps mock datasets reproducible without touching
	// any global generator state.
	mu       sync.Mutex
	unlisted *rand.Rand
}

var _ RateProvider = (*Synthetic)(nil)

// NewSynthetic builds the generator from an opaque adapter config. Supported
// keys: "volatility" (fraction, default 0.05), "seed" (integer), and
// "base_rates" (object of "SRC/TGT" -> rate overriding the default table).
func NewSynthetic(cfg map[string]any) (*Synthetic, error) {
	s := &Synthetic{
		baseRates:  defaultBaseRates,
		volatility: cfgFloat(cfg, "volatility", defaultVolatility),
	}
	if s.volatility < 0 {
		return nil, fmt.Errorf("volatility must not be negative, got %v", s.volatility)
	}

	if raw, ok := cfg["base_rates"].(map[string]any); ok {
		table, err := parseBaseRates(raw)
		if err != nil {
			return nil, err
		}
		s.baseRates = table
	}

	if _, ok := cfg["seed"]; ok {
		s.unlisted = rand.New(rand.NewSource(int64(cfgInt(cfg, "seed", 0))))
	} else {
		s.unlisted = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s, nil
}

func parseBaseRates(raw map[string]any) (map[pairKey]decimal.Decimal, error) {
	table := make(map[pairKey]decimal.Decimal, len(raw))
	for pair, v := range raw {
		src, tgt, ok := strings.Cut(pair, "/")
		if !ok {
			return nil, fmt.Errorf("base_rates key %q is not of the form SRC/TGT", pair)
		}
		rate, err := decimal.NewFromString(fmt.Sprintf("%v", v))
		if err != nil {
			return nil, fmt.Errorf("base_rates[%q]: %w", pair, err)
		}
		table[pairKey{strings.ToUpper(src), strings.ToUpper(tgt)}] = rate
	}
	return table, nil
}

// Name implements RateProvider.
func (s *Synthetic) Name() string { return SyntheticName }

// GetRate generates the rate for a pair on a date.
func (s *Synthetic) GetRate(_ context.Context, source, target string, date time.Time) (rates.Quote, error) {
	source = strings.ToUpper(source)
	target = strings.ToUpper(target)
	date = rates.Day(date)

	if source == target {
		return rates.IdentityQuote(source, date, s.Name()), nil
	}

	rate := s.varyForDate(s.baseRate(source, target), date)
	return rates.Quote{
		Source:   source,
		Target:   target,
		Date:     date,
		Rate:     rate,
		Provider: s.Name(),
	}, nil
}

// GetRatesForDate generates quotes from source to each target on one date.
func (s *Synthetic) GetRatesForDate(ctx context.Context, source string, date time.Time, targets []string) ([]rates.Quote, error) {
	source = strings.ToUpper(source)
	if targets == nil {
		targets = defaultTargets
	}

	quotes := make([]rates.Quote, 0, len(targets))
	for _, target := range targets {
		if strings.ToUpper(target) == source {
			continue
		}
		q, err := s.GetRate(ctx, source, target, date)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// GetHistoricalRates generates one quote per day over [start, end].
func (s *Synthetic) GetHistoricalRates(ctx context.Context, source, target string, start, end time.Time) ([]rates.Quote, error) {
	start, end = rates.Day(start), rates.Day(end)
	if start.After(end) {
		return nil, rates.ErrInvalidRange
	}

	var quotes []rates.Quote
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		q, err := s.GetRate(ctx, source, target, day)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// GetLatestRate generates today's rate.
func (s *Synthetic) GetLatestRate(ctx context.Context, source, target string) (rates.Quote, error) {
	return s.GetRate(ctx, source, target, rates.Today())
}

// baseRate resolves the anchor rate for a pair: direct table entry first,
// then EUR-pivot triangulation, then a pseudo-random draw in [0.5, 2.0].
func (s *Synthetic) baseRate(source, target string) decimal.Decimal {
	if rate, ok := s.baseRates[pairKey{source, target}]; ok {
		return rate
	}

	if source != "EUR" {
		toEUR, ok1 := s.baseRates[pairKey{source, "EUR"}]
		fromEUR, ok2 := s.baseRates[pairKey{"EUR", target}]
		if ok1 && ok2 {
			return toEUR.Mul(fromEUR)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return decimal.NewFromFloat(0.5 + s.unlisted.Float64()*1.5).Round(rates.RatePrecision)
}

// varyForDate applies the date-bound multiplicative variation. The generator
// is local and seeded only with the date key, so the same date always yields
// the same variation regardless of call order.
func (s *Synthetic) varyForDate(base decimal.Decimal, date time.Time) decimal.Decimal {
	rng := rand.New(rand.NewSource(rates.DateKey(date)))
	variation := rng.Float64()*2*s.volatility - s.volatility
	return base.Mul(decimal.NewFromFloat(1 + variation)).Round(rates.RatePrecision)
}
