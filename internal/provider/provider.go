// Package provider implements the rate provider contract and its adapters:
// the CurrencyBeacon remote adapter and the deterministic synthetic generator.
package provider

import (
	"context"
	"time"

	"github.com/Farhan-slurrp/mycurrency/internal/rates"
)

// RateProvider is the polymorphic capability every rate backend implements.
// Currency codes are normalized to uppercase at this boundary; callers must
// not rely on case sensitivity.
type RateProvider interface {
	// Name is a stable human-readable identifier used in logs and persisted
	// in the provider field of stored rates.
	Name() string

	// GetRate returns the rate for a pair on a single date. It fails with
	// rates.ErrRateNotFound when the provider has no data for the pair/date
	// and rates.ErrProviderUnavailable on transient upstream failure.
	GetRate(ctx context.Context, source, target string, date time.Time) (rates.Quote, error)

	// GetRatesForDate returns same-date quotes from source to each target.
	// A nil target set means every currency the provider knows; the source
	// itself is always omitted from the result.
	GetRatesForDate(ctx context.Context, source string, date time.Time, targets []string) ([]rates.Quote, error)

	// GetHistoricalRates returns quotes for every available date in
	// [start, end], ascending by date. Fails with rates.ErrInvalidRange
	// when start is after end.
	GetHistoricalRates(ctx context.Context, source, target string, start, end time.Time) ([]rates.Quote, error)

	// GetLatestRate is shorthand for GetRate on today's date.
	GetLatestRate(ctx context.Context, source, target string) (rates.Quote, error)
}
