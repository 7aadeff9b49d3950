// Package rates defines the core value types and error taxonomy shared by
// the rate providers, the failover manager and the resolution service.
package rates

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RatePrecision is the number of fractional digits stored for a rate value.
const RatePrecision = 6

// One is the conventional rate for a same-currency pair.
var One = decimal.NewFromInt(1)

// Quote is a single exchange rate fetched from a provider. It is immutable
// after construction: a superseding rate for the same key produces a new
// Quote, never a mutation.
type Quote struct {
	Source   string
	Target   string
	Date     time.Time // date only, UTC midnight
	Rate     decimal.Decimal
	Provider string
}

// IdentityQuote returns the conventional rate-1 quote for a same-currency
// pair. It is never fetched from an upstream.
func IdentityQuote(code string, date time.Time, provider string) Quote {
	return Quote{
		Source:   code,
		Target:   code,
		Date:     Day(date),
		Rate:     One,
		Provider: provider,
	}
}

// Day truncates t to UTC midnight. All valuation dates flow through this so
// that quotes for the same calendar day compare equal.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date at UTC midnight.
func Today() time.Time {
	return Day(time.Now())
}

// DateKey derives the integer key yyyymmdd used to seed date-scoped
// pseudo-random draws.
func DateKey(t time.Time) int64 {
	y, m, d := t.UTC().Date()
	return int64(y)*10000 + int64(m)*100 + int64(d)
}

// FormatDate renders a valuation date as ISO yyyy-mm-dd.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseDate accepts an ISO date with or without a time suffix, as upstream
// timeseries responses mix both shapes.
func ParseDate(s string) (time.Time, error) {
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// SortQuotesByDate orders quotes ascending by valuation date in place.
func SortQuotesByDate(quotes []Quote) {
	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].Date.Before(quotes[j].Date)
	})
}
