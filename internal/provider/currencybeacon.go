package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Farhan-slurrp/mycurrency/internal/rates"
)

// BeaconName is the adapter identifier of the CurrencyBeacon remote adapter.
const BeaconName = "currencybeacon"

const (
	beaconDefaultBaseURL    = "https://api.currencybeacon.com/v1"
	beaconDefaultTimeoutSec = 30
	beaconDefaultDelayMS    = 100
	beaconDefaultCacheSec   = 3600

	// Consecutive non-not-found failures tolerated by the per-day fallback
	// loop before it aborts with whatever it collected.
	beaconMaxConsecutiveErrors = 5
)

// CurrencyBeacon fetches rates from the CurrencyBeacon HTTP API. Historical
// ranges try the /timeseries endpoint first and degrade to one /historical
// request per day when the plan does not include timeseries access.
type CurrencyBeacon struct {
	apiKey  string
	baseURL string
	client  *http.Client
	delay   time.Duration
	cache   *QuoteCache
	log     *zap.SugaredLogger
	now     func() time.Time
}

var _ RateProvider = (*CurrencyBeacon)(nil)

// NewCurrencyBeacon builds the adapter from an opaque provider config.
// Supported keys: "api_key", "base_url", "timeout_sec",
// "rate_limit_delay_ms", "cache_ttl_sec".
func NewCurrencyBeacon(cfg map[string]any, rdb *redis.Client, log *zap.SugaredLogger) (*CurrencyBeacon, error) {
	apiKey := cfgString(cfg, "api_key", "")
	if apiKey == "" {
		log.Warnw("CurrencyBeacon API key not configured; requests will be rejected upstream")
	}

	ttl := time.Duration(cfgInt(cfg, "cache_ttl_sec", beaconDefaultCacheSec)) * time.Second

	return &CurrencyBeacon{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(cfgString(cfg, "base_url", beaconDefaultBaseURL), "/"),
		client: &http.Client{
			Timeout: time.Duration(cfgInt(cfg, "timeout_sec", beaconDefaultTimeoutSec)) * time.Second,
		},
		delay: time.Duration(cfgInt(cfg, "rate_limit_delay_ms", beaconDefaultDelayMS)) * time.Millisecond,
		cache: NewQuoteCache(rdb, ttl, BeaconName),
		log:   log,
		now:   time.Now,
	}, nil
}

// Name implements RateProvider.
func (b *CurrencyBeacon) Name() string { return BeaconName }

// beaconEnvelope covers the response shapes the API is known to produce.
// The rates mapping appears either at the top level or nested under
// "response", and /timeseries sometimes answers with a bare list to signal
// the endpoint is not included in the plan.
type beaconEnvelope struct {
	Error    json.RawMessage `json:"error"`
	Rates    json.RawMessage `json:"rates"`
	Response json.RawMessage `json:"response"`
}

// singleDateRates extracts the target->rate mapping for /latest and
// /historical responses, accepting both known shapes.
func (e *beaconEnvelope) singleDateRates() map[string]json.Number {
	var m map[string]json.Number
	if len(e.Rates) > 0 && json.Unmarshal(e.Rates, &m) == nil && len(m) > 0 {
		return m
	}

	var nested struct {
		Rates map[string]json.Number `json:"rates"`
	}
	if len(e.Response) > 0 && json.Unmarshal(e.Response, &nested) == nil {
		return nested.Rates
	}
	return nil
}

// seriesBody returns the container holding timeseries data: "response" when
// present, the top-level "rates" field otherwise.
func (e *beaconEnvelope) seriesBody() json.RawMessage {
	if len(e.Response) > 0 {
		return e.Response
	}
	return e.Rates
}

// request performs one API call and normalizes every transport or HTTP
// failure into rates.ErrProviderUnavailable. Callers above the adapter never
// see raw transport errors.
func (b *CurrencyBeacon) request(ctx context.Context, endpoint string, params url.Values) (*beaconEnvelope, error) {
	params.Set("api_key", b.apiKey)
	reqURL := b.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", rates.ErrProviderUnavailable, err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, fmt.Errorf("%w: request timed out: %v", rates.ErrProviderUnavailable, err)
		}
		return nil, fmt.Errorf("%w: request failed: %v", rates.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: authentication failed: invalid API key", rates.ErrProviderUnavailable)
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: access forbidden (status 403): endpoint not included in the current plan", rates.ErrProviderUnavailable)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: rate limit exceeded", rates.ErrProviderUnavailable)
	default:
		return nil, fmt.Errorf("%w: HTTP status %d", rates.ErrProviderUnavailable, resp.StatusCode)
	}

	var env beaconEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", rates.ErrProviderUnavailable, err)
	}
	if len(env.Error) > 0 && string(env.Error) != "null" {
		return nil, fmt.Errorf("%w: API error: %s", rates.ErrProviderUnavailable, env.Error)
	}
	return &env, nil
}

// resolveDate applies the single-date lookup rule: a future date is clamped
// to today, and a today-or-later date routes to /latest.
func (b *CurrencyBeacon) resolveDate(date time.Time) (resolved time.Time, useLatest bool) {
	today := rates.Day(b.now())
	if date.After(today) {
		b.log.Warnw("Requested future date, using today's rate instead",
			"requested", rates.FormatDate(date), "today", rates.FormatDate(today))
		date = today
	}
	return date, !date.Before(today)
}

// GetRate fetches one rate, consulting the short-TTL cache first.
func (b *CurrencyBeacon) GetRate(ctx context.Context, source, target string, date time.Time) (rates.Quote, error) {
	source = strings.ToUpper(source)
	target = strings.ToUpper(target)
	date = rates.Day(date)

	if source == target {
		return rates.IdentityQuote(source, date, b.Name()), nil
	}

	if q, ok := b.cache.Get(ctx, source, target, date); ok {
		return q, nil
	}

	date, useLatest := b.resolveDate(date)

	var env *beaconEnvelope
	var err error
	if useLatest {
		env, err = b.request(ctx, "/latest", url.Values{"base": {source}})
	} else {
		env, err = b.request(ctx, "/historical", url.Values{
			"base": {source},
			"date": {rates.FormatDate(date)},
		})
	}
	if err != nil {
		return rates.Quote{}, err
	}

	rateMap := env.singleDateRates()
	raw, ok := rateMap[target]
	if !ok {
		return rates.Quote{}, fmt.Errorf("%w: %s -> %s on %s", rates.ErrRateNotFound, source, target, rates.FormatDate(date))
	}
	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return rates.Quote{}, fmt.Errorf("%w: malformed rate %q for %s", rates.ErrProviderUnavailable, raw, target)
	}

	q := rates.Quote{
		Source:   source,
		Target:   target,
		Date:     date,
		Rate:     rate,
		Provider: b.Name(),
	}
	b.cache.Set(ctx, q)
	return q, nil
}

// GetRatesForDate fetches the whole rate table for one date and filters it
// to the requested targets. The source currency never appears in the result.
func (b *CurrencyBeacon) GetRatesForDate(ctx context.Context, source string, date time.Time, targets []string) ([]rates.Quote, error) {
	source = strings.ToUpper(source)
	date, useLatest := b.resolveDate(rates.Day(date))

	var env *beaconEnvelope
	var err error
	if useLatest {
		env, err = b.request(ctx, "/latest", url.Values{"base": {source}})
	} else {
		env, err = b.request(ctx, "/historical", url.Values{
			"base": {source},
			"date": {rates.FormatDate(date)},
		})
	}
	if err != nil {
		return nil, err
	}

	var wanted map[string]bool
	if targets != nil {
		wanted = make(map[string]bool, len(targets))
		for _, t := range targets {
			wanted[strings.ToUpper(t)] = true
		}
	}

	var quotes []rates.Quote
	for target, raw := range env.singleDateRates() {
		if target == source || (wanted != nil && !wanted[target]) {
			continue
		}
		rate, err := decimal.NewFromString(raw.String())
		if err != nil {
			b.log.Warnw("Skipping malformed rate", "target", target, "value", raw)
			continue
		}
		q := rates.Quote{
			Source:   source,
			Target:   target,
			Date:     date,
			Rate:     rate,
			Provider: b.Name(),
		}
		b.cache.Set(ctx, q)
		quotes = append(quotes, q)
	}

	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Target < quotes[j].Target })
	return quotes, nil
}

// GetHistoricalRates resolves a date range: one /timeseries call when the
// plan allows it, a per-day fallback scan otherwise.
func (b *CurrencyBeacon) GetHistoricalRates(ctx context.Context, source, target string, start, end time.Time) ([]rates.Quote, error) {
	source = strings.ToUpper(source)
	target = strings.ToUpper(target)
	start, end = rates.Day(start), rates.Day(end)

	if start.After(end) {
		return nil, rates.ErrInvalidRange
	}

	today := rates.Day(b.now())
	if start.After(today) {
		b.log.Warnw("Historical range starts in the future, nothing to fetch",
			"start", rates.FormatDate(start))
		return nil, nil
	}
	if end.After(today) {
		end = today
	}

	env, err := b.request(ctx, "/timeseries", url.Values{
		"base":       {source},
		"start_date": {rates.FormatDate(start)},
		"end_date":   {rates.FormatDate(end)},
		"symbols":    {target},
	})
	if err != nil {
		// A 403 here usually means the plan lacks timeseries access; every
		// upstream failure routes to the per-day fallback rather than up.
		b.log.Warnw("Timeseries endpoint unavailable, falling back to per-day requests", "error", err)
		return b.fallbackHistorical(ctx, source, target, start, end)
	}

	body := env.seriesBody()

	var asList []json.RawMessage
	if json.Unmarshal(body, &asList) == nil {
		b.log.Infow("Timeseries not available on current plan (list response), falling back to per-day requests")
		return b.fallbackHistorical(ctx, source, target, start, end)
	}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(body, &asMap); err != nil {
		b.log.Warnw("Unexpected timeseries response shape, falling back to per-day requests")
		return b.fallbackHistorical(ctx, source, target, start, end)
	}

	quotes := b.parseSeries(ctx, source, target, asMap)
	if len(quotes) == 0 {
		b.log.Warnw("Timeseries returned no usable rates, falling back to per-day requests")
		return b.fallbackHistorical(ctx, source, target, start, end)
	}

	rates.SortQuotesByDate(quotes)
	return quotes, nil
}

// parseSeries converts a date->rates mapping into quotes, skipping entries
// whose date or rate cannot be parsed. Each rate value may be nested by
// target currency or a bare scalar.
func (b *CurrencyBeacon) parseSeries(ctx context.Context, source, target string, series map[string]json.RawMessage) []rates.Quote {
	quotes := make([]rates.Quote, 0, len(series))
	for dateStr, raw := range series {
		day, err := rates.ParseDate(dateStr)
		if err != nil {
			b.log.Warnw("Skipping timeseries entry with invalid date", "date", dateStr)
			continue
		}

		var num json.Number
		var byTarget map[string]json.Number
		switch {
		case json.Unmarshal(raw, &byTarget) == nil:
			var ok bool
			if num, ok = byTarget[target]; !ok {
				continue
			}
		case json.Unmarshal(raw, &num) == nil:
		default:
			b.log.Warnw("Skipping timeseries entry with unexpected rate shape", "date", dateStr)
			continue
		}

		rate, err := decimal.NewFromString(num.String())
		if err != nil {
			b.log.Warnw("Skipping timeseries entry with invalid rate", "date", dateStr, "value", num)
			continue
		}

		q := rates.Quote{
			Source:   source,
			Target:   target,
			Date:     day,
			Rate:     rate,
			Provider: b.Name(),
		}
		b.cache.Set(ctx, q)
		quotes = append(quotes, q)
	}
	return quotes
}

// fallbackHistorical scans the range one date at a time, cache first, with
// the configured inter-request delay after every iteration. A missing rate
// for a single date is skipped; five consecutive failures of any other kind
// abort the scan, returning whatever was collected.
func (b *CurrencyBeacon) fallbackHistorical(ctx context.Context, source, target string, start, end time.Time) ([]rates.Quote, error) {
	b.log.Infow("Fetching rates per day",
		"source", source, "target", target,
		"start", rates.FormatDate(start), "end", rates.FormatDate(end),
		"delay", b.delay)

	var quotes []rates.Quote
	consecutiveErrs := 0

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if q, ok := b.cache.Get(ctx, source, target, day); ok {
			quotes = append(quotes, q)
			consecutiveErrs = 0
		} else {
			q, err := b.GetRate(ctx, source, target, day)
			switch {
			case err == nil:
				quotes = append(quotes, q)
				consecutiveErrs = 0
			case errors.Is(err, rates.ErrRateNotFound):
				b.log.Debugw("No rate for date, skipping", "date", rates.FormatDate(day))
				consecutiveErrs = 0
			default:
				consecutiveErrs++
				b.log.Warnw("Per-day fetch failed",
					"date", rates.FormatDate(day),
					"consecutive_errors", consecutiveErrs, "error", err)
				if consecutiveErrs >= beaconMaxConsecutiveErrors {
					b.log.Errorw("Too many consecutive errors, aborting per-day scan",
						"collected", len(quotes))
					rates.SortQuotesByDate(quotes)
					return quotes, nil
				}
			}
		}

		if stopped := b.pause(ctx); stopped {
			break
		}
	}

	b.log.Infow("Per-day scan complete", "collected", len(quotes))
	rates.SortQuotesByDate(quotes)
	return quotes, nil
}

// pause sleeps the inter-request delay, honoring context cancellation.
func (b *CurrencyBeacon) pause(ctx context.Context) (stopped bool) {
	if b.delay <= 0 {
		return ctx.Err() != nil
	}
	select {
	case <-ctx.Done():
		return true
	case <-time.After(b.delay):
		return false
	}
}

// GetLatestRate fetches today's rate.
func (b *CurrencyBeacon) GetLatestRate(ctx context.Context, source, target string) (rates.Quote, error) {
	return b.GetRate(ctx, source, target, rates.Day(b.now()))
}
