package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Farhan-slurrp/mycurrency/internal/rates"
	"github.com/Farhan-slurrp/mycurrency/internal/repository"
	"github.com/Farhan-slurrp/mycurrency/internal/service"
)

var testDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func testQuote(rate string) *rates.Quote {
	return &rates.Quote{
		Source: "EUR", Target: "USD", Date: testDate,
		Rate: decimal.RequireFromString(rate), Provider: "currencybeacon",
	}
}

func TestHandleResolveRate(t *testing.T) {
	t.Run("returns resolved rate", func(t *testing.T) {
		svc := &mockRateService{
			resolveFunc: func(ctx context.Context, source, target string, date time.Time, providerName string) (*rates.Quote, error) {
				if source != "EUR" || target != "USD" {
					t.Errorf("unexpected pair %s/%s", source, target)
				}
				if rates.FormatDate(date) != "2024-01-15" {
					t.Errorf("unexpected date %s", rates.FormatDate(date))
				}
				return testQuote("1.0850"), nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/rates/resolve?source=EUR&target=USD&date=2024-01-15", nil)
		w := httptest.NewRecorder()
		HandleResolveRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp RateResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Rate != "1.085000" {
			t.Errorf("expected rate 1.085000, got %s", resp.Rate)
		}
		if resp.Provider != "currencybeacon" {
			t.Errorf("expected provider currencybeacon, got %s", resp.Provider)
		}
	})

	t.Run("provider pin is forwarded", func(t *testing.T) {
		var gotProvider string
		svc := &mockRateService{
			resolveFunc: func(ctx context.Context, source, target string, date time.Time, providerName string) (*rates.Quote, error) {
				gotProvider = providerName
				return testQuote("1.0850"), nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/rates/resolve?source=EUR&target=USD&provider=Mock", nil)
		w := httptest.NewRecorder()
		HandleResolveRate(svc).ServeHTTP(w, req)

		if gotProvider != "Mock" {
			t.Errorf("expected provider Mock, got %q", gotProvider)
		}
	})

	t.Run("malformed date returns 400", func(t *testing.T) {
		svc := &mockRateService{}

		req := httptest.NewRequest(http.MethodGet, "/rates/resolve?source=EUR&target=USD&date=garbage", nil)
		w := httptest.NewRecorder()
		HandleResolveRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("error mapping", func(t *testing.T) {
		tests := []struct {
			err  error
			want int
		}{
			{service.ErrInvalidCurrency, http.StatusBadRequest},
			{service.ErrUnknownCurrency, http.StatusNotFound},
			{service.ErrProviderNotFound, http.StatusNotFound},
			{rates.ErrRateNotFound, http.StatusNotFound},
			{rates.ErrAllProvidersExhausted, http.StatusBadGateway},
			{fmt.Errorf("db connection lost"), http.StatusInternalServerError},
		}

		for _, tc := range tests {
			svc := &mockRateService{
				resolveFunc: func(ctx context.Context, source, target string, date time.Time, providerName string) (*rates.Quote, error) {
					return nil, tc.err
				},
			}

			req := httptest.NewRequest(http.MethodGet, "/rates/resolve?source=EUR&target=USD", nil)
			w := httptest.NewRecorder()
			HandleResolveRate(svc).ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Errorf("error %v: expected %d, got %d", tc.err, tc.want, w.Code)
			}
		}
	})
}

func TestHandleConvert(t *testing.T) {
	t.Run("converts amount", func(t *testing.T) {
		svc := &mockRateService{
			convertFunc: func(ctx context.Context, source, target string, amount decimal.Decimal, date time.Time) (*service.Conversion, error) {
				return &service.Conversion{
					Source: "EUR", Target: "USD",
					OriginalAmount:  amount,
					ConvertedAmount: decimal.RequireFromString("108.50"),
					Rate:            decimal.RequireFromString("1.0850"),
					Date:            testDate,
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/convert?source=EUR&target=USD&amount=100&date=2024-01-15", nil)
		w := httptest.NewRecorder()
		HandleConvert(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp ConvertResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.ConvertedAmount != "108.50" {
			t.Errorf("expected 108.50, got %s", resp.ConvertedAmount)
		}
	})

	t.Run("missing amount returns 400", func(t *testing.T) {
		svc := &mockRateService{}

		req := httptest.NewRequest(http.MethodGet, "/convert?source=EUR&target=USD", nil)
		w := httptest.NewRecorder()
		HandleConvert(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

func TestHandleGetRatesForPeriod(t *testing.T) {
	t.Run("groups by target", func(t *testing.T) {
		svc := &mockRateService{
			ratesForPeriodFunc: func(ctx context.Context, source string, from, to time.Time, targets []string) ([]rates.Quote, error) {
				return []rates.Quote{
					{Source: "EUR", Target: "USD", Date: testDate, Rate: decimal.RequireFromString("1.0850")},
					{Source: "EUR", Target: "USD", Date: testDate.AddDate(0, 0, 1), Rate: decimal.RequireFromString("1.0860")},
					{Source: "EUR", Target: "GBP", Date: testDate, Rate: decimal.RequireFromString("0.8600")},
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet,
			"/rates?source=EUR&date_from=2024-01-15&date_to=2024-01-16", nil)
		w := httptest.NewRecorder()
		HandleGetRatesForPeriod(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp PeriodRatesResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(resp.Rates["USD"]) != 2 || len(resp.Rates["GBP"]) != 1 {
			t.Errorf("unexpected grouping: %+v", resp.Rates)
		}
	})

	t.Run("missing range returns 400", func(t *testing.T) {
		svc := &mockRateService{}

		req := httptest.NewRequest(http.MethodGet, "/rates?source=EUR", nil)
		w := httptest.NewRecorder()
		HandleGetRatesForPeriod(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

func TestHandleLoadHistorical_Validation(t *testing.T) {
	// Validation happens before any enqueue, so a nil Enqueuer client is
	// never reached in these cases.
	handler := HandleLoadHistorical(nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{{{`},
		{"bad source", `{"source":"EURO","target":"USD","start_date":"2024-01-01","end_date":"2024-01-31"}`},
		{"bad start date", `{"source":"EUR","target":"USD","start_date":"garbage","end_date":"2024-01-31"}`},
		{"inverted range", `{"source":"EUR","target":"USD","start_date":"2024-02-01","end_date":"2024-01-01"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/rates/historical-load", bytes.NewBufferString(tc.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestHandleListCurrencies(t *testing.T) {
	repo := &mockCurrencyRepo{
		listFunc: func(ctx context.Context, activeOnly bool) ([]repository.Currency, error) {
			if !activeOnly {
				t.Error("expected activeOnly filter")
			}
			return []repository.Currency{
				{Code: "EUR", Name: "Euro", Symbol: "€", IsActive: true},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/currencies?is_active=true", nil)
	w := httptest.NewRecorder()
	HandleListCurrencies(repo).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp []CurrencyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 1 || resp[0].Code != "EUR" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHandleCreateCurrency(t *testing.T) {
	t.Run("valid currency returns 201", func(t *testing.T) {
		var created repository.Currency
		repo := &mockCurrencyRepo{
			createFunc: func(ctx context.Context, c repository.Currency) error {
				created = c
				return nil
			},
		}

		body := bytes.NewBufferString(`{"code":"jpy","name":"Japanese Yen","symbol":"¥"}`)
		req := httptest.NewRequest(http.MethodPost, "/currencies", body)
		w := httptest.NewRecorder()
		HandleCreateCurrency(repo).ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		if created.Code != "JPY" {
			t.Errorf("expected normalized code JPY, got %s", created.Code)
		}
	})

	t.Run("invalid code returns 400", func(t *testing.T) {
		repo := &mockCurrencyRepo{}

		body := bytes.NewBufferString(`{"code":"YENS","name":"Yen"}`)
		req := httptest.NewRequest(http.MethodPost, "/currencies", body)
		w := httptest.NewRecorder()
		HandleCreateCurrency(repo).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}
