package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Farhan-slurrp/mycurrency/internal/rates"
	"github.com/Farhan-slurrp/mycurrency/internal/repository"
	"github.com/Farhan-slurrp/mycurrency/internal/service"
	"github.com/Farhan-slurrp/mycurrency/internal/worker"
)

// CurrencyResponse represents a currency record.
type CurrencyResponse struct {
	Code     string `json:"code" example:"EUR"`
	Name     string `json:"name" example:"Euro"`
	Symbol   string `json:"symbol" example:"€"`
	IsActive bool   `json:"is_active" example:"true"`
}

// RateResponse represents a single resolved rate.
type RateResponse struct {
	Source   string `json:"source" example:"EUR"`
	Target   string `json:"target" example:"USD"`
	Date     string `json:"date" example:"2024-01-15"`
	Rate     string `json:"rate" example:"1.085000"`
	Provider string `json:"provider,omitempty" example:"currencybeacon"`
}

// PeriodRatesResponse groups stored rates by target currency.
type PeriodRatesResponse struct {
	Source   string                 `json:"source" example:"EUR"`
	DateFrom string                 `json:"date_from" example:"2024-01-01"`
	DateTo   string                 `json:"date_to" example:"2024-01-31"`
	Rates    map[string][]DatedRate `json:"rates"`
}

// DatedRate is one date/rate point in a period response.
type DatedRate struct {
	Date string `json:"date" example:"2024-01-15"`
	Rate string `json:"rate" example:"1.085000"`
}

// ConvertResponse represents the result of an amount conversion.
type ConvertResponse struct {
	Source          string `json:"source" example:"EUR"`
	Target          string `json:"target" example:"USD"`
	OriginalAmount  string `json:"original_amount" example:"100"`
	ConvertedAmount string `json:"converted_amount" example:"108.50"`
	Rate            string `json:"rate" example:"1.085000"`
	Date            string `json:"date" example:"2024-01-15"`
}

// HistoricalLoadRequest is the request body for triggering a bulk load.
type HistoricalLoadRequest struct {
	Source    string `json:"source" example:"EUR"`
	Target    string `json:"target" example:"USD"`
	StartDate string `json:"start_date" example:"2024-01-01"`
	EndDate   string `json:"end_date" example:"2024-01-31"`
	Provider  string `json:"provider,omitempty" example:"CurrencyBeacon"`
	BatchSize int    `json:"batch_size,omitempty" example:"30"`
}

// HistoricalLoadResponse acknowledges an accepted bulk load job.
type HistoricalLoadResponse struct {
	JobID string `json:"job_id" example:"123e4567-e89b-12d3-a456-426614174000"`
}

// HandleListCurrencies godoc
// @Summary List currencies
// @Description Lists stored currencies, optionally filtered to active ones.
// @Tags currencies
// @Produce json
// @Param is_active query bool false "Only active currencies"
// @Success 200 {array} CurrencyResponse
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /currencies [get]
func HandleListCurrencies(repo repository.CurrencyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := strings.EqualFold(r.URL.Query().Get("is_active"), "true")
		currencies, err := repo.List(r.Context(), activeOnly)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			return
		}

		out := make([]CurrencyResponse, 0, len(currencies))
		for _, c := range currencies {
			out = append(out, CurrencyResponse{Code: c.Code, Name: c.Name, Symbol: c.Symbol, IsActive: c.IsActive})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// HandleCreateCurrency godoc
// @Summary Create a currency
// @Description Registers a new currency so rates can be stored for it.
// @Tags currencies
// @Accept json
// @Produce json
// @Param request body CurrencyResponse true "Currency to create"
// @Success 201 {object} CurrencyResponse
// @Failure 400 {object} ErrorResponse "Invalid currency payload"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /currencies [post]
func HandleCreateCurrency(repo repository.CurrencyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CurrencyResponse
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON"})
			return
		}
		if !service.IsValidCurrencyCode(req.Code) || req.Name == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "code (3 letters) and name are required"})
			return
		}

		c := repository.Currency{
			Code:     strings.ToUpper(req.Code),
			Name:     req.Name,
			Symbol:   req.Symbol,
			IsActive: true,
		}
		if err := repo.Create(r.Context(), c); err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			return
		}
		writeJSON(w, http.StatusCreated, CurrencyResponse{Code: c.Code, Name: c.Name, Symbol: c.Symbol, IsActive: c.IsActive})
	}
}

// HandleResolveRate godoc
// @Summary Resolve a single rate
// @Description Returns the rate for a pair on a date: from the store when present, fetched from a provider (with failover) and persisted otherwise.
// @Tags rates
// @Produce json
// @Param source query string true "Source currency code"
// @Param target query string true "Target currency code"
// @Param date query string false "Valuation date (YYYY-MM-DD, default today)"
// @Param provider query string false "Pin the fetch to one named provider"
// @Success 200 {object} RateResponse
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 404 {object} ErrorResponse "Rate or provider not found"
// @Failure 502 {object} ErrorResponse "All providers failed"
// @Router /rates/resolve [get]
func HandleResolveRate(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qp := r.URL.Query()
		date, ok := parseDateParam(w, qp.Get("date"), rates.Today())
		if !ok {
			return
		}

		quote, err := svc.Resolve(r.Context(), qp.Get("source"), qp.Get("target"), date, qp.Get("provider"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rateResponse(*quote))
	}
}

// HandleGetRatesForPeriod godoc
// @Summary Stored rates for a period
// @Description Returns already-resolved rates for a source currency over a date range, grouped by target currency. Never triggers a provider fetch.
// @Tags rates
// @Produce json
// @Param source query string true "Source currency code"
// @Param date_from query string true "Start date (YYYY-MM-DD)"
// @Param date_to query string true "End date (YYYY-MM-DD)"
// @Param targets query string false "Comma-separated target codes"
// @Success 200 {object} PeriodRatesResponse
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Router /rates [get]
func HandleGetRatesForPeriod(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qp := r.URL.Query()
		from, ok := parseDateParam(w, qp.Get("date_from"), time.Time{})
		if !ok {
			return
		}
		to, ok := parseDateParam(w, qp.Get("date_to"), time.Time{})
		if !ok {
			return
		}
		if from.IsZero() || to.IsZero() {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "date_from and date_to are required"})
			return
		}

		var targets []string
		if raw := qp.Get("targets"); raw != "" {
			targets = strings.Split(raw, ",")
		}

		quotes, err := svc.RatesForPeriod(r.Context(), qp.Get("source"), from, to, targets)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		grouped := make(map[string][]DatedRate)
		for _, q := range quotes {
			grouped[q.Target] = append(grouped[q.Target], DatedRate{
				Date: rates.FormatDate(q.Date),
				Rate: q.Rate.StringFixed(rates.RatePrecision),
			})
		}
		writeJSON(w, http.StatusOK, PeriodRatesResponse{
			Source:   strings.ToUpper(qp.Get("source")),
			DateFrom: rates.FormatDate(from),
			DateTo:   rates.FormatDate(to),
			Rates:    grouped,
		})
	}
}

// HandleConvert godoc
// @Summary Convert an amount
// @Description Converts an amount between currencies at the rate for the given date (default today), resolving the rate if not yet stored.
// @Tags rates
// @Produce json
// @Param source query string true "Source currency code"
// @Param target query string true "Target currency code"
// @Param amount query number true "Amount to convert"
// @Param date query string false "Valuation date (YYYY-MM-DD, default today)"
// @Success 200 {object} ConvertResponse
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 404 {object} ErrorResponse "Rate not found"
// @Failure 502 {object} ErrorResponse "All providers failed"
// @Router /convert [get]
func HandleConvert(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qp := r.URL.Query()

		amount, err := decimal.NewFromString(qp.Get("amount"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "amount must be a decimal number"})
			return
		}
		date, ok := parseDateParam(w, qp.Get("date"), time.Time{})
		if !ok {
			return
		}

		conv, err := svc.Convert(r.Context(), qp.Get("source"), qp.Get("target"), amount, date)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ConvertResponse{
			Source:          conv.Source,
			Target:          conv.Target,
			OriginalAmount:  conv.OriginalAmount.String(),
			ConvertedAmount: conv.ConvertedAmount.StringFixed(2),
			Rate:            conv.Rate.StringFixed(rates.RatePrecision),
			Date:            rates.FormatDate(conv.Date),
		})
	}
}

// HandleLoadHistorical godoc
// @Summary Trigger a historical bulk load
// @Description Enqueues a background job loading rates for a date range in batches. Returns immediately with a job id.
// @Tags rates
// @Accept json
// @Produce json
// @Param request body HistoricalLoadRequest true "Range to load"
// @Success 202 {object} HistoricalLoadResponse "Load job accepted"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/historical-load [post]
func HandleLoadHistorical(enq *worker.Enqueuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req HistoricalLoadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON"})
			return
		}
		if !service.IsValidCurrencyCode(req.Source) || !service.IsValidCurrencyCode(req.Target) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "source and target must be 3-letter currency codes"})
			return
		}
		start, err := rates.ParseDate(req.StartDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "start_date must be YYYY-MM-DD"})
			return
		}
		end, err := rates.ParseDate(req.EndDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "end_date must be YYYY-MM-DD"})
			return
		}
		if start.After(end) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "start_date must not be after end_date"})
			return
		}

		jobID := uuid.New().String()
		payload := worker.LoadHistoricalPayload{
			JobID:     jobID,
			Source:    strings.ToUpper(req.Source),
			Target:    strings.ToUpper(req.Target),
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Provider:  req.Provider,
			BatchSize: req.BatchSize,
		}
		if err := enq.EnqueueLoadHistorical(r.Context(), payload); err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to enqueue load job"})
			return
		}

		writeJSON(w, http.StatusAccepted, HistoricalLoadResponse{JobID: jobID})
	}
}

func rateResponse(q rates.Quote) RateResponse {
	return RateResponse{
		Source:   q.Source,
		Target:   q.Target,
		Date:     rates.FormatDate(q.Date),
		Rate:     q.Rate.StringFixed(rates.RatePrecision),
		Provider: q.Provider,
	}
}

// parseDateParam parses an optional YYYY-MM-DD query parameter, writing a
// 400 response itself when the value is malformed.
func parseDateParam(w http.ResponseWriter, raw string, def time.Time) (time.Time, bool) {
	if raw == "" {
		return def, true
	}
	d, err := rates.ParseDate(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "dates must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return d, true
}

// writeServiceError maps service-layer errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCurrency), errors.Is(err, rates.ErrInvalidRange):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrUnknownCurrency),
		errors.Is(err, service.ErrProviderNotFound),
		errors.Is(err, rates.ErrRateNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, rates.ErrAllProvidersExhausted), errors.Is(err, rates.ErrProviderUnavailable):
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
	}
}
