package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Farhan-slurrp/mycurrency/internal/rates"
)

// RateRepository defines DB operations for stored exchange rates. Rates are
// uniquely keyed by (source, target, valuation date) with upsert semantics:
// resolving the same key again overwrites the rate value.
type RateRepository interface {
	Get(ctx context.Context, source, target string, date time.Time) (*rates.Quote, error)
	Upsert(ctx context.Context, q rates.Quote) (*rates.Quote, error)
	// BulkUpsert writes all quotes inside one transaction and returns the
	// persisted records.
	BulkUpsert(ctx context.Context, quotes []rates.Quote) ([]rates.Quote, error)
	// ListForPeriod returns stored rates for a source currency over a date
	// range, optionally filtered to target codes, ordered by date then
	// target.
	ListForPeriod(ctx context.Context, source string, from, to time.Time, targets []string) ([]rates.Quote, error)
}

// PostgresRateRepository implements RateRepository on PostgreSQL.
type PostgresRateRepository struct {
	db *sql.DB
}

// NewPostgresRateRepository creates a new PostgresRateRepository.
func NewPostgresRateRepository(db *sql.DB) RateRepository {
	return &PostgresRateRepository{db: db}
}

const upsertRateQuery = `INSERT INTO exchange_rates (source_code, target_code, valuation_date, rate, provider)
          VALUES ($1, $2, $3, $4::numeric, $5)
          ON CONFLICT (source_code, target_code, valuation_date)
          DO UPDATE SET rate = EXCLUDED.rate, provider = EXCLUDED.provider, updated_at = NOW()
          RETURNING source_code, target_code, valuation_date, rate::text, provider`

// Get returns the stored rate for an exact key, or (nil, nil) when absent.
func (r *PostgresRateRepository) Get(ctx context.Context, source, target string, date time.Time) (*rates.Quote, error) {
	query := `SELECT source_code, target_code, valuation_date, rate::text, provider
              FROM exchange_rates
              WHERE source_code = $1 AND target_code = $2 AND valuation_date = $3`

	q, err := scanQuote(r.db.QueryRowContext(ctx, query, source, target, rates.Day(date)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return q, nil
}

// Upsert creates or overwrites the rate for the quote's key.
func (r *PostgresRateRepository) Upsert(ctx context.Context, q rates.Quote) (*rates.Quote, error) {
	saved, err := scanQuote(r.db.QueryRowContext(ctx, upsertRateQuery,
		q.Source, q.Target, q.Date, q.Rate.String(), q.Provider))
	if err != nil {
		return nil, fmt.Errorf("upsert rate %s/%s@%s: %w", q.Source, q.Target, rates.FormatDate(q.Date), err)
	}
	return saved, nil
}

// BulkUpsert writes every quote within a single transaction so a retried
// historical load either lands fully or not at all.
func (r *PostgresRateRepository) BulkUpsert(ctx context.Context, quotes []rates.Quote) ([]rates.Quote, error) {
	if len(quotes) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin bulk upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, upsertRateQuery)
	if err != nil {
		return nil, fmt.Errorf("prepare bulk upsert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // best-effort close

	saved := make([]rates.Quote, 0, len(quotes))
	for _, q := range quotes {
		row, err := scanQuote(stmt.QueryRowContext(ctx, q.Source, q.Target, q.Date, q.Rate.String(), q.Provider))
		if err != nil {
			return nil, fmt.Errorf("bulk upsert %s/%s@%s: %w", q.Source, q.Target, rates.FormatDate(q.Date), err)
		}
		saved = append(saved, *row)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bulk upsert: %w", err)
	}
	return saved, nil
}

// ListForPeriod returns stored rates for a source over [from, to].
func (r *PostgresRateRepository) ListForPeriod(ctx context.Context, source string, from, to time.Time, targets []string) ([]rates.Quote, error) {
	query := `SELECT source_code, target_code, valuation_date, rate::text, provider
              FROM exchange_rates
              WHERE source_code = $1 AND valuation_date >= $2 AND valuation_date <= $3`
	args := []any{source, rates.Day(from), rates.Day(to)}

	if len(targets) > 0 {
		query += ` AND target_code = ANY($4)`
		args = append(args, targets)
	}
	query += ` ORDER BY valuation_date, target_code`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // best-effort close

	var out []rates.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanQuote maps one exchange_rates row into a quote.
func scanQuote(row rowScanner) (*rates.Quote, error) {
	var q rates.Quote
	var rateStr string
	var day time.Time

	if err := row.Scan(&q.Source, &q.Target, &day, &rateStr, &q.Provider); err != nil {
		return nil, err
	}

	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return nil, fmt.Errorf("parse stored rate %q: %w", rateStr, err)
	}
	q.Rate = rate
	q.Date = rates.Day(day)
	return &q, nil
}
