package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Currency is a stored currency record.
type Currency struct {
	Code     string
	Name     string
	Symbol   string
	IsActive bool
}

// CurrencyRepository defines DB operations for currencies.
type CurrencyRepository interface {
	GetByCode(ctx context.Context, code string) (*Currency, error)
	List(ctx context.Context, activeOnly bool) ([]Currency, error)
	// KnownCodes reports which of the given codes exist, regardless of the
	// active flag. Used to filter bulk rate loads.
	KnownCodes(ctx context.Context, codes []string) (map[string]bool, error)
	Create(ctx context.Context, c Currency) error
}

// PostgresCurrencyRepository implements CurrencyRepository on PostgreSQL.
type PostgresCurrencyRepository struct {
	db *sql.DB
}

// NewPostgresCurrencyRepository creates a new PostgresCurrencyRepository.
func NewPostgresCurrencyRepository(db *sql.DB) CurrencyRepository {
	return &PostgresCurrencyRepository{db: db}
}

// GetByCode returns the currency with the given code, or (nil, nil) when it
// does not exist.
func (r *PostgresCurrencyRepository) GetByCode(ctx context.Context, code string) (*Currency, error) {
	query := `SELECT code, name, symbol, is_active FROM currencies WHERE code = $1`

	var c Currency
	err := r.db.QueryRowContext(ctx, query, code).Scan(&c.Code, &c.Name, &c.Symbol, &c.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// List returns all currencies ordered by code.
func (r *PostgresCurrencyRepository) List(ctx context.Context, activeOnly bool) ([]Currency, error) {
	query := `SELECT code, name, symbol, is_active FROM currencies ORDER BY code`
	if activeOnly {
		query = `SELECT code, name, symbol, is_active FROM currencies WHERE is_active ORDER BY code`
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // best-effort close

	var out []Currency
	for rows.Next() {
		var c Currency
		if err := rows.Scan(&c.Code, &c.Name, &c.Symbol, &c.IsActive); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// KnownCodes returns the subset of codes present in the currencies table.
func (r *PostgresCurrencyRepository) KnownCodes(ctx context.Context, codes []string) (map[string]bool, error) {
	known := make(map[string]bool, len(codes))
	if len(codes) == 0 {
		return known, nil
	}

	query := `SELECT code FROM currencies WHERE code = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // best-effort close

	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		known[code] = true
	}
	return known, rows.Err()
}

// Create inserts a new currency record.
func (r *PostgresCurrencyRepository) Create(ctx context.Context, c Currency) error {
	query := `INSERT INTO currencies (code, name, symbol, is_active) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, c.Code, c.Name, c.Symbol, c.IsActive); err != nil {
		return fmt.Errorf("create currency %s: %w", c.Code, err)
	}
	return nil
}
