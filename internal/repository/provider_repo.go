package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Farhan-slurrp/mycurrency/internal/failover"
)

// PostgresProviderRepository implements failover.ConfigStore on PostgreSQL.
type PostgresProviderRepository struct {
	db *sql.DB
}

// NewPostgresProviderRepository creates a new PostgresProviderRepository.
func NewPostgresProviderRepository(db *sql.DB) *PostgresProviderRepository {
	return &PostgresProviderRepository{db: db}
}

var _ failover.ConfigStore = (*PostgresProviderRepository)(nil)

// ListActiveProviders returns active providers ordered ascending by
// priority, then name.
func (r *PostgresProviderRepository) ListActiveProviders(ctx context.Context) ([]failover.ProviderConfig, error) {
	query := `SELECT name, adapter, priority, is_active, config
              FROM providers
              WHERE is_active
              ORDER BY priority, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // best-effort close

	var out []failover.ProviderConfig
	for rows.Next() {
		cfg, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cfg)
	}
	return out, rows.Err()
}

// GetActiveProvider returns the active provider with the given name
// (case-insensitive), or (nil, nil) when no such provider exists.
func (r *PostgresProviderRepository) GetActiveProvider(ctx context.Context, name string) (*failover.ProviderConfig, error) {
	query := `SELECT name, adapter, priority, is_active, config
              FROM providers
              WHERE lower(name) = lower($1) AND is_active`

	cfg, err := scanProvider(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return cfg, nil
}

func scanProvider(row rowScanner) (*failover.ProviderConfig, error) {
	var cfg failover.ProviderConfig
	var rawConfig []byte

	if err := row.Scan(&cfg.Name, &cfg.Adapter, &cfg.Priority, &cfg.IsActive, &rawConfig); err != nil {
		return nil, err
	}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg.Config); err != nil {
			return nil, fmt.Errorf("decode provider %s config: %w", cfg.Name, err)
		}
	}
	return &cfg, nil
}
