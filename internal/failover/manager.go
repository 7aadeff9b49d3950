// Package failover executes provider operations against a prioritized list
// of configured backends, advancing to the next provider on contract errors.
package failover

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Farhan-slurrp/mycurrency/internal/provider"
	"github.com/Farhan-slurrp/mycurrency/internal/rates"
)

// ProviderConfig is a persisted provider row, consumed read-only. Ordering
// for failover is ascending priority, then name, filtered to active rows;
// the store is responsible for that ordering.
type ProviderConfig struct {
	Name     string
	Adapter  string
	Priority int
	IsActive bool
	Config   map[string]any
}

// ConfigStore lists the provider configurations the manager fails over
// across. Implemented by the repository layer.
type ConfigStore interface {
	ListActiveProviders(ctx context.Context) ([]ProviderConfig, error)
	GetActiveProvider(ctx context.Context, name string) (*ProviderConfig, error)
}

// Operation is a single provider call. Implementations capture their result
// in a closure; the manager only inspects the error.
type Operation func(ctx context.Context, p provider.RateProvider) error

// Manager holds no business state beyond an adapter-instance cache keyed by
// (adapter identifier, serialized config), so adapters and their connection
// setup are not rebuilt on every call.
type Manager struct {
	store    ConfigStore
	registry *provider.Registry
	log      *zap.SugaredLogger

	mu       sync.Mutex
	adapters map[string]provider.RateProvider
}

// NewManager creates a failover manager over the given config store and
// adapter registry.
func NewManager(store ConfigStore, registry *provider.Registry, log *zap.SugaredLogger) *Manager {
	return &Manager{
		store:    store,
		registry: registry,
		log:      log,
		adapters: make(map[string]provider.RateProvider),
	}
}

// AdapterForProvider resolves and instantiates the adapter for one provider
// row, reusing a cached instance when the identifier and config match.
// Fails with rates.ErrAdapterConfig when the adapter cannot be resolved.
func (m *Manager) AdapterForProvider(cfg ProviderConfig) (provider.RateProvider, error) {
	key := adapterCacheKey(cfg)

	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.adapters[key]; ok {
		return p, nil
	}

	p, err := m.registry.New(cfg.Adapter, cfg.Config)
	if err != nil {
		return nil, err
	}
	m.adapters[key] = p
	return p, nil
}

// InvalidateAdapters drops every cached adapter instance. Called when
// provider configuration changes.
func (m *Manager) InvalidateAdapters() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adapters = make(map[string]provider.RateProvider)
}

// ExecuteWithFailover runs op against each active provider in priority order
// until one succeeds. Contract errors (unavailable, rate not found) advance
// to the next provider; anything else indicates a caller or deployment error
// and propagates immediately. When no provider succeeds the aggregate
// rates.ErrAllProvidersExhausted carries the last provider's error.
func (m *Manager) ExecuteWithFailover(ctx context.Context, op Operation) error {
	configs, err := m.store.ListActiveProviders(ctx)
	if err != nil {
		return fmt.Errorf("list active providers: %w", err)
	}
	if len(configs) == 0 {
		return fmt.Errorf("%w: no active providers configured", rates.ErrAllProvidersExhausted)
	}

	var lastErr error
	for _, cfg := range configs {
		adapter, err := m.AdapterForProvider(cfg)
		if err != nil {
			return err
		}

		m.log.Infow("Trying provider", "provider", cfg.Name, "priority", cfg.Priority)
		err = op(ctx, adapter)
		if err == nil {
			m.log.Infow("Provider succeeded", "provider", cfg.Name)
			return nil
		}
		if !rates.IsContractError(err) {
			return err
		}

		m.log.Warnw("Provider failed, trying next", "provider", cfg.Name, "error", err)
		lastErr = err
	}

	return fmt.Errorf("%w: last error: %v", rates.ErrAllProvidersExhausted, lastErr)
}

// adapterCacheKey serializes identifier plus config into a stable cache key.
// json.Marshal sorts map keys, so equal configs always produce equal keys.
func adapterCacheKey(cfg ProviderConfig) string {
	raw, err := json.Marshal(cfg.Config)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", cfg.Config))
	}
	return cfg.Adapter + ":" + string(raw)
}
