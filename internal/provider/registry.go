package provider

import (
	"fmt"
	"sync"

	"github.com/Farhan-slurrp/mycurrency/internal/rates"
)

// Factory builds an adapter instance from the opaque config map stored on a
// provider record.
type Factory func(cfg map[string]any) (RateProvider, error)

// Registry maps adapter identifiers to factories. It is populated once at
// process start by the composition root; unknown identifiers are a
// deployment error, not an occasion for reflection.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds an adapter identifier to its factory, replacing any
// previous binding.
func (r *Registry) Register(identifier string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[identifier] = factory
}

// New instantiates the adapter named by identifier with the given config.
// Fails with rates.ErrAdapterConfig for unknown identifiers.
func (r *Registry) New(identifier string, cfg map[string]any) (RateProvider, error) {
	r.mu.RLock()
	factory, ok := r.factories[identifier]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown adapter %q", rates.ErrAdapterConfig, identifier)
	}
	p, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: adapter %q: %v", rates.ErrAdapterConfig, identifier, err)
	}
	return p, nil
}

// Config map accessors. Provider config arrives as decoded JSON, so numbers
// show up as float64 and everything is optional.

func cfgString(cfg map[string]any, key, def string) string {
	if v, ok := cfg[key].(string); ok && v != "" {
		return v
	}
	return def
}

func cfgFloat(cfg map[string]any, key string, def float64) float64 {
	switch v := cfg[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

func cfgInt(cfg map[string]any, key string, def int) int {
	switch v := cfg[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}
