package app

import (
	"fmt"

	"github.com/avierno/envauth/internal/acquire"
	"github.com/avierno/envauth/internal/coordinator"
	"github.com/avierno/envauth/internal/environment"
	"github.com/avierno/envauth/internal/identity"
	"github.com/avierno/envauth/internal/tokencache"
)

// Option configures App construction.
type Option func(*options)

type options struct {
	providerOpts []identity.AADOption
}

// WithProviderOptions passes options through to the identity provider,
// letting callers own the interactive and device-code prompt mechanisms.
func WithProviderOptions(opts ...identity.AADOption) Option {
	return func(o *options) {
		o.providerOpts = append(o.providerOpts, opts...)
	}
}

// App wires the secret store, identity provider, acquisition strategies and
// coordinator from configuration.
type App struct {
	cfg         *Config
	coordinator *coordinator.Coordinator
}

// New creates a new App instance. No I/O is performed; secret reads and
// provider calls are deferred to the first token request.
func New(cfg *Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	store, err := cfg.Secrets.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create secret store: %w", err)
	}

	provider := identity.NewAADProvider(o.providerOpts...)
	cache := tokencache.New()
	selector := acquire.NewSelector(provider, store, cfg.Interactive.Timeout)
	gate := acquire.NewSilentGate(provider, cache)

	coord, err := coordinator.New(selector, gate, cache, store,
		coordinator.WithSafetyMargin(cfg.Cache.SafetyMargin))
	if err != nil {
		return nil, fmt.Errorf("failed to create coordinator: %w", err)
	}

	return &App{
		cfg:         cfg,
		coordinator: coord,
	}, nil
}

// Coordinator returns the token lifecycle coordinator.
func (a *App) Coordinator() *coordinator.Coordinator {
	return a.coordinator
}

// Environment returns the configured environment with the given id.
func (a *App) Environment(id string) (*environment.Environment, error) {
	return a.cfg.Environment(id)
}
