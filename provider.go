package hilt

import (
	"context"

	"github.com/danpasecinic/hilt/internal/container"
	"github.com/danpasecinic/hilt/internal/hooks"
	"github.com/danpasecinic/hilt/internal/reflect"
	"github.com/danpasecinic/hilt/internal/scope"
)

type Provider[T any] func(ctx context.Context, r Resolver) (T, error)

type ProviderOption func(*providerConfig)

type providerConfig struct {
	name             string
	dependencies     []string
	onStart          []Hook
	onStop           []Hook
	scope            scope.Scope
	skipCapabilities bool
}

func newProviderConfig(opts []ProviderOption) *providerConfig {
	cfg := &providerConfig{scope: scope.Singleton}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (cfg *providerConfig) hookSet() hooks.Set {
	return hooks.Set{
		OnStart:          cfg.onStart,
		OnStop:           cfg.onStop,
		SkipCapabilities: cfg.skipCapabilities,
	}
}

func (cfg *providerConfig) hasHooks() bool {
	return len(cfg.onStart) > 0 || len(cfg.onStop) > 0
}

func adapt[T any](c *Container, provider Provider[T]) container.ProviderFunc {
	resolver := &resolverAdapter{container: c}
	return func(ctx context.Context, _ container.Resolver) (any, error) {
		return provider(ctx, resolver)
	}
}

// Provide registers a provider for T. Singletons are built at most once, on
// first resolution, and their hooks run in the order the singletons were
// built.
func Provide[T any](c *Container, provider Provider[T], opts ...ProviderOption) error {
	cfg := newProviderConfig(opts)
	key := reflect.TypeKeyNamed[T](cfg.name)

	err := c.internal.Register(key, adapt(c, provider), cfg.dependencies, cfg.scope, cfg.hookSet())
	return wrap(key, err)
}

// ProvideValue registers an already built instance. It is recorded the first
// time it is resolved, like any other singleton.
func ProvideValue[T any](c *Container, value T, opts ...ProviderOption) error {
	cfg := newProviderConfig(opts)
	key := reflect.TypeKeyNamed[T](cfg.name)

	if cfg.scope != scope.Singleton {
		return errInvalidOption(key, "values are always singletons")
	}

	return wrap(key, c.internal.RegisterValue(key, value, cfg.hookSet()))
}

func ProvideNamed[T any](c *Container, name string, provider Provider[T], opts ...ProviderOption) error {
	opts = append(opts, WithName(name))
	return Provide(c, provider, opts...)
}

func ProvideNamedValue[T any](c *Container, name string, value T, opts ...ProviderOption) error {
	opts = append(opts, WithName(name))
	return ProvideValue(c, value, opts...)
}

func MustProvide[T any](c *Container, provider Provider[T], opts ...ProviderOption) {
	mustDo(Provide(c, provider, opts...))
}

func MustProvideValue[T any](c *Container, value T, opts ...ProviderOption) {
	mustDo(ProvideValue(c, value, opts...))
}

func WithName(name string) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.name = name
	}
}

// WithDependencies declares keys that must be constructed before this
// provider runs. Declared dependencies also take part in cycle detection at
// registration.
func WithDependencies(deps ...string) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.dependencies = append(cfg.dependencies, deps...)
	}
}

func WithOnStart(hook Hook) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.onStart = append(cfg.onStart, hook)
	}
}

func WithOnStop(hook Hook) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.onStop = append(cfg.onStop, hook)
	}
}

// WithScope sets the instance scope. Lifecycle hooks are only allowed on
// singletons.
func WithScope(s Scope) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.scope = s
	}
}

// WithoutCapabilityHooks stops the container from treating the instance's
// Start, Stop and Lifecycle methods as hooks. Declared hooks still run.
func WithoutCapabilityHooks() ProviderOption {
	return func(cfg *providerConfig) {
		cfg.skipCapabilities = true
	}
}
