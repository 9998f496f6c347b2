package container

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/danpasecinic/hilt/internal/graph"
	"github.com/danpasecinic/hilt/internal/guard"
	"github.com/danpasecinic/hilt/internal/hooks"
	"github.com/danpasecinic/hilt/internal/ledger"
	"github.com/danpasecinic/hilt/internal/lifecycle"
	"github.com/danpasecinic/hilt/internal/reflect"
	"github.com/danpasecinic/hilt/internal/scope"
)

type ResolveObserver func(key string, duration time.Duration, err error)

type ProvideObserver func(key string)

type Config struct {
	Logger          *slog.Logger
	Tracer          trace.Tracer
	Eager           bool
	StartTimeout    time.Duration
	ShutdownTimeout time.Duration

	OnResolve   []ResolveObserver
	OnProvide   []ProvideObserver
	OnConstruct []lifecycle.RecordObserver
	OnStart     []lifecycle.Observer
	OnStop      []lifecycle.Observer
}

type Container struct {
	registry  *Registry
	graph     *graph.Graph
	guard     *guard.Guard
	lifecycle *lifecycle.Service
	logger    *slog.Logger
	eager     bool

	decorators *decorators

	onResolve []ResolveObserver
	onProvide []ProvideObserver
}

func New(cfg *Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	svc := lifecycle.New(
		ledger.New(), lifecycle.Config{
			Logger:       logger,
			Tracer:       cfg.Tracer,
			Registry:     hooks.NewRegistry(),
			StartTimeout: cfg.StartTimeout,
			StopTimeout:  cfg.ShutdownTimeout,
			OnStart:      cfg.OnStart,
			OnStop:       cfg.OnStop,
			OnRecord:     cfg.OnConstruct,
		},
	)

	return &Container{
		registry:   NewRegistry(),
		graph:      graph.New(),
		guard:      guard.New(svc),
		lifecycle:  svc,
		logger:     logger,
		eager:      cfg.Eager,
		decorators: newDecorators(),
		onResolve:  cfg.OnResolve,
		onProvide:  cfg.OnProvide,
	}
}

func (c *Container) Register(key string, provider ProviderFunc, dependencies []string, s scope.Scope, h hooks.Set) error {
	return c.register(
		&ServiceEntry{
			Key:          key,
			Provider:     provider,
			Dependencies: dependencies,
			Scope:        s,
			Hooks:        h,
		},
	)
}

// RegisterValue registers a ready instance. Like any singleton it is
// recorded when first resolved, so its hooks follow dependency order.
func (c *Container) RegisterValue(key string, value any, h hooks.Set) error {
	if reflect.IsNil(value) {
		return fmt.Errorf("%w: %s", ErrNilInstance, key)
	}

	return c.register(
		&ServiceEntry{
			Key: key,
			Provider: func(context.Context, Resolver) (any, error) {
				return value, nil
			},
			Scope: scope.Singleton,
			Hooks: h,
			Value: true,
		},
	)
}

// RegisterAlias makes key resolve to whatever target resolves to.
func (c *Container) RegisterAlias(key, target string) error {
	return c.register(
		&ServiceEntry{
			Key: key,
			Provider: func(ctx context.Context, r Resolver) (any, error) {
				return r.Resolve(ctx, target)
			},
			Dependencies: []string{target},
			Alias:        true,
		},
	)
}

func (c *Container) register(entry *ServiceEntry) error {
	if !entry.Scope.Tracked() && !entry.Hooks.Empty() {
		return fmt.Errorf(
			"%w: lifecycle hooks on %s require singleton scope, got %s", ErrInvalidOption, entry.Key, entry.Scope,
		)
	}

	if c.registry.Has(entry.Key) {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, entry.Key)
	}

	if err := c.addNode(entry.Key, entry.Dependencies); err != nil {
		return err
	}

	c.registry.Put(entry)
	c.logger.Debug("registered service", "service", entry.Key, "scope", entry.Scope.String())
	for _, observe := range c.onProvide {
		observe(entry.Key)
	}
	return nil
}

// Replace swaps the provider of a key that has not been constructed yet. A
// constructed instance is already in the ledger and cannot be taken back.
func (c *Container) Replace(key string, provider ProviderFunc, dependencies []string, s scope.Scope, h hooks.Set) error {
	if c.guard.Has(key) {
		return fmt.Errorf("%w: %s", ErrAlreadyConstructed, key)
	}

	previous, existed := c.registry.Get(key)
	c.registry.Remove(key)
	c.graph.RemoveNode(key)

	if err := c.Register(key, provider, dependencies, s, h); err != nil {
		c.restore(previous, existed)
		return err
	}
	return nil
}

func (c *Container) ReplaceValue(key string, value any, h hooks.Set) error {
	if c.guard.Has(key) {
		return fmt.Errorf("%w: %s", ErrAlreadyConstructed, key)
	}

	previous, existed := c.registry.Get(key)
	c.registry.Remove(key)
	c.graph.RemoveNode(key)

	if err := c.RegisterValue(key, value, h); err != nil {
		c.restore(previous, existed)
		return err
	}
	return nil
}

func (c *Container) restore(previous *ServiceEntry, existed bool) {
	if !existed {
		return
	}
	c.registry.Put(previous)
	c.graph.AddNode(previous.Key, previous.Dependencies)
}

func (c *Container) addNode(key string, dependencies []string) error {
	c.graph.AddNode(key, dependencies)

	if c.graph.HasCycle() {
		path := c.graph.FindCyclePath(key)
		c.graph.RemoveNode(key)
		return &CycleError{Chain: path}
	}
	return nil
}

func (c *Container) Has(key string) bool {
	return c.registry.Has(key)
}

func (c *Container) Entry(key string) (*ServiceEntry, bool) {
	return c.registry.Get(key)
}

func (c *Container) Keys() []string {
	return c.registry.Keys()
}

func (c *Container) Size() int {
	return c.registry.Size()
}

// GetInstance returns the constructed singleton for key without constructing it.
func (c *Container) GetInstance(key string) (any, bool) {
	return c.guard.Get(key)
}

func (c *Container) Validate() error {
	if missing := c.graph.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: missing dependencies %v", ErrNotFound, missing)
	}

	if cycles := c.graph.Cycles(); len(cycles) > 0 {
		return &CycleError{Chain: cycles[0]}
	}

	return nil
}

func (c *Container) Graph() *graph.Graph {
	return c.graph.Clone()
}

func (c *Container) Ledger() []*ledger.Entry {
	return c.lifecycle.Ledger().Entries()
}

func (c *Container) Logger() *slog.Logger {
	return c.logger
}
