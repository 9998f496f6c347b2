package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/danpasecinic/hilt/internal/reflect"
	"github.com/danpasecinic/hilt/internal/scope"
)

func (c *Container) Resolve(ctx context.Context, key string) (any, error) {
	start := time.Now()
	instance, err := c.resolve(ctx, key)
	c.resolved(key, time.Since(start), err)
	return instance, err
}

func (c *Container) resolve(ctx context.Context, key string) (any, error) {
	if instance, ok, err := c.guard.Load(key); ok {
		return instance, err
	}

	entry, exists := c.registry.Get(key)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	ctx, err := withChain(ctx, key)
	if err != nil {
		return nil, err
	}

	if entry.Alias {
		return entry.Provider(ctx, c)
	}

	switch entry.Scope {
	case scope.Transient:
		return c.construct(ctx, key, entry)
	case scope.Request:
		return c.resolveRequest(ctx, key, entry)
	default:
		return c.guard.GetOrCreate(
			ctx, key, entry.Hooks, func(ctx context.Context) (any, error) {
				return c.construct(ctx, key, entry)
			},
		)
	}
}

func (c *Container) resolved(key string, duration time.Duration, err error) {
	for _, observe := range c.onResolve {
		observe(key, duration, err)
	}
}

func (c *Container) construct(ctx context.Context, key string, entry *ServiceEntry) (any, error) {
	for _, dep := range entry.Dependencies {
		if _, err := c.Resolve(ctx, dep); err != nil {
			return nil, fmt.Errorf("failed to resolve dependency %s for %s: %w", dep, key, err)
		}
	}

	if entry.Provider == nil {
		return nil, fmt.Errorf("%w: %s has no provider", ErrNotFound, key)
	}

	instance, err := entry.Provider(ctx, c)
	if err != nil {
		return nil, &ProviderError{Key: key, Cause: err}
	}
	if reflect.IsNil(instance) {
		return nil, fmt.Errorf("%w: %s", ErrNilInstance, key)
	}

	return c.decorators.apply(ctx, c, key, instance)
}

type requestScopeKey struct{}

// RequestScope caches request-scoped instances for the lifetime of one
// context. Request instances never enter the ledger.
type RequestScope struct {
	mu        sync.Mutex
	instances map[string]any
}

func NewRequestScope() *RequestScope {
	return &RequestScope{
		instances: make(map[string]any),
	}
}

func (rs *RequestScope) Get(key string) (any, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	instance, ok := rs.instances[key]
	return instance, ok
}

func (rs *RequestScope) Set(key string, instance any) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.instances[key] = instance
}

func WithRequestScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestScopeKey{}, NewRequestScope())
}

func requestScopeFrom(ctx context.Context) *RequestScope {
	rs, _ := ctx.Value(requestScopeKey{}).(*RequestScope)
	return rs
}

func (c *Container) resolveRequest(ctx context.Context, key string, entry *ServiceEntry) (any, error) {
	rs := requestScopeFrom(ctx)
	if rs == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRequestScope, key)
	}

	if instance, ok := rs.Get(key); ok {
		return instance, nil
	}

	instance, err := c.construct(ctx, key, entry)
	if err != nil {
		return nil, err
	}

	rs.Set(key, instance)
	return instance, nil
}
