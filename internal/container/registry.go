package container

import (
	"context"
	"slices"
	"sync"

	"github.com/danpasecinic/hilt/internal/hooks"
	"github.com/danpasecinic/hilt/internal/scope"
)

type ProviderFunc func(ctx context.Context, r Resolver) (any, error)

type DecoratorFunc func(ctx context.Context, r Resolver, instance any) (any, error)

type Resolver interface {
	Resolve(ctx context.Context, key string) (any, error)
	Has(key string) bool
}

type ServiceEntry struct {
	Key          string
	Provider     ProviderFunc
	Dependencies []string
	Scope        scope.Scope
	Hooks        hooks.Set

	// Alias entries forward to another key and are never recorded.
	Alias bool

	// Value entries were registered with a ready instance.
	Value bool
}

type Registry struct {
	mu       sync.RWMutex
	services map[string]*ServiceEntry
}

func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]*ServiceEntry),
	}
}

func (r *Registry) Put(entry *ServiceEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.services[entry.Key] = entry
}

func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.services[key]
	return exists
}

func (r *Registry) Get(key string) (*ServiceEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.services[key]
	return entry, exists
}

func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.services, key)
}

func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.services))
	for key := range r.services {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.services)
}
