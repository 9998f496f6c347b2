// Package guard memoizes singleton construction per key.
package guard

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/danpasecinic/hilt/internal/hooks"
	"github.com/danpasecinic/hilt/internal/ledger"
)

type Factory func(ctx context.Context) (any, error)

// Recorder is notified of every successful construction before the instance
// is visible to any caller. A nil entry means the instance was rejected and
// must not be cached. A non-nil entry with an error means the instance is
// recorded but the requester must see the error.
type Recorder interface {
	Record(ctx context.Context, key string, instance any, declared hooks.Set) (*ledger.Entry, error)
}

// slot holds a recorded instance and the error its recording reported, if
// any. A slot with an error is never handed out.
type slot struct {
	instance any
	err      error
}

type Guard struct {
	recorder Recorder
	group    singleflight.Group

	mu    sync.RWMutex
	slots map[string]slot
}

func New(recorder Recorder) *Guard {
	return &Guard{
		recorder: recorder,
		slots:    make(map[string]slot),
	}
}

// GetOrCreate returns the cached instance for key or runs factory. Concurrent
// callers for the same uncached key block on a single construction and share
// its result. A failed factory caches nothing, so a later call retries.
//
// An instance whose recording reported an error stays cached and is never
// rebuilt, and every later call gets that same error.
func (g *Guard) GetOrCreate(ctx context.Context, key string, declared hooks.Set, factory Factory) (any, error) {
	if instance, ok, err := g.Load(key); ok {
		return instance, err
	}

	result, err, _ := g.group.Do(
		key, func() (any, error) {
			if instance, ok, err := g.Load(key); ok {
				return instance, err
			}

			instance, err := factory(ctx)
			if err != nil {
				return nil, err
			}

			entry, err := g.recorder.Record(ctx, key, instance, declared)
			if entry == nil {
				return nil, err
			}

			g.mu.Lock()
			g.slots[key] = slot{instance: instance, err: err}
			g.mu.Unlock()

			return instance, err
		},
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Load reports whether key has been constructed. A non-nil error is the
// failure its recording reported, in which case the instance is nil.
func (g *Guard) Load(key string) (any, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s, ok := g.slots[key]
	if !ok {
		return nil, false, nil
	}
	if s.err != nil {
		return nil, true, s.err
	}
	return s.instance, true, nil
}

// Get returns the constructed instance for key, including one whose
// recording failed.
func (g *Guard) Get(key string) (any, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s, ok := g.slots[key]
	return s.instance, ok
}

func (g *Guard) Has(key string) bool {
	_, ok := g.Get(key)
	return ok
}

func (g *Guard) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.slots)
}
