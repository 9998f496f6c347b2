// Package hooks decides, once per constructed instance, which start and stop
// callbacks it carries.
package hooks

import (
	"context"

	"github.com/danpasecinic/hilt/internal/ledger"
)

type Hook = ledger.Hook

type Starter interface {
	Start(ctx context.Context) error
}

type Stopper interface {
	Stop(ctx context.Context) error
}

// Lifecycle collects hooks a component wants to contribute beyond its own
// Start and Stop methods.
type Lifecycle struct {
	onStart []Hook
	onStop  []Hook
}

func (l *Lifecycle) OnStart(hook Hook) {
	l.onStart = append(l.onStart, hook)
}

func (l *Lifecycle) OnStop(hook Hook) {
	l.onStop = append(l.onStop, hook)
}

func (l *Lifecycle) Append(other *Lifecycle) {
	if other == nil {
		return
	}
	l.onStart = append(l.onStart, other.onStart...)
	l.onStop = append(l.onStop, other.onStop...)
}

type LifecycleAware interface {
	Lifecycle() *Lifecycle
}

// Set is the resolved hook list for one component.
type Set struct {
	OnStart []Hook
	OnStop  []Hook

	// SkipCapabilities disables Starter, Stopper and LifecycleAware checks.
	SkipCapabilities bool
}

func (s Set) Empty() bool {
	return len(s.OnStart) == 0 && len(s.OnStop) == 0
}

type Registry struct{}

func NewRegistry() *Registry {
	return &Registry{}
}

// Resolve returns declared hooks first, then LifecycleAware hooks, then the
// instance's own Start/Stop methods. Method sets already hold the most derived
// definition, so an overridden Start on an embedding type appears once.
func (r *Registry) Resolve(instance any, declared Set) Set {
	resolved := Set{
		OnStart: append([]Hook(nil), declared.OnStart...),
		OnStop:  append([]Hook(nil), declared.OnStop...),
	}

	if instance == nil || declared.SkipCapabilities {
		return resolved
	}

	if aware, ok := instance.(LifecycleAware); ok {
		if lc := aware.Lifecycle(); lc != nil {
			resolved.OnStart = append(resolved.OnStart, lc.onStart...)
			resolved.OnStop = append(resolved.OnStop, lc.onStop...)
		}
	}

	if s, ok := instance.(Starter); ok {
		resolved.OnStart = append(resolved.OnStart, s.Start)
	}
	if s, ok := instance.(Stopper); ok {
		resolved.OnStop = append(resolved.OnStop, s.Stop)
	}

	return resolved
}
