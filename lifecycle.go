package hilt

import (
	"github.com/danpasecinic/hilt/internal/hooks"
	"github.com/danpasecinic/hilt/internal/lifecycle"
)

// Hook is a start or stop callback. The context carries the configured start
// or shutdown deadline.
type Hook = hooks.Hook

// Starter is implemented by components whose Start method should run when
// the container starts.
type Starter = hooks.Starter

type Stopper = hooks.Stopper

// Lifecycle collects extra hooks for a component that implements
// LifecycleAware.
type Lifecycle = hooks.Lifecycle

type LifecycleAware = hooks.LifecycleAware

type State = lifecycle.State

const (
	NotStarted = lifecycle.NotStarted
	Started    = lifecycle.Started
	Stopped    = lifecycle.Stopped
)

// LedgerEntry is one recorded singleton.
type LedgerEntry struct {
	Key      string
	Seq      uint64
	OnStart  int
	OnStop   int
	Instance any
}

// Ledger lists every recorded singleton in construction order. Start hooks
// run in this order and stop hooks in reverse.
func (c *Container) Ledger() []LedgerEntry {
	entries := c.internal.Ledger()
	out := make([]LedgerEntry, len(entries))
	for i, e := range entries {
		out[i] = LedgerEntry{
			Key:      e.Key,
			Seq:      e.Seq,
			OnStart:  len(e.OnStart),
			OnStop:   len(e.OnStop),
			Instance: e.Instance,
		}
	}
	return out
}
