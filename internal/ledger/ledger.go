// Package ledger records constructed components in the order their
// construction completed.
package ledger

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

type Hook func(ctx context.Context) error

type Entry struct {
	Key      string
	Instance any
	OnStart  []Hook
	OnStop   []Hook
	Seq      uint64
}

func (e *Entry) HasHooks() bool {
	return len(e.OnStart) > 0 || len(e.OnStop) > 0
}

type DuplicateError struct {
	Key      string
	Previous string
	Seq      uint64
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf(
		"instance for %s already recorded as %s (seq %d)", e.Key, e.Previous, e.Seq,
	)
}

// Ledger is append-only. Seq numbers start at 1 and are assigned under the
// same lock as the append, so ledger order is construction completion order.
type Ledger struct {
	mu       sync.Mutex
	entries  []*Entry
	identity map[identity]*Entry
	next     uint64
}

type identity struct {
	typ reflect.Type
	ptr uintptr
}

func New() *Ledger {
	return &Ledger{
		identity: make(map[identity]*Entry),
		next:     1,
	}
}

func (l *Ledger) Append(key string, instance any, onStart, onStop []Hook) (*Entry, error) {
	id, tracked := identityOf(instance)

	l.mu.Lock()
	defer l.mu.Unlock()

	if tracked {
		if prev, exists := l.identity[id]; exists {
			return nil, &DuplicateError{Key: key, Previous: prev.Key, Seq: prev.Seq}
		}
	}

	entry := &Entry{
		Key:      key,
		Instance: instance,
		OnStart:  onStart,
		OnStop:   onStop,
		Seq:      l.next,
	}
	l.next++
	l.entries = append(l.entries, entry)

	if tracked {
		l.identity[id] = entry
	}

	return entry, nil
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}

// At returns the i-th entry in ascending Seq order.
func (l *Ledger) At(i int) (*Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i < 0 || i >= len(l.entries) {
		return nil, false
	}
	return l.entries[i], true
}

func (l *Ledger) Last() (*Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return nil, false
	}
	return l.entries[len(l.entries)-1], true
}

func (l *Ledger) Entries() []*Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]*Entry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

func (l *Ledger) Keys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	keys := make([]string, len(l.entries))
	for i, e := range l.entries {
		keys[i] = e.Key
	}
	return keys
}

func (l *Ledger) Lookup(key string) (*Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries {
		if e.Key == key {
			return e, true
		}
	}
	return nil, false
}

// identityOf only tracks reference kinds. Plain values have no identity, and
// pointers to zero-size types may share an address.
func identityOf(instance any) (identity, bool) {
	if instance == nil {
		return identity{}, false
	}

	v := reflect.ValueOf(instance)
	t := v.Type()

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || t.Elem().Size() == 0 {
			return identity{}, false
		}
	case reflect.Map, reflect.Chan, reflect.UnsafePointer:
		if v.IsNil() {
			return identity{}, false
		}
	default:
		return identity{}, false
	}

	return identity{typ: t, ptr: v.Pointer()}, true
}
