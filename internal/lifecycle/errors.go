package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

var ErrStopped = errors.New("lifecycle is stopping or stopped")

type TransitionError struct {
	From   State
	To     State
	Reason string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("invalid lifecycle transition %s -> %s", e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

type Phase string

const (
	PhaseStart Phase = "start"
	PhaseStop  Phase = "stop"
)

type HookError struct {
	Phase     Phase
	Component string
	Seq       uint64
	Index     int
	Cause     error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook %d for %s failed: %v", e.Phase, e.Index, e.Component, e.Cause)
}

func (e *HookError) Unwrap() error {
	return e.Cause
}

// StopError aggregates every stop hook failure from one Stop walk, in the
// order they occurred.
type StopError struct {
	Failures []*HookError
}

func (e *StopError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d stop hook(s) failed", len(e.Failures))
	for i, f := range e.Failures {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(f.Error())
	}
	return b.String()
}

func (e *StopError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

func (e *StopError) Components() []string {
	seen := make(map[string]bool, len(e.Failures))
	var components []string
	for _, f := range e.Failures {
		if !seen[f.Component] {
			seen[f.Component] = true
			components = append(components, f.Component)
		}
	}
	return components
}
