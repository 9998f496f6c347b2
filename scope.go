package hilt

import (
	"context"

	"github.com/danpasecinic/hilt/internal/container"
	"github.com/danpasecinic/hilt/internal/scope"
)

type Scope = scope.Scope

const (
	Singleton = scope.Singleton
	Transient = scope.Transient
	Request   = scope.Request
)

// WithRequestScope returns a context that caches Request scoped instances
// until it is discarded.
func WithRequestScope(ctx context.Context) context.Context {
	return container.WithRequestScope(ctx)
}
