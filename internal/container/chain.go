package container

import (
	"context"
	"slices"
)

type chainKey struct{}

// The resolution chain lives in the context so cycle detection is per call
// path. Two goroutines resolving the same key concurrently is not a cycle.
func chainFrom(ctx context.Context) []string {
	chain, _ := ctx.Value(chainKey{}).([]string)
	return chain
}

func withChain(ctx context.Context, key string) (context.Context, error) {
	chain := chainFrom(ctx)
	if slices.Contains(chain, key) {
		cycle := append(slices.Clone(chain), key)
		return ctx, &CycleError{Chain: cycle}
	}

	next := make([]string, len(chain)+1)
	copy(next, chain)
	next[len(chain)] = key
	return context.WithValue(ctx, chainKey{}, next), nil
}
