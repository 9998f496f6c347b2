package container

import (
	"context"
	"fmt"

	"github.com/danpasecinic/hilt/internal/lifecycle"
	"github.com/danpasecinic/hilt/internal/scope"
)

func (c *Container) State() lifecycle.State {
	return c.lifecycle.State()
}

// Start constructs every singleton when the container is eager, then runs the
// start hooks in construction order. A lazy container starts only what has
// been constructed so far; later constructions start as they happen.
func (c *Container) Start(ctx context.Context) error {
	if c.eager && c.lifecycle.State() == lifecycle.NotStarted {
		if err := c.constructAll(ctx); err != nil {
			return err
		}
	}

	return c.lifecycle.Start(ctx)
}

func (c *Container) Stop(ctx context.Context) error {
	return c.lifecycle.Stop(ctx)
}

func (c *Container) constructAll(ctx context.Context) error {
	order, err := c.graph.StartupOrder()
	if err != nil {
		return fmt.Errorf("failed to determine construction order: %w", err)
	}

	for _, key := range order {
		entry, exists := c.registry.Get(key)
		if !exists || entry.Alias || entry.Scope != scope.Singleton {
			continue
		}
		if _, err := c.Resolve(ctx, key); err != nil {
			return fmt.Errorf("failed to construct %s: %w", key, err)
		}
	}
	return nil
}
