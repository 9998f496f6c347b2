package container

import (
	"context"
	"sync"
)

type decorators struct {
	mu    sync.RWMutex
	byKey map[string][]DecoratorFunc
}

func newDecorators() *decorators {
	return &decorators{byKey: make(map[string][]DecoratorFunc)}
}

// AddDecorator wraps every future construction of key. Instances built before
// the decorator was added keep their original value.
func (c *Container) AddDecorator(key string, decorator DecoratorFunc) {
	c.decorators.mu.Lock()
	defer c.decorators.mu.Unlock()

	c.decorators.byKey[key] = append(c.decorators.byKey[key], decorator)
}

func (d *decorators) apply(ctx context.Context, r Resolver, key string, instance any) (any, error) {
	d.mu.RLock()
	chain := d.byKey[key]
	d.mu.RUnlock()

	var err error
	for _, decorate := range chain {
		instance, err = decorate(ctx, r, instance)
		if err != nil {
			return nil, &DecoratorError{Key: key, Cause: err}
		}
	}

	return instance, nil
}
