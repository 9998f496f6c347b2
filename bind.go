package hilt

import (
	"context"

	"github.com/danpasecinic/hilt/internal/container"
	"github.com/danpasecinic/hilt/internal/reflect"
)

type Decorator[T any] func(ctx context.Context, r Resolver, base T) (T, error)

// Bind makes I resolve to the instance registered for T. The alias shares
// T's instance and its single place in lifecycle order, so hook options are
// rejected here; declare them on T's provider.
func Bind[I, T any](c *Container, opts ...ProviderOption) error {
	cfg := newProviderConfig(opts)
	interfaceKey := reflect.TypeKeyNamed[I](cfg.name)

	if cfg.hasHooks() {
		return errInvalidOption(interfaceKey, "bindings cannot declare lifecycle hooks")
	}

	return wrap(interfaceKey, c.internal.RegisterAlias(interfaceKey, reflect.TypeKey[T]()))
}

func BindNamed[I, T any](c *Container, name string, opts ...ProviderOption) error {
	opts = append(opts, WithName(name))
	return Bind[I, T](c, opts...)
}

// Decorate wraps T each time it is constructed. For singletons the decorated
// value is the one recorded, so its Start and Stop methods are the hooks.
func Decorate[T any](c *Container, decorator Decorator[T]) {
	decorate(c, reflect.TypeKey[T](), decorator)
}

func DecorateNamed[T any](c *Container, name string, decorator Decorator[T]) {
	decorate(c, reflect.TypeKeyNamed[T](name), decorator)
}

func decorate[T any](c *Container, key string, decorator Decorator[T]) {
	resolver := &resolverAdapter{container: c}

	c.internal.AddDecorator(
		key, func(ctx context.Context, _ container.Resolver, instance any) (any, error) {
			typed, ok := instance.(T)
			if !ok {
				return nil, errDecoratorTypeMismatch(reflect.TypeName[T]())
			}
			return decorator(ctx, resolver, typed)
		},
	)
}

func errDecoratorTypeMismatch(typeName string) *Error {
	return newError(ErrCodeDecoratorFailed, "decorator type mismatch for "+typeName, nil)
}
