package hilt

import (
	"context"
	"fmt"

	"github.com/danpasecinic/hilt/internal/reflect"
)

type Resolver interface {
	Resolve(ctx context.Context, key string) (any, error)
	Has(key string) bool
}

type resolverAdapter struct {
	container *Container
}

func (r *resolverAdapter) Resolve(ctx context.Context, key string) (any, error) {
	return r.container.internal.Resolve(ctx, key)
}

func (r *resolverAdapter) Has(key string) bool {
	return r.container.internal.Has(key)
}

func Invoke[T any](c *Container) (T, error) {
	return InvokeCtx[T](context.Background(), c)
}

func InvokeCtx[T any](ctx context.Context, c *Container) (T, error) {
	return resolveAs[T](ctx, c, reflect.TypeKey[T]())
}

func InvokeNamed[T any](c *Container, name string) (T, error) {
	return InvokeNamedCtx[T](context.Background(), c, name)
}

// InvokeNamedCtx resolves the instance registered for T under name. Providers
// should pass their own ctx so nested resolutions share cycle detection.
func InvokeNamedCtx[T any](ctx context.Context, c *Container, name string) (T, error) {
	return resolveAs[T](ctx, c, reflect.TypeKeyNamed[T](name))
}

func resolveAs[T any](ctx context.Context, c *Container, key string) (T, error) {
	var zero T

	instance, err := c.internal.Resolve(ctx, key)
	if err != nil {
		return zero, wrap(key, err)
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, errResolutionFailed(
			key, fmt.Errorf("instance of type %T is not a %s", instance, reflect.TypeName[T]()),
		)
	}

	return typed, nil
}

// must panics with err. It backs the Must* variants, which are meant for
// wiring code where a missing provider is a programming error.
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

func MustInvoke[T any](c *Container) T {
	return must(Invoke[T](c))
}

func MustInvokeCtx[T any](ctx context.Context, c *Container) T {
	return must(InvokeCtx[T](ctx, c))
}

func MustInvokeNamed[T any](c *Container, name string) T {
	return must(InvokeNamed[T](c, name))
}

func MustInvokeNamedCtx[T any](ctx context.Context, c *Container, name string) T {
	return must(InvokeNamedCtx[T](ctx, c, name))
}

// TryInvoke reports false for any failure, including a provider error.
func TryInvoke[T any](c *Container) (T, bool) {
	v, err := Invoke[T](c)
	return v, err == nil
}

func TryInvokeNamed[T any](c *Container, name string) (T, bool) {
	v, err := InvokeNamed[T](c, name)
	return v, err == nil
}

// Has reports whether a provider is registered for T. It says nothing about
// whether T has been constructed.
func Has[T any](c *Container) bool {
	return c.internal.Has(reflect.TypeKey[T]())
}

func HasNamed[T any](c *Container, name string) bool {
	return c.internal.Has(reflect.TypeKeyNamed[T](name))
}

type Optional[T any] struct {
	value   T
	present bool
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

func (o Optional[T]) Value() T {
	return o.value
}

func (o Optional[T]) Present() bool {
	return o.present
}

func (o Optional[T]) OrElse(defaultValue T) T {
	if o.present {
		return o.value
	}
	return defaultValue
}

func (o Optional[T]) OrElseFunc(fn func() T) T {
	if o.present {
		return o.value
	}
	return fn()
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, present: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

func InvokeOptional[T any](c *Container) Optional[T] {
	return InvokeOptionalCtx[T](context.Background(), c)
}

func InvokeOptionalCtx[T any](ctx context.Context, c *Container) Optional[T] {
	return optionalAs[T](ctx, c, reflect.TypeKey[T]())
}

func InvokeOptionalNamed[T any](c *Container, name string) Optional[T] {
	return InvokeOptionalNamedCtx[T](context.Background(), c, name)
}

func InvokeOptionalNamedCtx[T any](ctx context.Context, c *Container, name string) Optional[T] {
	return optionalAs[T](ctx, c, reflect.TypeKeyNamed[T](name))
}

func optionalAs[T any](ctx context.Context, c *Container, key string) Optional[T] {
	if !c.internal.Has(key) {
		return None[T]()
	}

	typed, err := resolveAs[T](ctx, c, key)
	if err != nil {
		return None[T]()
	}
	return Some(typed)
}
