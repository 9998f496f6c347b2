package hilt

import (
	"github.com/danpasecinic/hilt/internal/reflect"
)

// Replace swaps the provider for T. It fails once T has been constructed,
// because the built instance already holds its place in lifecycle order.
func Replace[T any](c *Container, provider Provider[T], opts ...ProviderOption) error {
	cfg := newProviderConfig(opts)
	key := reflect.TypeKeyNamed[T](cfg.name)

	err := c.internal.Replace(key, adapt(c, provider), cfg.dependencies, cfg.scope, cfg.hookSet())
	return wrap(key, err)
}

func ReplaceValue[T any](c *Container, value T, opts ...ProviderOption) error {
	cfg := newProviderConfig(opts)
	key := reflect.TypeKeyNamed[T](cfg.name)

	return wrap(key, c.internal.ReplaceValue(key, value, cfg.hookSet()))
}

func ReplaceNamed[T any](c *Container, name string, provider Provider[T], opts ...ProviderOption) error {
	opts = append(opts, WithName(name))
	return Replace(c, provider, opts...)
}

func ReplaceNamedValue[T any](c *Container, name string, value T, opts ...ProviderOption) error {
	opts = append(opts, WithName(name))
	return ReplaceValue(c, value, opts...)
}

func MustReplace[T any](c *Container, provider Provider[T], opts ...ProviderOption) {
	mustDo(Replace(c, provider, opts...))
}

func MustReplaceValue[T any](c *Container, value T, opts ...ProviderOption) {
	mustDo(ReplaceValue(c, value, opts...))
}
