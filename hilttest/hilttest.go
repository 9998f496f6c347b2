// Package hilttest wraps a container for use in tests. Failures are reported
// through the test and a started container is stopped on cleanup.
package hilttest

import (
	"context"
	"fmt"
	"slices"

	"github.com/danpasecinic/hilt"
	"github.com/danpasecinic/hilt/internal/reflect"
)

type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Cleanup(f func())
}

type TestContainer struct {
	*hilt.Container
	tb TB
}

func New(tb TB, opts ...hilt.Option) *TestContainer {
	tb.Helper()

	c := hilt.New(opts...)
	tc := &TestContainer{
		Container: c,
		tb:        tb,
	}

	tb.Cleanup(
		func() {
			if c.State() != hilt.Started {
				return
			}
			if err := c.Stop(context.Background()); err != nil {
				tb.Fatalf("failed to stop container: %v", err)
			}
		},
	)

	return tc
}

// require fails the test when err is non-nil, prefixing the message.
func (tc *TestContainer) require(err error, format string, args ...any) {
	tc.tb.Helper()

	if err != nil {
		tc.tb.Fatalf("%s: %v", fmt.Sprintf(format, args...), err)
	}
}

func (tc *TestContainer) RequireStart(ctx context.Context) {
	tc.tb.Helper()

	tc.require(tc.Start(ctx), "failed to start container")
}

func (tc *TestContainer) RequireStop(ctx context.Context) {
	tc.tb.Helper()

	tc.require(tc.Stop(ctx), "failed to stop container")
}

func (tc *TestContainer) RequireValidate() {
	tc.tb.Helper()

	tc.require(tc.Validate(), "container validation failed")
}

// ConstructionOrder returns the keys of every recorded singleton in the order
// their start hooks run.
func (tc *TestContainer) ConstructionOrder() []string {
	entries := tc.Ledger()
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

// RequireConstructedBefore fails unless First was recorded before Second.
func RequireConstructedBefore[First, Second any](tc *TestContainer) {
	tc.tb.Helper()

	order := tc.ConstructionOrder()
	first := slices.Index(order, reflect.TypeKey[First]())
	second := slices.Index(order, reflect.TypeKey[Second]())

	switch {
	case first < 0:
		tc.tb.Fatalf("%s was never constructed", reflect.TypeKey[First]())
	case second < 0:
		tc.tb.Fatalf("%s was never constructed", reflect.TypeKey[Second]())
	case first > second:
		tc.tb.Fatalf(
			"expected %s to be constructed before %s, order was %v",
			reflect.TypeKey[First](), reflect.TypeKey[Second](), order,
		)
	}
}

func Replace[T any](tc *TestContainer, value T) {
	tc.tb.Helper()

	tc.require(hilt.ReplaceValue(tc.Container, value), "failed to replace %s", reflect.TypeKey[T]())
}

func ReplaceNamed[T any](tc *TestContainer, name string, value T) {
	tc.tb.Helper()

	tc.require(hilt.ReplaceNamedValue(tc.Container, name, value), "failed to replace %s", reflect.TypeKeyNamed[T](name))
}

func ReplaceProvider[T any](tc *TestContainer, provider hilt.Provider[T], opts ...hilt.ProviderOption) {
	tc.tb.Helper()

	tc.require(hilt.Replace(tc.Container, provider, opts...), "failed to replace provider %s", reflect.TypeKey[T]())
}

func ReplaceNamedProvider[T any](tc *TestContainer, name string, provider hilt.Provider[T]) {
	tc.tb.Helper()

	tc.require(hilt.ReplaceNamed(tc.Container, name, provider), "failed to replace provider %s", reflect.TypeKeyNamed[T](name))
}

func AssertHas[T any](tc *TestContainer) {
	tc.tb.Helper()

	if !hilt.Has[T](tc.Container) {
		tc.tb.Fatalf("expected container to have %s", reflect.TypeKey[T]())
	}
}

func AssertHasNamed[T any](tc *TestContainer, name string) {
	tc.tb.Helper()

	if !hilt.HasNamed[T](tc.Container, name) {
		tc.tb.Fatalf("expected container to have %s", reflect.TypeKeyNamed[T](name))
	}
}

func AssertNotHas[T any](tc *TestContainer) {
	tc.tb.Helper()

	if hilt.Has[T](tc.Container) {
		tc.tb.Fatalf("expected container to not have %s", reflect.TypeKey[T]())
	}
}

func MustInvoke[T any](tc *TestContainer) T {
	tc.tb.Helper()

	v, err := hilt.Invoke[T](tc.Container)
	if err != nil {
		tc.tb.Fatalf("failed to invoke %s: %v", reflect.TypeKey[T](), err)
	}
	return v
}

func MustInvokeNamed[T any](tc *TestContainer, name string) T {
	tc.tb.Helper()

	v, err := hilt.InvokeNamed[T](tc.Container, name)
	if err != nil {
		tc.tb.Fatalf("failed to invoke %s: %v", reflect.TypeKeyNamed[T](name), err)
	}
	return v
}

func MustProvide[T any](tc *TestContainer, provider hilt.Provider[T], opts ...hilt.ProviderOption) {
	tc.tb.Helper()

	tc.require(hilt.Provide(tc.Container, provider, opts...), "failed to provide %s", reflect.TypeKey[T]())
}

func MustProvideValue[T any](tc *TestContainer, value T, opts ...hilt.ProviderOption) {
	tc.tb.Helper()

	tc.require(hilt.ProvideValue(tc.Container, value, opts...), "failed to provide value %s", reflect.TypeKey[T]())
}

func MustProvideNamed[T any](tc *TestContainer, name string, provider hilt.Provider[T], opts ...hilt.ProviderOption) {
	tc.tb.Helper()

	tc.require(hilt.ProvideNamed(tc.Container, name, provider, opts...), "failed to provide %s", reflect.TypeKeyNamed[T](name))
}

func MustProvideNamedValue[T any](tc *TestContainer, name string, value T, opts ...hilt.ProviderOption) {
	tc.tb.Helper()

	tc.require(hilt.ProvideNamedValue(tc.Container, name, value, opts...), "failed to provide value %s", reflect.TypeKeyNamed[T](name))
}
