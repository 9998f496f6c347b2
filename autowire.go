package hilt

import (
	"context"
	"fmt"
	reflectPkg "reflect"

	"github.com/danpasecinic/hilt/internal/container"
	"github.com/danpasecinic/hilt/internal/reflect"
)

const TagKey = "hilt"

func InvokeStruct[T any](c *Container) (T, error) {
	return InvokeStructCtx[T](context.Background(), c)
}

// InvokeStructCtx builds a T (or *T) and fills every field tagged `hilt`.
// The tag value is "name,optional"; an optional field is left zero when its
// key is not registered.
func InvokeStructCtx[T any](ctx context.Context, c *Container) (T, error) {
	var zero T

	fields, err := reflect.StructFields[T](TagKey)
	if err != nil {
		return zero, errResolutionFailed(reflect.TypeName[T](), err)
	}

	t := reflectPkg.TypeOf((*T)(nil)).Elem()
	isPtr := t.Kind() == reflectPkg.Pointer
	if isPtr {
		t = t.Elem()
	}

	ptr := reflectPkg.New(t)
	structVal := ptr.Elem()

	for _, field := range fields {
		key := field.Key()

		if !c.internal.Has(key) {
			if field.Optional {
				continue
			}
			return zero, wrap(key, fmt.Errorf("field %s: %w", field.Name, container.ErrNotFound))
		}

		instance, err := c.internal.Resolve(ctx, key)
		if err != nil {
			return zero, wrap(key, err)
		}

		fieldVal := structVal.Field(field.Index)
		instanceVal := reflectPkg.ValueOf(instance)
		if !instanceVal.Type().AssignableTo(fieldVal.Type()) {
			return zero, errResolutionFailed(
				key, fmt.Errorf("cannot assign %s to field %s of type %s", instanceVal.Type(), field.Name, fieldVal.Type()),
			)
		}

		fieldVal.Set(instanceVal)
	}

	if isPtr {
		return ptr.Interface().(T), nil
	}
	return structVal.Interface().(T), nil
}

// ProvideFunc registers a constructor whose parameters are resolved by type.
// The constructor must return T or (T, error).
func ProvideFunc[T any](c *Container, constructor any, opts ...ProviderOption) error {
	return provideConstructor(c, reflectPkg.TypeOf((*T)(nil)).Elem(), constructor, opts)
}

// provideConstructor registers constructor under the key of target, or of its
// own return type when target is nil.
func provideConstructor(c *Container, target reflectPkg.Type, constructor any, opts []ProviderOption) error {
	params, returnType, err := reflect.FuncParams(constructor)
	if err != nil {
		return errInvalidOption(reflect.TypeKeyFromType(target), err.Error())
	}

	if target == nil {
		target = returnType
	}
	if !returnType.AssignableTo(target) {
		return errInvalidOption(
			reflect.TypeKeyFromType(target), fmt.Sprintf("constructor returns %s, expected %s", returnType, target),
		)
	}

	cfg := newProviderConfig(opts)
	key := reflect.Named(reflect.TypeKeyFromType(target), cfg.name)

	fnVal := reflectPkg.ValueOf(constructor)
	hasError := fnVal.Type().NumOut() == 2

	deps := make([]string, 0, len(params)+len(cfg.dependencies))
	for _, p := range params {
		deps = append(deps, p.TypeKey)
	}
	deps = append(deps, cfg.dependencies...)

	provider := func(ctx context.Context, r container.Resolver) (any, error) {
		args := make([]reflectPkg.Value, len(params))
		for i, p := range params {
			instance, err := r.Resolve(ctx, p.TypeKey)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve parameter %d (%s): %w", i, p.TypeKey, err)
			}
			args[i] = reflectPkg.ValueOf(instance)
			if !args[i].Type().AssignableTo(p.Type) {
				return nil, fmt.Errorf("parameter %d: cannot use %s as %s", i, args[i].Type(), p.Type)
			}
		}

		results := fnVal.Call(args)
		if hasError && !results[1].IsNil() {
			return nil, results[1].Interface().(error)
		}
		return results[0].Interface(), nil
	}

	return wrap(key, c.internal.Register(key, provider, deps, cfg.scope, cfg.hookSet()))
}

func MustProvideFunc[T any](c *Container, constructor any, opts ...ProviderOption) {
	mustDo(ProvideFunc[T](c, constructor, opts...))
}

// ProvideStruct registers T as built by InvokeStruct. Required tagged fields
// become declared dependencies.
func ProvideStruct[T any](c *Container, opts ...ProviderOption) error {
	fields, err := reflect.StructFields[T](TagKey)
	if err != nil {
		return errInvalidOption(reflect.TypeKey[T](), err.Error())
	}

	deps := make([]string, 0, len(fields))
	for _, f := range fields {
		if !f.Optional {
			deps = append(deps, f.Key())
		}
	}

	provider := func(ctx context.Context, _ Resolver) (T, error) {
		return InvokeStructCtx[T](ctx, c)
	}

	opts = append([]ProviderOption{WithDependencies(deps...)}, opts...)
	return Provide(c, provider, opts...)
}

func MustProvideStruct[T any](c *Container, opts ...ProviderOption) {
	mustDo(ProvideStruct[T](c, opts...))
}
