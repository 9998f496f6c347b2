package hilt

import (
	"github.com/danpasecinic/hilt/internal/reflect"
)

// Module groups registrations so they can be applied to a container as a
// unit. Included modules are applied first, then providers, then bindings,
// then decorators.
type Module struct {
	name       string
	providers  []func(c *Container) error
	bindings   []func(c *Container) error
	decorators []func(c *Container)
	submodules []*Module
}

func NewModule(name string) *Module {
	return &Module{
		name: name,
	}
}

func (m *Module) Name() string {
	return m.name
}

// Provide adds a constructor keyed by its return type. Parameters are
// resolved by type, as with ProvideFunc.
func (m *Module) Provide(constructor any, opts ...ProviderOption) *Module {
	m.providers = append(
		m.providers, func(c *Container) error {
			return provideConstructor(c, nil, constructor, opts)
		},
	)
	return m
}

// ProvideValue adds a ready instance keyed by its dynamic type.
func (m *Module) ProvideValue(value any, opts ...ProviderOption) *Module {
	m.providers = append(
		m.providers, func(c *Container) error {
			cfg := newProviderConfig(opts)
			key := reflect.TypeKeyNamedFromValue(value, cfg.name)
			if value == nil {
				return errInvalidOption(key, "module value is nil")
			}
			return wrap(key, c.internal.RegisterValue(key, value, cfg.hookSet()))
		},
	)
	return m
}

func (m *Module) Include(submodule *Module) *Module {
	m.submodules = append(m.submodules, submodule)
	return m
}

func (m *Module) apply(c *Container) error {
	for _, sub := range m.submodules {
		if err := sub.apply(c); err != nil {
			return errModuleApplyFailed(sub.name, err)
		}
	}

	for _, register := range m.providers {
		if err := register(c); err != nil {
			return err
		}
	}

	for _, bind := range m.bindings {
		if err := bind(c); err != nil {
			return err
		}
	}

	for _, decorate := range m.decorators {
		decorate(c)
	}

	c.internal.Logger().Debug("applied module", "module", m.name)
	return nil
}

func (c *Container) Apply(modules ...*Module) error {
	for _, m := range modules {
		if err := m.apply(c); err != nil {
			return errModuleApplyFailed(m.name, err)
		}
	}
	return nil
}

func errModuleApplyFailed(moduleName string, cause error) *Error {
	return newError(ErrCodeModuleApplyFailed, "failed to apply module "+moduleName, cause)
}

func ModuleProvide[T any](m *Module, provider Provider[T], opts ...ProviderOption) *Module {
	m.providers = append(
		m.providers, func(c *Container) error {
			return Provide(c, provider, opts...)
		},
	)
	return m
}

func ModuleProvideValue[T any](m *Module, value T, opts ...ProviderOption) *Module {
	m.providers = append(
		m.providers, func(c *Container) error {
			return ProvideValue(c, value, opts...)
		},
	)
	return m
}

func ModuleBind[I, T any](m *Module, opts ...ProviderOption) *Module {
	m.bindings = append(
		m.bindings, func(c *Container) error {
			return Bind[I, T](c, opts...)
		},
	)
	return m
}

func ModuleDecorate[T any](m *Module, decorator Decorator[T]) *Module {
	m.decorators = append(
		m.decorators, func(c *Container) {
			Decorate(c, decorator)
		},
	)
	return m
}
