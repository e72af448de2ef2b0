package ioc

import (
	"fmt"

	"github.com/beynacjs/ioc/option"
)

// BindOptions carries the configuration of a single Bind call.
type BindOptions struct {
	factory        Factory
	instance       any
	hasInstance    bool
	lifecycle      Lifecycle
	ifNotBound     bool
	implementation Key
}

// WithFactory supplies the factory invoked to build the instance.
func WithFactory(f Factory) option.Option[BindOptions] {
	return func(opts *BindOptions) {
		opts.factory = f
	}
}

// WithInstance supplies a pre-built instance. Implies the singleton
// lifecycle; nil is a valid instance.
func WithInstance(v any) option.Option[BindOptions] {
	return func(opts *BindOptions) {
		opts.instance = v
		opts.hasInstance = true
	}
}

// WithLifecycle sets the binding lifecycle explicitly.
func WithLifecycle(l Lifecycle) option.Option[BindOptions] {
	return func(opts *BindOptions) {
		opts.lifecycle = l
	}
}

// IfNotBound turns the call into a no-op when the key is already bound.
func IfNotBound() option.Option[BindOptions] {
	return func(opts *BindOptions) {
		opts.ifNotBound = true
	}
}

// WithImplementation records the implementation key behind an abstract
// binding. When no factory or instance is supplied, resolution goes through
// the implementation key; in every case the implementation key becomes a
// secondary lookup key for contextual overrides, so an override registered
// against either the abstract or the implementation applies.
func WithImplementation(key Key) option.Option[BindOptions] {
	return func(opts *BindOptions) {
		opts.implementation = key
	}
}

// Bind registers a resolution rule for a key.
//
// A binding needs exactly one way to produce a value: a factory, an instance,
// an implementation key, or a key that can construct itself (a Ctor key or a
// struct type key). Rebinding an already bound key replaces the rule but
// carries the use-site metadata forward, and fires the rebinding callbacks
// registered for the key with a freshly resolved instance.
func (c *Container) Bind(key Key, opts ...option.Option[BindOptions]) error {
	options := option.Build(&BindOptions{}, opts...)

	if options.factory != nil && options.hasInstance {
		return &BindingConfigError{Key: key, Reason: "a factory and an instance cannot both be supplied"}
	}
	if options.factory == nil && !options.hasInstance && options.implementation == nil && !selfConstructable(key) {
		return &BindingConfigError{Key: key, Reason: "no value or factory function was supplied"}
	}
	if options.hasInstance && options.lifecycle != "" && options.lifecycle != Singleton {
		return &BindingConfigError{Key: key, Reason: fmt.Sprintf("an instance can only be bound as a singleton, not %q", options.lifecycle)}
	}

	lifecycle := options.lifecycle
	if lifecycle == "" {
		if options.hasInstance {
			lifecycle = Singleton
		} else {
			lifecycle = Transient
		}
	}

	factory := options.factory
	if factory == nil && !options.hasInstance && options.implementation != nil {
		impl := options.implementation
		factory = func(c *Container) (any, error) {
			return c.Get(impl)
		}
	}

	c.reg.mu.Lock()
	existing := c.reg.bindings[key]
	if existing != nil && existing.kind != kindImplicit && options.ifNotBound {
		c.reg.mu.Unlock()
		return nil
	}

	b := newBinding(key, kindConcrete)
	b.factory = factory
	b.instance = options.instance
	b.hasInstance = options.hasInstance
	b.lifecycle = lifecycle
	b.implementation = options.implementation
	b.adoptMetadata(existing)
	c.reg.bindings[key] = b

	wasBound := existing != nil && existing.kind != kindImplicit
	c.reg.mu.Unlock()

	c.reg.logger.Trace().
		Str("key", key.DebugName()).
		Str("lifecycle", string(lifecycle)).
		Bool("rebind", wasBound).
		Msg("bound")

	if wasBound {
		if err := c.fireRebound(key); err != nil {
			return fmt.Errorf("failed to dispatch rebinding callbacks for %s:\n\t%w", renderKey(key), err)
		}
	}
	return nil
}

// MustBind is like Bind but panics on configuration errors.
func (c *Container) MustBind(key Key, opts ...option.Option[BindOptions]) *Container {
	if err := c.Bind(key, opts...); err != nil {
		panic(err)
	}
	return c
}

// selfConstructable reports whether a key carries its own default factory:
// constructor keys always do, type keys do for struct and pointer-to-struct
// types.
func selfConstructable(key Key) bool {
	switch k := key.(type) {
	case *ctorKey:
		return true
	case typeKey:
		return defaultConstructible(k.typ)
	default:
		return false
	}
}

// Singleton binds a factory whose result is cached after first resolution.
func (c *Container) Singleton(key Key, f Factory) error {
	return c.Bind(key, WithFactory(f), WithLifecycle(Singleton))
}

// Scoped binds a factory whose result is cached per active scope.
func (c *Container) Scoped(key Key, f Factory) error {
	return c.Bind(key, WithFactory(f), WithLifecycle(Scoped))
}

// BindIf is Bind, unless the key is already bound.
func (c *Container) BindIf(key Key, opts ...option.Option[BindOptions]) error {
	return c.Bind(key, append(opts, IfNotBound())...)
}

// SingletonIf is Singleton, unless the key is already bound.
func (c *Container) SingletonIf(key Key, f Factory) error {
	return c.Bind(key, WithFactory(f), WithLifecycle(Singleton), IfNotBound())
}

// ScopedIf is Scoped, unless the key is already bound.
func (c *Container) ScopedIf(key Key, f Factory) error {
	return c.Bind(key, WithFactory(f), WithLifecycle(Scoped), IfNotBound())
}

// SingletonInstance binds a pre-built value as a singleton.
func (c *Container) SingletonInstance(key Key, v any) error {
	return c.Bind(key, WithInstance(v))
}

// SingletonInstanceIf is SingletonInstance, unless the key is already bound.
func (c *Container) SingletonInstanceIf(key Key, v any) error {
	return c.Bind(key, WithInstance(v), IfNotBound())
}

// ScopedInstance binds a value with the scoped lifecycle. The value is handed
// out through a factory so each scope caches it independently; this keeps the
// instance-requires-singleton rule intact.
func (c *Container) ScopedInstance(key Key, v any) error {
	return c.Scoped(key, func(*Container) (any, error) {
		return v, nil
	})
}

// ScopedInstanceIf is ScopedInstance, unless the key is already bound.
func (c *Container) ScopedInstanceIf(key Key, v any) error {
	return c.ScopedIf(key, func(*Container) (any, error) {
		return v, nil
	})
}

// Extend registers a post-construction transform for a key. Extenders run in
// registration order after every build of the key, whether the key is the
// canonical binding or an alias ultimately pointing at one.
func (c *Container) Extend(key Key, ext Extender) {
	c.reg.mu.Lock()
	b := c.reg.ensureLocked(key)
	b.extenders = append(b.extenders, ext)
	c.reg.mu.Unlock()
}
