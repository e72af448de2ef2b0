package ioc

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/beynacjs/ioc/set"
)

// buildState is the per-logical-call resolution state: the ordered set of
// keys currently being constructed. A fresh one is created for every
// top-level resolution and threaded through derived handles, so concurrently
// running logical tasks never share it.
type buildState struct {
	stack   []Key
	visited set.Set[Key]
}

func newBuildState() *buildState {
	return &buildState{visited: set.New[Key]()}
}

func (st *buildState) push(key Key) error {
	if st.visited.Contains(key) {
		cycleStart := 0
		for i, k := range st.stack {
			if k == key {
				cycleStart = i
				break
			}
		}
		cycle := append(append([]Key(nil), st.stack[cycleStart:]...), key)
		building := append([]Key(nil), st.stack[:cycleStart]...)
		return &CircularDependencyError{Cycle: cycle, Building: building}
	}
	st.visited.Add(key)
	st.stack = append(st.stack, key)
	return nil
}

func (st *buildState) pop() {
	key := st.stack[len(st.stack)-1]
	st.stack = st.stack[:len(st.stack)-1]
	st.visited.Remove(key)
}

// consumer is the key currently being built, if any. It is the context
// against which contextual overrides for nested dependencies are looked up.
func (st *buildState) consumer() (Key, bool) {
	if len(st.stack) == 0 {
		return nil, false
	}
	return st.stack[len(st.stack)-1], true
}

// ancestors returns the build-stack frames above the current one. Used for
// error context, where the failing key's own frame is implied and omitted.
func (st *buildState) ancestors() []Key {
	if len(st.stack) <= 1 {
		return nil
	}
	return append([]Key(nil), st.stack[:len(st.stack)-1]...)
}

// Get resolves a key to an instance.
func (c *Container) Get(key Key) (any, error) {
	st := c.build
	if st == nil {
		st = newBuildState()
	}

	// A dependency requested while another binding is being built may be
	// overridden contextually for that specific consumer.
	if consumer, ok := st.consumer(); ok {
		if f, found := c.reg.findContextual(consumer, key); found {
			return c.buildContextual(st, key, f)
		}
	}

	return c.resolve(st, key)
}

// resolve is the main resolution algorithm: alias chasing, cycle detection,
// lifecycle dispatch, factory invocation, extenders, caching, callbacks.
func (c *Container) resolve(st *buildState, key Key) (any, error) {
	c.reg.mu.Lock()
	canonical, b, err := c.reg.chaseLocked(key)
	if err != nil {
		c.reg.mu.Unlock()
		return nil, err
	}
	if b == nil {
		b = c.reg.ensureLocked(canonical)
	}
	// A contextual override anywhere in the alias closure disables the
	// instance cache for this binding, even for consumers the override does
	// not apply to. Deliberately coarse: correctness over cache-hit rate.
	needsContextual := c.reg.hasContextualLocked(b)
	lifecycle := b.effectiveLifecycle()
	hasInstance := b.kind == kindConcrete && b.hasInstance
	instance := b.instance
	factory := b.factory
	c.reg.mu.Unlock()

	if err := st.push(canonical); err != nil {
		return nil, err
	}
	defer st.pop()

	handle := &Container{reg: c.reg, scope: c.scope, build: st}

	// Install the call-scoped resolver consulted by Inject for the duration
	// of this construction, restoring the previous one on every exit path.
	restore := pushFrame(&resolverFrame{c: handle})
	defer restore()

	switch lifecycle {
	case Scoped:
		if c.scope == nil {
			return nil, &ScopeRequiredError{Key: canonical}
		}
		if v, ok := c.scope.lookup(canonical); ok {
			c.fireResolving(canonical, v, handle)
			return v, nil
		}
	default:
		if hasInstance && !needsContextual {
			c.fireResolving(canonical, instance, handle)
			return instance, nil
		}
	}

	if factory == nil {
		factory, err = defaultFactory(canonical)
		if err != nil {
			return nil, err
		}
		if factory == nil {
			return nil, &UnboundKeyError{Key: canonical, Building: st.ancestors()}
		}
	}

	raw, err := factory(handle)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s:\n\t%w", renderKey(canonical), err)
	}

	raw, err = c.applyExtenders(b, raw, handle)
	if err != nil {
		return nil, err
	}

	c.reg.mu.Lock()
	if lifecycle == Singleton && !needsContextual {
		b.instance, b.hasInstance = raw, true
	}
	b.resolved = true
	c.reg.mu.Unlock()

	if lifecycle == Scoped {
		c.scope.store(canonical, raw)
	}

	c.fireResolving(canonical, raw, handle)
	return raw, nil
}

// buildContextual builds a dependency through a contextual override. The
// override is scoped to one specific consumer, so the dependency's own
// instance cache is bypassed on both read and write; extenders and resolving
// callbacks still apply, keyed by the requested dependency.
func (c *Container) buildContextual(st *buildState, dep Key, f Factory) (any, error) {
	c.reg.mu.Lock()
	canonical, db, err := c.reg.chaseLocked(dep)
	if err != nil {
		c.reg.mu.Unlock()
		return nil, err
	}
	if db == nil {
		db = c.reg.ensureLocked(canonical)
	}
	c.reg.mu.Unlock()

	if err := st.push(canonical); err != nil {
		return nil, err
	}
	defer st.pop()

	handle := &Container{reg: c.reg, scope: c.scope, build: st}
	restore := pushFrame(&resolverFrame{c: handle})
	defer restore()

	raw, err := f(handle)
	if err != nil {
		return nil, fmt.Errorf("failed to build contextual override for %s:\n\t%w", renderKey(canonical), err)
	}

	raw, err = c.applyExtenders(db, raw, handle)
	if err != nil {
		return nil, err
	}

	c.fireResolving(canonical, raw, handle)
	return raw, nil
}

// applyExtenders runs every extender registered on the binding and on every
// alias transitively pointing at it, each owning binding visited once, in
// registration order.
func (c *Container) applyExtenders(b *binding, instance any, handle *Container) (any, error) {
	c.reg.mu.RLock()
	var exts []Extender
	for _, owner := range c.reg.aliasClosureLocked(b) {
		exts = append(exts, owner.extenders...)
	}
	c.reg.mu.RUnlock()

	var err error
	for _, ext := range exts {
		instance, err = ext(instance, handle)
		if err != nil {
			return nil, fmt.Errorf("failed to extend %s:\n\t%w", renderKey(b.key), err)
		}
	}
	return instance, nil
}

// GetIfAvailable resolves a key, reporting absence instead of failing for
// unbound keys and for scoped keys accessed outside any scope. Absence is
// distinct from a bound nil value, which comes back as (nil, true, nil).
func (c *Container) GetIfAvailable(key Key) (any, bool, error) {
	v, err := c.Get(key)
	if err != nil {
		if c.isAbsence(err, key) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

// isAbsence reports whether err means the requested key itself is unbound or
// out of scope. The same error types raised for a nested dependency and
// wrapped into a factory failure do not count: the requested key was bound,
// and its misconfiguration must surface.
func (c *Container) isAbsence(err error, key Key) bool {
	c.reg.mu.RLock()
	canonical, _, chaseErr := c.reg.chaseLocked(key)
	c.reg.mu.RUnlock()
	if chaseErr != nil {
		return false
	}

	var unbound *UnboundKeyError
	if errors.As(err, &unbound) {
		return unbound.Key == canonical
	}
	var noScope *ScopeRequiredError
	if errors.As(err, &noScope) {
		return noScope.Key == canonical
	}
	return false
}

// Resolve resolves a key and asserts the result to T.
func Resolve[T any](c *Container, key Key) (T, error) {
	var zero T
	raw, err := c.Get(key)
	if err != nil {
		return zero, err
	}
	return castResolved[T](key, raw)
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, key Key) T {
	v, err := Resolve[T](c, key)
	if err != nil {
		panic(err)
	}
	return v
}

// ResolveIfAvailable is the typed form of GetIfAvailable.
func ResolveIfAvailable[T any](c *Container, key Key) (val T, found bool, err error) {
	raw, found, err := c.GetIfAvailable(key)
	if err != nil || !found {
		return val, found, err
	}
	val, err = castResolved[T](key, raw)
	return val, err == nil, err
}

func castResolved[T any](key Key, raw any) (T, error) {
	var zero T
	if raw == nil {
		// nil is a valid bound value
		return zero, nil
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("resolved value for %s has type %T, expected %T", renderKey(key), raw, zero)
	}
	return typed, nil
}

// defaultFactory derives the implicit factory a key carries on its own:
// constructor keys call their zero-argument constructor, struct and
// pointer-to-struct type keys zero-construct the type. Other keys have no
// default and resolve to (nil, nil).
func defaultFactory(key Key) (Factory, error) {
	switch k := key.(type) {
	case *ctorKey:
		if k.typ.NumIn() > 0 {
			return nil, &RequiredArgumentsError{Key: k, NumArgs: k.typ.NumIn()}
		}
		return func(*Container) (any, error) {
			return callConstructor(k, nil)
		}, nil
	case typeKey:
		typ := k.typ
		if !defaultConstructible(typ) {
			return nil, nil
		}
		return func(*Container) (any, error) {
			if typ.Kind() == reflect.Pointer {
				return reflect.New(typ.Elem()).Interface(), nil
			}
			return reflect.New(typ).Elem().Interface(), nil
		}, nil
	default:
		return nil, nil
	}
}

func defaultConstructible(typ reflect.Type) bool {
	if typ.Kind() == reflect.Struct {
		return true
	}
	return typ.Kind() == reflect.Pointer && typ.Elem().Kind() == reflect.Struct
}
