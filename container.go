package ioc

import (
	"sync"

	"github.com/beynacjs/ioc/option"
	"github.com/beynacjs/ioc/set"
	"github.com/rs/zerolog"
)

type (
	// Container is an inversion-of-control container: a registry of bindings
	// plus the resolution engine that turns keys into instances.
	//
	// A Container value is a lightweight handle. Handles derived by WithScope
	// or passed into factories share the same underlying registry but carry
	// their own scope association and build-stack state, so concurrently
	// running logical tasks never observe each other's resolution state.
	Container struct {
		reg   *registry
		scope *Scope
		build *buildState
	}

	// registry is the shared mutable state behind every handle of one
	// container. Its maps are guarded by mu; resolution takes read locks and
	// releases them before invoking user factories.
	registry struct {
		mu        sync.RWMutex
		bindings  map[Key]*binding
		tags      map[*Tag][]Key
		resolving map[Key][]ResolvingCallback
		rebound   map[Key][]RebindingCallback
		logger    zerolog.Logger
	}

	// Options configures a new container.
	Options struct {
		logger *zerolog.Logger
	}
)

// WithLogger makes the container log binding and scope transitions at
// trace/debug level. By default the container is silent.
func WithLogger(logger *zerolog.Logger) option.Option[Options] {
	return func(opts *Options) {
		opts.logger = logger
	}
}

// New creates an empty container.
func New(opts ...option.Option[Options]) *Container {
	options := option.Build(&Options{}, opts...)

	logger := zerolog.Nop()
	if options.logger != nil {
		logger = *options.logger
	}

	c := &Container{
		reg: &registry{
			bindings:  make(map[Key]*binding),
			tags:      make(map[*Tag][]Key),
			resolving: make(map[Key][]ResolvingCallback),
			rebound:   make(map[Key][]RebindingCallback),
			logger:    logger,
		},
	}

	// The container resolves itself. The factory hands back the handle the
	// resolution is running under, so code inside a scope gets the scoped
	// handle, not the root one.
	_ = c.Bind(Of[*Container](), WithFactory(func(c *Container) (any, error) {
		return c, nil
	}))

	return c
}

// Bound reports whether the key's current binding, without alias following,
// is anything other than an implicit placeholder.
func (c *Container) Bound(key Key) bool {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	b := c.reg.bindings[key]
	return b != nil && b.kind != kindImplicit
}

// Resolved reports whether the key's concrete binding has been resolved at
// least once, or already carries a stored instance.
func (c *Container) Resolved(key Key) bool {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	_, b, err := c.reg.chaseLocked(key)
	if err != nil || b == nil {
		return false
	}
	return b.resolved || b.hasInstance
}

// Lifecycle resolves the key through its alias chain and returns the
// lifecycle of the concrete binding, defaulting to Transient for implicit or
// unknown keys.
func (c *Container) Lifecycle(key Key) Lifecycle {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	_, b, err := c.reg.chaseLocked(key)
	if err != nil || b == nil {
		return Transient
	}
	return b.effectiveLifecycle()
}

// Forget removes the binding and any cached singleton instance for a key.
// Use-site metadata (extenders, contextual overrides, aliases pointing here)
// is dropped with it.
func (c *Container) Forget(key Key) {
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()
	delete(c.reg.bindings, key)
}

// Flush resets the whole registry: bindings, tags, and callback registries.
func (c *Container) Flush() {
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()
	c.reg.bindings = make(map[Key]*binding)
	c.reg.tags = make(map[*Tag][]Key)
	c.reg.resolving = make(map[Key][]ResolvingCallback)
	c.reg.rebound = make(map[Key][]RebindingCallback)
}

// Keys returns every explicitly bound key, for diagnostics.
func (c *Container) Keys() []Key {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	out := make([]Key, 0, len(c.reg.bindings))
	for k, b := range c.reg.bindings {
		if b.kind != kindImplicit {
			out = append(out, k)
		}
	}
	return out
}

// ensureLocked returns the binding record for key, creating an implicit
// placeholder if none exists. Callers must hold the write lock.
func (r *registry) ensureLocked(key Key) *binding {
	if b, ok := r.bindings[key]; ok {
		return b
	}
	b := newBinding(key, kindImplicit)
	r.bindings[key] = b
	return b
}

// chaseLocked follows the alias chain from key until a non-alias binding is
// reached, returning the canonical key and its binding (which may be nil when
// the chain ends on a key that was never seen). Callers must hold at least a
// read lock.
func (r *registry) chaseLocked(key Key) (Key, *binding, error) {
	seen := set.New[Key]()
	order := make([]Key, 0, 4)
	cur := key
	for {
		if seen.Contains(cur) {
			return nil, nil, &CircularAliasError{Cycle: append(order, cur)}
		}
		seen.Add(cur)
		order = append(order, cur)

		b := r.bindings[cur]
		if b == nil || b.kind != kindAlias {
			return cur, b, nil
		}
		cur = b.to
	}
}

// aliasClosureLocked returns b followed by every binding whose alias chain
// ultimately points at b, each binding at most once. Callers must hold at
// least a read lock.
func (r *registry) aliasClosureLocked(b *binding) []*binding {
	closure := []*binding{b}
	visited := set.New[Key]()
	visited.Add(b.key)

	queue := append([]Key(nil), b.reverseAliases...)
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		if visited.Contains(k) {
			continue
		}
		visited.Add(k)
		ab := r.bindings[k]
		if ab == nil {
			continue
		}
		closure = append(closure, ab)
		queue = append(queue, ab.reverseAliases...)
	}
	return closure
}

// hasContextualLocked reports whether b, or any binding in its alias closure,
// carries contextual overrides. A true result disables the singleton cache
// for b (see resolve).
func (r *registry) hasContextualLocked(b *binding) bool {
	for _, member := range r.aliasClosureLocked(b) {
		if len(member.contextual) > 0 {
			return true
		}
	}
	return false
}
