package ioc

import (
	"sync"
)

// Scope is the per-logical-request storage for scoped instances. Every
// WithScope call gets a fresh, empty one; scoped bindings cache here and
// never on the binding record, which is what keeps scopes composable with
// singletons and transients sharing the same registry.
type Scope struct {
	mu        sync.Mutex
	instances map[Key]any
	owner     *Container
}

// lookup returns the instance cached in this scope for a key, if any.
func (s *Scope) lookup(key Key) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.instances[key]
	return v, ok
}

func (s *Scope) store(key Key, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[key] = v
}

// Container returns the handle that owns this scope: the one the WithScope
// callback received.
func (s *Scope) Container() *Container {
	return s.owner
}

// WithScope runs fn with a fresh scope installed on the handle it receives.
// Scoped bindings resolved through that handle are created lazily and cached
// for the duration of the callback, across any asynchronous suspension inside
// it. Scopes nest: an inner WithScope gets its own empty map and never sees
// or leaks into the outer one. Concurrently started sibling scopes are
// isolated from each other because each callback owns its handle.
func (c *Container) WithScope(fn func(c *Container) error) error {
	sc := c.newScopeHandle()
	c.reg.logger.Trace().Msg("entering scope")
	defer c.reg.logger.Trace().Msg("leaving scope")
	return fn(sc)
}

// InScope is WithScope for callbacks producing a value.
func InScope[T any](c *Container, fn func(c *Container) (T, error)) (T, error) {
	sc := c.newScopeHandle()
	c.reg.logger.Trace().Msg("entering scope")
	defer c.reg.logger.Trace().Msg("leaving scope")
	return fn(sc)
}

func (c *Container) newScopeHandle() *Container {
	s := &Scope{instances: make(map[Key]any)}
	sc := &Container{reg: c.reg, scope: s}
	s.owner = sc
	return sc
}

// HasScope reports whether this handle has an active scope.
func (c *Container) HasScope() bool {
	return c.scope != nil
}

// CurrentScope returns the scope active for this handle, if any.
func (c *Container) CurrentScope() (*Scope, bool) {
	return c.scope, c.scope != nil
}
