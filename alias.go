package ioc

import (
	"fmt"
)

// Alias makes from resolve transparently through to. Aliases may chain; a
// chain that revisits a key fails at resolution time with CircularAliasError.
//
// The link is recorded bidirectionally: to's binding remembers every alias
// pointing at it, so contextual-override lookups and extender application can
// walk from a concrete binding to all of its aliases, even transitively.
// Aliasing over an existing binding fires the rebinding callbacks for from.
func (c *Container) Alias(from, to Key) error {
	if from == to {
		return &SelfAliasError{Key: from}
	}

	c.reg.mu.Lock()
	existing := c.reg.bindings[from]

	// from may have pointed somewhere else before: drop the stale reverse
	// link so that the old target no longer claims this alias.
	if existing != nil && existing.kind == kindAlias {
		if prev := c.reg.bindings[existing.to]; prev != nil {
			prev.removeReverseAlias(from)
		}
	}

	b := newBinding(from, kindAlias)
	b.to = to
	b.adoptMetadata(existing)
	c.reg.bindings[from] = b

	target := c.reg.ensureLocked(to)
	target.addReverseAlias(from)

	wasBound := existing != nil && existing.kind != kindImplicit
	c.reg.mu.Unlock()

	c.reg.logger.Trace().
		Str("from", from.DebugName()).
		Str("to", to.DebugName()).
		Msg("aliased")

	if wasBound {
		if err := c.fireRebound(from); err != nil {
			return fmt.Errorf("failed to dispatch rebinding callbacks for %s:\n\t%w", renderKey(from), err)
		}
	}
	return nil
}

// MustAlias is like Alias but panics on error.
func (c *Container) MustAlias(from, to Key) *Container {
	if err := c.Alias(from, to); err != nil {
		panic(err)
	}
	return c
}
