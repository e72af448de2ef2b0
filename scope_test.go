package ioc

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestScopes(t *testing.T) {
	t.Run("it should refuse scoped resolution outside any scope", func(t *testing.T) {
		// GIVEN
		c := New()
		token := NewToken[*Cache]("session")
		require.NoError(t, c.Scoped(token, func(*Container) (any, error) { return &Cache{}, nil }))

		// WHEN
		_, err := c.Get(token)

		// THEN
		var noScope *ScopeRequiredError
		require.ErrorAs(t, err, &noScope)
		assert.Equal(t,
			"Cannot create [session] because it is scoped so can only be accessed within a request",
			noScope.Error())
	})

	t.Run("it should build once per scope and share within it", func(t *testing.T) {
		// GIVEN
		c := New()
		token := NewToken[*Cache]("session")
		var builds atomic.Int32
		require.NoError(t, c.Scoped(token, func(*Container) (any, error) {
			builds.Add(1)
			return &Cache{}, nil
		}))

		// WHEN
		err := c.WithScope(func(sc *Container) error {
			first, err := Resolve[*Cache](sc, token)
			if err != nil {
				return err
			}
			second, err := Resolve[*Cache](sc, token)
			if err != nil {
				return err
			}
			assert.Same(t, first, second)
			return nil
		})

		// THEN
		require.NoError(t, err)
		assert.Equal(t, int32(1), builds.Load())
	})

	t.Run("it should give sequential scopes independent instances", func(t *testing.T) {
		// GIVEN
		c := New()
		token := NewToken[*Cache]("session")
		var builds atomic.Int32
		require.NoError(t, c.Scoped(token, func(*Container) (any, error) {
			builds.Add(1)
			return &Cache{Backend: fmt.Sprintf("n%d", builds.Load())}, nil
		}))

		// WHEN
		first, err := InScope(c, func(sc *Container) (*Cache, error) {
			return Resolve[*Cache](sc, token)
		})
		require.NoError(t, err)
		second, err := InScope(c, func(sc *Container) (*Cache, error) {
			return Resolve[*Cache](sc, token)
		})
		require.NoError(t, err)

		// THEN
		assert.NotSame(t, first, second)
		assert.Equal(t, int32(2), builds.Load())
	})

	t.Run("it should isolate concurrently running scopes", func(t *testing.T) {
		// GIVEN a scoped binding whose construction is deliberately interleaved
		// with the sibling scope's, so shared state would be observable
		c := New()
		token := NewToken[*Cache]("session")
		var builds atomic.Int32
		require.NoError(t, c.Scoped(token, func(*Container) (any, error) {
			n := builds.Add(1)
			return &Cache{Backend: fmt.Sprintf("n%d", n)}, nil
		}))

		aBuilt := make(chan struct{})
		bDone := make(chan struct{})

		var g errgroup.Group
		g.Go(func() error {
			return c.WithScope(func(sc *Container) error {
				first, err := Resolve[*Cache](sc, token)
				if err != nil {
					return err
				}
				close(aBuilt)
				// wait until the sibling scope has built and finished, then
				// re-resolve: the cached instance must still be ours
				<-bDone
				again, err := Resolve[*Cache](sc, token)
				if err != nil {
					return err
				}
				assert.Same(t, first, again)
				return nil
			})
		})
		g.Go(func() error {
			<-aBuilt
			err := c.WithScope(func(sc *Container) error {
				mine, err := Resolve[*Cache](sc, token)
				if err != nil {
					return err
				}
				assert.Equal(t, "n2", mine.Backend)
				return nil
			})
			close(bDone)
			return err
		})

		// WHEN / THEN
		require.NoError(t, g.Wait())
		assert.Equal(t, int32(2), builds.Load())
	})

	t.Run("it should keep an inner scope from seeing the outer scope's instances", func(t *testing.T) {
		// GIVEN
		c := New()
		token := NewToken[*Cache]("session")
		var builds atomic.Int32
		require.NoError(t, c.Scoped(token, func(*Container) (any, error) {
			builds.Add(1)
			return &Cache{}, nil
		}))

		// WHEN
		err := c.WithScope(func(outer *Container) error {
			outerInstance, err := Resolve[*Cache](outer, token)
			if err != nil {
				return err
			}
			err = outer.WithScope(func(inner *Container) error {
				innerInstance, err := Resolve[*Cache](inner, token)
				if err != nil {
					return err
				}
				assert.NotSame(t, outerInstance, innerInstance)
				return nil
			})
			if err != nil {
				return err
			}
			// back in the outer scope, the original instance is still cached
			again, err := Resolve[*Cache](outer, token)
			if err != nil {
				return err
			}
			assert.Same(t, outerInstance, again)
			return nil
		})

		// THEN
		require.NoError(t, err)
		assert.Equal(t, int32(2), builds.Load())
	})

	t.Run("it should hand a scoped instance value to every scope without rebuilding", func(t *testing.T) {
		// GIVEN
		c := New()
		token := NewToken[*Cache]("shared")
		value := &Cache{Backend: "fixed"}
		require.NoError(t, c.ScopedInstance(token, value))

		// WHEN / THEN
		_, err := c.Get(token)
		var noScope *ScopeRequiredError
		require.ErrorAs(t, err, &noScope, "a scoped instance still requires a scope")

		err = c.WithScope(func(sc *Container) error {
			got, err := Resolve[*Cache](sc, token)
			if err != nil {
				return err
			}
			assert.Same(t, value, got)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("it should expose scope presence on the handle", func(t *testing.T) {
		// GIVEN
		c := New()

		// WHEN / THEN
		assert.False(t, c.HasScope())
		_, ok := c.CurrentScope()
		assert.False(t, ok)

		err := c.WithScope(func(sc *Container) error {
			assert.True(t, sc.HasScope())
			s, ok := sc.CurrentScope()
			assert.True(t, ok)
			assert.Same(t, sc, s.Container())
			// the parent handle is untouched
			assert.False(t, c.HasScope())
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("it should propagate the scope to nested dependency construction", func(t *testing.T) {
		// GIVEN a transient service depending on a scoped session: both
		// services built in the same scope must share the session
		c := New()
		session := NewToken[*Cache]("session")
		service := NewToken[*Database]("service")
		require.NoError(t, c.Scoped(session, func(*Container) (any, error) { return &Cache{}, nil }))
		require.NoError(t, c.Bind(service, WithFactory(func(c *Container) (any, error) {
			s, err := Resolve[*Cache](c, session)
			if err != nil {
				return nil, err
			}
			return &Database{DSN: fmt.Sprintf("%p", s)}, nil
		})))

		// WHEN
		err := c.WithScope(func(sc *Container) error {
			a, err := Resolve[*Database](sc, service)
			if err != nil {
				return err
			}
			b, err := Resolve[*Database](sc, service)
			if err != nil {
				return err
			}
			// transient wrappers differ, the scoped session inside is shared
			assert.NotSame(t, a, b)
			assert.Equal(t, a.DSN, b.DSN)
			return nil
		})

		// THEN
		require.NoError(t, err)
	})
}
