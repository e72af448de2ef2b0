package ioc

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlias(t *testing.T) {
	t.Run("it should resolve an alias to the same instance as its target", func(t *testing.T) {
		// GIVEN
		c := New()
		db := NewToken[*Database]("db")
		database := NewToken[*Database]("database")
		require.NoError(t, c.Singleton(db, func(*Container) (any, error) { return &Database{}, nil }))
		require.NoError(t, c.Alias(database, db))

		// WHEN
		fromAlias, err := Resolve[*Database](c, database)
		require.NoError(t, err)
		fromTarget, err := Resolve[*Database](c, db)
		require.NoError(t, err)

		// THEN
		assert.Same(t, fromTarget, fromAlias)
	})

	t.Run("it should stay transparent when the target is bound after the alias", func(t *testing.T) {
		// GIVEN
		c := New()
		db := NewToken[*Database]("db")
		database := NewToken[*Database]("database")
		require.NoError(t, c.Alias(database, db))

		// WHEN
		require.NoError(t, c.Singleton(db, func(*Container) (any, error) { return &Database{}, nil }))

		// THEN
		fromAlias, err := Resolve[*Database](c, database)
		require.NoError(t, err)
		fromTarget, err := Resolve[*Database](c, db)
		require.NoError(t, err)
		assert.Same(t, fromTarget, fromAlias)
	})

	t.Run("it should follow alias chains", func(t *testing.T) {
		// GIVEN
		c := New()
		a := NewToken[string]("a")
		b := NewToken[string]("b")
		target := NewToken[string]("target")
		require.NoError(t, c.SingletonInstance(target, "found"))
		require.NoError(t, c.Alias(a, b))
		require.NoError(t, c.Alias(b, target))

		// WHEN
		v, err := Resolve[string](c, a)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "found", v)
	})

	t.Run("it should reject aliasing a key to itself", func(t *testing.T) {
		// GIVEN
		c := New()
		token := NewToken[string]("self")

		// WHEN
		err := c.Alias(token, token)

		// THEN
		var selfErr *SelfAliasError
		require.ErrorAs(t, err, &selfErr)
		assert.Equal(t, "[self] is aliased to itself", err.Error())
	})

	t.Run("it should detect alias cycles and name the cycle in traversal order", func(t *testing.T) {
		// GIVEN
		c := New()
		foo := NewToken[string]("foo")
		bar := NewToken[string]("bar")
		baz := NewToken[string]("baz")
		require.NoError(t, c.Alias(foo, bar))
		require.NoError(t, c.Alias(bar, baz))
		require.NoError(t, c.Alias(baz, foo))

		// WHEN
		_, err := c.Get(foo)

		// THEN
		var cycleErr *CircularAliasError
		require.ErrorAs(t, err, &cycleErr)
		assert.Contains(t, err.Error(), "[foo] -> [bar] -> [baz] -> [foo]")
	})

	t.Run("it should repoint an alias, dropping the old reverse link", func(t *testing.T) {
		// GIVEN
		c := New()
		alias := NewToken[string]("alias")
		first := NewToken[string]("first")
		second := NewToken[string]("second")
		require.NoError(t, c.SingletonInstance(first, "one"))
		require.NoError(t, c.SingletonInstance(second, "two"))
		require.NoError(t, c.Alias(alias, first))

		// WHEN
		require.NoError(t, c.Alias(alias, second))

		// THEN
		v, err := Resolve[string](c, alias)
		require.NoError(t, err)
		assert.Equal(t, "two", v)

		// an extender registered on the repointed alias must no longer reach
		// the old target
		c.Extend(alias, func(instance any, _ *Container) (any, error) {
			return instance.(string) + "!", nil
		})
		old, err := Resolve[string](c, first)
		require.NoError(t, err)
		assert.Equal(t, "one", old)
	})
}

func TestExtendersAcrossAliases(t *testing.T) {
	t.Run("it should apply an extender exactly once when registered on an alias before the target is bound", func(t *testing.T) {
		// GIVEN
		c := New()
		alias := NewToken[string]("decorated")
		target := NewToken[string]("plain")
		var applications atomic.Int32
		c.Extend(alias, func(instance any, _ *Container) (any, error) {
			applications.Add(1)
			return instance.(string) + " extended", nil
		})

		// WHEN
		require.NoError(t, c.Alias(alias, target))
		require.NoError(t, c.Bind(target, WithFactory(func(*Container) (any, error) {
			return "value", nil
		})))

		// THEN
		v, err := Resolve[string](c, target)
		require.NoError(t, err)
		assert.Equal(t, "value extended", v)
		assert.Equal(t, int32(1), applications.Load())
	})

	t.Run("it should apply extenders from the target and all of its aliases in order", func(t *testing.T) {
		// GIVEN
		c := New()
		alias := NewToken[string]("alias")
		target := NewToken[string]("target")
		require.NoError(t, c.Bind(target, WithFactory(func(*Container) (any, error) {
			return "base", nil
		})))
		require.NoError(t, c.Alias(alias, target))
		c.Extend(target, func(instance any, _ *Container) (any, error) {
			return instance.(string) + "+target", nil
		})
		c.Extend(alias, func(instance any, _ *Container) (any, error) {
			return instance.(string) + "+alias", nil
		})

		// WHEN
		v, err := Resolve[string](c, alias)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "base+target+alias", v)
	})
}
