package ioc

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	cacheToken = NewToken[*Cache]("provider-cache")
	dbToken    = NewToken[*Database]("provider-db")
)

type cacheProvider struct {
	BaseProvider
	registers atomic.Int32
	boots     atomic.Int32
	deferred  bool
}

func (p *cacheProvider) Register(c *Container) error {
	p.registers.Add(1)
	return c.Singleton(cacheToken, func(*Container) (any, error) {
		return &Cache{Backend: "redis"}, nil
	})
}

func (p *cacheProvider) Boot(*Container) error {
	p.boots.Add(1)
	return nil
}

func (p *cacheProvider) Provides() []Key  { return []Key{cacheToken} }
func (p *cacheProvider) IsDeferred() bool { return p.deferred }

type forgetfulProvider struct {
	BaseProvider
}

func (p *forgetfulProvider) Register(*Container) error { return nil }
func (p *forgetfulProvider) Provides() []Key           { return []Key{dbToken} }
func (p *forgetfulProvider) IsDeferred() bool          { return true }

func TestProviderRegistry(t *testing.T) {
	t.Run("it should register eagerly and boot once", func(t *testing.T) {
		// GIVEN
		c := New()
		reg := NewProviderRegistry(c)
		p := &cacheProvider{}

		// WHEN
		require.NoError(t, reg.Register(p))
		require.NoError(t, reg.Boot())
		require.NoError(t, reg.Boot())

		// THEN
		assert.Equal(t, int32(1), p.registers.Load())
		assert.Equal(t, int32(1), p.boots.Load())
		got, err := Resolve[*Cache](c, cacheToken)
		require.NoError(t, err)
		assert.Equal(t, "redis", got.Backend)
	})

	t.Run("it should boot a provider registered after boot immediately", func(t *testing.T) {
		// GIVEN
		c := New()
		reg := NewProviderRegistry(c)
		require.NoError(t, reg.Boot())
		p := &cacheProvider{}

		// WHEN
		require.NoError(t, reg.Register(p))

		// THEN
		assert.Equal(t, int32(1), p.boots.Load())
	})

	t.Run("it should ignore duplicate registrations of the same provider", func(t *testing.T) {
		// GIVEN
		c := New()
		reg := NewProviderRegistry(c)
		p := &cacheProvider{}
		require.NoError(t, reg.Register(p))

		// WHEN
		require.NoError(t, reg.Register(p))

		// THEN
		assert.Equal(t, int32(1), p.registers.Load())
		assert.Len(t, reg.Providers(), 1)
	})

	t.Run("it should defer registration until a provided key is first resolved", func(t *testing.T) {
		// GIVEN
		c := New()
		reg := NewProviderRegistry(c)
		p := &cacheProvider{deferred: true}
		require.NoError(t, reg.Register(p))
		require.NoError(t, reg.Boot())

		// the provider has not run yet
		assert.Equal(t, int32(0), p.registers.Load())

		// WHEN
		first, err := Resolve[*Cache](c, cacheToken)
		require.NoError(t, err)
		second, err := Resolve[*Cache](c, cacheToken)
		require.NoError(t, err)

		// THEN registration happened exactly once and the singleton sticks
		assert.Equal(t, int32(1), p.registers.Load())
		assert.Equal(t, int32(1), p.boots.Load())
		assert.Same(t, first, second)
	})

	t.Run("it should not boot a deferred provider before the registry itself boots", func(t *testing.T) {
		// GIVEN
		c := New()
		reg := NewProviderRegistry(c)
		p := &cacheProvider{deferred: true}
		require.NoError(t, reg.Register(p))

		// WHEN resolving before Boot
		_, err := Resolve[*Cache](c, cacheToken)
		require.NoError(t, err)

		// THEN
		assert.Equal(t, int32(1), p.registers.Load())
		assert.Equal(t, int32(0), p.boots.Load())
	})

	t.Run("it should fail cleanly when a deferred provider never binds its key", func(t *testing.T) {
		// GIVEN
		c := New()
		reg := NewProviderRegistry(c)
		require.NoError(t, reg.Register(&forgetfulProvider{}))

		// WHEN
		_, err := c.Get(dbToken)

		// THEN
		require.Error(t, err)
		assert.Contains(t, err.Error(), "did not register")
	})
}
