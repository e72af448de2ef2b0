package ioc

import (
	"fmt"
)

// ServiceProvider groups related bindings so subsystems can register their
// own services at boot.
//
// Register must only bind; resolving other services belongs in Boot, which
// runs after every provider has registered.
type ServiceProvider interface {
	Register(c *Container) error

	// Boot runs after all providers are registered; safe to resolve here.
	Boot(c *Container) error

	// Provides lists the keys this provider registers. Required for deferred
	// providers, informational for eager ones.
	Provides() []Key

	// IsDeferred makes the provider register lazily, on first resolution of
	// one of its Provides keys.
	IsDeferred() bool
}

// EmptyRegistry is the marker embedded by the struct that anchors generated
// provider registration; see cmd/iocgen.
type EmptyRegistry struct{}

// BaseProvider is an embeddable no-op implementation of everything but
// Register.
type BaseProvider struct{}

func (BaseProvider) Boot(*Container) error { return nil }
func (BaseProvider) Provides() []Key       { return nil }
func (BaseProvider) IsDeferred() bool      { return false }

// ProviderRegistry manages registration and booting of service providers,
// including lazy registration of deferred ones.
type ProviderRegistry struct {
	c          *Container
	eager      []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to a container.
func NewProviderRegistry(c *Container) *ProviderRegistry {
	return &ProviderRegistry{
		c:          c,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider. Eager providers register immediately; deferred
// providers install placeholder bindings that trigger the real registration
// on first resolution.
func (r *ProviderRegistry) Register(p ServiceProvider) error {
	if r.registered[p] {
		return nil
	}
	r.registered[p] = true

	if p.IsDeferred() {
		return r.interceptDeferred(p)
	}

	if err := p.Register(r.c); err != nil {
		return fmt.Errorf("failed to register provider %T:\n\t%w", p, err)
	}
	r.eager = append(r.eager, p)

	if r.booted {
		return p.Boot(r.c)
	}
	return nil
}

// interceptDeferred binds a placeholder for each provided key. The first
// resolution registers the provider for real and resolves again through the
// replacement binding.
func (r *ProviderRegistry) interceptDeferred(p ServiceProvider) error {
	loaded := false
	for _, key := range p.Provides() {
		inFlight := false
		err := r.c.Bind(key, WithFactory(func(c *Container) (any, error) {
			if inFlight {
				return nil, fmt.Errorf("deferred provider %T did not register %s", p, renderKey(key))
			}
			inFlight = true
			defer func() { inFlight = false }()

			if !loaded {
				loaded = true
				if err := p.Register(c); err != nil {
					return nil, fmt.Errorf("failed to register deferred provider %T:\n\t%w", p, err)
				}
				if r.booted {
					if err := p.Boot(c); err != nil {
						return nil, fmt.Errorf("failed to boot deferred provider %T:\n\t%w", p, err)
					}
				}
			}
			// Resolve through the replacement binding with a fresh build
			// state: the placeholder's own frame is still on the stack and
			// must not trip cycle detection for the key it stands in for.
			fresh := &Container{reg: c.reg, scope: c.scope}
			return fresh.Get(key)
		}))
		if err != nil {
			return fmt.Errorf("failed to install deferred binding for %s:\n\t%w", renderKey(key), err)
		}
	}
	return nil
}

// Boot boots all eagerly registered providers. Call once, after every
// provider has been registered.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true
	for _, p := range r.eager {
		if err := p.Boot(r.c); err != nil {
			return fmt.Errorf("failed to boot provider %T:\n\t%w", p, err)
		}
	}
	return nil
}

// Booted reports whether Boot has run.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns the eagerly registered providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }
