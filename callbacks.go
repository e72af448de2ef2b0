package ioc

import (
	"reflect"
)

type (
	// ResolvingCallback observes instances produced for a key.
	ResolvingCallback func(instance any, c *Container)

	// RebindingCallback observes the fresh instance resolved after a key was
	// rebound.
	RebindingCallback func(instance any, c *Container)
)

// OnResolving registers a callback fired every time an instance is produced
// for the key, including scoped and singleton cache hits.
//
// Registering against an interface type key Of[I]() turns the callback into a
// capability listener: it fires for any produced value satisfying I, whatever
// key the value was resolved under, and never for values that do not satisfy
// it.
func (c *Container) OnResolving(key Key, cb ResolvingCallback) {
	c.reg.mu.Lock()
	canonical, _, err := c.reg.chaseLocked(key)
	if err != nil {
		canonical = key
	}
	c.reg.resolving[canonical] = append(c.reg.resolving[canonical], cb)
	c.reg.mu.Unlock()
}

// OnRebinding registers a callback fired when Bind or Alias overwrites an
// existing binding for the key. The dispatch resolves the key before calling
// back, so a rebinding callback forces eager instantiation of the new
// binding; deliberate, it is what lets long-lived consumers swap in a
// refreshed dependency.
func (c *Container) OnRebinding(key Key, cb RebindingCallback) {
	c.reg.mu.Lock()
	c.reg.rebound[key] = append(c.reg.rebound[key], cb)
	c.reg.mu.Unlock()
}

// fireResolving dispatches the resolving callbacks for a produced instance:
// first those registered for the canonical key, then every capability
// listener whose interface the instance satisfies.
func (c *Container) fireResolving(canonical Key, instance any, handle *Container) {
	c.reg.mu.RLock()
	direct := append([]ResolvingCallback(nil), c.reg.resolving[canonical]...)

	var capability []ResolvingCallback
	if instance != nil {
		instTyp := reflect.TypeOf(instance)
		for key, list := range c.reg.resolving {
			if key == canonical {
				continue
			}
			tk, ok := key.(typeKey)
			if !ok || tk.typ.Kind() != reflect.Interface {
				continue
			}
			if instTyp.Implements(tk.typ) {
				capability = append(capability, list...)
			}
		}
	}
	c.reg.mu.RUnlock()

	for _, cb := range direct {
		cb(instance, handle)
	}
	for _, cb := range capability {
		cb(instance, handle)
	}
}

// fireRebound resolves the key and hands the fresh instance to every
// rebinding callback. A no-op when nothing is listening.
func (c *Container) fireRebound(key Key) error {
	c.reg.mu.RLock()
	cbs := append([]RebindingCallback(nil), c.reg.rebound[key]...)
	c.reg.mu.RUnlock()
	if len(cbs) == 0 {
		return nil
	}

	c.reg.logger.Debug().Str("key", key.DebugName()).Msg("dispatching rebinding callbacks")

	instance, err := c.Get(key)
	if err != nil {
		return err
	}
	for _, cb := range cbs {
		cb(instance, c)
	}
	return nil
}
