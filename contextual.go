package ioc

// ContextualBindingBuilder is the first half of the fluent contextual binding
// API: When(consumer).Needs(dep).Give(impl).
type ContextualBindingBuilder struct {
	c         *Container
	consumers []Key
}

// ContextualNeedsBuilder is the second half of the fluent contextual binding
// API, carrying the dependency being overridden.
type ContextualNeedsBuilder struct {
	c         *Container
	consumers []Key
	dep       Key
}

// When starts a contextual binding declaration for one or more consumers.
// The consumers do not need to be bound yet: declaring an override creates an
// implicit placeholder binding that a later Bind carries forward.
func (c *Container) When(consumers ...Key) *ContextualBindingBuilder {
	return &ContextualBindingBuilder{c: c, consumers: consumers}
}

// Needs names the dependency the consumers should receive differently.
func (b *ContextualBindingBuilder) Needs(dep Key) *ContextualNeedsBuilder {
	return &ContextualNeedsBuilder{c: b.c, consumers: b.consumers, dep: dep}
}

// Give resolves the override through the container by key, with no further
// context applied.
func (n *ContextualNeedsBuilder) Give(impl Key) {
	n.Create(func(c *Container) (any, error) {
		return c.Get(impl)
	})
}

// GiveValue installs a pre-built value as the override.
func (n *ContextualNeedsBuilder) GiveValue(v any) {
	n.Create(func(*Container) (any, error) {
		return v, nil
	})
}

// Create installs the factory directly as the override for every listed
// consumer.
func (n *ContextualNeedsBuilder) Create(f Factory) {
	n.c.reg.mu.Lock()
	for _, consumer := range n.consumers {
		b := n.c.reg.ensureLocked(consumer)
		b.addContextual(n.dep, f)
	}
	n.c.reg.mu.Unlock()
}

// findContextual looks up a contextual override for the (consumer, dep) pair.
// The override may have been registered against the consumer's canonical key
// or any alias of it, and keyed by the dependency's key, any alias of it, or
// the implementation key remembered by the dependency's binding.
func (r *registry) findContextual(consumer, dep Key) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, cb, err := r.chaseLocked(consumer)
	if err != nil || cb == nil {
		return nil, false
	}
	// canonical binding first, then every alias pointing at it
	consumerSide := r.aliasClosureLocked(cb)

	depCandidates := r.depCandidatesLocked(dep)
	for _, member := range consumerSide {
		for _, dk := range depCandidates {
			if f, ok := member.contextual[dk]; ok {
				return f, true
			}
		}
	}

	// the dependency may remember the implementation key it was bound with;
	// overrides registered against that key apply as well
	_, db, err := r.chaseLocked(dep)
	if err == nil && db != nil && db.implementation != nil {
		implCandidates := r.depCandidatesLocked(db.implementation)
		for _, member := range consumerSide {
			for _, dk := range implCandidates {
				if f, ok := member.contextual[dk]; ok {
					return f, true
				}
			}
		}
	}

	return nil, false
}

// depCandidatesLocked enumerates the keys an override for dep may have been
// registered under: the requested key itself, its canonical key, and every
// alias transitively pointing at the canonical binding.
func (r *registry) depCandidatesLocked(dep Key) []Key {
	candidates := []Key{dep}
	canonical, db, err := r.chaseLocked(dep)
	if err != nil {
		return candidates
	}
	if canonical != dep {
		candidates = append(candidates, canonical)
	}
	if db != nil {
		for _, member := range r.aliasClosureLocked(db) {
			k := member.key
			if k != dep && k != canonical {
				candidates = append(candidates, k)
			}
		}
	}
	return candidates
}
