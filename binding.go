package ioc

// Lifecycle controls how long a resolved instance is kept.
type Lifecycle string

const (
	// Transient bindings build a fresh instance on every resolution.
	Transient Lifecycle = "transient"
	// Singleton bindings build once and cache on the binding itself.
	Singleton Lifecycle = "singleton"
	// Scoped bindings cache per active scope, never on the binding.
	Scoped Lifecycle = "scoped"
)

// Factory builds a value for a binding. It receives the container handle the
// resolution is running under, so nested Get calls keep the current build
// stack and scope association.
type Factory func(c *Container) (any, error)

// Extender transforms a freshly built instance before it is cached or
// returned. It may return a different instance entirely.
type Extender func(instance any, c *Container) (any, error)

type bindingKind int

const (
	// kindImplicit is the auto-created placeholder for keys that were looked
	// up or decorated before ever being bound.
	kindImplicit bindingKind = iota
	kindConcrete
	kindAlias
)

// binding is the resolution rule stored for one key.
//
// contextual, extenders, reverseAliases, implementation and resolved are
// use-site metadata, not instance-lifecycle data: they survive a rebind of
// the key (see adoptMetadata).
type binding struct {
	key  Key
	kind bindingKind

	// concrete variant
	factory     Factory
	instance    any
	hasInstance bool
	lifecycle   Lifecycle
	resolved    bool

	// alias variant
	to Key

	// metadata
	contextual     map[Key]Factory
	extenders      []Extender
	reverseAliases []Key
	implementation Key
}

func newBinding(key Key, kind bindingKind) *binding {
	return &binding{key: key, kind: kind}
}

// adoptMetadata carries the use-site metadata of the binding being replaced
// onto its replacement.
func (b *binding) adoptMetadata(prev *binding) {
	if prev == nil {
		return
	}
	b.contextual = prev.contextual
	b.extenders = prev.extenders
	b.reverseAliases = prev.reverseAliases
	b.resolved = prev.resolved
	if b.implementation == nil {
		b.implementation = prev.implementation
	}
}

func (b *binding) effectiveLifecycle() Lifecycle {
	if b.kind != kindConcrete || b.lifecycle == "" {
		return Transient
	}
	return b.lifecycle
}

func (b *binding) addReverseAlias(from Key) {
	for _, k := range b.reverseAliases {
		if k == from {
			return
		}
	}
	b.reverseAliases = append(b.reverseAliases, from)
}

func (b *binding) removeReverseAlias(from Key) {
	for i, k := range b.reverseAliases {
		if k == from {
			b.reverseAliases = append(b.reverseAliases[:i], b.reverseAliases[i+1:]...)
			return
		}
	}
}

func (b *binding) addContextual(dep Key, f Factory) {
	if b.contextual == nil {
		b.contextual = make(map[Key]Factory)
	}
	b.contextual[dep] = f
}
