package ioc

import (
	"iter"
)

// Tag groups bindings for bulk retrieval. Tags have identity semantics, like
// keys: create them once with NewTag and share the pointer.
type Tag struct {
	name string
}

// NewTag creates a tag. The name is only used in logs.
func NewTag(name string) *Tag {
	return &Tag{name: name}
}

func (t *Tag) String() string {
	return t.name
}

// Tag records every (tag, key) pair, many-to-many. Tagging does not require
// the keys to be bound yet.
func (c *Container) Tag(keys []Key, tags ...*Tag) {
	c.reg.mu.Lock()
	for _, tag := range tags {
		c.reg.tags[tag] = append(c.reg.tags[tag], keys...)
	}
	c.reg.mu.Unlock()
}

// Tagged returns a lazy sequence over every key registered under the given
// tags, in tag order then registration order. A service is only resolved
// when the consumer advances the sequence past it; iterating half the
// sequence builds half the services.
func (c *Container) Tagged(tags ...*Tag) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for _, tag := range tags {
			c.reg.mu.RLock()
			keys := append([]Key(nil), c.reg.tags[tag]...)
			c.reg.mu.RUnlock()

			for _, key := range keys {
				if !yield(c.Get(key)) {
					return
				}
			}
		}
	}
}
