// Package set provides a minimal generic set.
package set

// Set is a generic set of comparable values.
type Set[T comparable] map[T]struct{}

// New creates an empty set.
func New[T comparable]() Set[T] {
	return make(Set[T])
}

// NewWithValues creates a set containing the given values.
func NewWithValues[T comparable](values ...T) Set[T] {
	s := make(Set[T], len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add adds a value to the set.
func (s Set[T]) Add(value T) {
	s[value] = struct{}{}
}

// Contains reports whether the value is in the set.
func (s Set[T]) Contains(value T) bool {
	_, exists := s[value]
	return exists
}

// Remove removes a value from the set.
func (s Set[T]) Remove(value T) {
	delete(s, value)
}

// Size returns the number of values in the set.
func (s Set[T]) Size() int {
	return len(s)
}
