// Package slices holds small generic slice helpers.
package slices

// Map transforms every element of a slice through the mapper.
func Map[F any, T any](original []F, mapper func(F) T) []T {
	destination := make([]T, len(original))
	for i, item := range original {
		destination[i] = mapper(item)
	}
	return destination
}
