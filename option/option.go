// Package option implements the variadic functional options pattern used
// across the module's configuration surfaces.
package option

// Option mutates an options struct of type T.
type Option[T any] func(opts *T)

// Build applies opts to the default options struct in order and returns it.
func Build[T any](defaultOpts *T, opts ...Option[T]) *T {
	for _, opt := range opts {
		opt(defaultOpts)
	}
	return defaultOpts
}
