// Package runner runs units of work concurrently, each inside its own
// container scope.
package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/beynacjs/ioc"
)

// Runnable is a unit of work executed inside a container scope.
type Runnable interface {
	Run(ctx context.Context, c *ioc.Container) error
}

// RunFunc adapts a plain function to Runnable.
type RunFunc func(ctx context.Context, c *ioc.Container) error

func (f RunFunc) Run(ctx context.Context, c *ioc.Container) error {
	return f(ctx, c)
}

// RunAll runs every runnable concurrently, each wrapped in exactly one fresh
// scope so scoped bindings are isolated per runnable. It blocks until all
// runnables finish and returns the first error.
func RunAll(parentCtx context.Context, c *ioc.Container, runnables ...Runnable) error {
	group, ctx := errgroup.WithContext(parentCtx)

	for _, runnable := range runnables {
		group.Go(func() error {
			return c.WithScope(func(sc *ioc.Container) error {
				return runnable.Run(ctx, sc)
			})
		})
	}

	return group.Wait()
}
