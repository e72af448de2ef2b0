package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beynacjs/ioc"
)

type session struct {
	id int32
}

func TestRunAll(t *testing.T) {
	t.Run("it should run every runnable and wait for all of them", func(t *testing.T) {
		// GIVEN
		c := ioc.New()
		var ran atomic.Int32
		work := RunFunc(func(context.Context, *ioc.Container) error {
			ran.Add(1)
			return nil
		})

		// WHEN
		err := RunAll(context.Background(), c, work, work, work)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, int32(3), ran.Load())
	})

	t.Run("it should give each runnable its own scope", func(t *testing.T) {
		// GIVEN a scoped session: every runnable must see a distinct instance
		c := ioc.New()
		token := ioc.NewToken[*session]("session")
		var next atomic.Int32
		require.NoError(t, c.Scoped(token, func(*ioc.Container) (any, error) {
			return &session{id: next.Add(1)}, nil
		}))

		var mu sync.Mutex
		seen := make(map[*session]bool)
		work := RunFunc(func(_ context.Context, sc *ioc.Container) error {
			first, err := ioc.Resolve[*session](sc, token)
			if err != nil {
				return err
			}
			second, err := ioc.Resolve[*session](sc, token)
			if err != nil {
				return err
			}
			assert.Same(t, first, second)
			mu.Lock()
			seen[first] = true
			mu.Unlock()
			return nil
		})

		// WHEN
		err := RunAll(context.Background(), c, work, work, work)

		// THEN
		require.NoError(t, err)
		assert.Len(t, seen, 3)
		assert.Equal(t, int32(3), next.Load())
	})

	t.Run("it should cancel the shared context when one runnable fails", func(t *testing.T) {
		// GIVEN
		c := ioc.New()
		boom := errors.New("boom")
		failing := RunFunc(func(context.Context, *ioc.Container) error {
			return boom
		})
		waiting := RunFunc(func(ctx context.Context, _ *ioc.Container) error {
			<-ctx.Done()
			return nil
		})

		// WHEN
		err := RunAll(context.Background(), c, failing, waiting)

		// THEN
		require.ErrorIs(t, err, boom)
	})
}
