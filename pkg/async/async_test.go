package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flaglite/pkg/async"
)

func TestGo(t *testing.T) {
	t.Parallel()

	t.Run("returns result", func(t *testing.T) {
		t.Parallel()
		f := async.Go(context.Background(), func(context.Context) (int, error) {
			time.Sleep(10 * time.Millisecond)
			return 42, nil
		})

		v, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.True(t, f.IsComplete())
	})

	t.Run("returns error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		f := async.Go(context.Background(), func(context.Context) (string, error) {
			return "", boom
		})

		_, err := f.Await()
		assert.ErrorIs(t, err, boom)
	})

	t.Run("runs even with cancelled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var ran atomic.Bool
		f := async.Go(ctx, func(ctx context.Context) (bool, error) {
			ran.Store(true)
			return ctx.Err() == nil, nil
		})

		v, err := f.Await()
		require.NoError(t, err)
		assert.False(t, v)
		assert.True(t, ran.Load())
	})

	t.Run("recovers panic", func(t *testing.T) {
		t.Parallel()
		f := async.Go(context.Background(), func(context.Context) (int, error) {
			panic("kaboom")
		})

		v, err := f.Await()
		assert.ErrorIs(t, err, async.ErrPanic)
		assert.Contains(t, err.Error(), "kaboom")
		assert.Zero(t, v)
	})

	t.Run("await from many goroutines", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		f := async.Go(context.Background(), func(context.Context) (int, error) {
			<-release
			return 7, nil
		})

		results := make(chan int, 10)
		for range 10 {
			go func() {
				v, _ := f.Await()
				results <- v
			}()
		}
		assert.False(t, f.IsComplete())
		close(release)

		for range 10 {
			assert.Equal(t, 7, <-results)
		}
	})
}

func TestResolved(t *testing.T) {
	t.Parallel()

	f := async.Resolved(true, nil)
	assert.True(t, f.IsComplete())
	select {
	case <-f.Done():
	default:
		t.Fatal("resolved future must be done")
	}

	v, err := f.Await()
	require.NoError(t, err)
	assert.True(t, v)
}

func TestAwaitContext(t *testing.T) {
	t.Parallel()

	t.Run("context ends first", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		defer close(release)

		f := async.Go(context.Background(), func(context.Context) (int, error) {
			<-release
			return 1, nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := f.AwaitContext(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, f.IsComplete(), "abandoning the wait does not stop the computation")
	})

	t.Run("future completes first", func(t *testing.T) {
		t.Parallel()
		f := async.Resolved(3, nil)
		v, err := f.AwaitContext(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, v)
	})
}

func TestWaitAll(t *testing.T) {
	t.Parallel()

	t.Run("collects results in order", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		futures := []*async.Future[int]{
			async.Go(ctx, func(context.Context) (int, error) {
				time.Sleep(20 * time.Millisecond)
				return 1, nil
			}),
			async.Resolved(2, nil),
			async.Go(ctx, func(context.Context) (int, error) { return 3, nil }),
		}

		results, err := async.WaitAll(futures...)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, results)
	})

	t.Run("reports first error but waits for all", func(t *testing.T) {
		t.Parallel()
		first := errors.New("first")
		var finished atomic.Int32
		ctx := context.Background()

		results, err := async.WaitAll(
			async.Resolved(0, first),
			async.Go(ctx, func(context.Context) (int, error) {
				time.Sleep(10 * time.Millisecond)
				finished.Add(1)
				return 5, errors.New("second")
			}),
		)
		assert.ErrorIs(t, err, first)
		assert.Equal(t, []int{0, 5}, results)
		assert.Equal(t, int32(1), finished.Load())
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		results, err := async.WaitAll[int]()
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
