package grabber_test

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databrook/databrook/pkg/grabber"
)

func collect[T any](ch <-chan grabber.Task[T]) []grabber.Task[T] {
	var out []grabber.Task[T]
	for t := range ch {
		out = append(out, t)
	}

	return out
}

func TestGrabInlineCoversEveryIndexOnce(t *testing.T) {
	g := grabber.New()

	ch := grabber.Grab(context.Background(), g, 10, func(_ context.Context, i int) (int, error) {
		return i * i, nil
	})

	tasks := collect(ch)
	require.Len(t, tasks, 10)

	seen := make(map[int]bool)
	for _, task := range tasks {
		require.NoError(t, task.Err)
		assert.Equal(t, task.Index*task.Index, task.Value)
		seen[task.Index] = true
	}

	assert.Len(t, seen, 10)
}

func TestGrabParallelCoversEveryIndexOnce(t *testing.T) {
	g := grabber.New(grabber.WithWorkers(4), grabber.WithPrefetch(3))

	var calls int64

	ch := grabber.Grab(context.Background(), g, 50, func(_ context.Context, i int) (int, error) {
		atomic.AddInt64(&calls, 1)

		return i, nil
	})

	tasks := collect(ch)
	require.Len(t, tasks, 50)
	assert.Equal(t, int64(50), calls)

	indices := make([]int, len(tasks))
	for i, task := range tasks {
		indices[i] = task.Index
	}

	sort.Ints(indices)
	for i, idx := range indices {
		assert.Equal(t, i, idx)
	}
}

func TestGrabKeepOrderYieldsAscending(t *testing.T) {
	g := grabber.New(grabber.WithWorkers(8), grabber.WithKeepOrder(true))

	ch := grabber.Grab(context.Background(), g, 30, func(_ context.Context, i int) (int, error) {
		return i, nil
	})

	tasks := collect(ch)
	require.Len(t, tasks, 30)

	for i, task := range tasks {
		assert.Equal(t, i, task.Index)
	}
}

func TestGrabPropagatesFirstError(t *testing.T) {
	sentinel := errors.New("boom")
	g := grabber.New(grabber.WithWorkers(2), grabber.WithKeepOrder(true))

	ch := grabber.Grab(context.Background(), g, 20, func(_ context.Context, i int) (int, error) {
		if i == 5 {
			return 0, sentinel
		}

		return i, nil
	})

	var sawErr bool

	for task := range ch {
		if task.Err != nil {
			sawErr = true

			assert.ErrorIs(t, task.Err, sentinel)
			assert.Equal(t, 5, task.Index)
		}
	}

	assert.True(t, sawErr)
}

func TestGrabZeroLength(t *testing.T) {
	g := grabber.New()

	ch := grabber.Grab(context.Background(), g, 0, func(context.Context, int) (int, error) {
		t.Fatal("fn must not be called for an empty range")

		return 0, nil
	})

	tasks := collect(ch)
	assert.Empty(t, tasks)
}

func TestGrabWithStatsTotalsEveryItemAcrossWorkers(t *testing.T) {
	g := grabber.New(grabber.WithWorkers(4))

	ch, stats := grabber.GrabWithStats(context.Background(), g, 40, func(_ context.Context, i int) (int, error) {
		return i, nil
	})

	tasks := collect(ch)
	require.Len(t, tasks, 40)

	assert.Equal(t, int64(40), stats.Items)
	require.Len(t, stats.PerWorker, 4)

	var sum int64
	for _, c := range stats.PerWorker {
		sum += c
	}

	assert.Equal(t, int64(40), sum)
	assert.GreaterOrEqual(t, stats.Wall, time.Duration(0))
}
