package grabber

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestYieldFlushesPendingErrorWhenEarlierIndexNeverArrives exercises the
// ordered path directly: index 0's result never arrives on results (its
// worker's send lost the race against context cancellation, the scenario
// that produces a gap when an earlier index's worker never runs), and index
// 1 carries a failure. yield must still surface the failure instead of
// silently closing out once results drains.
func TestYieldFlushesPendingErrorWhenEarlierIndexNeverArrives(t *testing.T) {
	g := New(WithKeepOrder(true))

	results := make(chan Task[int], 2)
	out := make(chan Task[int])

	sentinel := errors.New("boom")

	results <- Task[int]{Index: 1, Err: sentinel}
	close(results)

	done := make(chan []Task[int])

	go func() {
		var got []Task[int]
		for tk := range out {
			got = append(got, tk)
		}
		done <- got
	}()

	yield(context.Background(), g, results, out)
	close(out)

	got := <-done
	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0].Err, sentinel)
	assert.Equal(t, 1, got[0].Index)
}

// TestYieldPicksLowestIndexedPendingError covers the (rare) case of
// multiple pending failures stuck behind a gap: the lowest index wins, for
// a deterministic result regardless of worker completion order.
func TestYieldPicksLowestIndexedPendingError(t *testing.T) {
	g := New(WithKeepOrder(true))

	results := make(chan Task[int], 2)
	out := make(chan Task[int])

	sentinelA := errors.New("a")
	sentinelB := errors.New("b")

	results <- Task[int]{Index: 3, Err: sentinelB}
	results <- Task[int]{Index: 2, Err: sentinelA}
	close(results)

	done := make(chan []Task[int])

	go func() {
		var got []Task[int]
		for tk := range out {
			got = append(got, tk)
		}
		done <- got
	}()

	yield(context.Background(), g, results, out)
	close(out)

	got := <-done
	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0].Err, sentinelA)
	assert.Equal(t, 2, got[0].Index)
}
