// Package dataset defines the lazy, indexable sequence of samples that
// every pipeline operator consumes and produces.
package dataset

import (
	"errors"
	"fmt"

	"github.com/databrook/databrook/pkg/sample"
)

// ErrIndexOutOfRange is returned by Get when the index falls outside
// [0, Len()).
var ErrIndexOutOfRange = errors.New("dataset: index out of range")

// Dataset is a finite, randomly-indexable sequence of samples. Get and
// Slice must be safe for concurrent use by multiple goroutines; neither
// ever triggers a full materialization unless the concrete implementation
// documents otherwise (List does, by construction).
type Dataset[S sample.Sample] interface {
	// Len returns the number of samples.
	Len() int
	// Get returns the sample at index i, or ErrIndexOutOfRange if i is out
	// of bounds.
	Get(i int) (S, error)
	// Slice returns a view over [start, stop) stepping by step, using
	// Python slice semantics (negative step reverses, out-of-range bounds
	// clamp). It never copies samples: the returned Dataset composes an
	// index remap over the receiver.
	Slice(start, stop, step int) Dataset[S]
}

func indexErr(i, n int) error {
	return fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, n)
}
