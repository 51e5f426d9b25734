package dataset

import "github.com/databrook/databrook/pkg/sample"

// List is a fully materialized Dataset backed by a slice already resident
// in memory.
type List[S sample.Sample] struct {
	items []S
}

// NewList wraps items as a List dataset. items is not copied; callers must
// not mutate it afterwards.
func NewList[S sample.Sample](items []S) List[S] {
	return List[S]{items: items}
}

// Len implements Dataset.
func (l List[S]) Len() int { return len(l.items) }

// Get implements Dataset.
func (l List[S]) Get(i int) (S, error) {
	var zero S

	if i < 0 || i >= len(l.items) {
		return zero, indexErr(i, len(l.items))
	}

	return l.items[i], nil
}

// Slice implements Dataset by wrapping an index remap over the receiver; it
// does not copy the underlying slice.
func (l List[S]) Slice(start, stop, step int) Dataset[S] {
	return newLazySlice[S](l, start, stop, step)
}
