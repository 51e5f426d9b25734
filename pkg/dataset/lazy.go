package dataset

import "github.com/databrook/databrook/pkg/sample"

// Lazy is a Dataset defined purely by a length and an index remap closure
// over a source Dataset. Repeated slicing composes the remap closures over
// the same source rather than nesting Dataset wrappers, so Get makes a
// single call into the source regardless of how many times Slice was
// chained; each chained Slice adds one closure call to the remap.
type Lazy[S sample.Sample] struct {
	length int
	remap  func(i int) int
	source Dataset[S]
}

// NewLazy builds a Lazy dataset of the given length, mapping logical index i
// to source.Get(remap(i)). remap must return a value in [0, source.Len()).
func NewLazy[S sample.Sample](length int, source Dataset[S], remap func(i int) int) Lazy[S] {
	return Lazy[S]{length: length, remap: remap, source: source}
}

// Len implements Dataset.
func (d Lazy[S]) Len() int { return d.length }

// Source returns the underlying Dataset this view remaps into, primarily
// useful for tests asserting that chained slices compose rather than nest.
func (d Lazy[S]) Source() Dataset[S] { return d.source }

// Get implements Dataset.
func (d Lazy[S]) Get(i int) (S, error) {
	var zero S

	if i < 0 || i >= d.length {
		return zero, indexErr(i, d.length)
	}

	return d.source.Get(d.remap(i))
}

// Slice implements Dataset, composing the new affine remap with the
// receiver's existing one instead of wrapping a second layer.
func (d Lazy[S]) Slice(start, stop, step int) Dataset[S] {
	length, normStart, normStep := normalizeSlice(d.length, start, stop, step)
	outer := d.remap

	return Lazy[S]{
		length: length,
		remap: func(j int) int {
			return outer(normStart + j*normStep)
		},
		source: d.source,
	}
}

// SliceOf builds the Lazy view produced by slicing an arbitrary Dataset[S].
// It exists so packages implementing their own Dataset (Cat, Zip, CacheOp,
// ...) can satisfy Dataset.Slice without duplicating the slice-normalization
// math.
func SliceOf[S sample.Sample](source Dataset[S], start, stop, step int) Dataset[S] {
	return newLazySlice[S](source, start, stop, step)
}

// newLazySlice builds the Lazy view produced by slicing any Dataset[S]
// (typically a List, or another concrete Dataset that isn't already Lazy).
func newLazySlice[S sample.Sample](source Dataset[S], start, stop, step int) Lazy[S] {
	length, normStart, normStep := normalizeSlice(source.Len(), start, stop, step)

	return Lazy[S]{
		length: length,
		remap: func(j int) int {
			return normStart + j*normStep
		},
		source: source,
	}
}
