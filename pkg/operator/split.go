package operator

import (
	"fmt"
	"math"

	"github.com/databrook/databrook/pkg/dataset"
	"github.com/databrook/databrook/pkg/sample"
)

// Batch partitions d into contiguous slices of size elements each; the
// last slice may be short. Returns ErrConfig if size <= 0.
func Batch[S sample.Sample](d dataset.Dataset[S], size int) ([]dataset.Dataset[S], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: batch size must be > 0, got %d", ErrConfig, size)
	}

	n := d.Len()
	batches := make([]dataset.Dataset[S], 0, (n+size-1)/max1(size))

	for start := 0; start < n; start += size {
		stop := min(start+size, n)
		batches = append(batches, d.Slice(start, stop, 1))
	}

	return batches, nil
}

// Chunk partitions d into n near-equal slices; the first |x| mod n chunks
// get one extra element. Returns ErrConfig if n <= 0.
func Chunk[S sample.Sample](d dataset.Dataset[S], n int) ([]dataset.Dataset[S], error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: chunk count must be > 0, got %d", ErrConfig, n)
	}

	total := d.Len()
	base := total / n
	rem := total % n

	chunks := make([]dataset.Dataset[S], n)
	start := 0

	for i := range n {
		size := base
		if i < rem {
			size++
		}

		chunks[i] = d.Slice(start, start+size, 1)
		start += size
	}

	return chunks, nil
}

// SplitKind tags a SplitSize's variant.
type SplitKind int

const (
	// SplitInt is a literal sample count.
	SplitInt SplitKind = iota
	// SplitFloat is a fraction of the source length.
	SplitFloat
	// SplitNone takes whatever is left over.
	SplitNone
)

// SplitSize is one entry of a Split call: either a literal count, a
// fraction, or (at most once per call) the remainder.
type SplitSize struct {
	Kind  SplitKind
	Int   int
	Float float64
}

// Count builds a literal-count SplitSize.
func Count(n int) SplitSize { return SplitSize{Kind: SplitInt, Int: n} }

// Fraction builds a fractional SplitSize.
func Fraction(f float64) SplitSize { return SplitSize{Kind: SplitFloat, Float: f} }

// Remainder builds the SplitSize that absorbs whatever size is left over.
// At most one Remainder entry is allowed per Split call.
func Remainder() SplitSize { return SplitSize{Kind: SplitNone} }

// Split partitions d according to sizes: all-SplitInt entries are literal
// counts; all-SplitFloat entries are fractions of d.Len(), each floored
// independently; at most one SplitNone entry takes the remainder after the
// others are accounted for. Mixing SplitInt and SplitFloat, or supplying
// more than one SplitNone, returns ErrConfig.
func Split[S sample.Sample](d dataset.Dataset[S], sizes []SplitSize) ([]dataset.Dataset[S], error) {
	var hasInt, hasFloat bool

	noneIdx := -1

	for i, s := range sizes {
		switch s.Kind {
		case SplitInt:
			hasInt = true
		case SplitFloat:
			hasFloat = true
		case SplitNone:
			if noneIdx >= 0 {
				return nil, fmt.Errorf("%w: at most one size may be the remainder", ErrConfig)
			}

			noneIdx = i
		}
	}

	if hasInt && hasFloat {
		return nil, fmt.Errorf("%w: sizes must be all counts or all fractions, not mixed", ErrConfig)
	}

	n := d.Len()
	counts := make([]int, len(sizes))
	sum := 0

	for i, s := range sizes {
		switch s.Kind {
		case SplitInt:
			counts[i] = s.Int
			sum += s.Int
		case SplitFloat:
			c := int(math.Floor(s.Float * float64(n)))
			counts[i] = c
			sum += c
		case SplitNone:
			// filled in below
		}
	}

	if noneIdx >= 0 {
		counts[noneIdx] = n - sum
	}

	out := make([]dataset.Dataset[S], len(sizes))
	start := 0

	for i, c := range counts {
		out[i] = d.Slice(start, start+c, 1)
		start += c
	}

	return out, nil
}

func max1(n int) int {
	if n < 1 {
		return 1
	}

	return n
}
