package operator

import (
	"fmt"

	"github.com/databrook/databrook/pkg/dataset"
	"github.com/databrook/databrook/pkg/sample"
)

// Identity passes d through unchanged.
func Identity[S sample.Sample](d dataset.Dataset[S]) dataset.Dataset[S] { return d }

// Slice applies the standard start/stop/step slicing contract.
func Slice[S sample.Sample](d dataset.Dataset[S], start, stop, step int) dataset.Dataset[S] {
	return d.Slice(start, stop, step)
}

// Repeat returns a dataset of length n*d.Len(). Non-interleaved order
// repeats the whole sequence n times (x0..xk, x0..xk, ...); interleaved
// order repeats each element n times in place (x0,x0,...,x1,x1,...).
func Repeat[S sample.Sample](d dataset.Dataset[S], n int, interleave bool) dataset.Dataset[S] {
	base := d.Len()
	length := n * base

	remap := func(i int) int {
		if interleave {
			return i / n
		}

		return i % base
	}

	return dataset.NewLazy(length, d, remap)
}

// Cycle returns a dataset of length total whose element i is x[i mod
// |x|]. An empty source forces total to 0, guaranteeing Get is never
// called.
func Cycle[S sample.Sample](d dataset.Dataset[S], total int) dataset.Dataset[S] {
	base := d.Len()
	if base == 0 {
		total = 0
	}

	return dataset.NewLazy(total, d, func(i int) int { return i % base })
}

// Reverse returns a dataset where out[i] = x[|x|-1-i].
func Reverse[S sample.Sample](d dataset.Dataset[S]) dataset.Dataset[S] {
	n := d.Len()

	return dataset.NewLazy(n, d, func(i int) int { return n - 1 - i })
}

// Pad returns a dataset of exactly length elements. If the source already
// has at least length elements, it is truncated. Otherwise every position
// past the source's end repeats x[padIndex] (padIndex may be negative,
// Python-style, with -1 meaning the last element).
func Pad[S sample.Sample](d dataset.Dataset[S], length, padIndex int) dataset.Dataset[S] {
	n := d.Len()
	if n >= length {
		return d.Slice(0, length, 1)
	}

	resolved := padIndex
	if resolved < 0 {
		resolved += n
	}

	return dataset.NewLazy(length, d, func(i int) int {
		if i < n {
			return i
		}

		return resolved
	})
}

// Index selects idxList's indices in order; with negate it instead selects
// every index NOT listed, in ascending order. Returns ErrConfig if any
// listed index (in the non-negated case) falls outside [0, d.Len()).
func Index[S sample.Sample](d dataset.Dataset[S], idxList []int, negate bool) (dataset.Dataset[S], error) {
	n := d.Len()

	if !negate {
		for _, idx := range idxList {
			if idx < 0 || idx >= n {
				return nil, fmt.Errorf("%w: index %d out of range for length %d", ErrConfig, idx, n)
			}
		}

		selected := append([]int(nil), idxList...)

		return dataset.NewLazy(len(selected), d, func(j int) int { return selected[j] }), nil
	}

	excluded := make(map[int]struct{}, len(idxList))
	for _, idx := range idxList {
		excluded[idx] = struct{}{}
	}

	selected := make([]int, 0, n)

	for i := range n {
		if _, ok := excluded[i]; !ok {
			selected = append(selected, i)
		}
	}

	return dataset.NewLazy(len(selected), d, func(j int) int { return selected[j] }), nil
}
