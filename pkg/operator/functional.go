package operator

import (
	"cmp"
	"context"
	"sort"

	"github.com/databrook/databrook/pkg/dataset"
	"github.com/databrook/databrook/pkg/grabber"
	"github.com/databrook/databrook/pkg/sample"
)

// Filter materializes the surviving index list by running predicate once
// per sample, parallelized across g (a nil g runs inline). The result is a
// lazy dataset that preserves the surviving elements' original order,
// regardless of the order predicate calls complete in.
func Filter[S sample.Sample](ctx context.Context, d dataset.Dataset[S], g *grabber.Grabber, predicate func(i int, s S) (bool, error), negate bool) (dataset.Dataset[S], error) {
	if g == nil {
		g = grabber.New()
	}

	n := d.Len()
	flags := make([]bool, n)

	tasks := grabber.Grab(ctx, g, n, func(_ context.Context, i int) (bool, error) {
		s, err := d.Get(i)
		if err != nil {
			return false, err
		}

		keep, err := predicate(i, s)
		if err != nil {
			return false, err
		}

		return keep != negate, nil
	})

	for t := range tasks {
		if t.Err != nil {
			return nil, t.Err
		}

		flags[t.Index] = t.Value
	}

	kept := make([]int, 0, n)

	for i := range n {
		if flags[i] {
			kept = append(kept, i)
		}
	}

	return dataset.NewLazy(len(kept), d, func(j int) int { return kept[j] }), nil
}

// Sort materializes (key, index) pairs by calling keyFn once per sample,
// parallelized across g (a nil g runs inline), then stable-sorts by key
// (descending if reverse is set; ties keep original index order either way)
// and projects lazily.
func Sort[S sample.Sample, K cmp.Ordered](ctx context.Context, d dataset.Dataset[S], g *grabber.Grabber, keyFn func(i int, s S) (K, error), reverse bool) (dataset.Dataset[S], error) {
	if g == nil {
		g = grabber.New()
	}

	n := d.Len()
	keys := make([]K, n)

	tasks := grabber.Grab(ctx, g, n, func(_ context.Context, i int) (K, error) {
		s, err := d.Get(i)
		if err != nil {
			var zero K

			return zero, err
		}

		return keyFn(i, s)
	})

	for t := range tasks {
		if t.Err != nil {
			return nil, t.Err
		}

		keys[t.Index] = t.Value
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		ka, kb := keys[order[a]], keys[order[b]]
		if reverse {
			return ka > kb
		}

		return ka < kb
	})

	return dataset.NewLazy(n, d, func(j int) int { return order[j] }), nil
}

// GroupBy partitions d into a group_key->Dataset mapping by calling keyFn
// once per sample, parallelized across g (a nil g runs inline). Each
// group's dataset preserves the input order of its members.
func GroupBy[S sample.Sample](ctx context.Context, d dataset.Dataset[S], g *grabber.Grabber, keyFn func(i int, s S) (string, error)) (map[string]dataset.Dataset[S], error) {
	if g == nil {
		g = grabber.New()
	}

	n := d.Len()
	keys := make([]string, n)

	tasks := grabber.Grab(ctx, g, n, func(_ context.Context, i int) (string, error) {
		s, err := d.Get(i)
		if err != nil {
			return "", err
		}

		return keyFn(i, s)
	})

	for t := range tasks {
		if t.Err != nil {
			return nil, t.Err
		}

		keys[t.Index] = t.Value
	}

	indices := make(map[string][]int)

	for i := range n {
		k := keys[i]
		indices[k] = append(indices[k], i)
	}

	out := make(map[string]dataset.Dataset[S], len(indices))

	for k, idxs := range indices {
		out[k] = dataset.NewLazy(len(idxs), d, func(j int) int { return idxs[j] })
	}

	return out, nil
}
