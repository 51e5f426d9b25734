package operator

import (
	"fmt"
	"sort"

	"github.com/databrook/databrook/pkg/dataset"
	"github.com/databrook/databrook/pkg/sample"
)

// Cat concatenates datasets end to end. Get locates the source dataset via
// a binary search over the prefix-sum of lengths rather than a linear scan.
func Cat[S sample.Sample](datasets []dataset.Dataset[S]) dataset.Dataset[S] {
	prefix := make([]int, len(datasets)+1)
	for i, d := range datasets {
		prefix[i+1] = prefix[i] + d.Len()
	}

	total := prefix[len(datasets)]

	get := func(i int) (S, error) {
		// Largest k such that prefix[k] <= i.
		k := sort.Search(len(datasets), func(k int) bool { return prefix[k+1] > i })

		return datasets[k].Get(i - prefix[k])
	}

	return &funcDataset[S]{length: total, get: get}
}

// Zip merges same-length datasets sample-by-sample: for index i, every
// input's sample at i is merged by key union with right-biased overwrite
// (later inputs in x win on key collision). Returns ErrConfig if the inputs
// don't all share the same length.
func Zip(datasets []dataset.Dataset[sample.Sample]) (dataset.Dataset[sample.Sample], error) {
	if len(datasets) == 0 {
		return dataset.NewList[sample.Sample](nil), nil
	}

	length := datasets[0].Len()

	for _, d := range datasets[1:] {
		if d.Len() != length {
			return nil, fmt.Errorf("%w: zip inputs must share length, got %d and %d", ErrConfig, length, d.Len())
		}
	}

	get := func(i int) (sample.Sample, error) {
		var merged sample.Sample = sample.NewTypelessSample()

		for _, d := range datasets {
			s, err := d.Get(i)
			if err != nil {
				return nil, err
			}

			keys := s.Keys()
			entries := make([]sample.ItemEntry, len(keys))

			for idx, k := range keys {
				it, _ := s.Get(k)
				entries[idx] = sample.ItemEntry{Key: k, Item: it}
			}

			merged = merged.WithItems(entries)
		}

		return merged, nil
	}

	return &funcDataset[sample.Sample]{length: length, get: get}, nil
}
