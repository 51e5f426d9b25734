package operator

import (
	"fmt"

	"github.com/databrook/databrook/pkg/dataset"
	"github.com/databrook/databrook/pkg/item"
	"github.com/databrook/databrook/pkg/sample"
)

// ItemCache wraps every item of every sample in a memoizing shell, so
// repeated Item.Get calls against the same sample handle hit memory after
// the first read. Unlike CacheOp, nothing is shared across distinct Get(i)
// calls: each fetch from the upstream dataset gets its own fresh memo.
func ItemCache[S sample.Sample](d dataset.Dataset[S]) dataset.Dataset[S] {
	n := d.Len()

	get := func(i int) (S, error) {
		var zero S

		s, err := d.Get(i)
		if err != nil {
			return zero, err
		}

		keys := s.Keys()
		entries := make([]sample.ItemEntry, len(keys))

		for idx, k := range keys {
			it, _ := s.Get(k)
			entries[idx] = sample.ItemEntry{Key: k, Item: item.CacheAny(it)}
		}

		updated := s.WithItems(entries)

		out, ok := updated.(S)
		if !ok {
			return zero, fmt.Errorf("%w: sample implementation changed type across WithItems", ErrConfig)
		}

		return out, nil
	}

	return &funcDataset[S]{length: n, get: get}
}
