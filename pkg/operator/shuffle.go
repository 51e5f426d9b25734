package operator

import (
	"math/rand/v2"

	"github.com/databrook/databrook/pkg/dataset"
	"github.com/databrook/databrook/pkg/sample"
)

// Shuffle returns a dataset with indices permuted. If seed is non-nil, the
// permutation comes from a PRNG seeded deterministically from *seed;
// otherwise it is seeded from OS entropy. Either way, the permutation is
// computed once at construction and captured by the returned dataset, so
// repeated access (and further slicing) is stable.
func Shuffle[S sample.Sample](d dataset.Dataset[S], seed *uint64) dataset.Dataset[S] {
	n := d.Len()
	order := make([]int, n)

	for i := range order {
		order[i] = i
	}

	var rng *rand.Rand
	if seed != nil {
		rng = rand.New(rand.NewPCG(*seed, *seed))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

	return dataset.NewLazy(n, d, func(j int) int { return order[j] })
}
