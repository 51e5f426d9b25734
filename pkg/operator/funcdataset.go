package operator

import (
	"fmt"

	"github.com/databrook/databrook/pkg/dataset"
	"github.com/databrook/databrook/pkg/sample"
)

// funcDataset is a Dataset defined by a length and an arbitrary per-index
// getter, used by operators whose Get doesn't remap a single uniform
// source (Map changes the sample type; Cat and Zip read across several
// source datasets).
type funcDataset[S sample.Sample] struct {
	length int
	get    func(i int) (S, error)
}

func (f *funcDataset[S]) Len() int { return f.length }

func (f *funcDataset[S]) Get(i int) (S, error) {
	var zero S

	if i < 0 || i >= f.length {
		return zero, fmt.Errorf("%w: index %d, length %d", dataset.ErrIndexOutOfRange, i, f.length)
	}

	return f.get(i)
}

func (f *funcDataset[S]) Slice(start, stop, step int) dataset.Dataset[S] {
	return dataset.SliceOf[S](f, start, stop, step)
}
