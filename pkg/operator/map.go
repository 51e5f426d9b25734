package operator

import (
	"github.com/databrook/databrook/pkg/dataset"
	"github.com/databrook/databrook/pkg/sample"
)

// Map returns a lazy dataset where out[i] = mapper(i, x[i]). mapper may
// change the sample type.
func Map[SIN sample.Sample, SOUT sample.Sample](d dataset.Dataset[SIN], mapper func(i int, s SIN) (SOUT, error)) dataset.Dataset[SOUT] {
	n := d.Len()

	get := func(i int) (SOUT, error) {
		var zero SOUT

		s, err := d.Get(i)
		if err != nil {
			return zero, err
		}

		return mapper(i, s)
	}

	return &funcDataset[SOUT]{length: n, get: get}
}
