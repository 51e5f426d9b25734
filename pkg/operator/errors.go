// Package operator implements the pure dataset-transforming operator
// algebra: each function takes one or more Dataset values and returns a new
// one (or a slice/map of them), never mutating its input and never reading
// sample contents unless the operator is documented to.
package operator

import "errors"

// ErrConfig is returned when an operator is given an inconsistent
// configuration: a non-positive batch/chunk size, mixed int/float Split
// sizes, more than one None in Split, an Index entry out of range, or
// mismatched Zip input lengths.
var ErrConfig = errors.New("operator: invalid configuration")
