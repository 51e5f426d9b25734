package action

import (
	"context"
	"fmt"

	"github.com/databrook/databrook/pkg/operator"
	"github.com/databrook/databrook/pkg/workflow"
)

// Batch applies spec.md §4.3's Batch(size) operator: a variable-length
// sequence of contiguous, size-sized slices (the last may be short).
// Registered factory name: "batch".
type Batch struct {
	singleIn

	Size int `json:"size"`
}

func (Batch) ClassName() string           { return "Batch" }
func (Batch) OutputShape() workflow.Shape { return workflow.Seq() }

// Apply implements workflow.Operator.
func (a Batch) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	batches, err := operator.Batch(d, a.Size)
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.TupleChannels(batches), nil
}

// NewBatch builds a Batch action from per-node options.
func NewBatch(options map[string]any) (workflow.Action, error) {
	var a Batch
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}

// Chunk applies spec.md §4.3's Chunk(n) operator: a fixed-arity tuple of n
// near-equal partitions. Registered factory name: "chunk".
type Chunk struct {
	singleIn

	N int `json:"n"`
}

func (Chunk) ClassName() string { return "Chunk" }

// OutputShape implements workflow.Action; the arity is fixed (N) even
// though N is only known once options are decoded, which is still before
// any Connector.Connect call consults it.
func (a Chunk) OutputShape() workflow.Shape { return workflow.Tuple(a.N) }

// Apply implements workflow.Operator.
func (a Chunk) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	chunks, err := operator.Chunk(d, a.N)
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.TupleChannels(chunks), nil
}

// NewChunk builds a Chunk action from per-node options.
func NewChunk(options map[string]any) (workflow.Action, error) {
	var a Chunk
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}

// SplitSizeSpec is one entry of a Split node's Sizes option: exactly one of
// Int/Float/Remainder is meaningful, selected by Kind, mirroring
// operator.SplitSize's variants in a JSON/YAML-friendly shape.
type SplitSizeSpec struct {
	Kind  string  `json:"kind"` // "count", "fraction", or "remainder"
	Int   int     `json:"int,omitempty"`
	Float float64 `json:"float,omitempty"`
}

func (s SplitSizeSpec) toOperatorSize() (operator.SplitSize, error) {
	switch s.Kind {
	case "count":
		return operator.Count(s.Int), nil
	case "fraction":
		return operator.Fraction(s.Float), nil
	case "remainder":
		return operator.Remainder(), nil
	default:
		return operator.SplitSize{}, fmt.Errorf("action: split size has unrecognized kind %q", s.Kind)
	}
}

// Split applies spec.md §4.3's Split(sizes) operator. Registered factory
// name: "split".
type Split struct {
	singleIn

	Sizes []SplitSizeSpec `json:"sizes"`
}

func (Split) ClassName() string { return "Split" }

// OutputShape implements workflow.Action; the arity is the number of
// configured sizes.
func (a Split) OutputShape() workflow.Shape { return workflow.Tuple(len(a.Sizes)) }

// Apply implements workflow.Operator.
func (a Split) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	sizes := make([]operator.SplitSize, len(a.Sizes))

	for i, s := range a.Sizes {
		sizes[i], err = s.toOperatorSize()
		if err != nil {
			return workflow.Channels{}, err
		}
	}

	parts, err := operator.Split(d, sizes)
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.TupleChannels(parts), nil
}

// NewSplit builds a Split action from per-node options.
func NewSplit(options map[string]any) (workflow.Action, error) {
	var a Split
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}

// Cat applies spec.md §4.3's Cat(datasets) operator, fanning in a tuple of
// inputs into one concatenated output. Registered factory name: "cat".
type Cat struct{}

func (Cat) ClassName() string              { return "Cat" }
func (Cat) InputKind() workflow.SocketKind { return workflow.SocketIndex }
func (Cat) OutputShape() workflow.Shape    { return workflow.Single() }

// Apply implements workflow.Operator.
func (Cat) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	if in.Kind != workflow.SocketIndex {
		return workflow.Channels{}, fmt.Errorf("%w: cat wants index input, got %s", workflow.ErrChannelKind, in.Kind)
	}

	return workflow.OneChannel(operator.Cat(in.Tuple)), nil
}

// NewCat builds a Cat action; options are ignored.
func NewCat(map[string]any) (workflow.Action, error) { return Cat{}, nil }

// Zip applies spec.md §4.3's Zip(datasets) operator, fanning in a tuple of
// same-length inputs merged sample-by-sample by key union. Registered
// factory name: "zip".
type Zip struct{}

func (Zip) ClassName() string              { return "Zip" }
func (Zip) InputKind() workflow.SocketKind { return workflow.SocketIndex }
func (Zip) OutputShape() workflow.Shape    { return workflow.Single() }

// Apply implements workflow.Operator.
func (Zip) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	if in.Kind != workflow.SocketIndex {
		return workflow.Channels{}, fmt.Errorf("%w: zip wants index input, got %s", workflow.ErrChannelKind, in.Kind)
	}

	out, err := operator.Zip(in.Tuple)
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.OneChannel(out), nil
}

// NewZip builds a Zip action; options are ignored.
func NewZip(map[string]any) (workflow.Action, error) { return Zip{}, nil }
