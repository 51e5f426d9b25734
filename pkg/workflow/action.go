package workflow

import (
	"context"
	"fmt"

	"github.com/databrook/databrook/pkg/dataset"
	"github.com/databrook/databrook/pkg/sample"
)

// Dataset is the concrete dataset type every node's channel carries.
type Dataset = dataset.Dataset[sample.Sample]

// ShapeKind enumerates the output shapes an Action can declare, mirroring
// the proxy DSL's dispatch on "the action's declared output type": single
// dataset, fixed-length tuple, variable-length sequence, or a keyed
// mapping/bundle.
type ShapeKind int

const (
	// ShapeSingle is a lone, unnamed output dataset.
	ShapeSingle ShapeKind = iota
	// ShapeTuple is a fixed-length, index-addressed output.
	ShapeTuple
	// ShapeSeq is a variable-length, index-addressed output whose count
	// is only known once the action runs.
	ShapeSeq
	// ShapeMap is a key-addressed output (covers both Map and Bundle; see
	// SocketKey).
	ShapeMap
	// ShapeNone is used by sink actions, which produce no output.
	ShapeNone
)

// Shape declares an Action's output shape. Count is meaningful only for
// ShapeTuple (the fixed arity).
type Shape struct {
	Kind  ShapeKind
	Count int
}

// Single declares a ShapeSingle output.
func Single() Shape { return Shape{Kind: ShapeSingle} }

// Tuple declares a fixed-arity ShapeTuple output.
func Tuple(n int) Shape { return Shape{Kind: ShapeTuple, Count: n} }

// Seq declares a ShapeSeq output.
func Seq() Shape { return Shape{Kind: ShapeSeq} }

// Map declares a ShapeMap output.
func Map() Shape { return Shape{Kind: ShapeMap} }

// NoOutput declares a sink action's ShapeNone output.
func NoOutput() Shape { return Shape{Kind: ShapeNone} }

// Channels carries an action's resolved input or produced output: exactly
// one of Single/Tuple/Keyed is populated, selected by Kind. It is the
// executor's in-memory analogue of a node's input/output sockets.
type Channels struct {
	Kind   SocketKind
	Single Dataset
	Tuple  []Dataset
	Keyed  map[string]Dataset
}

// OneChannel wraps a single dataset as SocketNone Channels.
func OneChannel(d Dataset) Channels { return Channels{Kind: SocketNone, Single: d} }

// TupleChannels wraps a positional slice as SocketIndex Channels.
func TupleChannels(ds []Dataset) Channels { return Channels{Kind: SocketIndex, Tuple: ds} }

// KeyedChannels wraps a keyed map as SocketKey Channels.
func KeyedChannels(ds map[string]Dataset) Channels { return Channels{Kind: SocketKey, Keyed: ds} }

// ErrChannelKind is returned when a Channels accessor is called against the
// wrong Kind.
var ErrChannelKind = fmt.Errorf("workflow: channels kind mismatch")

// One returns the single dataset, or an error if Kind != SocketNone.
func (c Channels) One() (Dataset, error) {
	if c.Kind != SocketNone {
		return nil, fmt.Errorf("%w: want none, got %s", ErrChannelKind, c.Kind)
	}

	return c.Single, nil
}

// At returns element i of a tuple/sequence Channels.
func (c Channels) At(i int) (Dataset, error) {
	if c.Kind != SocketIndex {
		return nil, fmt.Errorf("%w: want index, got %s", ErrChannelKind, c.Kind)
	}

	if i < 0 || i >= len(c.Tuple) {
		return nil, fmt.Errorf("%w: index %d out of range (len %d)", ErrChannelKind, i, len(c.Tuple))
	}

	return c.Tuple[i], nil
}

// Field returns the named field of a keyed Channels.
func (c Channels) Field(key string) (Dataset, error) {
	if c.Kind != SocketKey {
		return nil, fmt.Errorf("%w: want key, got %s", ErrChannelKind, c.Kind)
	}

	d, ok := c.Keyed[key]
	if !ok {
		return nil, fmt.Errorf("%w: no field %q", ErrChannelKind, key)
	}

	return d, nil
}

// Action is implemented by every node payload: a source, operator, or sink.
// ClassName seeds auto-generated node names ("<ClassName>_<counter>").
// InputKind declares what socket kind the node's (possibly absent) inputs
// must agree on; OutputShape declares the shape of the Channels that
// Produce or Apply returns.
type Action interface {
	ClassName() string
	InputKind() SocketKind
	OutputShape() Shape
}

// Source is an Action with no input: it produces its output from nothing
// but its own configuration (e.g. a directory read).
type Source interface {
	Action
	Produce(ctx context.Context) (Channels, error)
}

// Operator is an Action that transforms its resolved input into output.
type Operator interface {
	Action
	Apply(ctx context.Context, in Channels) (Channels, error)
}

// Sink is an Action with no output: it consumes its resolved input as a
// side effect (e.g. a directory write).
type Sink interface {
	Action
	Consume(ctx context.Context, in Channels) error
}
