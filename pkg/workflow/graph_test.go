package workflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databrook/databrook/pkg/workflow"
)

type stubSource struct{ class string }

func (s stubSource) ClassName() string             { return s.class }
func (s stubSource) InputKind() workflow.SocketKind { return workflow.SocketNone }
func (s stubSource) OutputShape() workflow.Shape    { return workflow.Single() }

func (s stubSource) Produce(ctx context.Context) (workflow.Channels, error) {
	return workflow.OneChannel(nil), nil
}

type stubOperator struct {
	class string
	kind  workflow.SocketKind
	shape workflow.Shape
}

func (o stubOperator) ClassName() string             { return o.class }
func (o stubOperator) InputKind() workflow.SocketKind { return o.kind }
func (o stubOperator) OutputShape() workflow.Shape    { return o.shape }

func (o stubOperator) Apply(ctx context.Context, in workflow.Channels) (workflow.Channels, error) {
	return in, nil
}

type stubSink struct{ class string }

func (s stubSink) ClassName() string             { return s.class }
func (s stubSink) InputKind() workflow.SocketKind { return workflow.SocketNone }
func (s stubSink) OutputShape() workflow.Shape    { return workflow.NoOutput() }

func (s stubSink) Consume(ctx context.Context, in workflow.Channels) error { return nil }

func TestNodeAutoNamesByClass(t *testing.T) {
	g := workflow.New()

	c1, err := g.Node(stubSource{class: "Read"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Read_1", c1.Name())

	c2, err := g.Node(stubSource{class: "Read"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Read_2", c2.Name())
}

func TestNodeRejectsDuplicateExplicitName(t *testing.T) {
	g := workflow.New()

	_, err := g.Node(stubSource{class: "Read"}, "src")
	require.NoError(t, err)

	_, err = g.Node(stubSource{class: "Read"}, "src")
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrGraph)
}

func TestLinearPipelineConnectsAndValidates(t *testing.T) {
	g := workflow.New()

	src, err := g.Node(stubSource{class: "Read"}, "src")
	require.NoError(t, err)
	srcOut, err := src.Connect(workflow.NoInput())
	require.NoError(t, err)

	srcProxy, err := srcOut.Single()
	require.NoError(t, err)

	filt, err := g.Node(stubOperator{class: "Filter", kind: workflow.SocketNone, shape: workflow.Single()}, "filt")
	require.NoError(t, err)
	filtOut, err := filt.Connect(workflow.FromSingle(srcProxy))
	require.NoError(t, err)

	filtProxy, err := filtOut.Single()
	require.NoError(t, err)

	sink, err := g.Node(stubSink{class: "Write"}, "sink")
	require.NoError(t, err)
	_, err = sink.Connect(workflow.FromSingle(filtProxy))
	require.NoError(t, err)

	order, err := g.Validate()
	require.NoError(t, err)
	require.Equal(t, []string{"src", "filt", "sink"}, order)
}

func TestConnectRejectsSocketKindMismatch(t *testing.T) {
	g := workflow.New()

	src, err := g.Node(stubSource{class: "Read"}, "src")
	require.NoError(t, err)
	srcOut, err := src.Connect(workflow.NoInput())
	require.NoError(t, err)

	srcProxy, err := srcOut.Single()
	require.NoError(t, err)

	op, err := g.Node(stubOperator{class: "Keyed", kind: workflow.SocketKey, shape: workflow.Single()}, "op")
	require.NoError(t, err)

	_, err = op.Connect(workflow.FromSingle(srcProxy))
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrGraph)
}

func TestConnectRejectsDoubleConnect(t *testing.T) {
	g := workflow.New()

	src, err := g.Node(stubSource{class: "Read"}, "src")
	require.NoError(t, err)

	_, err = src.Connect(workflow.NoInput())
	require.NoError(t, err)

	_, err = src.Connect(workflow.NoInput())
	require.Error(t, err)
}

func TestValidateDetectsCycle(t *testing.T) {
	g := workflow.New()

	a, err := g.Node(stubOperator{class: "A", kind: workflow.SocketNone, shape: workflow.Single()}, "a")
	require.NoError(t, err)
	b, err := g.Node(stubOperator{class: "B", kind: workflow.SocketNone, shape: workflow.Single()}, "b")
	require.NoError(t, err)

	aOut, err := a.Connect(workflow.FromSingle(workflow.Proxy{Node: "b"}))
	require.NoError(t, err)

	aProxy, err := aOut.Single()
	require.NoError(t, err)

	_, err = b.Connect(workflow.FromSingle(aProxy))
	require.NoError(t, err)

	_, err = g.Validate()
	require.Error(t, err)
}

func TestValidateRejectsUnconnectedOperator(t *testing.T) {
	g := workflow.New()

	_, err := g.Node(stubOperator{class: "Stray", kind: workflow.SocketNone, shape: workflow.Single()}, "stray")
	require.NoError(t, err)

	_, err = g.Validate()
	require.Error(t, err)
}

func TestOutputAccessorsMatchShape(t *testing.T) {
	g := workflow.New()

	op, err := g.Node(stubOperator{class: "Tup", kind: workflow.SocketNone, shape: workflow.Tuple(2)}, "tup")
	require.NoError(t, err)

	src, err := g.Node(stubSource{class: "Read"}, "src")
	require.NoError(t, err)
	srcOut, err := src.Connect(workflow.NoInput())
	require.NoError(t, err)
	srcProxy, err := srcOut.Single()
	require.NoError(t, err)

	out, err := op.Connect(workflow.FromSingle(srcProxy))
	require.NoError(t, err)

	_, err = out.Single()
	assert.ErrorIs(t, err, workflow.ErrOutputShape)

	p0, err := out.At(0)
	require.NoError(t, err)
	assert.Equal(t, "tup", p0.Node)
	assert.Equal(t, 0, p0.Socket.Index)

	_, err = out.At(2)
	assert.ErrorIs(t, err, workflow.ErrOutputShape)

	_, err = out.Field("x")
	assert.ErrorIs(t, err, workflow.ErrOutputShape)
}
