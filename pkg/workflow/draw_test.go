package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databrook/databrook/pkg/workflow"
)

func TestDOTDrawerRendersNodesAndEdges(t *testing.T) {
	g := workflow.New()

	srcConn, err := g.Node(stubSource{}, "src")
	require.NoError(t, err)
	srcOut, err := srcConn.Connect(workflow.NoInput())
	require.NoError(t, err)
	srcProxy, err := srcOut.Single()
	require.NoError(t, err)

	sinkConn, err := g.Node(stubSink{}, "sink")
	require.NoError(t, err)
	_, err = sinkConn.Connect(workflow.FromSingle(srcProxy))
	require.NoError(t, err)

	out, err := workflow.DOTDrawer{}.Draw(g)
	require.NoError(t, err)

	dot := string(out)
	assert.Contains(t, dot, "digraph workflow {")
	assert.Contains(t, dot, `"src"`)
	assert.Contains(t, dot, `"sink"`)
	assert.Contains(t, dot, `"src" -> "sink"`)
}
