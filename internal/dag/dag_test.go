package dag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databrook/databrook/internal/dag"
)

func indexOf(order []string, name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}

	return -1
}

func TestAddNodeRejectsDuplicate(t *testing.T) {
	g := dag.New()
	assert.True(t, g.AddNode("a"))
	assert.False(t, g.AddNode("a"))
}

func TestToposortOrdersProducersBeforeConsumers(t *testing.T) {
	g := dag.New()
	g.AddEdge("source", "filter")
	g.AddEdge("filter", "sink")

	order, ok := g.Toposort()
	require.True(t, ok)
	require.Len(t, order, 3)

	assert.Less(t, indexOf(order, "source"), indexOf(order, "filter"))
	assert.Less(t, indexOf(order, "filter"), indexOf(order, "sink"))
}

func TestToposortDetectsCycle(t *testing.T) {
	g := dag.New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")

	_, ok := g.Toposort()
	assert.False(t, ok)

	cycle := g.FindCycle("a")
	require.NotEmpty(t, cycle)
	assert.Equal(t, "a", cycle[0])
	assert.Equal(t, "a", cycle[len(cycle)-1])
}

func TestParentsAndInDegree(t *testing.T) {
	g := dag.New()
	g.AddEdge("a", "c")
	g.AddEdge("b", "c")

	assert.ElementsMatch(t, []string{"a", "b"}, g.Parents("c"))
	assert.Equal(t, 2, g.InDegree("c"))
	assert.Equal(t, 0, g.InDegree("a"))
}

func TestToposortDiamond(t *testing.T) {
	g := dag.New()
	g.AddEdge("source", "left")
	g.AddEdge("source", "right")
	g.AddEdge("left", "sink")
	g.AddEdge("right", "sink")

	order, ok := g.Toposort()
	require.True(t, ok)

	assert.Less(t, indexOf(order, "source"), indexOf(order, "left"))
	assert.Less(t, indexOf(order, "source"), indexOf(order, "right"))
	assert.Less(t, indexOf(order, "left"), indexOf(order, "sink"))
	assert.Less(t, indexOf(order, "right"), indexOf(order, "sink"))
}
