package workflow

import (
	"fmt"
	"strings"
)

// Drawer renders a Graph to some external representation, most commonly a
// diagram description a separate tool turns into an image. Drawer is an
// exported seam: the core ships only DOTDrawer, leaving richer renderers
// (SVG, etc.) to external code.
type Drawer interface {
	Draw(g *Graph) ([]byte, error)
}

// DOTDrawer renders a Graph as Graphviz DOT text: one node statement per
// named node (labeled with its action's ClassName) and one edge statement
// per recorded Edge, labeled with the destination socket.
type DOTDrawer struct{}

// Draw implements Drawer.
func (DOTDrawer) Draw(g *Graph) ([]byte, error) {
	var b strings.Builder

	b.WriteString("digraph workflow {\n")

	for name := range g.nodes {
		action, ok := g.Action(name)
		if !ok {
			continue
		}

		fmt.Fprintf(&b, "  %q [label=%q];\n", name, name+"\\n"+action.ClassName())
	}

	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", e.From.Node, e.To.Node, e.To.Socket.String())
	}

	b.WriteString("}\n")

	return []byte(b.String()), nil
}
