package workflow

import (
	"errors"
	"fmt"
	"sync"

	"github.com/databrook/databrook/internal/dag"
)

// ErrGraph is the sentinel wrapped by every workflow construction failure:
// a duplicate node name, a reference to a name that was never registered,
// a node connected more than once, an input/output shape mismatch, or a
// cycle detected at Validate time.
var ErrGraph = errors.New("workflow: graph error")

// Edge is one source-proxy-to-destination-proxy connection recorded by a
// Connector invocation.
type Edge struct {
	From Proxy
	To   Proxy
}

// Graph is a DAG of named source/operator/sink nodes, built by calling
// Graph.Node to register each node and then invoking the returned
// Connector to wire its inputs and obtain its output proxies.
type Graph struct {
	mu       sync.Mutex
	d        *dag.Graph
	nodes    map[string]*nodeEntry
	counters map[string]int
	edges    []Edge
}

type nodeEntry struct {
	name      string
	action    Action
	connected bool
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{d: dag.New(), nodes: make(map[string]*nodeEntry), counters: make(map[string]int)}
}

// Node registers a new node running action, named name or (if name is
// empty) auto-generated as "<ClassName>_<counter>". It returns a Connector
// whose Connect call wires the node's inputs and yields its output proxies.
func (g *Graph) Node(action Action, name string) (*Connector, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if name == "" {
		name = g.autoName(action.ClassName())
	}

	if !g.d.AddNode(name) {
		return nil, fmt.Errorf("%w: duplicate node name %q", ErrGraph, name)
	}

	entry := &nodeEntry{name: name, action: action}
	g.nodes[name] = entry

	return &Connector{graph: g, name: name}, nil
}

// autoName must be called with mu held.
func (g *Graph) autoName(class string) string {
	g.counters[class]++

	return fmt.Sprintf("%s_%d", class, g.counters[class])
}

// Connector connects one node's inputs and reports its outputs.
type Connector struct {
	graph *Graph
	name  string
}

// Name returns the node name this connector was returned for.
func (c *Connector) Name() string { return c.name }

// ConnectSpec describes the inputs handed to a Connector.Connect call: at
// most one of Single/Positional/Keyed is populated, matching Kind.
type ConnectSpec struct {
	Kind       SocketKind
	Single     Proxy
	Positional []Proxy
	Keyed      map[string]Proxy
}

// NoInput builds the ConnectSpec used for a source node, which has no
// input sockets to wire.
func NoInput() ConnectSpec { return ConnectSpec{Kind: SocketNone, Single: Proxy{}} }

// FromSingle builds a ConnectSpec wiring a node's single input to p.
func FromSingle(p Proxy) ConnectSpec { return ConnectSpec{Kind: SocketNone, Single: p} }

// FromTuple builds a ConnectSpec wiring a node's positional inputs to ps,
// in order.
func FromTuple(ps ...Proxy) ConnectSpec { return ConnectSpec{Kind: SocketIndex, Positional: ps} }

// FromKeyed builds a ConnectSpec wiring a node's keyed inputs to m.
func FromKeyed(m map[string]Proxy) ConnectSpec { return ConnectSpec{Kind: SocketKey, Keyed: m} }

// Connect wires this node's inputs to spec and returns its output proxies,
// shaped per its action's declared Shape. It fails if the node was already
// connected, if spec's shape doesn't match the action's declared input
// socket kind, or if spec references a node never registered on the graph.
func (c *Connector) Connect(spec ConnectSpec) (Output, error) {
	g := c.graph

	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.nodes[c.name]
	if !ok {
		return Output{}, fmt.Errorf("%w: node %q not found", ErrGraph, c.name)
	}

	if entry.connected {
		return Output{}, fmt.Errorf("%w: node %q already connected", ErrGraph, c.name)
	}

	_, isSource := entry.action.(Source)

	if isSource {
		if spec.Single.Node != "" || len(spec.Positional) > 0 || len(spec.Keyed) > 0 {
			return Output{}, fmt.Errorf("%w: source node %q takes no input", ErrGraph, c.name)
		}
	} else if err := g.wireInputs(entry, spec); err != nil {
		return Output{}, err
	}

	entry.connected = true

	return Output{node: c.name, shape: entry.action.OutputShape()}, nil
}

// wireInputs must be called with mu held. It validates spec against the
// node's declared input kind and records one Edge per source proxy.
func (g *Graph) wireInputs(entry *nodeEntry, spec ConnectSpec) error {
	want := entry.action.InputKind()
	if spec.Kind != want {
		return fmt.Errorf("%w: node %q expects %s input, got %s", ErrGraph, entry.name, want, spec.Kind)
	}

	switch spec.Kind {
	case SocketNone:
		if spec.Single.Node == "" {
			return fmt.Errorf("%w: node %q requires an input", ErrGraph, entry.name)
		}

		return g.addEdge(spec.Single, Proxy{Node: entry.name, Socket: None()})
	case SocketIndex:
		if len(spec.Positional) == 0 {
			return fmt.Errorf("%w: node %q requires at least one input", ErrGraph, entry.name)
		}

		for i, from := range spec.Positional {
			if err := g.addEdge(from, Proxy{Node: entry.name, Socket: At(i)}); err != nil {
				return err
			}
		}

		return nil
	case SocketKey:
		if len(spec.Keyed) == 0 {
			return fmt.Errorf("%w: node %q requires at least one input", ErrGraph, entry.name)
		}

		for key, from := range spec.Keyed {
			if err := g.addEdge(from, Proxy{Node: entry.name, Socket: Field(key)}); err != nil {
				return err
			}
		}

		return nil
	default:
		return fmt.Errorf("%w: node %q declares unsupported input kind %s", ErrGraph, entry.name, want)
	}
}

// addEdge must be called with mu held.
func (g *Graph) addEdge(from, to Proxy) error {
	if _, ok := g.nodes[from.Node]; !ok {
		return fmt.Errorf("%w: edge references unknown node %q", ErrGraph, from.Node)
	}

	g.d.AddEdge(from.Node, to.Node)
	g.edges = append(g.edges, Edge{From: from, To: to})

	return nil
}

// Output is the output-proxy structure returned by Connector.Connect,
// shaped per the action's declared Shape. Element/field proxies are
// computed on demand rather than pre-populated, matching the reference
// behavior where a Seq/Map output's members are only discovered as the
// caller asks for them.
type Output struct {
	node  string
	shape Shape
}

// ErrOutputShape is returned when an Output accessor is called against a
// shape that doesn't support it.
var ErrOutputShape = fmt.Errorf("workflow: output shape mismatch")

// Single returns the node's sole output proxy. Valid only for ShapeSingle.
func (o Output) Single() (Proxy, error) {
	if o.shape.Kind != ShapeSingle {
		return Proxy{}, fmt.Errorf("%w: node %q is not single-output", ErrOutputShape, o.node)
	}

	return Proxy{Node: o.node, Socket: None()}, nil
}

// At returns the proxy for output element i. Valid for ShapeTuple (bounds
// checked against the declared arity) and ShapeSeq (unbounded).
func (o Output) At(i int) (Proxy, error) {
	switch o.shape.Kind {
	case ShapeTuple:
		if i < 0 || i >= o.shape.Count {
			return Proxy{}, fmt.Errorf("%w: index %d out of range (arity %d)", ErrOutputShape, i, o.shape.Count)
		}

		return Proxy{Node: o.node, Socket: At(i)}, nil
	case ShapeSeq:
		return Proxy{Node: o.node, Socket: At(i)}, nil
	default:
		return Proxy{}, fmt.Errorf("%w: node %q is not index-addressable", ErrOutputShape, o.node)
	}
}

// Field returns the proxy for the named output field. Valid only for
// ShapeMap.
func (o Output) Field(key string) (Proxy, error) {
	if o.shape.Kind != ShapeMap {
		return Proxy{}, fmt.Errorf("%w: node %q is not key-addressable", ErrOutputShape, o.node)
	}

	return Proxy{Node: o.node, Socket: Field(key)}, nil
}

// Whole returns the SocketAll proxy addressing the node's entire output
// collection wholesale. Invalid for ShapeNone (sink) and ShapeSingle nodes,
// which have nothing to address wholesale.
func (o Output) Whole() (Proxy, error) {
	if o.shape.Kind == ShapeNone || o.shape.Kind == ShapeSingle {
		return Proxy{}, fmt.Errorf("%w: node %q has no collection output", ErrOutputShape, o.node)
	}

	return Proxy{Node: o.node, Socket: All()}, nil
}

// Validate checks the graph-level invariants: no cycles, and (implied by
// Connect's enforcement that every non-source node must be wired before
// its Output is usable) every node reachable from an edge was registered.
// It returns the topological node order for the executor to walk.
func (g *Graph) Validate() ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for name, entry := range g.nodes {
		if !entry.connected {
			if _, isSource := entry.action.(Source); !isSource {
				return nil, fmt.Errorf("%w: node %q was never connected", ErrGraph, name)
			}
		}
	}

	order, ok := g.d.Toposort()
	if !ok {
		var cyc []string

		for name := range g.nodes {
			if cyc = g.d.FindCycle(name); cyc != nil {
				break
			}
		}

		return nil, fmt.Errorf("%w: cycle detected: %v", ErrGraph, cyc)
	}

	return order, nil
}

// Edges returns every edge recorded so far, in connection order.
func (g *Graph) Edges() []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Edge, len(g.edges))
	copy(out, g.edges)

	return out
}

// EdgesInto returns the edges whose destination node is name.
func (g *Graph) EdgesInto(name string) []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []Edge

	for _, e := range g.edges {
		if e.To.Node == name {
			out = append(out, e)
		}
	}

	return out
}

// Action returns the action registered under name.
func (g *Graph) Action(name string) (Action, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.nodes[name]
	if !ok {
		return nil, false
	}

	return entry.action, true
}
