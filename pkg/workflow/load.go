package workflow

import (
	"errors"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// graphSchema is the JSON Schema a GraphSpec document must satisfy before
// it is unmarshalled and built into a Graph.
const graphSchema = `{
  "type": "object",
  "required": ["nodes"],
  "properties": {
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "type"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "type": {"type": "string", "minLength": 1}
        }
      }
    },
    "edges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["from", "to"],
        "properties": {
          "from": {"type": "string", "minLength": 1},
          "from_key": {"type": "string"},
          "from_index": {"type": "integer", "minimum": 0},
          "to": {"type": "string", "minLength": 1},
          "to_key": {"type": "string"},
          "to_index": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

// ErrLoadGraph wraps every failure LoadGraph surfaces: schema validation,
// an unregistered node type, or an invalid wiring.
var ErrLoadGraph = errors.New("workflow: load graph failed")

// NodeSpec declares one node of a declarative graph document: a name, the
// registered action type it instantiates, and that type's per-node options
// (e.g. a Slice node's start/stop/step), passed through to the factory
// uninterpreted.
type NodeSpec struct {
	Name    string         `yaml:"name" json:"name"`
	Type    string         `yaml:"type" json:"type"`
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

// EdgeSpec declares one wire between two nodes. FromIndex/FromKey select
// which output channel of From feeds the edge; ToIndex/ToKey select which
// input socket of To it lands on. Leaving all four nil/empty wires a
// plain single-channel (SocketNone) connection.
type EdgeSpec struct {
	From      string `yaml:"from" json:"from"`
	FromKey   string `yaml:"from_key,omitempty" json:"from_key,omitempty"`
	FromIndex *int   `yaml:"from_index,omitempty" json:"from_index,omitempty"`

	To      string `yaml:"to" json:"to"`
	ToKey   string `yaml:"to_key,omitempty" json:"to_key,omitempty"`
	ToIndex *int   `yaml:"to_index,omitempty" json:"to_index,omitempty"`
}

// GraphSpec is the YAML/JSON-serializable form of a Graph: a node list
// plus an edge list, validated against graphSchema before use.
type GraphSpec struct {
	Nodes []NodeSpec `yaml:"nodes" json:"nodes"`
	Edges []EdgeSpec `yaml:"edges" json:"edges"`
}

// ActionFactory maps a node's declared Type string to a constructor,
// letting a declarative document reference actions by name instead of by
// Go type. The constructor receives that node's Options map (nil if the
// document supplied none) so one registered type can still be configured
// differently per node, e.g. two "slice" nodes with different start/stop.
type ActionFactory struct {
	mu    sync.Mutex
	ctors map[string]func(options map[string]any) (Action, error)
}

// NewActionFactory returns an empty factory; register constructors with
// Register before calling LoadGraph.
func NewActionFactory() *ActionFactory {
	return &ActionFactory{ctors: make(map[string]func(options map[string]any) (Action, error))}
}

// Register associates typeName with ctor, overwriting any existing
// registration (last-write-wins, mirroring the parser registry).
func (f *ActionFactory) Register(typeName string, ctor func(options map[string]any) (Action, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ctors[typeName] = ctor
}

// New builds a fresh Action for typeName, configured by options.
func (f *ActionFactory) New(typeName string, options map[string]any) (Action, error) {
	f.mu.Lock()
	ctor, ok := f.ctors[typeName]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: unregistered node type %q", ErrLoadGraph, typeName)
	}

	action, err := ctor(options)
	if err != nil {
		return nil, fmt.Errorf("%w: node type %q: %w", ErrLoadGraph, typeName, err)
	}

	return action, nil
}

// LoadGraph validates data (YAML or JSON) against graphSchema, unmarshals
// it into a GraphSpec, and builds the described Graph using factory to
// resolve each node's Type. The returned Graph is wired but not yet
// validated; call Validate before executing it.
func LoadGraph(data []byte, factory *ActionFactory) (*Graph, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse document: %w", ErrLoadGraph, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(graphSchema),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: schema validation: %w", ErrLoadGraph, err)
	}

	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrLoadGraph, result.Errors())
	}

	var spec GraphSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: decode document: %w", ErrLoadGraph, err)
	}

	return buildGraph(spec, factory)
}

func buildGraph(spec GraphSpec, factory *ActionFactory) (*Graph, error) {
	g := New()

	connectors := make(map[string]*Connector, len(spec.Nodes))

	for _, n := range spec.Nodes {
		action, err := factory.New(n.Type, n.Options)
		if err != nil {
			return nil, err
		}

		conn, err := g.Node(action, n.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: node %q: %w", ErrLoadGraph, n.Name, err)
		}

		connectors[n.Name] = conn
	}

	byTarget := make(map[string][]EdgeSpec)
	for _, e := range spec.Edges {
		byTarget[e.To] = append(byTarget[e.To], e)
	}

	for name, conn := range connectors {
		edges := byTarget[name]
		if len(edges) == 0 {
			if _, err := conn.Connect(NoInput()); err != nil {
				return nil, fmt.Errorf("%w: node %q: %w", ErrLoadGraph, name, err)
			}

			continue
		}

		spec, err := edgesToConnectSpec(edges)
		if err != nil {
			return nil, fmt.Errorf("%w: node %q: %w", ErrLoadGraph, name, err)
		}

		if _, err := conn.Connect(spec); err != nil {
			return nil, fmt.Errorf("%w: node %q: %w", ErrLoadGraph, name, err)
		}
	}

	return g, nil
}

func edgesToConnectSpec(edges []EdgeSpec) (ConnectSpec, error) {
	keyed := false
	indexed := false

	for _, e := range edges {
		if e.ToKey != "" {
			keyed = true
		}

		if e.ToIndex != nil {
			indexed = true
		}
	}

	switch {
	case keyed:
		m := make(map[string]Proxy, len(edges))
		for _, e := range edges {
			if e.ToKey == "" {
				return ConnectSpec{}, fmt.Errorf("edge from %q missing to_key in a keyed connection", e.From)
			}

			m[e.ToKey] = edgeSourceProxy(e)
		}

		return FromKeyed(m), nil
	case indexed:
		maxIndex := -1
		for _, e := range edges {
			if e.ToIndex == nil {
				return ConnectSpec{}, fmt.Errorf("edge from %q missing to_index in an indexed connection", e.From)
			}

			if *e.ToIndex > maxIndex {
				maxIndex = *e.ToIndex
			}
		}

		ps := make([]Proxy, maxIndex+1)
		for _, e := range edges {
			ps[*e.ToIndex] = edgeSourceProxy(e)
		}

		return FromTuple(ps...), nil
	default:
		if len(edges) != 1 {
			return ConnectSpec{}, fmt.Errorf("%d edges target a single-channel input, want exactly 1", len(edges))
		}

		return FromSingle(edgeSourceProxy(edges[0])), nil
	}
}

func edgeSourceProxy(e EdgeSpec) Proxy {
	switch {
	case e.FromKey != "":
		return Proxy{Node: e.From, Socket: Field(e.FromKey)}
	case e.FromIndex != nil:
		return Proxy{Node: e.From, Socket: At(*e.FromIndex)}
	default:
		return Proxy{Node: e.From, Socket: None()}
	}
}
