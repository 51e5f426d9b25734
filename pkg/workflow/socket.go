// Package workflow implements the DAG-of-nodes model: named source/
// operator/sink nodes wired together by an imperative proxy DSL (Graph.Node
// followed by a Connector call), validated against the invariants a
// directed acyclic graph of dataset-producing/consuming actions must
// satisfy (no cycles, unique names, every sink input covered).
package workflow

import "fmt"

// SocketKind identifies what a Socket addresses on a node: its single
// unnamed channel, one element of a positional tuple/sequence, one field of
// a keyed mapping/bundle, or the whole collection wholesale.
type SocketKind int

const (
	// SocketNone addresses a node's single, unnamed dataset channel.
	SocketNone SocketKind = iota
	// SocketIndex addresses one element of a positional tuple or sequence
	// output/input.
	SocketIndex
	// SocketKey addresses one named field of a keyed mapping or bundle.
	// Bundle and Map are unified at this level: both are string-addressed
	// collections, differing only in whether Python's source fixed the
	// field set statically, a distinction with no effect on the DAG.
	SocketKey
	// SocketAll addresses the whole collection at once ("Collection
	// proxies treated wholesale connect as an All-to-All edge").
	SocketAll
)

// String implements fmt.Stringer for diagnostics.
func (k SocketKind) String() string {
	switch k {
	case SocketNone:
		return "none"
	case SocketIndex:
		return "index"
	case SocketKey:
		return "key"
	case SocketAll:
		return "all"
	default:
		return fmt.Sprintf("SocketKind(%d)", int(k))
	}
}

// Socket is one channel on a node: either the node's sole unnamed channel,
// one numbered element, one named field, or the whole collection.
type Socket struct {
	Kind  SocketKind
	Index int
	Key   string
}

// None builds a SocketNone socket.
func None() Socket { return Socket{Kind: SocketNone} }

// At builds a SocketIndex socket for element i.
func At(i int) Socket { return Socket{Kind: SocketIndex, Index: i} }

// Field builds a SocketKey socket for field key.
func Field(key string) Socket { return Socket{Kind: SocketKey, Key: key} }

// All builds a SocketAll socket.
func All() Socket { return Socket{Kind: SocketAll} }

// String renders a socket for diagnostics, e.g. "filter.out[2]" style
// fragments built by callers; Socket itself renders just its own part.
func (s Socket) String() string {
	switch s.Kind {
	case SocketNone:
		return ""
	case SocketIndex:
		return fmt.Sprintf("[%d]", s.Index)
	case SocketKey:
		return fmt.Sprintf("[%q]", s.Key)
	case SocketAll:
		return "[*]"
	default:
		return fmt.Sprintf("[?%d]", int(s.Kind))
	}
}

// Proxy identifies one output channel of one node: the unit that edges
// connect together.
type Proxy struct {
	Node   string
	Socket Socket
}

// String renders a proxy as "node" or "node[socket]".
func (p Proxy) String() string {
	return p.Node + p.Socket.String()
}
