package parser

import "fmt"

// AnyParser is the type-erased form of Parser[T]: Parse/Dump operate on any
// rather than a compile-time-known T. Directory sources and sinks resolve a
// parser by file extension at runtime and cannot know T in advance, so they
// operate against AnyParser instead of a concrete Parser[T].
type AnyParser interface {
	// ParseAny decodes bytes into the parser's underlying value type,
	// returned as any.
	ParseAny(data []byte) (any, error)
	// DumpAny encodes value, which must be assignable to the parser's
	// underlying T, into bytes.
	DumpAny(value any) ([]byte, error)
	// Extensions returns the ordered set of file extensions this parser
	// recognizes.
	Extensions() []string
}

// EraseParser wraps a concrete Parser[T] as an AnyParser. Third-party
// parsers that want to participate in directory source/sink I/O should
// register a Constructor that returns the result of EraseParser, e.g.
// parser.RegisterParser(func() any { return parser.EraseParser[V](myParser{}) }, "ext").
func EraseParser[T any](p Parser[T]) AnyParser {
	return erasedParser[T]{p: p}
}

type erasedParser[T any] struct{ p Parser[T] }

func (e erasedParser[T]) ParseAny(data []byte) (any, error) {
	return e.p.Parse(data)
}

func (e erasedParser[T]) DumpAny(value any) ([]byte, error) {
	tv, ok := value.(T)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedValue, value)
	}

	return e.p.Dump(tv)
}

func (e erasedParser[T]) Extensions() []string { return e.p.Extensions() }

// ErrUnsupportedValue is returned by an erased parser's DumpAny when the
// given value does not match the wrapped parser's underlying type.
var ErrUnsupportedValue = fmt.Errorf("parser: value does not match erased parser's type")

// LookupAny resolves ext to an AnyParser via the registry, constructing a
// fresh instance. It returns ErrUnknownExtension if no constructor is
// registered, or ErrNotErasable if the registered constructor's value does
// not implement AnyParser (i.e. was never wrapped with EraseParser).
func (r *Registry) LookupAny(ext string) (AnyParser, error) {
	ctor, ok := r.Lookup(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtension, ext)
	}

	ap, ok := ctor().(AnyParser)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotErasable, ext)
	}

	return ap, nil
}

// ErrNotErasable is returned when a registered extension's constructor does
// not produce an AnyParser (see EraseParser).
var ErrNotErasable = fmt.Errorf("parser: constructor does not produce an AnyParser")

// LookupAnyParser resolves ext to an AnyParser on the default registry.
func LookupAnyParser(ext string) (AnyParser, error) {
	return Default.LookupAny(ext)
}
