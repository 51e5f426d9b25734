// Package item implements deferred byte-blob handles for sample values:
// in-memory, stored-and-reparsed-on-every-read, and memoized variants.
package item

import (
	"errors"
	"fmt"

	"github.com/databrook/databrook/pkg/parser"
)

// ErrDecode is returned when a parser fails to decode bytes into a value.
var ErrDecode = errors.New("item: decode failed")

// ErrEncode is returned when a parser fails to encode a value into bytes.
var ErrEncode = errors.New("item: encode failed")

// ErrReadFailed is returned when the underlying reader fails.
var ErrReadFailed = errors.New("item: read failed")

// ErrTypeMismatch is returned when an AnyItem's WithValue is called with a
// value that does not match the erased item's underlying type.
var ErrTypeMismatch = errors.New("item: value type does not match item")

// Item is a lazy handle to a parsed value of type T. Every variant exposes
// Get, Parser, and IsShared; the With* updaters are purely functional and
// never mutate the receiver.
type Item[T any] interface {
	// Get returns the item's value, decoding it if necessary.
	Get() (T, error)
	// Parser returns the codec this item uses to decode/encode its value.
	Parser() parser.Parser[T]
	// IsShared reports whether this item's value is identical across every
	// sample of its parent dataset. It is informational only: it never
	// changes Get's semantics, only how a sink chooses to lay out storage.
	IsShared() bool

	// WithValue returns a new item holding value, preserving parser and
	// sharedness.
	WithValue(value T) Item[T]
	// WithParser returns a new item that decodes/encodes with p instead.
	WithParser(p parser.Parser[T]) Item[T]
	// WithSharedness returns a new item with the given shared flag.
	WithSharedness(shared bool) Item[T]
}

// decodeErr wraps a parser failure as ErrDecode.
func decodeErr(err error) error {
	return fmt.Errorf("%w: %w", ErrDecode, err)
}

// readErr wraps a reader failure as ErrReadFailed.
func readErr(err error) error {
	return fmt.Errorf("%w: %w", ErrReadFailed, err)
}
