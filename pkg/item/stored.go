package item

import (
	"github.com/databrook/databrook/pkg/parser"
	"github.com/databrook/databrook/pkg/reader"
)

// StoredItem holds bytes behind a Reader, reading and re-parsing on every
// Get call. It never caches: two Get calls perform two reads and two parses.
type StoredItem[T any] struct {
	r      reader.Reader
	p      parser.Parser[T]
	shared bool
}

// NewStoredItem returns a StoredItem backed by r and decoded by p.
func NewStoredItem[T any](r reader.Reader, p parser.Parser[T], shared bool) StoredItem[T] {
	return StoredItem[T]{r: r, p: p, shared: shared}
}

// Get implements Item: it re-reads and re-parses the underlying bytes.
func (s StoredItem[T]) Get() (T, error) {
	var zero T

	data, err := s.r.Read()
	if err != nil {
		return zero, readErr(err)
	}

	value, err := s.p.Parse(data)
	if err != nil {
		return zero, decodeErr(err)
	}

	return value, nil
}

// Parser implements Item.
func (s StoredItem[T]) Parser() parser.Parser[T] { return s.p }

// IsShared implements Item.
func (s StoredItem[T]) IsShared() bool { return s.shared }

// WithValue implements Item. Since a StoredItem has no reader for an
// arbitrary in-memory value, it converts to a MemoryItem holding value.
func (s StoredItem[T]) WithValue(value T) Item[T] {
	return NewMemoryItem(value, s.p, s.shared)
}

// WithParser implements Item.
func (s StoredItem[T]) WithParser(p parser.Parser[T]) Item[T] {
	s.p = p

	return s
}

// WithSharedness implements Item.
func (s StoredItem[T]) WithSharedness(shared bool) Item[T] {
	s.shared = shared

	return s
}

// Reader exposes the underlying byte source, used by sinks choosing a copy
// policy (hard-link/symlink/replicate) that needs the original file path.
func (s StoredItem[T]) Reader() reader.Reader { return s.r }
