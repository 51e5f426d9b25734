package item

import "github.com/databrook/databrook/pkg/parser"

// MemoryItem holds a value that already lives in memory. Get never fails.
type MemoryItem[T any] struct {
	value  T
	p      parser.Parser[T]
	shared bool
}

// NewMemoryItem returns a MemoryItem wrapping value.
func NewMemoryItem[T any](value T, p parser.Parser[T], shared bool) MemoryItem[T] {
	return MemoryItem[T]{value: value, p: p, shared: shared}
}

// Get implements Item.
func (m MemoryItem[T]) Get() (T, error) { return m.value, nil }

// Parser implements Item.
func (m MemoryItem[T]) Parser() parser.Parser[T] { return m.p }

// IsShared implements Item.
func (m MemoryItem[T]) IsShared() bool { return m.shared }

// WithValue implements Item.
func (m MemoryItem[T]) WithValue(value T) Item[T] {
	m.value = value

	return m
}

// WithParser implements Item.
func (m MemoryItem[T]) WithParser(p parser.Parser[T]) Item[T] {
	m.p = p

	return m
}

// WithSharedness implements Item.
func (m MemoryItem[T]) WithSharedness(shared bool) Item[T] {
	m.shared = shared

	return m
}
