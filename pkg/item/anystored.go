package item

import (
	"fmt"

	"github.com/databrook/databrook/pkg/parser"
	"github.com/databrook/databrook/pkg/reader"
)

// AnyStoredItem is the type-erased counterpart to StoredItem: it holds
// bytes behind a Reader and decodes them with an AnyParser rather than a
// compile-time-known Parser[T]. Directory sources build one per file
// because the parser for an extension is only known at runtime.
type AnyStoredItem struct {
	r      reader.Reader
	p      parser.AnyParser
	shared bool
}

// NewAnyStoredItem returns an AnyStoredItem backed by r and decoded by p.
func NewAnyStoredItem(r reader.Reader, p parser.AnyParser, shared bool) AnyStoredItem {
	return AnyStoredItem{r: r, p: p, shared: shared}
}

// Get implements AnyItem: it re-reads and re-parses on every call.
func (s AnyStoredItem) Get() (any, error) {
	data, err := s.r.Read()
	if err != nil {
		return nil, readErr(err)
	}

	value, err := s.p.ParseAny(data)
	if err != nil {
		return nil, decodeErr(err)
	}

	return value, nil
}

// IsShared implements AnyItem.
func (s AnyStoredItem) IsShared() bool { return s.shared }

// WithValue implements AnyItem, converting to an AnyMemoryItem since a
// Stored item has no reader for an arbitrary in-memory value.
func (s AnyStoredItem) WithValue(value any) AnyItem {
	return NewAnyMemoryItem(value, s.p, s.shared)
}

// WithSharedness implements AnyItem.
func (s AnyStoredItem) WithSharedness(shared bool) AnyItem {
	s.shared = shared

	return s
}

// Dump implements AnyItem by re-reading, re-parsing, then re-encoding
// through the same parser; the bytes are expected to round-trip unless the
// parser is lossy (documented per format, e.g. recompressed images).
func (s AnyStoredItem) Dump() ([]byte, string, error) {
	v, err := s.Get()
	if err != nil {
		return nil, "", err
	}

	return dumpWith(s.p, v)
}

// SourceFile implements AnyItem: it reports the backing path when r is a
// reader.FileReader, so a sink can hard-link/symlink/replicate instead of
// re-encoding.
func (s AnyStoredItem) SourceFile() (string, bool) {
	fr, ok := s.r.(reader.FileReader)
	if !ok {
		return "", false
	}

	return fr.Path, true
}

// AnyMemoryItem is the type-erased counterpart to MemoryItem: it holds a
// value that already lives in memory, decoded/encoded by an AnyParser.
type AnyMemoryItem struct {
	value  any
	p      parser.AnyParser
	shared bool
}

// NewAnyMemoryItem wraps value, decoded/encoded by p.
func NewAnyMemoryItem(value any, p parser.AnyParser, shared bool) AnyMemoryItem {
	return AnyMemoryItem{value: value, p: p, shared: shared}
}

// Get implements AnyItem. It never fails.
func (m AnyMemoryItem) Get() (any, error) { return m.value, nil }

// IsShared implements AnyItem.
func (m AnyMemoryItem) IsShared() bool { return m.shared }

// WithValue implements AnyItem.
func (m AnyMemoryItem) WithValue(value any) AnyItem {
	m.value = value

	return m
}

// WithSharedness implements AnyItem.
func (m AnyMemoryItem) WithSharedness(shared bool) AnyItem {
	m.shared = shared

	return m
}

// Dump implements AnyItem by encoding the in-memory value with p.
func (m AnyMemoryItem) Dump() ([]byte, string, error) {
	return dumpWith(m.p, m.value)
}

// SourceFile implements AnyItem: an in-memory item has no backing file.
func (m AnyMemoryItem) SourceFile() (string, bool) { return "", false }

func dumpWith(p parser.AnyParser, v any) ([]byte, string, error) {
	data, err := p.DumpAny(v)
	if err != nil {
		return nil, "", encodeErr(err)
	}

	exts := p.Extensions()
	if len(exts) == 0 {
		return nil, "", fmt.Errorf("%w: parser declares no extensions", ErrEncode)
	}

	return data, exts[0], nil
}
