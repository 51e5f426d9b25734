// Package reader provides lazy byte-producing sources for stored items.
package reader

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
)

// Reader is an opaque byte producer. It MUST be referentially transparent
// for the lifetime of the dataset that owns it: repeated Read calls against
// the same Reader return the same bytes (barring external mutation of the
// backing store, which is the caller's responsibility to avoid).
type Reader interface {
	Read() ([]byte, error)
}

// ErrRead wraps a failure from an underlying byte source.
var ErrRead = fmt.Errorf("reader: read failed")

// FileReader is the canonical Reader: a local file at a fixed path, re-read
// from disk on every call.
type FileReader struct {
	Path string
}

// NewFileReader returns a Reader over the file at path.
func NewFileReader(path string) FileReader {
	return FileReader{Path: path}
}

// Read implements Reader.
func (r FileReader) Read() ([]byte, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, r.Path, err)
	}

	return data, nil
}

// MemoryReader is a Reader over an in-memory byte slice, useful for tests
// and for adapting data that never touches disk into the Stored item path.
type MemoryReader struct {
	Data []byte
}

// NewMemoryReader returns a Reader that always yields data.
func NewMemoryReader(data []byte) MemoryReader {
	return MemoryReader{Data: data}
}

// Read implements Reader.
func (r MemoryReader) Read() ([]byte, error) {
	return r.Data, nil
}

// LZ4Reader wraps another Reader, transparently decompressing an LZ4-framed
// payload. It pairs with the directory sink's Rewrite copy policy, which
// optionally LZ4-compresses re-encoded item bytes before writing them.
type LZ4Reader struct {
	Inner Reader
}

// NewLZ4Reader returns a Reader that decompresses inner's bytes as an LZ4
// frame on every Read.
func NewLZ4Reader(inner Reader) LZ4Reader {
	return LZ4Reader{Inner: inner}
}

// Read implements Reader.
func (r LZ4Reader) Read() ([]byte, error) {
	raw, err := r.Inner.Read()
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(lz4.NewReader(bytes.NewReader(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: lz4 decompress: %w", ErrRead, err)
	}

	return data, nil
}
