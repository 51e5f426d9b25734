package item

import (
	"fmt"

	"github.com/databrook/databrook/pkg/reader"
)

// AnyItem is a type-erased Item, used wherever items of differing value
// types must live side by side (a Sample's key->item map holds one item per
// key, each potentially a different T). Erase bridges a concrete Item[T]
// into an AnyItem; AssertType recovers the concrete Item[T] when the caller
// knows the expected type.
type AnyItem interface {
	// Get returns the item's decoded value as any.
	Get() (any, error)
	// IsShared reports whether the item's value is identical across every
	// sample of its parent dataset.
	IsShared() bool
	// WithValue returns a new AnyItem holding value. value must be
	// assignable to the erased item's underlying T, or WithValue returns an
	// item whose Get reports ErrTypeMismatch.
	WithValue(value any) AnyItem
	// WithSharedness returns a new AnyItem with the given shared flag.
	WithSharedness(shared bool) AnyItem
	// Dump encodes the item's current value with its own parser, without
	// the caller needing to know the erased underlying type. It returns the
	// encoded bytes and the first extension the parser declares, so a sink
	// can pick a file name. Used by directory sinks writing a Sample whose
	// items carry heterogeneous T.
	Dump() ([]byte, string, error)
	// SourceFile returns the local file path backing this item and true,
	// if the item is a Stored item reading from a reader.FileReader. A sink
	// uses this to hard-link/symlink/replicate the original bytes instead
	// of re-encoding through Dump.
	SourceFile() (string, bool)
}

// Erase wraps a concrete Item[T] as an AnyItem.
func Erase[T any](it Item[T]) AnyItem {
	return erased[T]{it: it}
}

// AssertType recovers the concrete Item[T] wrapped by an AnyItem produced by
// Erase[T]. ok is false if ai does not wrap an Item[T].
func AssertType[T any](ai AnyItem) (Item[T], bool) {
	e, ok := ai.(erased[T])
	if !ok {
		return nil, false
	}

	return e.it, true
}

type erased[T any] struct {
	it Item[T]
}

func (e erased[T]) Get() (any, error) {
	v, err := e.it.Get()

	return v, err
}

func (e erased[T]) IsShared() bool { return e.it.IsShared() }

func (e erased[T]) WithValue(value any) AnyItem {
	tv, ok := value.(T)
	if !ok {
		return mismatchedItem{err: typeMismatchErr(value)}
	}

	return Erase[T](e.it.WithValue(tv))
}

func (e erased[T]) WithSharedness(shared bool) AnyItem {
	return Erase[T](e.it.WithSharedness(shared))
}

func (e erased[T]) Dump() ([]byte, string, error) {
	v, err := e.it.Get()
	if err != nil {
		return nil, "", err
	}

	data, err := e.it.Parser().Dump(v)
	if err != nil {
		return nil, "", encodeErr(err)
	}

	exts := e.it.Parser().Extensions()
	if len(exts) == 0 {
		return nil, "", fmt.Errorf("%w: parser declares no extensions", ErrEncode)
	}

	return data, exts[0], nil
}

func (e erased[T]) SourceFile() (string, bool) {
	type fileBacked interface{ Reader() reader.Reader }

	fb, ok := e.it.(fileBacked)
	if !ok {
		return "", false
	}

	fr, ok := fb.Reader().(reader.FileReader)
	if !ok {
		return "", false
	}

	return fr.Path, true
}

// mismatchedItem is the AnyItem returned when WithValue is called with a
// value that does not match the erased item's underlying type; the error
// surfaces on Get rather than panicking, since With* calls are not expected
// to fail at call time.
type mismatchedItem struct{ err error }

func (m mismatchedItem) Get() (any, error)           { return nil, m.err }
func (m mismatchedItem) IsShared() bool              { return false }
func (m mismatchedItem) WithValue(any) AnyItem       { return m }
func (m mismatchedItem) WithSharedness(bool) AnyItem { return m }
func (m mismatchedItem) Dump() ([]byte, string, error) { return nil, "", m.err }
func (m mismatchedItem) SourceFile() (string, bool)    { return "", false }

func typeMismatchErr(value any) error {
	return fmt.Errorf("%w: got %T", ErrTypeMismatch, value)
}
