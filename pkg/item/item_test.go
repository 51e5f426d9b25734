package item_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databrook/databrook/pkg/item"
	"github.com/databrook/databrook/pkg/reader"
)

type stringParser struct{}

func (stringParser) Parse(data []byte) (string, error) { return string(data), nil }
func (stringParser) Dump(v string) ([]byte, error)      { return []byte(v), nil }
func (stringParser) Extensions() []string               { return []string{"txt"} }

type failingParser struct{ err error }

func (f failingParser) Parse([]byte) (string, error) { return "", f.err }
func (f failingParser) Dump(string) ([]byte, error)   { return nil, f.err }
func (f failingParser) Extensions() []string          { return []string{"bad"} }

type failingReader struct{ err error }

func (f failingReader) Read() ([]byte, error) { return nil, f.err }

func TestMemoryItemGetNeverFails(t *testing.T) {
	it := item.NewMemoryItem("hello", stringParser{}, false)

	v, err := it.Get()
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
	assert.False(t, it.IsShared())
}

func TestMemoryItemWithersReturnNewValues(t *testing.T) {
	orig := item.NewMemoryItem("a", stringParser{}, false)

	updated := orig.WithValue("b")
	v, _ := updated.Get()
	assert.Equal(t, "b", v)

	// Original untouched.
	origV, _ := orig.Get()
	assert.Equal(t, "a", origV)

	shared := orig.WithSharedness(true)
	assert.True(t, shared.IsShared())
	assert.False(t, orig.IsShared())
}

func TestStoredItemReReadsEveryGet(t *testing.T) {
	calls := 0
	r := countingReader{count: &calls}

	it := item.NewStoredItem[string](r, stringParser{}, false)

	_, err := it.Get()
	require.NoError(t, err)
	_, err = it.Get()
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

type countingReader struct{ count *int }

func (c countingReader) Read() ([]byte, error) {
	*c.count++

	return []byte("x"), nil
}

func TestStoredItemReadError(t *testing.T) {
	sentinel := errors.New("boom")
	it := item.NewStoredItem[string](failingReader{err: sentinel}, stringParser{}, false)

	_, err := it.Get()
	require.Error(t, err)
	assert.ErrorIs(t, err, item.ErrReadFailed)
}

func TestStoredItemDecodeError(t *testing.T) {
	sentinel := errors.New("bad bytes")
	it := item.NewStoredItem[string](reader.NewMemoryReader([]byte("x")), failingParser{err: sentinel}, false)

	_, err := it.Get()
	require.Error(t, err)
	assert.ErrorIs(t, err, item.ErrDecode)
}

func TestCachedItemCallsSourceAtMostOnce(t *testing.T) {
	calls := 0
	r := countingReader{count: &calls}
	inner := item.NewStoredItem[string](r, stringParser{}, false)

	cached := item.NewCachedItem[string](inner)

	for range 5 {
		v, err := cached.Get()
		require.NoError(t, err)
		assert.Equal(t, "x", v)
	}

	assert.Equal(t, 1, calls)
}

func TestCachedItemWithValueResetsCache(t *testing.T) {
	inner := item.NewMemoryItem("orig", stringParser{}, false)
	cached := item.NewCachedItem[string](inner)

	v, _ := cached.Get()
	assert.Equal(t, "orig", v)

	updated := cached.WithValue("new")
	v2, _ := updated.Get()
	assert.Equal(t, "new", v2)

	// Original cache unaffected.
	v3, _ := cached.Get()
	assert.Equal(t, "orig", v3)
}
