package sink_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databrook/databrook/pkg/dataset"
	"github.com/databrook/databrook/pkg/item"
	"github.com/databrook/databrook/pkg/parser"
	"github.com/databrook/databrook/pkg/reader"
	"github.com/databrook/databrook/pkg/sample"
	"github.com/databrook/databrook/pkg/sink"
	"github.com/databrook/databrook/pkg/source"
)

type textParser struct{}

func (textParser) Parse(data []byte) (string, error) { return string(data), nil }
func (textParser) Dump(v string) ([]byte, error)     { return []byte(v), nil }
func (textParser) Extensions() []string              { return []string{"txt"} }

func memorySample(text string) sample.TypelessSample {
	return sample.NewTypelessSample(
		sample.ItemEntry{Key: "text", Item: item.Erase[string](item.NewMemoryItem(text, textParser{}, false))},
	)
}

func TestDirectoryWriteEmptyDatasetCreatesNothing(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	s := sink.NewDirectory(root, sink.Forbid, sink.Rewrite)

	err := s.Write(context.Background(), dataset.NewList[sample.Sample](nil))
	require.NoError(t, err)

	_, statErr := os.Stat(root)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDirectoryWriteThenReadRoundTrip(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")

	samples := []sample.Sample{memorySample("hello"), memorySample("world")}
	ds := dataset.NewList[sample.Sample](samples)

	s := sink.NewDirectory(root, sink.Forbid, sink.Rewrite)
	require.NoError(t, s.Write(context.Background(), ds))

	reg := parser.NewRegistry()
	reg.Register(func() any { return parser.EraseParser[string](textParser{}) }, "txt")

	src := source.NewDirectory(root, reg)
	got, err := src.Read()
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())

	s0, err := got.Get(0)
	require.NoError(t, err)

	it, ok := s0.Get("text")
	require.True(t, ok)

	v, err := it.Get()
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestDirectoryWriteCompressedThenReadRoundTrip(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")

	samples := []sample.Sample{memorySample("hello"), memorySample("world")}
	ds := dataset.NewList[sample.Sample](samples)

	s := sink.NewDirectory(root, sink.Forbid, sink.Rewrite)
	s.Compress = true
	require.NoError(t, s.Write(context.Background(), ds))

	entries, err := os.ReadDir(filepath.Join(root, "data"))
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		assert.Contains(t, e.Name(), ".txt.lz4")
	}

	reg := parser.NewRegistry()
	reg.Register(func() any { return parser.EraseParser[string](textParser{}) }, "txt")

	src := source.NewDirectory(root, reg)
	got, err := src.Read()
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())

	s0, err := got.Get(0)
	require.NoError(t, err)

	it, ok := s0.Get("text")
	require.True(t, ok)

	v, err := it.Get()
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	s1, err := got.Get(1)
	require.NoError(t, err)

	it1, ok := s1.Get("text")
	require.True(t, ok)

	v1, err := it1.Get()
	require.NoError(t, err)
	assert.Equal(t, "world", v1)
}

func TestDirectoryWriteForbidsExistingRoot(t *testing.T) {
	root := t.TempDir()

	s := sink.NewDirectory(root, sink.Forbid, sink.Rewrite)
	err := s.Write(context.Background(), dataset.NewList[sample.Sample]([]sample.Sample{memorySample("x")}))
	require.ErrorIs(t, err, sink.ErrPolicyViolation)
}

func TestDirectoryWriteAllowIfEmptyPermitsEmptyRoot(t *testing.T) {
	root := t.TempDir()

	s := sink.NewDirectory(root, sink.AllowIfEmpty, sink.Rewrite)
	err := s.Write(context.Background(), dataset.NewList[sample.Sample]([]sample.Sample{memorySample("x")}))
	require.NoError(t, err)
}

func TestDirectoryWriteOverwriteRecreatesRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "stale.txt"), []byte("old"), 0o600))

	s := sink.NewDirectory(root, sink.Overwrite, sink.Rewrite)
	err := s.Write(context.Background(), dataset.NewList[sample.Sample]([]sample.Sample{memorySample("x")}))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "stale.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestDirectoryWriteSharedItemOnce(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")

	shared := item.Erase[string](item.NewMemoryItem("shared-value", textParser{}, true))
	samples := []sample.Sample{
		sample.NewTypelessSample(sample.ItemEntry{Key: "label", Item: shared}),
		sample.NewTypelessSample(sample.ItemEntry{Key: "label", Item: shared}),
	}

	s := sink.NewDirectory(root, sink.Forbid, sink.Rewrite)
	require.NoError(t, s.Write(context.Background(), dataset.NewList[sample.Sample](samples)))

	_, err := os.Stat(filepath.Join(root, "label.txt"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "data", "0_label.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestDirectoryWriteHardLinksStoredItem(t *testing.T) {
	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "blob.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("stored"), 0o600))

	stored := item.Erase[string](item.NewStoredItem[string](reader.NewFileReader(srcPath), textParser{}, false))
	samples := []sample.Sample{sample.NewTypelessSample(sample.ItemEntry{Key: "text", Item: stored})}

	root := filepath.Join(t.TempDir(), "out")
	s := sink.NewDirectory(root, sink.Forbid, sink.HardLink)
	require.NoError(t, s.Write(context.Background(), dataset.NewList[sample.Sample](samples)))

	dest := filepath.Join(root, "data", "0_text.txt")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "stored", string(data))

	info, err := os.Stat(dest)
	require.NoError(t, err)

	srcInfo, err := os.Stat(srcPath)
	require.NoError(t, err)
	assert.True(t, os.SameFile(info, srcInfo), "expected hard link to the original file")
}
