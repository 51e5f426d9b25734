package action_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databrook/databrook/pkg/action"
	"github.com/databrook/databrook/pkg/parser"
	"github.com/databrook/databrook/pkg/workflow"
)

type textParser struct{}

func (textParser) Parse(data []byte) (string, error) { return string(data), nil }
func (textParser) Dump(v string) ([]byte, error)      { return []byte(v), nil }
func (textParser) Extensions() []string               { return []string{"txt"} }

func newRegistry() *parser.Registry {
	reg := parser.NewRegistry()
	reg.Register(func() any { return parser.EraseParser[string](textParser{}) }, "txt")

	return reg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestSourceDirectoryProducesSingleChannel(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data", "0_text.txt"), "a")
	writeFile(t, filepath.Join(root, "data", "1_text.txt"), "b")

	src := action.SourceDirectory{Root: root, Registry: newRegistry()}

	out, err := src.Produce(context.Background())
	require.NoError(t, err)
	require.Equal(t, workflow.SocketNone, out.Kind)
	assert.Equal(t, 2, out.Single.Len())
}

func TestSourceDirectoryRequiresRoot(t *testing.T) {
	_, err := action.SourceDirectory{}.Produce(context.Background())
	require.Error(t, err)
}

func TestSinkDirectoryRoundTripsThroughSlice(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data", "0_text.txt"), "a")
	writeFile(t, filepath.Join(root, "data", "1_text.txt"), "b")
	writeFile(t, filepath.Join(root, "data", "2_text.txt"), "c")

	reg := newRegistry()

	src := action.SourceDirectory{Root: root, Registry: reg}

	channels, err := src.Produce(context.Background())
	require.NoError(t, err)

	sliced, err := action.Slice{Start: 1, Stop: 3, Step: 1}.Apply(context.Background(), channels)
	require.NoError(t, err)
	require.Equal(t, 2, sliced.Single.Len())

	out := filepath.Join(t.TempDir(), "out")
	sinkAction := action.SinkDirectory{Root: out, Overwrite: "forbid", Copy: "replicate"}
	require.NoError(t, sinkAction.Consume(context.Background(), sliced))

	reread, err := (action.SourceDirectory{Root: out, Registry: reg}).Produce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, reread.Single.Len())
}

func TestFactoryBuildsEveryRegisteredAction(t *testing.T) {
	f := action.NewFactory()

	names := []string{
		"source.directory", "sink.directory", "identity", "reverse", "slice", "repeat",
		"cycle", "pad", "index", "shuffle", "itemcache", "cacheop", "batch", "chunk",
		"split", "cat", "zip", "filter", "sort", "groupby", "map",
	}

	for _, name := range names {
		a, err := f.New(name, nil)
		require.NoErrorf(t, err, "building %q", name)
		assert.NotEmpty(t, a.ClassName())
	}
}

func TestFactoryRejectsUnknownName(t *testing.T) {
	f := action.NewFactory()
	_, err := f.New("does-not-exist", nil)
	require.Error(t, err)
}

func TestSliceOptionsDecodeFromMap(t *testing.T) {
	a, err := action.NewSlice(map[string]any{"start": 2.0, "stop": 10.0, "step": 3.0})
	require.NoError(t, err)

	slice, ok := a.(action.Slice)
	require.True(t, ok)
	assert.Equal(t, 2, slice.Start)
	assert.Equal(t, 10, slice.Stop)
	assert.Equal(t, 3, slice.Step)
}

func TestSliceOptionsDefaultStepToOne(t *testing.T) {
	a, err := action.NewSlice(nil)
	require.NoError(t, err)

	slice, ok := a.(action.Slice)
	require.True(t, ok)
	assert.Equal(t, 1, slice.Step)
}

func TestPadOptionsDefaultPadIndexToLast(t *testing.T) {
	a, err := action.NewPad(map[string]any{"length": 5.0})
	require.NoError(t, err)

	pad, ok := a.(action.Pad)
	require.True(t, ok)
	assert.Equal(t, -1, pad.PadIndex)
}

func TestCacheOpRejectsUnknownPolicy(t *testing.T) {
	a := action.CacheOp{Policy: "bogus"}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data", "0_text.txt"), "a")

	src, err := (action.SourceDirectory{Root: root, Registry: newRegistry()}).Produce(context.Background())
	require.NoError(t, err)

	_, err = a.Apply(context.Background(), src)
	require.ErrorIs(t, err, action.ErrUnknownCachePolicy)
}
