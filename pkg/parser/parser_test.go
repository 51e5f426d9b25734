package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databrook/databrook/pkg/parser"
)

// upperParser is a trivial Parser[string] used to exercise the registry
// without depending on any concrete format codec.
type upperParser struct{}

func (upperParser) Parse(data []byte) (string, error) {
	return strings.ToUpper(string(data)), nil
}

func (upperParser) Dump(value string) ([]byte, error) {
	return []byte(strings.ToLower(value)), nil
}

func (upperParser) Extensions() []string { return []string{"up"} }

func TestRegistryLastWriteWins(t *testing.T) {
	r := parser.NewRegistry()

	r.Register(func() any { return upperParser{} }, "txt")
	r.Register(func() any { return "second" }, "txt")

	ctor, ok := r.Lookup("txt")
	require.True(t, ok)

	got, ok := ctor().(string)
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestRegistryLookupMiss(t *testing.T) {
	r := parser.NewRegistry()

	_, ok := r.Lookup("nope")
	assert.False(t, ok)
}

func TestRegistryExtensions(t *testing.T) {
	r := parser.NewRegistry()
	r.Register(func() any { return upperParser{} }, "a", "b")

	exts := r.Extensions()
	assert.ElementsMatch(t, []string{"a", "b"}, exts)
}

func TestDefaultRegistryRoundTrip(t *testing.T) {
	parser.RegisterParser(func() any { return upperParser{} }, "uptest")

	ctor, ok := parser.LookupParser("uptest")
	require.True(t, ok)

	p, ok := ctor().(upperParser)
	require.True(t, ok)

	parsed, err := p.Parse([]byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "HI", parsed)

	dumped, err := p.Dump("HI")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(dumped))
}
