package dirformat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databrook/databrook/internal/dirformat"
)

func TestParseDataFilenameRoundTrip(t *testing.T) {
	name := dirformat.DataFilename(3, 2, "image", "png")

	id, key, ext, ok := dirformat.ParseDataFilename(name)
	require.True(t, ok)
	assert.Equal(t, 3, id)
	assert.Equal(t, "image", key)
	assert.Equal(t, "png", ext)
}

func TestParseDataFilenameRejectsMalformedNames(t *testing.T) {
	_, _, _, ok := dirformat.ParseDataFilename("noextension")
	assert.False(t, ok)

	_, _, _, ok = dirformat.ParseDataFilename("notanumber_key.ext")
	assert.False(t, ok)
}

func TestParseRootFilename(t *testing.T) {
	key, ext, ok := dirformat.ParseRootFilename("labels.json")
	require.True(t, ok)
	assert.Equal(t, "labels", key)
	assert.Equal(t, "json", ext)
}

func TestParseDataFilenameStripsLZ4Suffix(t *testing.T) {
	id, key, ext, ok := dirformat.ParseDataFilename("007_image.png.lz4")
	require.True(t, ok)
	assert.Equal(t, 7, id)
	assert.Equal(t, "image", key)
	assert.Equal(t, "png.lz4", ext)
}

func TestSplitCompressed(t *testing.T) {
	inner, compressed := dirformat.SplitCompressed("png.lz4")
	assert.Equal(t, "png", inner)
	assert.True(t, compressed)

	inner, compressed = dirformat.SplitCompressed("png")
	assert.Equal(t, "png", inner)
	assert.False(t, compressed)
}

func TestWidth(t *testing.T) {
	assert.Equal(t, 1, dirformat.Width(1))
	assert.Equal(t, 1, dirformat.Width(9))
	assert.Equal(t, 1, dirformat.Width(10))
	assert.Equal(t, 2, dirformat.Width(100))
}
