package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databrook/databrook/internal/registry"
)

func TestRegisterLookupUnregister(t *testing.T) {
	id := registry.Register("payload")

	v, ok := registry.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, "payload", v)

	registry.Unregister(id)

	_, ok = registry.Lookup(id)
	assert.False(t, ok)
}

func TestRegisterAssignsDistinctIDs(t *testing.T) {
	a := registry.Register(1)
	b := registry.Register(2)

	assert.NotEqual(t, a, b)

	registry.Unregister(a)
	registry.Unregister(b)
}

func TestUnregisterTwiceIsSafe(t *testing.T) {
	id := registry.Register("x")
	registry.Unregister(id)

	assert.NotPanics(t, func() { registry.Unregister(id) })
}
