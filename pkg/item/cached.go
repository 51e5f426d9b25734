package item

import (
	"sync"

	"github.com/databrook/databrook/pkg/parser"
)

// CachedItem wraps another Item and memoizes its first Get() result. The
// wrapped call happens at most once; the cache is invalidated only by
// constructing a new CachedItem (e.g. via the With* updaters), never by any
// method on the existing value.
type CachedItem[T any] struct {
	inner Item[T]
	state *cachedState[T]
}

// cachedState is held by pointer, so value copies of a CachedItem share one
// memoized computation. Every With* updater wraps a fresh state, so
// dropping the cached wrapper is the only invalidation path.
type cachedState[T any] struct {
	once  sync.Once
	value T
	err   error
}

// NewCachedItem wraps inner in a fresh, not-yet-computed cache.
func NewCachedItem[T any](inner Item[T]) CachedItem[T] {
	return CachedItem[T]{inner: inner, state: &cachedState[T]{}}
}

// Get implements Item. The wrapped item's Get is invoked at most once.
func (c CachedItem[T]) Get() (T, error) {
	c.state.once.Do(func() {
		c.state.value, c.state.err = c.inner.Get()
	})

	return c.state.value, c.state.err
}

// Parser implements Item.
func (c CachedItem[T]) Parser() parser.Parser[T] { return c.inner.Parser() }

// IsShared implements Item.
func (c CachedItem[T]) IsShared() bool { return c.inner.IsShared() }

// WithValue implements Item: it rewraps a fresh MemoryItem, resetting the
// memoized value to the given one.
func (c CachedItem[T]) WithValue(value T) Item[T] {
	return NewCachedItem[T](c.inner.WithValue(value))
}

// WithParser implements Item: the parser changes, so any memoized value
// (decoded under the old parser) is discarded by wrapping a fresh cache.
func (c CachedItem[T]) WithParser(p parser.Parser[T]) Item[T] {
	return NewCachedItem[T](c.inner.WithParser(p))
}

// WithSharedness implements Item.
func (c CachedItem[T]) WithSharedness(shared bool) Item[T] {
	return NewCachedItem[T](c.inner.WithSharedness(shared))
}
