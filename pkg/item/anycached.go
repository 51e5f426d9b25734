package item

import "sync"

// CacheAny wraps an AnyItem so its first Get result is memoized, mirroring
// CachedItem but operating on the type-erased form so it can wrap any item
// in a Sample regardless of its underlying value type.
func CacheAny(inner AnyItem) AnyItem {
	return cachedAny{inner: inner, state: &cachedAnyState{}}
}

type cachedAnyState struct {
	once  sync.Once
	value any
	err   error
}

type cachedAny struct {
	inner AnyItem
	state *cachedAnyState
}

func (c cachedAny) Get() (any, error) {
	c.state.once.Do(func() {
		c.state.value, c.state.err = c.inner.Get()
	})

	return c.state.value, c.state.err
}

func (c cachedAny) IsShared() bool { return c.inner.IsShared() }

func (c cachedAny) WithValue(value any) AnyItem {
	return CacheAny(c.inner.WithValue(value))
}

func (c cachedAny) WithSharedness(shared bool) AnyItem {
	return CacheAny(c.inner.WithSharedness(shared))
}

func (c cachedAny) Dump() ([]byte, string, error) { return c.inner.Dump() }

func (c cachedAny) SourceFile() (string, bool) { return c.inner.SourceFile() }
