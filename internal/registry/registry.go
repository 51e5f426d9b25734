// Package registry is the process-wide table of live CacheOp cache
// instances, keyed by an opaque id so that cross-goroutine consumers of a
// CacheOp dataset can look its cache up without owning it. Entries are
// inserted at CacheOp construction and removed by a finalizer when the
// owning dataset is garbage-collected.
package registry

import "sync"

// ID identifies one registered cache instance.
type ID uint64

var (
	mu      sync.RWMutex
	entries = make(map[ID]any)
	next    ID
)

// Register adds c under a fresh id and returns it.
func Register(c any) ID {
	mu.Lock()
	defer mu.Unlock()

	next++
	id := next
	entries[id] = c

	return id
}

// Lookup returns the cache registered under id, if it is still registered.
func Lookup(id ID) (any, bool) {
	mu.RLock()
	defer mu.RUnlock()

	c, ok := entries[id]

	return c, ok
}

// Unregister removes id. It is safe to call more than once for the same id.
func Unregister(id ID) {
	mu.Lock()
	defer mu.Unlock()

	delete(entries, id)
}

// Count reports how many caches are currently registered. Intended for
// tests asserting that finalizer-driven cleanup ran.
func Count() int {
	mu.RLock()
	defer mu.RUnlock()

	return len(entries)
}
