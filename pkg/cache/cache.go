// Package cache implements the keyed caches a CacheOp dataset consults: an
// unbounded memo and five bounded eviction policies, all guarded by a
// single mutex since LRU/MRU reads mutate recency state.
package cache

// Cache is a thread-safe key-value store with a bounded or unbounded
// capacity policy. Every method, including Get, may mutate internal state
// (LRU/MRU track recency on read), so implementations serialize all of Get,
// Put, and Clear behind one lock.
type Cache[K comparable, V any] interface {
	// Get returns the value stored at key, if present.
	Get(key K) (V, bool)
	// Put stores value at key, possibly evicting another entry if the
	// cache is at capacity.
	Put(key K, value V)
	// Clear removes every entry.
	Clear()
	// Len returns the number of entries currently stored.
	Len() int
	// Stats returns the cumulative hit/miss counters.
	Stats() Stats
}

// Stats holds cumulative Get outcomes.
type Stats struct {
	Hits   int64
	Misses int64
}

// HitRate returns Hits/(Hits+Misses), or 0 if Get has never been called.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}
