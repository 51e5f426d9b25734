package cache

// NewMemo returns an unbounded cache that never evicts.
func NewMemo[K comparable, V any]() Cache[K, V] {
	return newBounded[K, V](0, false, evictOldest)
}

// NewFIFO returns a cache bounded to maxsize entries that evicts the
// first-inserted entry still present, regardless of access pattern.
// Panics if maxsize <= 0.
func NewFIFO[K comparable, V any](maxsize int) Cache[K, V] {
	mustPositive(maxsize, "FIFO")

	return newBounded[K, V](maxsize, false, evictOldest)
}

// NewLIFO returns a cache bounded to maxsize entries that evicts the
// most-recently-inserted entry. Panics if maxsize <= 0.
func NewLIFO[K comparable, V any](maxsize int) Cache[K, V] {
	mustPositive(maxsize, "LIFO")

	return newBounded[K, V](maxsize, false, evictNewest)
}

// NewRR returns a cache bounded to maxsize entries that evicts an
// arbitrarily chosen entry. Panics if maxsize <= 0.
func NewRR[K comparable, V any](maxsize int) Cache[K, V] {
	mustPositive(maxsize, "RR")

	return newBounded[K, V](maxsize, false, evictRandom)
}

// NewLRU returns a cache bounded to maxsize entries that evicts the
// least-recently-used entry; both Get and Put count as use. Panics if
// maxsize <= 0.
func NewLRU[K comparable, V any](maxsize int) Cache[K, V] {
	mustPositive(maxsize, "LRU")

	return newBounded[K, V](maxsize, true, evictOldest)
}

// NewMRU returns a cache bounded to maxsize entries that evicts the
// most-recently-used entry; both Get and Put count as use. Panics if
// maxsize <= 0.
func NewMRU[K comparable, V any](maxsize int) Cache[K, V] {
	mustPositive(maxsize, "MRU")

	return newBounded[K, V](maxsize, true, evictNewest)
}

func mustPositive(maxsize int, policy string) {
	if maxsize <= 0 {
		panic("cache: " + policy + " requires a maxsize > 0")
	}
}
