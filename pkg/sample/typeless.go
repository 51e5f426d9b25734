package sample

import "github.com/databrook/databrook/pkg/item"

// TypelessSample is a dynamically-keyed Sample: keys may be added, removed,
// or renamed freely across With*/Without/Remap calls.
type TypelessSample struct {
	entries []ItemEntry
	index   map[string]int
}

// NewTypelessSample builds a TypelessSample from entries, in the given
// order. A later duplicate key overwrites the earlier one's item but keeps
// its original position, matching WithItems semantics.
func NewTypelessSample(entries ...ItemEntry) TypelessSample {
	return insertOrdered(nil, entries)
}

// insertOrdered returns a new ordered entry set built from base (already
// deduplicated) with extra inserted: keys already present keep their
// position but take extra's item; new keys are appended in extra's order.
func insertOrdered(base []ItemEntry, extra []ItemEntry) TypelessSample {
	entries := make([]ItemEntry, len(base), len(base)+len(extra))
	copy(entries, base)

	index := make(map[string]int, len(entries)+len(extra))
	for i, e := range entries {
		index[e.Key] = i
	}

	for _, e := range extra {
		if idx, ok := index[e.Key]; ok {
			entries[idx] = e

			continue
		}

		index[e.Key] = len(entries)
		entries = append(entries, e)
	}

	return TypelessSample{entries: entries, index: index}
}

// Keys implements Sample.
func (s TypelessSample) Keys() []string {
	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.Key
	}

	return keys
}

// Len implements Sample.
func (s TypelessSample) Len() int { return len(s.entries) }

// Get implements Sample.
func (s TypelessSample) Get(key string) (item.AnyItem, bool) {
	idx, ok := s.index[key]
	if !ok {
		return nil, false
	}

	return s.entries[idx].Item, true
}

// WithItem implements Sample.
func (s TypelessSample) WithItem(key string, it item.AnyItem) Sample {
	return insertOrdered(s.entries, []ItemEntry{{Key: key, Item: it}})
}

// WithItems implements Sample.
func (s TypelessSample) WithItems(extra []ItemEntry) Sample {
	return insertOrdered(s.entries, extra)
}

// WithValue implements Sample.
func (s TypelessSample) WithValue(key string, value any) Sample {
	idx, ok := s.index[key]
	if !ok {
		return s
	}

	entries := append([]ItemEntry(nil), s.entries...)
	entries[idx] = ItemEntry{Key: key, Item: entries[idx].Item.WithValue(value)}

	return TypelessSample{entries: entries, index: s.index}
}

// WithValues implements Sample.
func (s TypelessSample) WithValues(extra []ValueEntry) Sample {
	var out Sample = s
	for _, e := range extra {
		out = out.WithValue(e.Key, e.Value)
	}

	return out
}

// Without implements Sample.
func (s TypelessSample) Without(keys ...string) Sample {
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}

	entries := make([]ItemEntry, 0, len(s.entries))

	for _, e := range s.entries {
		if _, dropped := drop[e.Key]; dropped {
			continue
		}

		entries = append(entries, e)
	}

	return NewTypelessSample(entries...)
}

// WithOnly implements Sample: keeps only keys, in the order they appear in
// the receiver (not the order given in keys).
func (s TypelessSample) WithOnly(keys ...string) Sample {
	keep := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keep[k] = struct{}{}
	}

	entries := make([]ItemEntry, 0, len(keys))

	for _, e := range s.entries {
		if _, ok := keep[e.Key]; ok {
			entries = append(entries, e)
		}
	}

	return NewTypelessSample(entries...)
}

// Remap implements Sample.
func (s TypelessSample) Remap(fromTo map[string]string, exclude bool) Sample {
	entries := make([]ItemEntry, 0, len(s.entries))

	for _, e := range s.entries {
		newKey, renamed := fromTo[e.Key]
		switch {
		case renamed:
			entries = append(entries, ItemEntry{Key: newKey, Item: e.Item})
		case !exclude:
			entries = append(entries, e)
		}
	}

	return NewTypelessSample(entries...)
}

// Typeless implements Sample: a TypelessSample is already typeless.
func (s TypelessSample) Typeless() Sample { return s }
