// Package sample implements the ordered key->item map that is the unit of
// data flowing through a dataset, in both a dynamic ("typeless") and a
// schema-fixed ("typed") flavor.
package sample

import "github.com/databrook/databrook/pkg/item"

// ItemEntry pairs a key with an item, used wherever an ordered set of
// key/item additions must be supplied (order matters: see Sample.WithItems).
type ItemEntry struct {
	Key  string
	Item item.AnyItem
}

// ValueEntry pairs a key with a raw value, used by WithValues.
type ValueEntry struct {
	Key   string
	Value any
}

// Sample is an ordered key->Item mapping. All operations are purely
// functional: every With*/Without/Remap/Typeless call returns a new Sample
// and never mutates the receiver.
type Sample interface {
	// Keys returns the sample's keys in iteration order.
	Keys() []string
	// Len returns the number of keys.
	Len() int
	// Get returns the item at key, if present.
	Get(key string) (item.AnyItem, bool)

	// WithItem returns a new sample with key bound to it, appended at the
	// end if key is new, or overwritten in place if key already exists.
	WithItem(key string, it item.AnyItem) Sample
	// WithItems returns a new sample whose key set is the union of the
	// receiver's keys and extra's keys, with overwrites coming from extra.
	// Key order is: existing keys in their original order, then new keys
	// in the order they appear in extra.
	WithItems(extra []ItemEntry) Sample
	// WithValue replaces the value of an existing item at key, keeping its
	// parser and sharedness. If key is absent, WithValue is a no-op.
	WithValue(key string, value any) Sample
	// WithValues applies WithValue for every entry in extra, in order.
	WithValues(extra []ValueEntry) Sample
	// Without returns a new sample with the given keys removed.
	Without(keys ...string) Sample
	// WithOnly returns a new sample containing only the given keys, in the
	// order they appear in the receiver.
	WithOnly(keys ...string) Sample
	// Remap renames keys according to fromTo (old key -> new key). When
	// exclude is false, every key survives: keys named in fromTo are
	// renamed, all others pass through unchanged. When exclude is true,
	// only the keys named as sources in fromTo survive (renamed); every
	// other key is dropped. Relative order of surviving keys is preserved.
	Remap(fromTo map[string]string, exclude bool) Sample
	// Typeless drops any schema information, returning a TypelessSample
	// with the same keys/items. It is a no-op (returns an equivalent
	// TypelessSample) when called on an already-typeless sample.
	Typeless() Sample
}
