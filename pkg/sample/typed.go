package sample

import "github.com/databrook/databrook/pkg/item"

// TypedSample is a Sample whose key set was fixed at construction (a
// schema). Narrowing operations (Without, WithOnly, Remap with exclude)
// keep the schema narrowed to whatever keys survive; widening operations
// (WithItem, WithItems, Remap renaming in a new key) extend it. A TypedSample
// exists to let callers assert "this pipeline stage always produces exactly
// these keys" without losing the ordinary Sample update operations.
type TypedSample struct {
	core TypelessSample
}

// NewTypedSample builds a TypedSample from entries, in the given order.
func NewTypedSample(entries ...ItemEntry) TypedSample {
	return TypedSample{core: NewTypelessSample(entries...)}
}

// Keys implements Sample.
func (s TypedSample) Keys() []string { return s.core.Keys() }

// Len implements Sample.
func (s TypedSample) Len() int { return s.core.Len() }

// Get implements Sample.
func (s TypedSample) Get(key string) (item.AnyItem, bool) { return s.core.Get(key) }

// WithItem implements Sample.
func (s TypedSample) WithItem(key string, it item.AnyItem) Sample {
	return TypedSample{core: s.core.WithItem(key, it).(TypelessSample)}
}

// WithItems implements Sample.
func (s TypedSample) WithItems(extra []ItemEntry) Sample {
	return TypedSample{core: s.core.WithItems(extra).(TypelessSample)}
}

// WithValue implements Sample.
func (s TypedSample) WithValue(key string, value any) Sample {
	return TypedSample{core: s.core.WithValue(key, value).(TypelessSample)}
}

// WithValues implements Sample.
func (s TypedSample) WithValues(extra []ValueEntry) Sample {
	return TypedSample{core: s.core.WithValues(extra).(TypelessSample)}
}

// Without implements Sample: the schema narrows to the surviving keys.
func (s TypedSample) Without(keys ...string) Sample {
	return TypedSample{core: s.core.Without(keys...).(TypelessSample)}
}

// WithOnly implements Sample: the schema narrows to the kept keys.
func (s TypedSample) WithOnly(keys ...string) Sample {
	return TypedSample{core: s.core.WithOnly(keys...).(TypelessSample)}
}

// Remap implements Sample.
func (s TypedSample) Remap(fromTo map[string]string, exclude bool) Sample {
	return TypedSample{core: s.core.Remap(fromTo, exclude).(TypelessSample)}
}

// Typeless implements Sample: drops the schema, returning the underlying
// TypelessSample.
func (s TypedSample) Typeless() Sample { return s.core }
