package action

import "github.com/databrook/databrook/pkg/workflow"

// Register populates f with a constructor for every action this package
// defines, keyed by the factory name documented on each type's doc
// comment. Callers needing only a subset may instead call the individual
// New* constructors (or construct the action structs directly) and
// register those names themselves.
func Register(f *workflow.ActionFactory) {
	f.Register("source.directory", NewSourceDirectory)
	f.Register("sink.directory", NewSinkDirectory)

	f.Register("identity", NewIdentity)
	f.Register("reverse", NewReverse)
	f.Register("slice", NewSlice)
	f.Register("repeat", NewRepeat)
	f.Register("cycle", NewCycle)
	f.Register("pad", NewPad)
	f.Register("index", NewIndex)
	f.Register("shuffle", NewShuffle)
	f.Register("itemcache", NewItemCacheOp)
	f.Register("cacheop", NewCacheOp)

	f.Register("batch", NewBatch)
	f.Register("chunk", NewChunk)
	f.Register("split", NewSplit)
	f.Register("cat", NewCat)
	f.Register("zip", NewZip)

	f.Register("filter", NewFilter)
	f.Register("sort", NewSort)
	f.Register("groupby", NewGroupBy)
	f.Register("map", NewMap)
}

// NewFactory returns a *workflow.ActionFactory pre-populated by Register.
func NewFactory() *workflow.ActionFactory {
	f := workflow.NewActionFactory()
	Register(f)

	return f
}
