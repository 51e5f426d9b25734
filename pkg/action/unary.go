package action

import (
	"context"
	"fmt"

	"github.com/databrook/databrook/pkg/cache"
	"github.com/databrook/databrook/pkg/operator"
	"github.com/databrook/databrook/pkg/sample"
	"github.com/databrook/databrook/pkg/workflow"
)

// Identity passes its input through unchanged. Registered factory name:
// "identity".
type Identity struct {
	singleIn
	singleOut
}

func (Identity) ClassName() string { return "Identity" }

// Apply implements workflow.Operator.
func (Identity) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.OneChannel(operator.Identity(d)), nil
}

// NewIdentity builds an Identity action; options are ignored.
func NewIdentity(map[string]any) (workflow.Action, error) { return Identity{}, nil }

// Reverse reverses its input's element order. Registered factory name:
// "reverse".
type Reverse struct {
	singleIn
	singleOut
}

func (Reverse) ClassName() string { return "Reverse" }

// Apply implements workflow.Operator.
func (Reverse) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.OneChannel(operator.Reverse(d)), nil
}

// NewReverse builds a Reverse action; options are ignored.
func NewReverse(map[string]any) (workflow.Action, error) { return Reverse{}, nil }

// Slice applies spec.md §4.3's Slice(start,stop,step) operator. Registered
// factory name: "slice".
type Slice struct {
	singleIn
	singleOut

	Start int `json:"start"`
	Stop  int `json:"stop"`
	Step  int `json:"step"`
}

func (Slice) ClassName() string { return "Slice" }

// Apply implements workflow.Operator.
func (a Slice) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.OneChannel(d.Slice(a.Start, a.Stop, a.Step)), nil
}

// NewSlice builds a Slice action; Step defaults to 1 if the options map
// omits it.
func NewSlice(options map[string]any) (workflow.Action, error) {
	a := Slice{Step: 1}
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}

// Repeat applies spec.md §4.3's Repeat(n,interleave) operator. Registered
// factory name: "repeat".
type Repeat struct {
	singleIn
	singleOut

	N          int  `json:"n"`
	Interleave bool `json:"interleave"`
}

func (Repeat) ClassName() string { return "Repeat" }

// Apply implements workflow.Operator.
func (a Repeat) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.OneChannel(operator.Repeat(d, a.N, a.Interleave)), nil
}

// NewRepeat builds a Repeat action from per-node options.
func NewRepeat(options map[string]any) (workflow.Action, error) {
	var a Repeat
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}

// Cycle applies spec.md §4.3's Cycle(total) operator. Registered factory
// name: "cycle".
type Cycle struct {
	singleIn
	singleOut

	Total int `json:"total"`
}

func (Cycle) ClassName() string { return "Cycle" }

// Apply implements workflow.Operator.
func (a Cycle) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.OneChannel(operator.Cycle(d, a.Total)), nil
}

// NewCycle builds a Cycle action from per-node options.
func NewCycle(options map[string]any) (workflow.Action, error) {
	var a Cycle
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}

// Pad applies spec.md §4.3's Pad(length,pad_index) operator. Registered
// factory name: "pad".
type Pad struct {
	singleIn
	singleOut

	Length   int `json:"length"`
	PadIndex int `json:"pad_index"`
}

func (Pad) ClassName() string { return "Pad" }

// Apply implements workflow.Operator.
func (a Pad) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.OneChannel(operator.Pad(d, a.Length, a.PadIndex)), nil
}

// NewPad builds a Pad action; PadIndex defaults to -1 (last element) per
// spec.md §4.3 if the options map omits it.
func NewPad(options map[string]any) (workflow.Action, error) {
	a := Pad{PadIndex: -1}
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}

// Index applies spec.md §4.3's Index(idx_list,negate) operator. Registered
// factory name: "index".
type Index struct {
	singleIn
	singleOut

	Indices []int `json:"indices"`
	Negate  bool  `json:"negate"`
}

func (Index) ClassName() string { return "Index" }

// Apply implements workflow.Operator.
func (a Index) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	out, err := operator.Index(d, a.Indices, a.Negate)
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.OneChannel(out), nil
}

// NewIndex builds an Index action from per-node options.
func NewIndex(options map[string]any) (workflow.Action, error) {
	var a Index
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}

// Shuffle applies spec.md §4.3's Shuffle(seed?) operator. A zero Seed with
// HasSeed false draws entropy from the OS per call, matching the spec's
// "else seeded from OS entropy"; HasSeed true makes the permutation
// deterministic and reproducible across runs (the resolved Open Question
// in DESIGN.md: the permutation is captured once, at construction, by
// the returned lazy dataset). Registered factory name: "shuffle".
type Shuffle struct {
	singleIn
	singleOut

	Seed    uint64 `json:"seed"`
	HasSeed bool   `json:"has_seed"`
}

func (Shuffle) ClassName() string { return "Shuffle" }

// Apply implements workflow.Operator.
func (a Shuffle) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	var seed *uint64
	if a.HasSeed {
		seed = &a.Seed
	}

	return workflow.OneChannel(operator.Shuffle(d, seed)), nil
}

// NewShuffle builds a Shuffle action from per-node options.
func NewShuffle(options map[string]any) (workflow.Action, error) {
	var a Shuffle
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}

// ItemCacheOp applies spec.md §4.3's ItemCache operator: every item is
// wrapped so repeated Item.Get calls on the same sample handle hit memory
// after the first read. Registered factory name: "itemcache".
type ItemCacheOp struct {
	singleIn
	singleOut
}

func (ItemCacheOp) ClassName() string { return "ItemCache" }

// Apply implements workflow.Operator.
func (ItemCacheOp) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.OneChannel(operator.ItemCache(d)), nil
}

// NewItemCacheOp builds an ItemCacheOp action; options are ignored.
func NewItemCacheOp(map[string]any) (workflow.Action, error) { return ItemCacheOp{}, nil }

// cachePolicyCtors maps a cache policy name to the constructor producing a
// cache.Cache[int, sample.Sample] for it, mirroring config.CacheConfig's
// policy vocabulary.
var cachePolicyCtors = map[string]func(maxsize int) cache.Cache[int, sample.Sample]{
	"memo": func(int) cache.Cache[int, sample.Sample] { return cache.NewMemo[int, sample.Sample]() },
	"fifo": cache.NewFIFO[int, sample.Sample],
	"lifo": cache.NewLIFO[int, sample.Sample],
	"rr":   cache.NewRR[int, sample.Sample],
	"lru":  cache.NewLRU[int, sample.Sample],
	"mru":  cache.NewMRU[int, sample.Sample],
}

// ErrUnknownCachePolicy is returned when a CacheOp's Policy option does not
// name one of pkg/cache's eviction policies.
var ErrUnknownCachePolicy = fmt.Errorf("action: unrecognized cache policy")

// CacheOp applies spec.md §4.3's CacheOp(policy,params) operator, wrapping
// its input so that repeated Get(i) calls against the returned dataset
// consult a shared cache instead of re-materializing. Registered factory
// name: "cacheop".
type CacheOp struct {
	singleIn
	singleOut

	Policy  string `json:"policy"` // "memo", "fifo", "lifo", "rr", "lru", "mru"
	MaxSize int    `json:"max_size"`
}

func (CacheOp) ClassName() string { return "CacheOp" }

// Apply implements workflow.Operator.
func (a CacheOp) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	ctor, ok := cachePolicyCtors[a.Policy]
	if !ok {
		return workflow.Channels{}, fmt.Errorf("%w: %q", ErrUnknownCachePolicy, a.Policy)
	}

	return workflow.OneChannel(operator.CacheOp(d, ctor(a.MaxSize))), nil
}

// NewCacheOp builds a CacheOp action from per-node options.
func NewCacheOp(options map[string]any) (workflow.Action, error) {
	var a CacheOp
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}
