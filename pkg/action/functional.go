package action

import (
	"context"

	"github.com/databrook/databrook/pkg/grabber"
	"github.com/databrook/databrook/pkg/operator"
	"github.com/databrook/databrook/pkg/sample"
	"github.com/databrook/databrook/pkg/workflow"
)

// Filter applies spec.md §4.3's Filter(predicate,negate) operator, run
// across Grabber (nil runs inline). Predicate is parsed once per Apply
// call via ParsePredicate. Registered factory name: "filter".
type Filter struct {
	singleIn
	singleOut

	Predicate string `json:"predicate"`
	Negate    bool   `json:"negate"`
	Grabber   *grabber.Grabber `json:"-"`
}

func (Filter) ClassName() string { return "Filter" }

// Apply implements workflow.Operator.
func (a Filter) Apply(ctx context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	predicate, err := ParsePredicate(a.Predicate)
	if err != nil {
		return workflow.Channels{}, err
	}

	out, err := operator.Filter(ctx, d, a.Grabber, predicate, a.Negate)
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.OneChannel(out), nil
}

// NewFilter builds a Filter action from per-node options.
func NewFilter(options map[string]any) (workflow.Action, error) {
	var a Filter
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}

// Sort applies spec.md §4.3's Sort(key_fn,reverse) operator, run across
// Grabber (nil runs inline). Key is parsed once per Apply call via
// ParseKeyFunc, comparing the resulting strings lexicographically.
// Registered factory name: "sort".
type Sort struct {
	singleIn
	singleOut

	Key     string `json:"key"`
	Reverse bool   `json:"reverse"`
	Grabber *grabber.Grabber `json:"-"`
}

func (Sort) ClassName() string { return "Sort" }

// Apply implements workflow.Operator.
func (a Sort) Apply(ctx context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	keyFn, err := ParseKeyFunc(a.Key)
	if err != nil {
		return workflow.Channels{}, err
	}

	out, err := operator.Sort(ctx, d, a.Grabber, keyFn, a.Reverse)
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.OneChannel(out), nil
}

// NewSort builds a Sort action from per-node options.
func NewSort(options map[string]any) (workflow.Action, error) {
	var a Sort
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}

// GroupBy applies spec.md §4.3's GroupBy(key_fn) operator, run across
// Grabber (nil runs inline), producing a group-key-addressed output.
// Registered factory name: "groupby".
type GroupBy struct {
	singleIn

	Key     string `json:"key"`
	Grabber *grabber.Grabber `json:"-"`
}

func (GroupBy) ClassName() string           { return "GroupBy" }
func (GroupBy) OutputShape() workflow.Shape { return workflow.Map() }

// Apply implements workflow.Operator.
func (a GroupBy) Apply(ctx context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	keyFn, err := ParseKeyFunc(a.Key)
	if err != nil {
		return workflow.Channels{}, err
	}

	groups, err := operator.GroupBy(ctx, d, a.Grabber, keyFn)
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.KeyedChannels(groups), nil
}

// NewGroupBy builds a GroupBy action from per-node options.
func NewGroupBy(options map[string]any) (workflow.Action, error) {
	var a GroupBy
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}

// Map applies spec.md §4.3's Map(mapper) operator; Mapper is parsed once
// per Apply call via ParseMapper. Registered factory name: "map".
type Map struct {
	singleIn
	singleOut

	Mapper string `json:"mapper"`
}

func (Map) ClassName() string { return "Map" }

// Apply implements workflow.Operator.
func (a Map) Apply(_ context.Context, in workflow.Channels) (workflow.Channels, error) {
	d, err := oneIn(in)
	if err != nil {
		return workflow.Channels{}, err
	}

	mapper, err := ParseMapper(a.Mapper)
	if err != nil {
		return workflow.Channels{}, err
	}

	out := operator.Map[sample.Sample, sample.Sample](d, mapper)

	return workflow.OneChannel(out), nil
}

// NewMap builds a Map action from per-node options.
func NewMap(options map[string]any) (workflow.Action, error) {
	var a Map
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}
