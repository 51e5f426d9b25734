package operator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databrook/databrook/internal/registry"
	"github.com/databrook/databrook/pkg/cache"
	"github.com/databrook/databrook/pkg/dataset"
	"github.com/databrook/databrook/pkg/item"
	"github.com/databrook/databrook/pkg/operator"
	"github.com/databrook/databrook/pkg/sample"
)

type stringParser struct{}

func (stringParser) Parse(data []byte) (string, error) { return string(data), nil }
func (stringParser) Dump(v string) ([]byte, error)      { return []byte(v), nil }
func (stringParser) Extensions() []string               { return []string{"txt"} }

func letterSample(letter string, color string) sample.TypelessSample {
	return sample.NewTypelessSample(
		sample.ItemEntry{Key: "letter", Item: item.Erase[string](item.NewMemoryItem(letter, stringParser{}, false))},
		sample.ItemEntry{Key: "color", Item: item.Erase[string](item.NewMemoryItem(color, stringParser{}, false))},
	)
}

func letters(t *testing.T, d dataset.Dataset[sample.TypelessSample]) []string {
	t.Helper()

	out := make([]string, d.Len())

	for i := range d.Len() {
		s, err := d.Get(i)
		require.NoError(t, err)

		it, _ := s.Get("letter")
		v, _ := it.Get()
		out[i] = v.(string)
	}

	return out
}

// alphabet builds the 26-sample a..z dataset used by the spec's reference
// examples, with every 5th letter colored "orange" and the rest "blue".
func alphabet() dataset.List[sample.TypelessSample] {
	items := make([]sample.TypelessSample, 26)
	for i := range items {
		letter := string(rune('a' + i))
		color := "blue"

		if i%5 == 4 {
			color = "orange"
		}

		items[i] = letterSample(letter, color)
	}

	return dataset.NewList(items)
}

func TestIdentityPassesThrough(t *testing.T) {
	d := alphabet()
	assert.Equal(t, dataset.Dataset[sample.TypelessSample](d), operator.Identity[sample.TypelessSample](d))
}

func TestRepeatNonInterleaved(t *testing.T) {
	d := alphabet().Slice(0, 3, 1)

	out := operator.Repeat[sample.TypelessSample](d, 3, false)
	assert.Equal(t, 9, out.Len())
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c", "a", "b", "c"}, letters(t, out))
}

func TestRepeatInterleaved(t *testing.T) {
	d := alphabet().Slice(0, 3, 1)

	out := operator.Repeat[sample.TypelessSample](d, 3, true)
	assert.Equal(t, 9, out.Len())
	assert.Equal(t, []string{"a", "a", "a", "b", "b", "b", "c", "c", "c"}, letters(t, out))
}

func TestCycleEmptySourceIsEmpty(t *testing.T) {
	empty := dataset.NewList[sample.TypelessSample](nil)

	out := operator.Cycle[sample.TypelessSample](empty, 10)
	assert.Equal(t, 0, out.Len())
}

func TestCycleWraps(t *testing.T) {
	d := alphabet().Slice(0, 3, 1)

	out := operator.Cycle[sample.TypelessSample](d, 7)
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c", "a"}, letters(t, out))
}

func TestReverse(t *testing.T) {
	d := alphabet().Slice(0, 3, 1)

	out := operator.Reverse[sample.TypelessSample](d)
	assert.Equal(t, []string{"c", "b", "a"}, letters(t, out))
}

func TestPadTruncates(t *testing.T) {
	d := alphabet().Slice(0, 5, 1)

	out := operator.Pad[sample.TypelessSample](d, 3, -1)
	assert.Equal(t, []string{"a", "b", "c"}, letters(t, out))
}

func TestPadExtendsWithLastByDefault(t *testing.T) {
	d := alphabet().Slice(0, 3, 1)

	out := operator.Pad[sample.TypelessSample](d, 5, -1)
	assert.Equal(t, []string{"a", "b", "c", "c", "c"}, letters(t, out))
}

func TestPadZeroLengthIsEmpty(t *testing.T) {
	d := alphabet()

	out := operator.Pad[sample.TypelessSample](d, 0, -1)
	assert.Equal(t, 0, out.Len())
}

func TestIndexSelectsInOrder(t *testing.T) {
	d := alphabet().Slice(0, 5, 1)

	out, err := operator.Index[sample.TypelessSample](d, []int{3, 0, 0}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a", "a"}, letters(t, out))
}

func TestIndexNegateKeepsAscendingOrder(t *testing.T) {
	d := alphabet().Slice(0, 5, 1)

	out, err := operator.Index[sample.TypelessSample](d, []int{1, 3}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "e"}, letters(t, out))
}

func TestIndexOutOfRangeIsConfigError(t *testing.T) {
	d := alphabet().Slice(0, 5, 1)

	_, err := operator.Index[sample.TypelessSample](d, []int{99}, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, operator.ErrConfig)
}

func TestBatch(t *testing.T) {
	d := alphabet()

	batches, err := operator.Batch[sample.TypelessSample](d, 10)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, 10, batches[0].Len())
	assert.Equal(t, 10, batches[1].Len())
	assert.Equal(t, 6, batches[2].Len())
}

func TestBatchRejectsNonPositiveSize(t *testing.T) {
	_, err := operator.Batch[sample.TypelessSample](alphabet(), 0)
	assert.ErrorIs(t, err, operator.ErrConfig)
}

func TestChunkFirstRemainderChunksGetExtra(t *testing.T) {
	d := alphabet()

	chunks, err := operator.Chunk[sample.TypelessSample](d, 4)
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	lens := make([]int, 4)
	for i, c := range chunks {
		lens[i] = c.Len()
	}

	assert.Equal(t, []int{7, 7, 6, 6}, lens)
}

func TestSplitLiteralCounts(t *testing.T) {
	d := alphabet()

	splits, err := operator.Split[sample.TypelessSample](d, []operator.SplitSize{operator.Count(10), operator.Count(16)})
	require.NoError(t, err)
	assert.Equal(t, 10, splits[0].Len())
	assert.Equal(t, 16, splits[1].Len())
}

func TestSplitFractionWithRemainder(t *testing.T) {
	d := alphabet()

	splits, err := operator.Split[sample.TypelessSample](d, []operator.SplitSize{operator.Fraction(0.5), operator.Remainder()})
	require.NoError(t, err)
	assert.Equal(t, 13, splits[0].Len())
	assert.Equal(t, 13, splits[1].Len())
}

func TestSplitRejectsMixedKinds(t *testing.T) {
	_, err := operator.Split[sample.TypelessSample](alphabet(), []operator.SplitSize{operator.Count(1), operator.Fraction(0.5)})
	assert.ErrorIs(t, err, operator.ErrConfig)
}

func TestSplitRejectsMultipleRemainders(t *testing.T) {
	_, err := operator.Split[sample.TypelessSample](alphabet(), []operator.SplitSize{operator.Remainder(), operator.Remainder()})
	assert.ErrorIs(t, err, operator.ErrConfig)
}

func TestCat(t *testing.T) {
	a := alphabet().Slice(0, 3, 1)
	b := alphabet().Slice(3, 6, 1)

	out := operator.Cat[sample.TypelessSample]([]dataset.Dataset[sample.TypelessSample]{a, b})
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, letters(t, out))
}

func TestCatOfOneIsEquivalent(t *testing.T) {
	a := alphabet().Slice(0, 3, 1)

	out := operator.Cat[sample.TypelessSample]([]dataset.Dataset[sample.TypelessSample]{a})
	assert.Equal(t, letters(t, a), letters(t, out))
}

func TestZipMergesByKeyUnionRightBiased(t *testing.T) {
	left := dataset.NewList([]sample.Sample{
		letterSample("a", "blue"),
		letterSample("b", "blue"),
	})
	right := dataset.NewList([]sample.Sample{
		sample.NewTypelessSample(sample.ItemEntry{Key: "color", Item: item.Erase[string](item.NewMemoryItem("red", stringParser{}, false))}),
		sample.NewTypelessSample(sample.ItemEntry{Key: "color", Item: item.Erase[string](item.NewMemoryItem("red", stringParser{}, false))}),
	})

	out, err := operator.Zip([]dataset.Dataset[sample.Sample]{left, right})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())

	s, err := out.Get(0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"letter", "color"}, s.Keys())

	colorItem, _ := s.Get("color")
	v, _ := colorItem.Get()
	assert.Equal(t, "red", v)
}

func TestZipRejectsMismatchedLengths(t *testing.T) {
	a := dataset.NewList([]sample.Sample{letterSample("a", "blue")})
	b := dataset.NewList([]sample.Sample{letterSample("a", "blue"), letterSample("b", "blue")})

	_, err := operator.Zip([]dataset.Dataset[sample.Sample]{a, b})
	assert.ErrorIs(t, err, operator.ErrConfig)
}

func TestShuffleIsAPermutation(t *testing.T) {
	d := alphabet()
	seed := uint64(42)

	out := operator.Shuffle[sample.TypelessSample](d, &seed)
	assert.ElementsMatch(t, letters(t, d), letters(t, out))
}

func TestShuffleDeterministicWithSameSeed(t *testing.T) {
	d := alphabet()
	seed := uint64(7)

	a := operator.Shuffle[sample.TypelessSample](d, &seed)
	b := operator.Shuffle[sample.TypelessSample](d, &seed)
	assert.Equal(t, letters(t, a), letters(t, b))
}

func TestMapAppliesMapperPerSample(t *testing.T) {
	d := alphabet().Slice(0, 3, 1)

	upper := operator.Map(d, func(_ int, s sample.TypelessSample) (sample.TypelessSample, error) {
		return s.WithValue("letter", "X").(sample.TypelessSample), nil
	})

	assert.Equal(t, []string{"X", "X", "X"}, letters(t, upper))
}

func TestFilterPreservesOrder(t *testing.T) {
	d := alphabet()

	out, err := operator.Filter(context.Background(), d, nil, func(i int, _ sample.TypelessSample) (bool, error) {
		return i%2 == 0, nil
	}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "e", "g"}, letters(t, out)[:4])
}

func TestSortIsStable(t *testing.T) {
	d := alphabet().Slice(0, 10, 1)

	out, err := operator.Sort(context.Background(), d, nil, func(_ int, _ sample.TypelessSample) (int, error) {
		return 0, nil // all equal keys: stable sort must preserve original order
	}, false)
	require.NoError(t, err)
	assert.Equal(t, letters(t, d), letters(t, out))
}

func TestGroupByPreservesOrderWithinGroup(t *testing.T) {
	d := alphabet()

	groups, err := operator.GroupBy(context.Background(), d, nil, func(_ int, s sample.TypelessSample) (string, error) {
		it, _ := s.Get("color")
		v, _ := it.Get()

		return v.(string), nil
	})
	require.NoError(t, err)

	orange := groups["orange"]
	assert.Equal(t, []string{"e", "j", "o", "t", "y"}, letters(t, orange))
}

func TestItemCacheMemoizesRepeatedGets(t *testing.T) {
	calls := 0
	tracked := item.Erase[string](item.NewStoredItem[string](countingReader{count: &calls}, stringParser{}, false))
	base := dataset.NewList([]sample.TypelessSample{
		sample.NewTypelessSample(sample.ItemEntry{Key: "v", Item: tracked}),
	})

	cached := operator.ItemCache[sample.TypelessSample](base)

	s, err := cached.Get(0)
	require.NoError(t, err)

	it, _ := s.Get("v")
	_, _ = it.Get()
	_, _ = it.Get()
	_, _ = it.Get()

	assert.Equal(t, 1, calls)
}

type countingReader struct{ count *int }

func (c countingReader) Read() ([]byte, error) {
	*c.count++

	return []byte("x"), nil
}

func TestCacheOpServesFromCacheOnHit(t *testing.T) {
	calls := 0
	items := make([]sample.TypelessSample, 3)

	for i := range items {
		items[i] = letterSample(string(rune('a'+i)), "blue")
	}

	base := countingDataset{inner: dataset.NewList(items), calls: &calls}

	c := cache.NewMemo[int, sample.TypelessSample]()
	wrapped := operator.CacheOp[sample.TypelessSample](base, c)

	_, err := wrapped.Get(0)
	require.NoError(t, err)
	_, err = wrapped.Get(0)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, wrapped.Len())
}

type countingDataset struct {
	inner dataset.Dataset[sample.TypelessSample]
	calls *int
}

func (c countingDataset) Len() int { return c.inner.Len() }

func (c countingDataset) Get(i int) (sample.TypelessSample, error) {
	*c.calls++

	return c.inner.Get(i)
}

func (c countingDataset) Slice(start, stop, step int) dataset.Dataset[sample.TypelessSample] {
	return c.inner.Slice(start, stop, step)
}

func TestCacheOpRegistersCache(t *testing.T) {
	before := registry.Count()

	base := alphabet()
	c := cache.NewMemo[int, sample.TypelessSample]()
	_ = operator.CacheOp[sample.TypelessSample](base, c)

	assert.Equal(t, before+1, registry.Count())
}
