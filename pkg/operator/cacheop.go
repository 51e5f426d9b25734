package operator

import (
	"runtime"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/databrook/databrook/internal/registry"
	"github.com/databrook/databrook/pkg/cache"
	"github.com/databrook/databrook/pkg/dataset"
	"github.com/databrook/databrook/pkg/sample"
)

// cacheOpDataset routes Get through a shared cache keyed by index, falling
// back to the upstream dataset on a miss. It is always handed out as a
// pointer so a finalizer can unregister its cache from the process-wide
// registry once the dataset is no longer reachable. A singleflight group
// collapses concurrent misses on the same index into a single upstream
// read, strengthening the reference "duplicate builds allowed" behavior to
// at-most-one-build-per-key.
type cacheOpDataset[S sample.Sample] struct {
	length int
	source dataset.Dataset[S]
	cache  cache.Cache[int, S]
	id     registry.ID
	group  singleflight.Group
}

// CacheOp wraps d so that Get(i) consults c, keyed by i: on a miss it reads
// through to d, fills c, and returns. The cache instance is registered
// under a fresh process-wide id and unregistered by a finalizer when the
// returned dataset is garbage-collected, mirroring a cache whose lifetime
// is tied exclusively to the dataset that owns it.
func CacheOp[S sample.Sample](d dataset.Dataset[S], c cache.Cache[int, S]) dataset.Dataset[S] {
	out := &cacheOpDataset[S]{length: d.Len(), source: d, cache: c}
	out.id = registry.Register(c)

	runtime.SetFinalizer(out, func(o *cacheOpDataset[S]) {
		registry.Unregister(o.id)
	})

	return out
}

func (d *cacheOpDataset[S]) Len() int { return d.length }

func (d *cacheOpDataset[S]) Get(i int) (S, error) {
	if v, ok := d.cache.Get(i); ok {
		return v, nil
	}

	v, err, _ := d.group.Do(strconv.Itoa(i), func() (any, error) {
		if v, ok := d.cache.Get(i); ok {
			return v, nil
		}

		s, err := d.source.Get(i)
		if err != nil {
			return nil, err
		}

		d.cache.Put(i, s)

		return s, nil
	})
	if err != nil {
		var zero S

		return zero, err
	}

	return v.(S), nil
}

func (d *cacheOpDataset[S]) Slice(start, stop, step int) dataset.Dataset[S] {
	return dataset.SliceOf[S](d, start, stop, step)
}

// ID returns the registry id this CacheOp's cache is registered under,
// primarily for tests that need to assert the finalizer ran.
func (d *cacheOpDataset[S]) ID() registry.ID { return d.id }
