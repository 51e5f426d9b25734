// Package grabber implements the worker pool that fans a per-index callback
// out across goroutines, honoring an ordered or completion-order yield
// contract and propagating the first worker failure as cancellation.
package grabber

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Grabber configures how a Grab call distributes work: how many goroutines
// process indices concurrently, how many in-flight results buffer between
// the worker pool and the consumer, and whether results must be yielded in
// index order.
type Grabber struct {
	numWorkers int
	prefetch   int
	keepOrder  bool
}

// Option configures a Grabber built by New.
type Option func(*Grabber)

// WithWorkers sets the number of concurrent workers. 0 (the default) means
// inline: work runs on a single goroutine, with no pool spun up.
func WithWorkers(n int) Option { return func(g *Grabber) { g.numWorkers = n } }

// WithPrefetch sets the result buffer depth between workers and the
// consumer. The default is 2.
func WithPrefetch(n int) Option { return func(g *Grabber) { g.prefetch = n } }

// WithKeepOrder makes Grab yield results in ascending index order instead
// of completion order.
func WithKeepOrder(keep bool) Option { return func(g *Grabber) { g.keepOrder = keep } }

// New builds a Grabber from opts, defaulting to inline execution
// (numWorkers=0), a prefetch of 2, and completion-order yielding.
func New(opts ...Option) *Grabber {
	g := &Grabber{numWorkers: 0, prefetch: 2, keepOrder: false}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// NumWorkers reports the configured worker count.
func (g *Grabber) NumWorkers() int { return g.numWorkers }

// Prefetch reports the configured result buffer depth.
func (g *Grabber) Prefetch() int { return g.prefetch }

// KeepOrder reports whether Grab yields in index order.
func (g *Grabber) KeepOrder() bool { return g.keepOrder }

func (g *Grabber) prefetchOrDefault() int {
	if g.prefetch <= 0 {
		return 2
	}

	return g.prefetch
}

func (g *Grabber) workerCount() int {
	if g.numWorkers <= 0 {
		return 1
	}

	return g.numWorkers
}

// Task carries the outcome of processing one index.
type Task[T any] struct {
	Index int
	Value T
	Err   error
}

// Stats reports how a single Grab call distributed work: total items
// processed, wall time from dispatch to drain, and how many items each
// worker handled. It is only valid to read after the Grab call's output
// channel has been fully drained (closed).
type Stats struct {
	Items     int64
	Wall      time.Duration
	PerWorker []int64
}

// Grab applies fn to every index in [0, n), fanning out across g's worker
// count, and streams results on the returned channel: one Task per index,
// each index exactly once, until either every index has been processed or
// fn returns an error. On the first error, the Task carrying it is sent and
// the channel is then closed; remaining indices are abandoned (workers are
// spawned fresh per Grab call, so no partial state leaks into the next
// call). Every worker is a plain goroutine closing over no shared mutable
// state beyond the index source and result sink.
func Grab[T any](ctx context.Context, g *Grabber, n int, fn func(ctx context.Context, i int) (T, error)) <-chan Task[T] {
	out, _ := GrabWithStats(ctx, g, n, fn)

	return out
}

// GrabWithStats behaves exactly like Grab, additionally returning a *Stats
// that is safe to read once the returned channel is drained: every field is
// written only by the worker that owns it (or after errgroup.Wait returns,
// which happens-after every worker goroutine has finished), so no
// synchronization beyond draining the channel is required before reading.
func GrabWithStats[T any](
	ctx context.Context, g *Grabber, n int, fn func(ctx context.Context, i int) (T, error),
) (<-chan Task[T], *Stats) {
	out := make(chan Task[T])
	stats := &Stats{PerWorker: make([]int64, g.workerCount())}

	go func() {
		defer close(out)

		start := time.Now()

		gctx, cancel := context.WithCancel(ctx)
		defer cancel()

		eg, gctx := errgroup.WithContext(gctx)

		indices := make(chan int)
		go func() {
			defer close(indices)

			for i := range n {
				select {
				case indices <- i:
				case <-gctx.Done():
					return
				}
			}
		}()

		results := make(chan Task[T], g.prefetchOrDefault())

		for w := range g.workerCount() {
			eg.Go(func() error {
				for {
					select {
					case i, ok := <-indices:
						if !ok {
							return nil
						}

						v, err := fn(gctx, i)
						stats.PerWorker[w]++

						select {
						case results <- Task[T]{Index: i, Value: v, Err: err}:
						case <-gctx.Done():
							return gctx.Err()
						}

						if err != nil {
							return err
						}
					case <-gctx.Done():
						return gctx.Err()
					}
				}
			})
		}

		go func() {
			_ = eg.Wait()

			for _, c := range stats.PerWorker {
				stats.Items += c
			}

			stats.Wall = time.Since(start)

			close(results)
		}()

		yield(ctx, g, results, out)
	}()

	return out, stats
}

// yield drains results onto out, reordering into ascending index order when
// g.keepOrder is set. It stops as soon as a failing Task is forwarded.
func yield[T any](ctx context.Context, g *Grabber, results <-chan Task[T], out chan<- Task[T]) {
	if !g.keepOrder {
		for r := range results {
			select {
			case out <- r:
			case <-ctx.Done():
				return
			}

			if r.Err != nil {
				return
			}
		}

		return
	}

	pending := make(map[int]Task[T])
	next := 0

	for r := range results {
		pending[r.Index] = r

		for {
			t, ok := pending[next]
			if !ok {
				break
			}

			select {
			case out <- t:
			case <-ctx.Done():
				return
			}

			delete(pending, next)
			next++

			if t.Err != nil {
				return
			}
		}
	}

	// results closed without ever reaching a pending failure in order: the
	// index ahead of it was cancelled before its worker ran, so next never
	// caught up. Surface the lowest-indexed error still pending instead of
	// silently dropping it.
	found := false

	var errTask Task[T]

	for i, t := range pending {
		if t.Err != nil && (!found || i < errTask.Index) {
			errTask = t
			found = true
		}
	}

	if found {
		select {
		case out <- errTask:
		case <-ctx.Done():
		}
	}
}
