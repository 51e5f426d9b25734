// Package executor walks a workflow.Graph in topological order, assembling
// each node's input Channels from already-published proxies, invoking the
// node's action, optionally checkpointing its output through a directory
// sink/source pair, optionally wrapping it in a CacheOp, and emitting
// progress events for an attached tracker — grounded on the teacher's
// Runner/Coordinator orchestration (pkg/framework/runner.go) and its OTel
// span-per-unit-of-work pattern.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/databrook/databrook/pkg/cache"
	"github.com/databrook/databrook/pkg/event"
	"github.com/databrook/databrook/pkg/observability"
	"github.com/databrook/databrook/pkg/operator"
	"github.com/databrook/databrook/pkg/parser"
	"github.com/databrook/databrook/pkg/sink"
	"github.com/databrook/databrook/pkg/source"
	"github.com/databrook/databrook/pkg/workflow"
)

// tracerName is the OTel tracer name for the executor package.
const tracerName = "databrook"

// ErrExecution wraps every failure the executor itself surfaces: an
// unresolvable input channel, a node action error, or a checkpoint I/O
// failure.
var ErrExecution = errors.New("executor: run failed")

// CachePolicy selects the eviction policy CacheOp uses for a node's output,
// mirroring pkg/cache's policy family.
type CachePolicy int

const (
	// CacheNone disables caching for a node's output.
	CacheNone CachePolicy = iota
	CacheMemo
	CacheFIFO
	CacheLIFO
	CacheRR
	CacheLRU
	CacheMRU
)

// NodeConfig holds the optional per-node caching and checkpointing settings
// the executor consults after running a node.
type NodeConfig struct {
	Cache     CachePolicy
	CacheSize int // required for every policy but CacheNone/CacheMemo

	Checkpoint    bool
	CheckpointDir string
	Overwrite     sink.OverwritePolicy
	Copy          sink.CopyPolicy
	Compress      bool // LZ4-compress bytes the checkpoint sink writes via Copy's Rewrite path
	Destroy       bool // remove CheckpointDir after a clean run
	// Registry resolves parsers for the checkpoint re-read. The process
	// default registry is used when nil.
	Registry *parser.Registry
}

func (cfg NodeConfig) newCache() (cache.Cache[int, workflow.Dataset], bool) {
	switch cfg.Cache {
	case CacheMemo:
		return cache.NewMemo[int, workflow.Dataset](), true
	case CacheFIFO:
		return cache.NewFIFO[int, workflow.Dataset](cfg.CacheSize), true
	case CacheLIFO:
		return cache.NewLIFO[int, workflow.Dataset](cfg.CacheSize), true
	case CacheRR:
		return cache.NewRR[int, workflow.Dataset](cfg.CacheSize), true
	case CacheLRU:
		return cache.NewLRU[int, workflow.Dataset](cfg.CacheSize), true
	case CacheMRU:
		return cache.NewMRU[int, workflow.Dataset](cfg.CacheSize), true
	default:
		return nil, false
	}
}

// Executor runs a workflow.Graph to completion.
type Executor struct {
	Tracer  trace.Tracer
	Events  *event.Queue
	Metrics *observability.Metrics

	configs    map[string]NodeConfig
	nodeCaches map[string]cache.Cache[int, workflow.Dataset]
}

// New returns an Executor with no per-node configuration; call Configure to
// attach caching/checkpointing before Run.
func New() *Executor {
	return &Executor{
		configs:    make(map[string]NodeConfig),
		nodeCaches: make(map[string]cache.Cache[int, workflow.Dataset]),
	}
}

// Configure attaches cfg to node, consulted by Run after that node's action
// completes.
func (e *Executor) Configure(node string, cfg NodeConfig) {
	e.configs[node] = cfg
}

func (e *Executor) tracer() trace.Tracer {
	if e.Tracer != nil {
		return e.Tracer
	}

	return otel.Tracer(tracerName)
}

func (e *Executor) emit(ev event.Event) {
	if e.Events != nil {
		e.Events.Emit(ev)
	}
}

// Run validates g, walks it in topological order, and returns the final
// published state: every Proxy produced by a node over the run, keyed by
// its string form. On error, already-created checkpoints are left intact
// (even those configured with Destroy) so the failure can be diagnosed;
// checkpoint destruction happens only after a fully clean run.
func (e *Executor) Run(ctx context.Context, g *workflow.Graph) (map[string]workflow.Dataset, error) {
	order, err := g.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	state := make(map[string]workflow.Dataset)
	cleanRun := false

	defer func() {
		if !cleanRun {
			return
		}

		for _, cfg := range e.configs {
			if cfg.Checkpoint && cfg.Destroy {
				_ = os.RemoveAll(cfg.CheckpointDir)
			}
		}
	}()

	for _, name := range order {
		action, ok := g.Action(name)
		if !ok {
			return nil, fmt.Errorf("%w: node %q vanished from graph", ErrExecution, name)
		}

		out, err := e.runNode(ctx, g, name, action, state)
		if err != nil {
			return nil, fmt.Errorf("%w: node %q: %w", ErrExecution, name, err)
		}

		if err := publish(state, name, out); err != nil {
			return nil, fmt.Errorf("%w: node %q: %w", ErrExecution, name, err)
		}
	}

	cleanRun = true

	e.reportCacheMetrics(ctx)

	return state, nil
}

// reportCacheMetrics records each configured node's cumulative cache hit/
// miss totals, once, after the run completes. Stats() is cumulative, so
// this is accurate only when Run is called at most once per Executor
// instance per cache; callers that reuse an Executor across many Runs
// should build a fresh one per Run to keep the reported totals meaningful.
func (e *Executor) reportCacheMetrics(ctx context.Context) {
	if e.Metrics == nil {
		return
	}

	for name, c := range e.nodeCaches {
		stats := c.Stats()

		e.Metrics.AddCacheHits(ctx, name, stats.Hits)
		e.Metrics.AddCacheMisses(ctx, name, stats.Misses)
	}
}

func (e *Executor) runNode(
	ctx context.Context, g *workflow.Graph, name string, action workflow.Action, state map[string]workflow.Dataset,
) (workflow.Channels, error) {
	ctx, span := e.tracer().Start(ctx, "databrook.node."+name, trace.WithAttributes(
		attribute.String("node.name", name),
		attribute.String("node.class", action.ClassName()),
	))
	defer span.End()

	e.emit(event.Start(name, 0))
	defer e.emit(event.Complete(name))

	started := time.Now()
	defer func() {
		e.Metrics.RecordNodeDuration(ctx, name, action.ClassName(), time.Since(started).Seconds())
	}()

	var (
		out workflow.Channels
		err error
	)

	switch a := action.(type) {
	case workflow.Source:
		out, err = a.Produce(ctx)
	case workflow.Operator:
		var in workflow.Channels

		in, err = assembleInput(g, name, state)
		if err == nil {
			out, err = a.Apply(ctx, in)
		}
	case workflow.Sink:
		var in workflow.Channels

		in, err = assembleInput(g, name, state)
		if err == nil {
			err = a.Consume(ctx, in)
		}
	default:
		err = fmt.Errorf("node %q action implements none of Source/Operator/Sink", name)
	}

	if err != nil {
		return workflow.Channels{}, err
	}

	return e.applyNodeConfig(ctx, name, out)
}

// applyNodeConfig checkpoints and/or caches a node's raw output per its
// NodeConfig, no-op if none was configured.
func (e *Executor) applyNodeConfig(ctx context.Context, name string, out workflow.Channels) (workflow.Channels, error) {
	cfg, ok := e.configs[name]
	if !ok || out.Kind != workflow.SocketNone || out.Single == nil {
		return out, nil
	}

	if cfg.Checkpoint {
		snk := sink.NewDirectory(cfg.CheckpointDir, cfg.Overwrite, cfg.Copy)
		snk.Compress = cfg.Compress

		if err := snk.Write(ctx, out.Single); err != nil {
			return workflow.Channels{}, fmt.Errorf("checkpoint write: %w", err)
		}

		src := source.NewDirectory(cfg.CheckpointDir, cfg.Registry)

		reread, err := src.Read()
		if err != nil {
			return workflow.Channels{}, fmt.Errorf("checkpoint re-read: %w", err)
		}

		out.Single = reread
	}

	if c, ok := cfg.newCache(); ok {
		e.nodeCaches[name] = c
		out.Single = operator.CacheOp(out.Single, c)
	}

	return out, nil
}

// assembleInput collects name's inbound edges from g, requires they all
// agree on socket kind, and resolves each source proxy against state.
func assembleInput(g *workflow.Graph, name string, state map[string]workflow.Dataset) (workflow.Channels, error) {
	edges := g.EdgesInto(name)
	if len(edges) == 0 {
		return workflow.Channels{}, fmt.Errorf("node %q has no inbound edges", name)
	}

	kind := edges[0].To.Socket.Kind
	for _, e := range edges {
		if e.To.Socket.Kind != kind {
			return workflow.Channels{}, fmt.Errorf(
				"node %q inbound edges disagree on socket kind (%s vs %s)", name, e.To.Socket.Kind, kind,
			)
		}
	}

	switch kind {
	case workflow.SocketNone:
		d, err := resolve(state, edges[0].From)
		if err != nil {
			return workflow.Channels{}, err
		}

		return workflow.OneChannel(d), nil
	case workflow.SocketIndex:
		tuple := make([]workflow.Dataset, len(edges))

		for _, e := range edges {
			d, err := resolve(state, e.From)
			if err != nil {
				return workflow.Channels{}, err
			}

			tuple[e.To.Socket.Index] = d
		}

		return workflow.TupleChannels(tuple), nil
	case workflow.SocketKey:
		keyed := make(map[string]workflow.Dataset, len(edges))

		for _, e := range edges {
			d, err := resolve(state, e.From)
			if err != nil {
				return workflow.Channels{}, err
			}

			keyed[e.To.Socket.Key] = d
		}

		return workflow.KeyedChannels(keyed), nil
	default:
		return workflow.Channels{}, fmt.Errorf("node %q has unsupported inbound socket kind %s", name, kind)
	}
}

func resolve(state map[string]workflow.Dataset, p workflow.Proxy) (workflow.Dataset, error) {
	d, ok := state[p.String()]
	if !ok {
		return nil, fmt.Errorf("proxy %s not yet published", p)
	}

	return d, nil
}

// publish records every output channel out exposes into state, keyed by
// the Proxy string each is addressable under.
func publish(state map[string]workflow.Dataset, name string, out workflow.Channels) error {
	switch out.Kind {
	case workflow.SocketNone:
		if out.Single != nil {
			state[workflow.Proxy{Node: name}.String()] = out.Single
		}

		return nil
	case workflow.SocketIndex:
		for i, d := range out.Tuple {
			state[(workflow.Proxy{Node: name, Socket: workflow.At(i)}).String()] = d
		}

		return nil
	case workflow.SocketKey:
		for key, d := range out.Keyed {
			state[(workflow.Proxy{Node: name, Socket: workflow.Field(key)}).String()] = d
		}

		return nil
	default:
		return fmt.Errorf("node %q produced unsupported output socket kind %s", name, out.Kind)
	}
}
