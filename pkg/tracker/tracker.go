// Package tracker implements a terminal UI that renders the live state of a
// running workflow by consuming its progress event queue: one line per task
// id, sorted by id and redrawn at a fixed refresh rate as a two-column
// (title / progress bar) view. Slash-delimited task ids are shown as flat
// paths; no TaskGroup nodes are built and lines are not nested as a tree.
package tracker

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/databrook/databrook/pkg/event"
)

// barWidth is the fixed width of every rendered progress bar, matching the
// teacher's terminal progress bar convention.
const barWidth = 20

const (
	barFilled = "█"
	barEmpty  = "░"
)

// drawBar renders a width-`barWidth` bar for a value clamped to [0, 1].
func drawBar(value float64) string {
	if value < 0 {
		value = 0
	}

	if value > 1 {
		value = 1
	}

	filled := int(value * float64(barWidth))

	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, barWidth-filled)
}

// task is one leaf of the tree: a running or finished unit of work.
type task struct {
	total     int
	unitIndex int
	done      bool
}

func (t *task) fraction() float64 {
	if t.total <= 0 {
		if t.done {
			return 1
		}

		return 0
	}

	return float64(t.unitIndex) / float64(t.total)
}

// progressLabel renders t's unit counts with thousands separators, e.g.
// "1,234 / 10,000", falling back to just the processed count when total is
// unknown (not yet reported by a TaskStart).
func (t *task) progressLabel() string {
	if t.total <= 0 {
		return humanize.Comma(int64(t.unitIndex))
	}

	return fmt.Sprintf("%s / %s", humanize.Comma(int64(t.unitIndex)), humanize.Comma(int64(t.total)))
}

// Tracker consumes a *event.Queue on a background goroutine and renders the
// tree of tasks it describes. Unknown task ids are created on first
// reference; unknown event kinds are ignored.
type Tracker struct {
	queue    *event.Queue
	refresh  time.Duration
	out      io.Writer
	colorize bool

	mu    sync.Mutex
	tasks map[string]*task
	order []string

	cancel  context.CancelFunc
	done    chan struct{}
	detach  sync.Once
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithRefresh overrides the redraw interval (default 100ms).
func WithRefresh(d time.Duration) Option {
	return func(t *Tracker) { t.refresh = d }
}

// WithOutput overrides the render destination (default color.Output, the
// same destination the teacher's CLI formatter colorizes against).
func WithOutput(w io.Writer) Option {
	return func(t *Tracker) { t.out = w }
}

// WithColor toggles ANSI colorization of the rendered titles (default on).
func WithColor(enabled bool) Option {
	return func(t *Tracker) { t.colorize = enabled }
}

const defaultRefresh = 100 * time.Millisecond

// New starts a Tracker consuming q in the background. Call Detach to stop
// it and join its goroutine.
func New(q *event.Queue, opts ...Option) *Tracker {
	t := &Tracker{
		queue:    q,
		refresh:  defaultRefresh,
		out:      color.Output,
		colorize: true,
		tasks:    make(map[string]*task),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(t)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	go t.run(ctx)

	return t
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.drain()
			t.render()
		}
	}
}

func (t *Tracker) drain() {
	for {
		e, ok := t.queue.TryCapture()
		if !ok {
			return
		}

		t.apply(e)
	}
}

func (t *Tracker) apply(e event.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tk, ok := t.tasks[e.TaskID]
	if !ok {
		tk = &task{}
		t.tasks[e.TaskID] = tk
		t.order = append(t.order, e.TaskID)
	}

	switch e.Kind {
	case event.TaskStart:
		tk.total = e.Total
	case event.TaskUpdate:
		tk.unitIndex = e.UnitIndex
	case event.TaskComplete:
		tk.done = true
	default:
		// Unknown kinds are ignored per the queue's documented contract.
	}
}

// titleWidth is the fixed column width titles are padded/truncated to.
const titleWidth = 32

func (t *Tracker) render() {
	t.mu.Lock()

	ids := make([]string, len(t.order))
	copy(ids, t.order)
	sort.Strings(ids)

	lines := make([]string, 0, len(ids))

	for _, id := range ids {
		tk := t.tasks[id]
		title := id

		if t.colorize {
			if tk.done {
				title = color.GreenString(title)
			} else {
				title = color.YellowString(title)
			}
		}

		padded := padTitle(title, id, titleWidth)
		lines = append(lines, fmt.Sprintf(
			"%s [%s] %3.0f%% (%s)", padded, drawBar(tk.fraction()), tk.fraction()*100, tk.progressLabel(),
		))
	}

	t.mu.Unlock()

	fmt.Fprint(t.out, "\r\033[2K")
	fmt.Fprintln(t.out, strings.Join(lines, "\n"))
}

// padTitle pads title to width, measuring against the uncolorized raw
// string so ANSI escapes inserted for color don't throw off alignment.
func padTitle(title, raw string, width int) string {
	pad := width - len(raw)
	if pad <= 0 {
		return title
	}

	return title + strings.Repeat(" ", pad)
}

// Detach stops the background goroutine and waits for it to exit. Safe to
// call more than once; only the first call has any effect.
func (t *Tracker) Detach() {
	t.detach.Do(func() {
		t.cancel()
		<-t.done
	})
}
