// Package commands implements CLI command handlers for databrook.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/databrook/databrook/pkg/action"
	"github.com/databrook/databrook/pkg/config"
	"github.com/databrook/databrook/pkg/event"
	"github.com/databrook/databrook/pkg/executor"
	"github.com/databrook/databrook/pkg/observability"
	"github.com/databrook/databrook/pkg/tracker"
	"github.com/databrook/databrook/pkg/workflow"
)

// globalFlags holds the flags every subcommand shares, mirroring the
// teacher's persistent root flags (--verbose/--quiet on cmd/codefang).
type globalFlags struct {
	configFile string
	noColor    bool
	logLevel   string
}

func (g *globalFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&g.configFile, "config", "", "Configuration file path (default: .databrook.yaml in CWD or $HOME)")
	cmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Override observability.log_level from config")
}

// setup bundles everything a subcommand needs after config/observability
// init: the loaded config, the observability providers (Shutdown must be
// deferred by the caller), and a ready-to-use action factory.
type setup struct {
	cfg       *config.Config
	providers observability.Providers
	factory   *workflow.ActionFactory
}

func newSetup(g globalFlags, serviceName string) (setup, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return setup{}, fmt.Errorf("load config: %w", err)
	}

	logLevel := cfg.Observability.LogLevel
	if g.logLevel != "" {
		logLevel = g.logLevel
	}

	providers, err := observability.Init(observability.Config{
		ServiceName:    serviceName,
		Environment:    "cli",
		LogLevel:       logLevel,
		TracingEnabled: cfg.Observability.TracingEnabled,
		MetricsAddr:    cfg.Observability.MetricsAddr,
	})
	if err != nil {
		return setup{}, fmt.Errorf("init observability: %w", err)
	}

	color.NoColor = g.noColor //nolint:reassign // intentional override of library global, same as the teacher's validate.go

	return setup{cfg: cfg, providers: providers, factory: action.NewFactory()}, nil
}

// newExecutor builds an Executor wired to s's tracer/metrics/event queue
// (events may be nil when no tracker is attached).
func newExecutor(s setup, events *event.Queue) *executor.Executor {
	e := executor.New()
	e.Tracer = s.providers.Tracer
	e.Metrics = s.providers.Metrics
	e.Events = events

	return e
}

// attachTracker starts a tracker.Tracker over a fresh event.Queue when
// cfg.Tracker.Enabled, returning the queue (nil if disabled) and a detach
// function safe to defer unconditionally.
func attachTracker(cfg *config.Config) (*event.Queue, func()) {
	if !cfg.Tracker.Enabled {
		return nil, func() {}
	}

	q := event.New()
	t := tracker.New(q,
		tracker.WithRefresh(time.Duration(cfg.Tracker.RefreshMillis)*time.Millisecond),
		tracker.WithColor(cfg.Tracker.Color),
	)

	return q, func() {
		t.Detach()
		q.Close()
	}
}

// runContext returns a context cancelled on SIGINT/SIGTERM, mirroring the
// teacher's run command (cmd/codefang/commands/run.go).
func runContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// runStatus is the outcome of a single op/map/wf invocation, rendered by
// printStatusPanel.
type runStatus struct {
	Command string
	Start   time.Time
	End     time.Time
	Outcome string // "completed", "failed", "canceled"
	Detail  string
}

// printStatusPanel renders rs as a go-pretty table colorized with
// fatih/color, the same pairing the teacher uses in
// internal/analyzers/common/formatter.go.
func printStatusPanel(rs runStatus) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.SetStyle(table.StyleLight)

	status := rs.Outcome

	switch rs.Outcome {
	case "completed":
		status = color.GreenString(status)
	case "canceled":
		status = color.YellowString(status)
	default:
		status = color.RedString(status)
	}

	tbl.AppendHeader(table.Row{"command", "status", "started", "duration"})
	tbl.AppendRow(table.Row{rs.Command, status, rs.Start.Format(time.RFC3339), rs.End.Sub(rs.Start).Round(time.Millisecond)})

	if rs.Detail != "" {
		tbl.AppendFooter(table.Row{"", "", "", rs.Detail})
	}

	tbl.Render()
}

// outcomeFor classifies a completed run for the status panel and the
// process exit code spec.md §6 requires: RunE returning a non-nil error
// (failed or canceled) makes main.go exit non-zero; nil exits 0.
func outcomeFor(ctx context.Context, err error) (string, string) {
	if err == nil {
		return "completed", ""
	}

	if ctx.Err() != nil {
		return "canceled", ctx.Err().Error()
	}

	return "failed", err.Error()
}
