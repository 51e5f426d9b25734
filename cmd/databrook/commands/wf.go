package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/databrook/databrook/pkg/workflow"
)

// wfOptions holds the wf command's flags.
type wfOptions struct {
	global globalFlags
	draw   string
}

// NewWfCommand builds the "wf <path>" command: spec.md §6's declarative
// workflow invocation, loading a YAML/JSON graph document via
// workflow.LoadGraph and running it to completion through pkg/executor.
func NewWfCommand() *cobra.Command {
	o := &wfOptions{}

	cmd := &cobra.Command{
		Use:   "wf <path>",
		Short: "Run a declarative workflow graph document",
		Long:  "Load a YAML/JSON workflow graph document and run it to completion.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args[0])
		},
	}

	o.global.register(cmd)
	cmd.Flags().StringVar(&o.draw, "draw", "", "Write a Graphviz DOT rendering of the graph to this path before running")

	return cmd
}

func (o *wfOptions) run(cmd *cobra.Command, path string) error {
	s, err := newSetup(o.global, "databrook-wf")
	if err != nil {
		return err
	}
	defer func() { _ = s.providers.Shutdown(cmd.Context()) }()

	ctx, stop := runContext(cmd.Context())
	defer stop()

	start := time.Now()
	runErr := o.execute(ctx, s, path)
	outcome, detail := outcomeFor(ctx, runErr)

	printStatusPanel(runStatus{Command: "wf " + path, Start: start, End: time.Now(), Outcome: outcome, Detail: detail})

	if outcome != "completed" {
		return fmt.Errorf("wf %s: %w", path, runErr)
	}

	return nil
}

func (o *wfOptions) execute(ctx context.Context, s setup, path string) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read workflow document: %w", err)
	}

	g, err := workflow.LoadGraph(doc, s.factory)
	if err != nil {
		return err
	}

	if o.draw != "" {
		if err := drawGraph(g, o.draw); err != nil {
			return err
		}
	}

	events, detach := attachTracker(s.cfg)
	defer detach()

	_, err = newExecutor(s, events).Run(ctx, g)

	return err
}

func drawGraph(g *workflow.Graph, path string) error {
	dot, err := (workflow.DOTDrawer{}).Draw(g)
	if err != nil {
		return fmt.Errorf("draw graph: %w", err)
	}

	if err := os.WriteFile(path, dot, 0o600); err != nil {
		return fmt.Errorf("write graph drawing: %w", err)
	}

	return nil
}
