package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/databrook/databrook/pkg/action"
	"github.com/databrook/databrook/pkg/workflow"
)

// opOptions holds the op command's flags.
type opOptions struct {
	global    globalFlags
	input     string
	output    string
	options   string
	overwrite string
	copy      string
	compress  bool
}

// NewOpCommand builds the "op <name> -i <input> -o <output>" command:
// spec.md §6's single-operator invocation contract, reading the reference
// directory format, running one named pkg/action operator over it, and
// writing the result back out in the same format.
func NewOpCommand() *cobra.Command {
	o := &opOptions{}

	cmd := &cobra.Command{
		Use:   "op <name>",
		Short: "Run a single operator over a directory dataset",
		Long: "Run a single named operator (slice, filter, sort, batch, ...) reading\n" +
			"from an input directory dataset and writing the result to an output\n" +
			"directory dataset, per-node options given as a JSON object.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args[0])
		},
	}

	o.global.register(cmd)
	registerIOFlags(cmd, &o.input, &o.output, &o.overwrite, &o.copy, &o.compress)
	cmd.Flags().StringVar(&o.options, "options", "{}", "Operator options as a JSON object, e.g. '{\"start\":2,\"stop\":10}'")

	return cmd
}

func registerIOFlags(cmd *cobra.Command, input, output, overwrite, copyPolicy *string, compress *bool) {
	cmd.Flags().StringVarP(input, "input", "i", "", "Input dataset directory")
	cmd.Flags().StringVarP(output, "output", "o", "", "Output dataset directory")
	cmd.Flags().StringVar(overwrite, "overwrite", "forbid",
		"Output overwrite policy: forbid, allow_if_empty, allow_new_files, overwrite_files, overwrite")
	cmd.Flags().StringVar(copyPolicy, "copy", "hard_link", "Output copy policy: hard_link, symbolic_link, replicate, rewrite")
	cmd.Flags().BoolVar(compress, "compress", false,
		"LZ4-compress bytes the sink re-encodes via the rewrite copy policy")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
}

func (o *opOptions) run(cmd *cobra.Command, name string) error {
	s, err := newSetup(o.global, "databrook-op")
	if err != nil {
		return err
	}
	defer func() { _ = s.providers.Shutdown(cmd.Context()) }()

	ctx, stop := runContext(cmd.Context())
	defer stop()

	start := time.Now()
	runErr := o.execute(ctx, s, name)
	outcome, detail := outcomeFor(ctx, runErr)

	printStatusPanel(runStatus{Command: "op " + name, Start: start, End: time.Now(), Outcome: outcome, Detail: detail})

	if outcome != "completed" {
		return fmt.Errorf("op %s: %w", name, runErr)
	}

	return nil
}

// execute wires source.directory -> <name> -> sink.directory as a three
// node graph and runs it, the simplest instance of spec.md §4.7's workflow
// model.
func (o *opOptions) execute(ctx context.Context, s setup, name string) error {
	var opts map[string]any
	if err := json.Unmarshal([]byte(o.options), &opts); err != nil {
		return fmt.Errorf("parse --options: %w", err)
	}

	opAction, err := s.factory.New(name, opts)
	if err != nil {
		return err
	}

	g := workflow.New()

	srcConn, err := g.Node(action.SourceDirectory{Root: o.input}, "source")
	if err != nil {
		return err
	}

	srcOut, err := srcConn.Connect(workflow.NoInput())
	if err != nil {
		return err
	}

	srcProxy, err := srcOut.Single()
	if err != nil {
		return err
	}

	opConn, err := g.Node(opAction, "op")
	if err != nil {
		return err
	}

	opOut, err := opConn.Connect(workflow.FromSingle(srcProxy))
	if err != nil {
		return err
	}

	opProxy, err := opOut.Single()
	if err != nil {
		return err
	}

	sinkConn, err := g.Node(
		action.SinkDirectory{Root: o.output, Overwrite: o.overwrite, Copy: o.copy, Compress: o.compress}, "sink",
	)
	if err != nil {
		return err
	}

	if _, err := sinkConn.Connect(workflow.FromSingle(opProxy)); err != nil {
		return err
	}

	events, detach := attachTracker(s.cfg)
	defer detach()

	_, err = newExecutor(s, events).Run(ctx, g)

	return err
}
