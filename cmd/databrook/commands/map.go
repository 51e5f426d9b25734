package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/databrook/databrook/pkg/action"
	"github.com/databrook/databrook/pkg/workflow"
)

// mapOptions holds the map command's flags.
type mapOptions struct {
	global    globalFlags
	input     string
	output    string
	overwrite string
	copy      string
	compress  bool
}

// NewMapCommand builds the "map <name> -i <input> -o <output>" command:
// spec.md §6's sample-mapping shorthand, name being a mapper spec
// understood by action.ParseMapper (identity, typeless, only:k1,k2,
// without:k1,k2, remap:old=new,...).
func NewMapCommand() *cobra.Command {
	o := &mapOptions{}

	cmd := &cobra.Command{
		Use:   "map <name>",
		Short: "Apply a named sample mapper to a directory dataset",
		Long: "Apply a mapper spec (identity, typeless, only:k1,k2, without:k1,k2,\n" +
			"remap:old=new,...) to every sample read from an input directory\n" +
			"dataset, writing the result to an output directory dataset.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args[0])
		},
	}

	o.global.register(cmd)
	registerIOFlags(cmd, &o.input, &o.output, &o.overwrite, &o.copy, &o.compress)

	return cmd
}

func (o *mapOptions) run(cmd *cobra.Command, mapperSpec string) error {
	s, err := newSetup(o.global, "databrook-map")
	if err != nil {
		return err
	}
	defer func() { _ = s.providers.Shutdown(cmd.Context()) }()

	ctx, stop := runContext(cmd.Context())
	defer stop()

	start := time.Now()
	runErr := o.execute(ctx, s, mapperSpec)
	outcome, detail := outcomeFor(ctx, runErr)

	printStatusPanel(runStatus{Command: "map " + mapperSpec, Start: start, End: time.Now(), Outcome: outcome, Detail: detail})

	if outcome != "completed" {
		return fmt.Errorf("map %s: %w", mapperSpec, runErr)
	}

	return nil
}

func (o *mapOptions) execute(ctx context.Context, s setup, mapperSpec string) error {
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

	mapConn, err := g.Node(action.Map{Mapper: mapperSpec}, "map")
	if err != nil {
		return err
	}

	mapOut, err := mapConn.Connect(workflow.FromSingle(srcProxy))
	if err != nil {
		return err
	}

	mapProxy, err := mapOut.Single()
	if err != nil {
		return err
	}

	sinkConn, err := g.Node(
		action.SinkDirectory{Root: o.output, Overwrite: o.overwrite, Copy: o.copy, Compress: o.compress}, "sink",
	)
	if err != nil {
		return err
	}

	if _, err := sinkConn.Connect(workflow.FromSingle(mapProxy)); err != nil {
		return err
	}

	events, detach := attachTracker(s.cfg)
	defer detach()

	_, err = newExecutor(s, events).Run(ctx, g)

	return err
}
