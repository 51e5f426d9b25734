package action

import (
	"context"
	"fmt"

	"github.com/databrook/databrook/pkg/parser"
	"github.com/databrook/databrook/pkg/sink"
	"github.com/databrook/databrook/pkg/source"
	"github.com/databrook/databrook/pkg/workflow"
)

// SourceDirectory reads the reference on-disk dataset layout (spec.md §6)
// as the lone output of a workflow source node. Registered factory name:
// "source.directory".
type SourceDirectory struct {
	Root     string `json:"root"`
	Registry *parser.Registry
}

func (SourceDirectory) ClassName() string             { return "SourceDirectory" }
func (SourceDirectory) InputKind() workflow.SocketKind { return workflow.SocketNone }
func (SourceDirectory) OutputShape() workflow.Shape    { return workflow.Single() }

// Produce implements workflow.Source.
func (a SourceDirectory) Produce(_ context.Context) (workflow.Channels, error) {
	if a.Root == "" {
		return workflow.Channels{}, fmt.Errorf("action: source.directory requires a non-empty root")
	}

	d, err := source.NewDirectory(a.Root, a.Registry).Read()
	if err != nil {
		return workflow.Channels{}, err
	}

	return workflow.OneChannel(d), nil
}

// NewSourceDirectory builds a SourceDirectory from per-node options,
// registered under the factory name "source.directory".
func NewSourceDirectory(options map[string]any) (workflow.Action, error) {
	var a SourceDirectory
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}

// overwritePolicyNames maps the external sink.OverwritePolicy vocabulary
// (spec.md §6) to its enum value.
var overwritePolicyNames = map[string]sink.OverwritePolicy{
	"forbid":          sink.Forbid,
	"allow_if_empty":  sink.AllowIfEmpty,
	"allow_new_files": sink.AllowNewFiles,
	"overwrite_files": sink.OverwriteFiles,
	"overwrite":       sink.Overwrite,
}

// copyPolicyNames maps the external sink.CopyPolicy vocabulary to its enum
// value.
var copyPolicyNames = map[string]sink.CopyPolicy{
	"hard_link":     sink.HardLink,
	"symbolic_link": sink.SymbolicLink,
	"replicate":     sink.Replicate,
	"rewrite":       sink.Rewrite,
}

// ErrUnknownPolicy is returned when an options string doesn't name a
// recognized overwrite/copy policy.
var ErrUnknownPolicy = fmt.Errorf("action: unrecognized policy name")

// ParseOverwritePolicy resolves name to a sink.OverwritePolicy.
func ParseOverwritePolicy(name string) (sink.OverwritePolicy, error) {
	p, ok := overwritePolicyNames[name]
	if !ok {
		return 0, fmt.Errorf("%w: overwrite policy %q", ErrUnknownPolicy, name)
	}

	return p, nil
}

// ParseCopyPolicy resolves name to a sink.CopyPolicy.
func ParseCopyPolicy(name string) (sink.CopyPolicy, error) {
	p, ok := copyPolicyNames[name]
	if !ok {
		return 0, fmt.Errorf("%w: copy policy %q", ErrUnknownPolicy, name)
	}

	return p, nil
}

// SinkDirectory writes its single input to the reference on-disk dataset
// layout. Registered factory name: "sink.directory".
type SinkDirectory struct {
	Root      string `json:"root"`
	Overwrite string `json:"overwrite"` // one of overwritePolicyNames' keys; "" means sink.Forbid
	Copy      string `json:"copy"`      // one of copyPolicyNames' keys; "" means sink.HardLink
	Compress  bool   `json:"compress"`  // LZ4-compress bytes written via the Rewrite path
}

func (SinkDirectory) ClassName() string             { return "SinkDirectory" }
func (SinkDirectory) InputKind() workflow.SocketKind { return workflow.SocketNone }
func (SinkDirectory) OutputShape() workflow.Shape    { return workflow.NoOutput() }

// Consume implements workflow.Sink.
func (a SinkDirectory) Consume(ctx context.Context, in workflow.Channels) error {
	d, err := oneIn(in)
	if err != nil {
		return err
	}

	overwrite := sink.Forbid
	if a.Overwrite != "" {
		if overwrite, err = ParseOverwritePolicy(a.Overwrite); err != nil {
			return err
		}
	}

	copyPolicy := sink.HardLink
	if a.Copy != "" {
		if copyPolicy, err = ParseCopyPolicy(a.Copy); err != nil {
			return err
		}
	}

	snk := sink.NewDirectory(a.Root, overwrite, copyPolicy)
	snk.Compress = a.Compress

	return snk.Write(ctx, d)
}

// NewSinkDirectory builds a SinkDirectory from per-node options, registered
// under the factory name "sink.directory".
func NewSinkDirectory(options map[string]any) (workflow.Action, error) {
	var a SinkDirectory
	if err := decodeOptions(options, &a); err != nil {
		return nil, err
	}

	return a, nil
}
