// Package action adapts the pure operator algebra, the directory source/
// sink, and a small named-function vocabulary for Filter/Sort/GroupBy/Map
// into concrete workflow.Action implementations. Every exported type here
// is a thin, reusable wiring layer so the CLI's "op"/"map"/"wf" commands
// (and any other embedder) can reference a pipeline stage by name and a
// handful of scalar options instead of hand-writing workflow.Action
// boilerplate per call site, mirroring how the teacher's analyzer registry
// (internal/analyzers/analyze) maps a short name to a constructor.
package action

import (
	"encoding/json"
	"fmt"

	"github.com/databrook/databrook/pkg/workflow"
)

// Dataset is the concrete channel payload every action in this package
// produces or consumes.
type Dataset = workflow.Dataset

// decodeOptions re-marshals options (as produced by YAML/JSON node-spec
// unmarshalling, i.e. map[string]any with nested maps/slices) into dst, a
// pointer to the action's own option struct. A nil options map leaves dst
// at its zero value, so every action's options must have sensible zero
// defaults or the action must reject them in its own validation.
func decodeOptions(options map[string]any, dst any) error {
	if options == nil {
		return nil
	}

	raw, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("action: encode options: %w", err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("action: decode options: %w", err)
	}

	return nil
}

// singleIn is embedded by every action whose sole input is a plain,
// unaddressed socket (the common case for unary dataset operators).
type singleIn struct{}

func (singleIn) InputKind() workflow.SocketKind { return workflow.SocketNone }

// singleOut is embedded by every action whose output is one dataset.
type singleOut struct{}

func (singleOut) OutputShape() workflow.Shape { return workflow.Single() }

func oneIn(in workflow.Channels) (Dataset, error) { return in.One() }
