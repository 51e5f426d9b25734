// Package source implements the directory-backed reference dataset format:
// reading a root directory's data/ subdirectory plus root-level shared
// files into a lazy Dataset[sample.Sample].
package source

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/databrook/databrook/internal/dirformat"
	"github.com/databrook/databrook/pkg/dataset"
	"github.com/databrook/databrook/pkg/item"
	"github.com/databrook/databrook/pkg/parser"
	"github.com/databrook/databrook/pkg/reader"
	"github.com/databrook/databrook/pkg/sample"
)

// ErrNotADirectory is returned when the dataset root or its data/
// subdirectory is missing.
var ErrNotADirectory = errors.New("source: not a directory")

// Directory reads the reference on-disk dataset layout described in the
// external interfaces section: "data/<id>_<key>.<ext>" per-sample files
// plus optional "<key>.<ext>" root-level files shared by every sample.
type Directory struct {
	// Root is the dataset root directory.
	Root string
	// Registry resolves a file extension to an AnyParser. Default
	// registry is used when nil.
	Registry *parser.Registry
	// Logger receives a warning for every file skipped due to an
	// unrecognized extension. A nil Logger uses slog.Default().
	Logger *slog.Logger
}

// NewDirectory returns a Directory source rooted at root, using registry
// (or the process-wide default registry if nil) to resolve parsers.
func NewDirectory(root string, registry *parser.Registry) *Directory {
	return &Directory{Root: root, Registry: registry}
}

func (d *Directory) registry() *parser.Registry {
	if d.Registry != nil {
		return d.Registry
	}

	return parser.Default
}

func (d *Directory) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}

	return slog.Default()
}

// Read builds the dataset: one sample per id observed under data/, each
// holding a Stored item per file found for that id, merged with every
// shared item found directly under Root. Files with unrecognized
// extensions are skipped with a logged warning.
func (d *Directory) Read() (dataset.Dataset[sample.Sample], error) {
	if err := requireDir(d.Root); err != nil {
		return nil, err
	}

	dataDir := filepath.Join(d.Root, dirformat.DataDir)
	if err := requireDir(dataDir); err != nil {
		return nil, err
	}

	perSample, err := d.scanDataDir(dataDir)
	if err != nil {
		return nil, err
	}

	shared, err := d.scanRootFiles()
	if err != nil {
		return nil, err
	}

	samples := make([]sample.Sample, len(perSample))
	for i, entries := range perSample {
		samples[i] = sample.NewTypelessSample(entries...).WithItems(shared)
	}

	return dataset.NewList[sample.Sample](samples), nil
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNotADirectory, path, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, path)
	}

	return nil
}

// scanDataDir lists data/ and groups entries by sample id, returning one
// ordered ItemEntry slice per id (ids are dense 0..N-1 in the reference
// format; any gap surfaces as an empty sample at that position since the
// caller indexes by slice position, not by the id that was on disk).
func (d *Directory) scanDataDir(dataDir string) ([][]sample.ItemEntry, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotADirectory, dataDir, err)
	}

	byID := make(map[int][]sample.ItemEntry)
	maxID := -1

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		id, key, ext, ok := dirformat.ParseDataFilename(e.Name())
		if !ok {
			continue
		}

		it, ok, lookupErr := d.itemFor(filepath.Join(dataDir, e.Name()), ext, false)
		if lookupErr != nil {
			return nil, lookupErr
		}

		if !ok {
			continue
		}

		byID[id] = append(byID[id], sample.ItemEntry{Key: key, Item: it})

		if id > maxID {
			maxID = id
		}
	}

	out := make([][]sample.ItemEntry, maxID+1)
	for id, entries := range byID {
		sort.Slice(entries, func(a, b int) bool { return entries[a].Key < entries[b].Key })
		out[id] = entries
	}

	return out, nil
}

// scanRootFiles lists Root for "<key>.<ext>" files, which become shared
// items merged into every sample. The data/ subdirectory itself is never
// mistaken for one: it has no extension.
func (d *Directory) scanRootFiles() ([]sample.ItemEntry, error) {
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotADirectory, d.Root, err)
	}

	var shared []sample.ItemEntry

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		key, ext, ok := dirformat.ParseRootFilename(e.Name())
		if !ok {
			continue
		}

		it, ok, lookupErr := d.itemFor(filepath.Join(d.Root, e.Name()), ext, true)
		if lookupErr != nil {
			return nil, lookupErr
		}

		if !ok {
			continue
		}

		shared = append(shared, sample.ItemEntry{Key: key, Item: it})
	}

	sort.Slice(shared, func(a, b int) bool { return shared[a].Key < shared[b].Key })

	return shared, nil
}

// itemFor resolves ext to a parser and builds a Stored AnyItem over path.
// ok is false (with no error) when ext has no registered parser, in which
// case a warning was logged and the caller should skip the file. An ext
// carrying the dirformat.LZ4Ext suffix (e.g. "json.lz4") is resolved against
// its inner extension and the file is transparently decompressed on read.
func (d *Directory) itemFor(path, ext string, shared bool) (item.AnyItem, bool, error) {
	inner, compressed := dirformat.SplitCompressed(ext)

	ap, err := d.registry().LookupAny(inner)
	if err != nil {
		d.logger().Warn("source: skipping file with unrecognized extension", "path", path, "ext", ext, "error", err)

		return nil, false, nil
	}

	var rd reader.Reader = reader.NewFileReader(path)
	if compressed {
		rd = reader.NewLZ4Reader(rd)
	}

	return item.NewAnyStoredItem(rd, ap, shared), true, nil
}
