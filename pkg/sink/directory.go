// Package sink implements the directory-backed reference dataset format's
// write side: persisting a Dataset[sample.Sample] under a root directory
// honoring a configurable overwrite policy and a per-item copy policy with
// deterministic fallback.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"

	"github.com/databrook/databrook/internal/dirformat"
	"github.com/databrook/databrook/pkg/dataset"
	"github.com/databrook/databrook/pkg/item"
	"github.com/databrook/databrook/pkg/sample"
)

// OverwritePolicy governs how Write treats a pre-existing Root, from
// strictest to loosest.
type OverwritePolicy int

const (
	// Forbid fails if Root already exists at all.
	Forbid OverwritePolicy = iota
	// AllowIfEmpty permits a pre-existing Root only if it is empty.
	AllowIfEmpty
	// AllowNewFiles permits a pre-existing, non-empty Root, but fails if
	// any output file would collide with one already there.
	AllowNewFiles
	// OverwriteFiles permits a pre-existing Root and silently replaces any
	// individual conflicting output file.
	OverwriteFiles
	// Overwrite deletes and recreates Root unconditionally.
	Overwrite
)

// CopyPolicy chooses how a Stored item's bytes are transferred to the
// sink, from strictest (cheapest, most fragile) to the universal fallback.
type CopyPolicy int

const (
	// HardLink hard-links the source file; falls back to SymbolicLink,
	// then Replicate, then Rewrite.
	HardLink CopyPolicy = iota
	// SymbolicLink symlinks the source file; falls back to Replicate,
	// then Rewrite.
	SymbolicLink
	// Replicate byte-copies the source file; falls back to Rewrite.
	Replicate
	// Rewrite re-encodes the item's current value through its parser and
	// writes the result. It never falls back: a failure here surfaces
	// directly. Memory items always use Rewrite since they have no
	// backing file.
	Rewrite
)

// ErrPolicyViolation is returned when Write would collide with existing
// content under a policy that forbids it.
var ErrPolicyViolation = errors.New("sink: overwrite policy violation")

// ErrWrite wraps a failure to persist an item's bytes.
var ErrWrite = errors.New("sink: write failed")

const dirPerm = 0o750
const filePerm = 0o600

// Directory writes a dataset to the reference on-disk layout.
type Directory struct {
	// Root is the destination dataset root directory.
	Root string
	// Overwrite governs how a pre-existing Root is treated. Zero value is
	// Forbid.
	Overwrite OverwritePolicy
	// Copy chooses how Stored items are transferred. Zero value is
	// HardLink.
	Copy CopyPolicy
	// Compress LZ4-compresses bytes written via the Rewrite path: items
	// parser-dumped fresh (Memory items, Stored items with no SourceFile,
	// and every item when Copy is Rewrite). Items copied verbatim via HardLink/SymbolicLink/
	// Replicate, and the Rewrite fallback used mid copy-policy chain, are
	// left untouched since their destination filename is already fixed.
	Compress bool
	// OnProgress, if set, is called once per sample written, after that
	// sample's files have all been placed.
	OnProgress func(i int)
}

// NewDirectory returns a Directory sink rooted at root with the given
// policies.
func NewDirectory(root string, overwrite OverwritePolicy, copyPolicy CopyPolicy) *Directory {
	return &Directory{Root: root, Overwrite: overwrite, Copy: copyPolicy}
}

// Write persists d under Root. An empty d (Len()==0) is a no-op that does
// not create Root, matching the reference contract that an empty input
// leaves no trace on disk.
func (s *Directory) Write(ctx context.Context, d dataset.Dataset[sample.Sample]) error {
	n := d.Len()
	if n == 0 {
		return nil
	}

	if err := s.prepareRoot(); err != nil {
		return err
	}

	dataDir := filepath.Join(s.Root, dirformat.DataDir)

	if err := os.MkdirAll(dataDir, dirPerm); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	width := dirformat.Width(n)
	writtenShared := make(map[string]bool)

	for i := range n {
		if err := ctx.Err(); err != nil {
			return err
		}

		smp, err := d.Get(i)
		if err != nil {
			return err
		}

		for _, key := range smp.Keys() {
			it, _ := smp.Get(key)

			if it.IsShared() {
				if writtenShared[key] {
					continue
				}

				if err := s.writeItem(it, s.Root, key); err != nil {
					return err
				}

				writtenShared[key] = true

				continue
			}

			if err := s.writeItem(it, dataDir, dirformat.DataBaseName(i, width, key)); err != nil {
				return err
			}
		}

		if s.OnProgress != nil {
			s.OnProgress(i)
		}
	}

	return nil
}

// prepareRoot enforces Overwrite against the current state of Root and
// ensures Root exists afterwards.
func (s *Directory) prepareRoot() error {
	info, err := os.Stat(s.Root)

	switch {
	case errors.Is(err, os.ErrNotExist):
		return s.mkRoot()
	case err != nil:
		return fmt.Errorf("%w: %w", ErrWrite, err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s exists and is not a directory", ErrWrite, s.Root)
	}

	switch s.Overwrite {
	case Forbid:
		return fmt.Errorf("%w: %s already exists", ErrPolicyViolation, s.Root)
	case AllowIfEmpty:
		empty, err := dirEmpty(s.Root)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}

		if !empty {
			return fmt.Errorf("%w: %s is not empty", ErrPolicyViolation, s.Root)
		}

		return nil
	case AllowNewFiles, OverwriteFiles:
		return nil
	case Overwrite:
		if err := os.RemoveAll(s.Root); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}

		return s.mkRoot()
	default:
		return fmt.Errorf("%w: unknown overwrite policy %d", ErrWrite, s.Overwrite)
	}
}

func (s *Directory) mkRoot() error {
	if err := os.MkdirAll(s.Root, dirPerm); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return nil
}

func dirEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false, err
	}

	return len(entries) == 0, nil
}

// collisionsForbidden reports whether the configured Overwrite policy
// forbids an individual output file from already existing.
func (s *Directory) collisionsForbidden() bool {
	return s.Overwrite == Forbid || s.Overwrite == AllowIfEmpty || s.Overwrite == AllowNewFiles
}

// writeItem places it under destDir/baseName.<ext>, the extension decided
// by whichever mechanism ends up writing the bytes.
func (s *Directory) writeItem(it item.AnyItem, destDir, baseName string) error {
	if s.Copy != Rewrite {
		if path, ok := it.SourceFile(); ok {
			ext := extOf(path)
			dest := filepath.Join(destDir, baseName+"."+ext)

			return s.place(dest, func(dest string) error {
				return copyWithFallback(s.Copy, path, dest, it)
			})
		}
	}

	data, ext, err := it.Dump()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if s.Compress {
		data, err = compressLZ4(data)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}

		ext += "." + dirformat.LZ4Ext
	}

	dest := filepath.Join(destDir, baseName+"."+ext)

	return s.place(dest, func(dest string) error {
		return os.WriteFile(dest, data, filePerm)
	})
}

// compressLZ4 frames data as a single LZ4 stream, the inverse of
// reader.LZ4Reader.
func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := lz4.NewWriter(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// place enforces per-file collision policy, then invokes write. Under a
// loose policy it removes a pre-existing destination first, since Link and
// Symlink both fail if dest already exists.
func (s *Directory) place(dest string, write func(dest string) error) error {
	_, err := os.Stat(dest)

	switch {
	case err == nil:
		if s.collisionsForbidden() {
			return fmt.Errorf("%w: %s already exists", ErrPolicyViolation, dest)
		}

		if rmErr := os.Remove(dest); rmErr != nil {
			return fmt.Errorf("%w: %w", ErrWrite, rmErr)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if err := write(dest); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return nil
}

// copyWithFallback attempts policy, descending through the fixed fallback
// chain (hard-link -> symlink -> replicate -> rewrite) until one succeeds.
func copyWithFallback(policy CopyPolicy, src, dest string, it item.AnyItem) error {
	tryLink := policy == HardLink
	trySymlink := policy == HardLink || policy == SymbolicLink
	tryReplicate := policy != Rewrite

	if tryLink {
		if err := os.Link(src, dest); err == nil {
			return nil
		}
	}

	if trySymlink {
		if err := os.Symlink(src, dest); err == nil {
			return nil
		}
	}

	if tryReplicate {
		if err := replicateFile(src, dest); err == nil {
			return nil
		}
	}

	data, _, err := it.Dump()
	if err != nil {
		return err
	}

	return os.WriteFile(dest, data, filePerm)
}

func replicateFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}

	return out.Close()
}

func extOf(path string) string {
	ext := filepath.Ext(path)
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}

	return ext
}
