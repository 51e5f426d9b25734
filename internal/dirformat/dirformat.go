// Package dirformat implements the filename conventions of the directory
// dataset format shared by pkg/source and pkg/sink: a per-sample file is
// named "<zero-padded-id>_<key>.<ext>" under a data/ subdirectory, and a
// shared-across-every-sample file is named "<key>.<ext>" directly under the
// dataset root.
package dirformat

import (
	"fmt"
	"strconv"
	"strings"
)

// DataDir is the name of the subdirectory holding per-sample files.
const DataDir = "data"

// LZ4Ext is the filename extension suffix marking an LZ4-compressed
// payload, appended after the underlying parser extension so a compressed
// JSON item is stored as "<id>_<key>.json.lz4".
const LZ4Ext = "lz4"

// ParseDataFilename splits a data/ entry name into its sample id, item key,
// and extension (without the leading dot). ok is false if name does not
// match "<digits>_<key>.<ext>".
func ParseDataFilename(name string) (id int, key, ext string, ok bool) {
	underscore := strings.IndexByte(name, '_')
	if underscore < 0 {
		return 0, "", "", false
	}

	idPart := name[:underscore]
	rest := name[underscore+1:]

	n, err := strconv.Atoi(idPart)
	if err != nil {
		return 0, "", "", false
	}

	key, ext, ok = splitExt(rest)
	if !ok {
		return 0, "", "", false
	}

	return n, key, ext, true
}

// ParseRootFilename splits a root-level entry name into its item key and
// extension. ok is false if name has no extension.
func ParseRootFilename(name string) (key, ext string, ok bool) {
	return splitExt(name)
}

func splitExt(name string) (base, ext string, ok bool) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return "", "", false
	}

	base, ext = name[:dot], name[dot+1:]

	if ext == LZ4Ext {
		if innerBase, innerExt, innerOK := splitInnerExt(base); innerOK {
			return innerBase, innerExt + "." + LZ4Ext, true
		}
	}

	return base, ext, true
}

// splitInnerExt splits off the extension beneath an LZ4 suffix, e.g.
// "key.json" -> ("key", "json").
func splitInnerExt(name string) (base, ext string, ok bool) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return "", "", false
	}

	return name[:dot], name[dot+1:], true
}

// SplitCompressed splits an extension as returned by ParseDataFilename/
// ParseRootFilename into its underlying parser extension and whether it
// carries the LZ4 compression suffix, e.g. "json.lz4" -> ("json", true).
func SplitCompressed(ext string) (inner string, compressed bool) {
	if rest, ok := strings.CutSuffix(ext, "."+LZ4Ext); ok {
		return rest, true
	}

	return ext, false
}

// Width returns the zero-padding width for n samples: ceil(log10(n)), with
// a floor of 1 so a single-digit sample count still gets one digit.
func Width(n int) int {
	if n <= 1 {
		return 1
	}

	width := 0

	for v := n - 1; v > 0; v /= 10 {
		width++
	}

	if width == 0 {
		width = 1
	}

	return width
}

// DataBaseName formats the data/ entry name for sample id and item key,
// zero-padding id to width digits, without an extension.
func DataBaseName(id, width int, key string) string {
	return fmt.Sprintf("%0*d_%s", width, id, key)
}

// DataFilename formats the data/ entry name for sample id, item key, and
// extension, zero-padding id to width digits.
func DataFilename(id, width int, key, ext string) string {
	return DataBaseName(id, width, key) + "." + ext
}

// RootFilename formats a root-level shared-item entry name.
func RootFilename(key, ext string) string {
	return key + "." + ext
}
