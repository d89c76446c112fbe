// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package template

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdiddy/taskdeck/pkg/types"
)

// scanReadLimit caps how much of each file the scanner reads. Files are
// project source and config text; anything larger is not placeholder
// material.
const scanReadLimit = 1 << 20

// skipDirs are directory names the scanner never descends into.
var skipDirs = map[string]bool{
	".git":         true,
	".taskdeck":    true,
	"node_modules": true,
	"vendor":       true,
}

// ScanResult reports one scanned file and the placeholders found in it.
type ScanResult struct {
	// Path is relative to the scanned root.
	Path string `json:"path" yaml:"path"`

	// Placeholders found in the file, in order of first appearance.
	Placeholders []types.Placeholder `json:"placeholders" yaml:"placeholders"`
}

// Scan walks root and extracts placeholders from every text file.
// Unreadable files are skipped with a warning on warnw, never an
// error; binary files are skipped silently, since they are expected in
// a project tree. Files with no placeholders are omitted from the
// result.
func Scan(root string, warnw io.Writer) ([]ScanResult, error) {
	var results []ScanResult

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			fmt.Fprintf(warnw, "warning: skipping %s: %v\n", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(warnw, "warning: skipping %s: %v\n", path, err)
			return nil
		}
		data, err := io.ReadAll(io.LimitReader(f, scanReadLimit))
		f.Close()
		if err != nil {
			fmt.Fprintf(warnw, "warning: skipping %s: %v\n", path, err)
			return nil
		}
		if isBinary(data) {
			return nil
		}

		placeholders := Extract(string(data))
		if len(placeholders) == 0 {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		results = append(results, ScanResult{Path: rel, Placeholders: placeholders})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return results, nil
}

// MergeScan folds scan results into one deduplicated placeholder list,
// keeping the first default seen for each key.
func MergeScan(results []ScanResult) []types.Placeholder {
	var (
		out  []types.Placeholder
		seen = map[string]bool{}
	)
	for _, r := range results {
		for _, p := range r.Placeholders {
			if seen[p.Key] {
				continue
			}
			seen[p.Key] = true
			out = append(out, p)
		}
	}
	return out
}

// isBinary applies the git heuristic: a NUL byte in the first chunk
// marks the file as binary.
func isBinary(data []byte) bool {
	probe := data
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
