// Package scanner finds the Rust source files of a project.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Options controls which directories are walked.
type Options struct {
	// Exclude lists directory names that are never entered, such as target.
	Exclude []string
}

// Result is the outcome of a scan.
type Result struct {
	// Files holds the .rs files found, sorted.
	Files []string
	// Warnings holds per-entry errors that did not stop the walk.
	Warnings []error
}

// Scan walks root and collects every regular .rs file. Hidden directories
// and directories named in opts.Exclude are skipped. Unreadable entries are
// reported as warnings.
func Scan(ctx context.Context, root string, opts Options) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access project path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project path %s is not a directory", root)
	}

	res := &Result{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Errorf("failed to read %s: %w", path, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && skipDir(d.Name(), opts.Exclude) {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), ".rs") {
			res.Files = append(res.Files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(res.Files)
	return res, nil
}

func skipDir(name string, exclude []string) bool {
	return strings.HasPrefix(name, ".") || slices.Contains(exclude, name)
}
