// Package parser reads Rust source files from disk and parses them into
// syntax trees, in parallel.
package parser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/Zachacious/rs-respec/internal/syntax"
	"golang.org/x/sync/errgroup"
)

// ParseFile reads and parses a single source file.
func ParseFile(path string) (*syntax.File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return syntax.ParseFile(path, src)
}

// ParseFiles parses all paths concurrently, bounded by the number of CPUs.
// Files that fail to read or parse are skipped; their errors are returned
// alongside the trees that did parse. Trees and errors are both ordered by
// file path regardless of goroutine scheduling. The only hard error is
// context cancellation.
func ParseFiles(ctx context.Context, paths []string, logger *slog.Logger) ([]*syntax.File, []error, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	type result struct {
		path string
		file *syntax.File
		err  error
	}

	var (
		mu      sync.Mutex
		results []result
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			file, err := ParseFile(path)
			if err == nil && len(file.Recovered) > 0 {
				logger.Debug("Recovered from unparsable statements", "file", path, "count", len(file.Recovered), "first", file.Recovered[0].Error())
			}

			mu.Lock()
			results = append(results, result{path: path, file: file, err: err})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].path < results[j].path
	})

	var (
		files []*syntax.File
		errs  []error
	)
	for _, r := range results {
		if r.err != nil {
			logger.Warn("Skipping file that failed to parse", "error", r.err)
			errs = append(errs, r.err)
			continue
		}
		files = append(files, r.file)
	}
	return files, errs, nil
}
