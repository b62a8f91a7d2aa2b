// Package analyzer runs the analysis pipeline over a project directory: scan,
// parse, detect the framework, extract routes and prepare schema generation.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Zachacious/rs-respec/internal/detector"
	"github.com/Zachacious/rs-respec/internal/extractor"
	"github.com/Zachacious/rs-respec/internal/model"
	"github.com/Zachacious/rs-respec/internal/parser"
	"github.com/Zachacious/rs-respec/internal/resolver"
	"github.com/Zachacious/rs-respec/internal/scanner"
	"github.com/Zachacious/rs-respec/internal/schema"
	"github.com/Zachacious/rs-respec/internal/syntax"
)

var (
	ErrNoFramework   = errors.New("no supported web framework detected. Supported frameworks: axum, actix-web")
	ErrNoSourceFiles = errors.New("no Rust source files found")
	ErrNoParsedFiles = errors.New("no source file could be parsed")
)

// Options controls one analysis run.
type Options struct {
	// Framework forces a routing style and skips detection when set.
	Framework model.Framework
	// Exclude lists directory names the scanner never enters.
	Exclude []string
}

// Analyzer holds the settings for analysis runs. Every call to Analyze
// builds its own extractor, resolver and schema generator.
type Analyzer struct {
	opts   Options
	logger *slog.Logger
}

// New returns an Analyzer. A nil logger discards all output.
func New(opts Options, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{opts: opts, logger: logger}
}

// Analyze builds the API model of the project at projectPath. The returned
// model's Schemas generates component schemas on demand, so the catalog is
// filled as the document is assembled.
func (a *Analyzer) Analyze(ctx context.Context, projectPath string) (*model.APIModel, error) {
	a.logger.Info("Starting analysis", "path", projectPath)

	files, err := a.load(ctx, projectPath)
	if err != nil {
		return nil, err
	}

	frameworks, err := a.frameworks(files)
	if err != nil {
		return nil, err
	}

	var routes []*model.RouteInfo
	for _, fw := range frameworks {
		ex, err := extractor.New(fw, a.logger)
		if err != nil {
			return nil, err
		}
		found := ex.ExtractRoutes(files)
		a.logger.Debug("Extracted routes", "framework", fw, "routes", len(found))
		routes = append(routes, found...)
	}
	if len(routes) == 0 {
		a.logger.Warn("No routes found", "frameworks", frameworks)
	}

	res := resolver.New(files, a.logger)
	for _, r := range routes {
		resolveRoute(res, r)
	}

	a.logger.Info("Analysis complete", "routes", len(routes))
	return &model.APIModel{
		Frameworks: frameworks,
		Routes:     routes,
		Schemas:    schema.NewGenerator(res, a.logger),
	}, nil
}

// load scans projectPath and parses every source file found. Files that fail
// to parse are skipped with a warning.
func (a *Analyzer) load(ctx context.Context, projectPath string) ([]*syntax.File, error) {
	scan, err := scanner.Scan(ctx, projectPath, scanner.Options{Exclude: a.opts.Exclude})
	if err != nil {
		return nil, err
	}
	for _, w := range scan.Warnings {
		a.logger.Warn("Skipping unreadable entry", "error", w)
	}
	if len(scan.Files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSourceFiles, projectPath)
	}
	a.logger.Info("Found source files", "count", len(scan.Files))

	files, parseErrs, err := parser.ParseFiles(ctx, scan.Files, a.logger)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w (%d failed)", ErrNoParsedFiles, len(parseErrs))
	}
	a.logger.Debug("Parsed source files", "parsed", len(files), "failed", len(parseErrs))
	return files, nil
}

// frameworks returns the forced framework, or the detected ones in canonical
// order.
func (a *Analyzer) frameworks(files []*syntax.File) ([]model.Framework, error) {
	if a.opts.Framework != "" {
		a.logger.Info("Using framework", "framework", a.opts.Framework)
		return []model.Framework{a.opts.Framework}, nil
	}
	detected := detector.Detect(files).Sorted()
	if len(detected) == 0 {
		return nil, ErrNoFramework
	}
	a.logger.Info("Detected frameworks", "frameworks", detected)
	return detected, nil
}

// resolveRoute resolves every type a route refers to, together with the
// types of their fields.
func resolveRoute(res *resolver.Resolver, r *model.RouteInfo) {
	for _, p := range r.Parameters {
		res.ResolveNested(p.Type)
	}
	if r.RequestBody != nil {
		res.ResolveNested(*r.RequestBody)
	}
	if r.ResponseType != nil {
		res.ResolveNested(*r.ResponseType)
	}
}
