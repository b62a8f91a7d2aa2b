// Package respec generates OpenAPI documents from the source of Rust web
// services built with axum or actix-web.
//
//	data, err := respec.Generate(ctx, respec.Options{Path: "./my-service"})
package respec

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/Zachacious/rs-respec/internal/analyzer"
	"github.com/Zachacious/rs-respec/internal/assembler"
	"github.com/Zachacious/rs-respec/internal/config"
	"github.com/Zachacious/rs-respec/internal/model"
	"github.com/Zachacious/rs-respec/internal/serializer"
)

// Errors returned when a project cannot be analyzed.
var (
	ErrNoFramework   = analyzer.ErrNoFramework
	ErrNoSourceFiles = analyzer.ErrNoSourceFiles
	ErrNoParsedFiles = analyzer.ErrNoParsedFiles
)

// Options controls one generation. Empty fields fall back to the project's
// .rs-respec.yaml and then to the built-in defaults.
type Options struct {
	// Path is the project root. Defaults to the current directory.
	Path string
	// Format is "yaml" or "json".
	Format string
	// Framework forces "axum" or "actix-web" instead of detecting it.
	Framework string
	// Output is the file Write writes to. Empty means the writer passed to
	// Write.
	Output string
	// Logger receives progress and diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Generate analyzes the project and returns the serialized document.
func Generate(ctx context.Context, opts Options) ([]byte, error) {
	doc, cfg, err := build(ctx, opts)
	if err != nil {
		return nil, err
	}
	format, err := serializer.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	return serializer.Serialize(doc, format)
}

// Write analyzes the project and writes the serialized document to
// opts.Output, or to w when no output file is set.
func Write(ctx context.Context, opts Options, w io.Writer) error {
	doc, cfg, err := build(ctx, opts)
	if err != nil {
		return err
	}
	format, err := serializer.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	if err := serializer.Write(doc, format, opts.Output, w); err != nil {
		return err
	}
	if opts.Output != "" {
		loggerFor(opts).Info("Successfully generated OpenAPI spec", "output", opts.Output)
	}
	return nil
}

// Document analyzes the project and returns the document without
// serializing it.
func Document(ctx context.Context, opts Options) (*openapi3.T, error) {
	doc, _, err := build(ctx, opts)
	return doc, err
}

func loggerFor(opts Options) *slog.Logger {
	if opts.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return opts.Logger
}

func build(ctx context.Context, opts Options) (*openapi3.T, *config.Config, error) {
	logger := loggerFor(opts)
	path := opts.Path
	if path == "" {
		path = "."
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", config.FileName, err)
	}
	if opts.Format != "" {
		cfg.Format = opts.Format
	}
	if opts.Framework != "" {
		cfg.Framework = opts.Framework
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger.Debug("Configuration loaded", "title", cfg.Info.Title, "format", cfg.Format)

	var forced model.Framework
	if fw, ok := cfg.ForcedFramework(); ok {
		forced = fw
	}
	a := analyzer.New(analyzer.Options{Framework: forced, Exclude: cfg.Exclude}, logger)
	api, err := a.Analyze(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Assembling specification", "routes", len(api.Routes))
	doc, err := assembler.BuildSpec(api, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("assembling specification: %w", err)
	}
	return doc, cfg, nil
}
