// Package extractor recovers routes from parsed Rust sources. Each supported
// framework has its own Extractor; they share the handler binding pass.
package extractor

import (
	"fmt"
	"log/slog"

	"github.com/Zachacious/rs-respec/internal/model"
	"github.com/Zachacious/rs-respec/internal/syntax"
)

// Extractor finds the routes declared in a set of files. A fresh accumulator
// is used for every call, so one Extractor may be reused.
type Extractor interface {
	ExtractRoutes(files []*syntax.File) []*model.RouteInfo
}

// New returns the Extractor for fw.
func New(fw model.Framework, logger *slog.Logger) (Extractor, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch fw {
	case model.FrameworkAxum:
		return &AxumExtractor{logger: logger}, nil
	case model.FrameworkActix:
		return &ActixExtractor{logger: logger}, nil
	}
	return nil, fmt.Errorf("no extractor for framework %q", fw)
}
