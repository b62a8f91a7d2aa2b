// Package assembler builds the OpenAPI document from the analyzed API model.
package assembler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/Zachacious/rs-respec/internal/config"
	"github.com/Zachacious/rs-respec/internal/model"
)

// OpenAPIVersion is the version written to the document's openapi field.
const OpenAPIVersion = "3.0.0"

// paramSegmentRe matches the path parameter segments of both frameworks:
// :name, *name, {*name} and {name:regex}.
var paramSegmentRe = regexp.MustCompile(`^[:*](\w+)$|^\{\*(\w+)\}$|^\{(\w+):.*\}$`)

// BuildSpec constructs the final openapi3.T document from the analyzed API
// model. Schemas referenced by operations are generated through
// api.Schemas, so the components section is read only after every route has
// been added.
func BuildSpec(api *model.APIModel, cfg *config.Config, logger *slog.Logger) (*openapi3.T, error) {
	if api == nil {
		return nil, errors.New("nil API model")
	}
	if api.Schemas == nil && len(api.Routes) > 0 {
		return nil, errors.New("API model has routes but no schema source")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	spec := &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info:    cfg.Info,
		Servers: cfg.OpenAPIServers(),
		Paths:   openapi3.NewPaths(),
	}

	logger.Debug("Assembling specification", "routes", len(api.Routes))
	for _, r := range api.Routes {
		addRoute(spec, r, api.Schemas)
	}

	if api.Schemas != nil {
		if schemas := api.Schemas.Schemas(); len(schemas) > 0 {
			spec.Components = &openapi3.Components{Schemas: schemas}
		}
	}
	logger.Debug("Specification assembled", "paths", spec.Paths.Len())
	return spec, nil
}

// addRoute attaches the operation of r to its path item. A later route with
// the same path and method replaces the earlier one.
func addRoute(spec *openapi3.T, r *model.RouteInfo, schemas model.SchemaSource) {
	path := NormalizePath(r.Path)
	pathItem := spec.Paths.Value(path)
	if pathItem == nil {
		pathItem = &openapi3.PathItem{}
		spec.Paths.Set(path, pathItem)
	}
	pathItem.SetOperation(string(r.Method), buildOperation(r, schemas))
}

func buildOperation(r *model.RouteInfo, schemas model.SchemaSource) *openapi3.Operation {
	op := openapi3.NewOperation()
	// The summary keeps the path as written in the source.
	op.Summary = fmt.Sprintf("%s %s", r.Method, r.Path)
	op.OperationID = r.HandlerName

	for _, p := range r.Parameters {
		op.AddParameter(schemas.GenerateParameterSchema(p))
	}

	if r.RequestBody != nil {
		body := openapi3.NewRequestBody().
			WithDescription("Request body").
			WithRequired(true).
			WithJSONSchemaRef(schemas.GenerateSchema(*r.RequestBody))
		op.RequestBody = &openapi3.RequestBodyRef{Value: body}
	}

	resp := openapi3.NewResponse().WithDescription("Successful response")
	if r.ResponseType != nil {
		resp.WithJSONSchemaRef(schemas.GenerateSchema(*r.ResponseType))
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: resp}),
	)
	return op
}

// NormalizePath rewrites axum's :name and *name segments, and actix-web's
// {name:regex} segments, to {name}.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	segs := strings.Split(path, "/")
	for i, seg := range segs {
		if m := paramSegmentRe.FindStringSubmatch(seg); m != nil {
			for _, name := range m[1:] {
				if name != "" {
					segs[i] = "{" + name + "}"
					break
				}
			}
		}
	}
	return strings.Join(segs, "/")
}
