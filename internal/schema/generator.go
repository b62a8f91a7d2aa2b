// Package schema turns type descriptors into OpenAPI schemas. Records and
// enums are emitted once into a Catalog and referenced by name.
package schema

import (
	"log/slog"
	"slices"

	"github.com/Zachacious/rs-respec/internal/model"
	"github.com/getkin/kin-openapi/openapi3"
)

// RefPrefix is the JSON pointer prefix of component schema references.
const RefPrefix = "#/components/schemas/"

// Resolver looks up the declaration behind a type name.
type Resolver interface {
	Resolve(name string) *model.ResolvedType
}

// Generator builds schemas for one generation session. It is not safe for
// concurrent use.
type Generator struct {
	resolver Resolver
	logger   *slog.Logger
	catalog  *Catalog
	// flattening guards against a record flattening itself.
	flattening map[string]bool
}

var _ model.SchemaSource = (*Generator)(nil)

// NewGenerator returns a Generator with an empty catalog.
func NewGenerator(r Resolver, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{
		resolver:   r,
		logger:     logger,
		catalog:    NewCatalog(),
		flattening: map[string]bool{},
	}
}

// Catalog returns the named schemas emitted so far.
func (g *Generator) Catalog() *Catalog {
	return g.catalog
}

// Schemas implements model.SchemaSource.
func (g *Generator) Schemas() openapi3.Schemas {
	return g.catalog.Schemas()
}

// GenerateSchema returns the schema for td. Optionality is dropped; it is
// expressed by the enclosing object's required list instead.
func (g *Generator) GenerateSchema(td model.TypeDescriptor) *openapi3.SchemaRef {
	if inner, ok := td.Inner(); ok {
		if td.IsOption {
			return g.GenerateSchema(inner)
		}
		return g.arrayOf(inner)
	}
	if s := primitiveSchema(td.Name); s != nil {
		return s.NewRef()
	}
	switch {
	case mapTypes[td.Name] && len(td.GenericArgs) == 2:
		s := openapi3.NewObjectSchema()
		s.AdditionalProperties = openapi3.AdditionalProperties{Schema: g.GenerateSchema(td.GenericArgs[1])}
		return s.NewRef()
	case setTypes[td.Name] && len(td.GenericArgs) == 1:
		return g.arrayOf(td.GenericArgs[0])
	}

	rt := g.resolver.Resolve(td.Name)
	if rt == nil || (rt.Kind != model.KindStruct && rt.Kind != model.KindEnum) {
		g.logger.Debug("Using an empty object schema", "type", td.String())
		return openapi3.NewObjectSchema().NewRef()
	}
	g.define(rt)
	return openapi3.NewSchemaRef(RefPrefix+rt.Name, nil)
}

// GenerateParameterSchema implements model.SchemaSource.
func (g *Generator) GenerateParameterSchema(p model.Parameter) *openapi3.Parameter {
	var param *openapi3.Parameter
	switch p.Location {
	case model.LocationQuery:
		param = openapi3.NewQueryParameter(p.Name)
	case model.LocationHeader:
		param = openapi3.NewHeaderParameter(p.Name)
	default:
		param = openapi3.NewPathParameter(p.Name)
	}
	param.Required = p.Required
	param.Schema = g.GenerateSchema(p.Type)
	return param
}

func (g *Generator) arrayOf(inner model.TypeDescriptor) *openapi3.SchemaRef {
	s := openapi3.NewArraySchema()
	s.Items = g.GenerateSchema(inner)
	return s.NewRef()
}

// define emits rt into the catalog the first time its name is seen. The slot
// is reserved before any field is generated, so a record that refers to
// itself ends at the reference.
func (g *Generator) define(rt *model.ResolvedType) {
	slot, ok := g.catalog.Reserve(rt.Name)
	if !ok {
		return
	}
	g.logger.Debug("Generating component schema", "type", rt.Name, "kind", rt.Kind)
	if rt.Kind == model.KindEnum {
		slot.Value = enumSchema(rt)
		return
	}
	slot.Value = g.objectSchema(rt)
}

func enumSchema(rt *model.ResolvedType) *openapi3.Schema {
	values := make([]any, len(rt.Variants))
	for i, v := range rt.Variants {
		values[i] = v
	}
	return openapi3.NewStringSchema().WithEnum(values...)
}

// objectSchema builds the object schema of a record. Skipped fields are left
// out, and the fields of flattened records are merged in place.
func (g *Generator) objectSchema(rt *model.ResolvedType) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	var required []string
	for _, f := range rt.Fields {
		if f.Attrs.Skip {
			continue
		}
		if f.Attrs.Flatten {
			if props, req, ok := g.flatten(f); ok {
				for name, ref := range props {
					s.WithPropertyRef(name, ref)
				}
				for _, name := range req {
					required = appendUnique(required, name)
				}
				continue
			}
		}
		s.WithPropertyRef(f.Name, g.GenerateSchema(f.Type))
		if !f.Optional && !f.Type.IsOption {
			required = appendUnique(required, f.Name)
		}
	}
	if len(required) > 0 {
		s.WithRequired(required)
	}
	return s
}

func appendUnique(names []string, name string) []string {
	if slices.Contains(names, name) {
		return names
	}
	return append(names, name)
}

// flatten returns the properties and required names a flattened field
// contributes. A field that does not resolve to a record is not flattened.
// Fields of an optional flattened record are never required.
func (g *Generator) flatten(f model.FieldDef) (openapi3.Schemas, []string, bool) {
	td := f.Type
	if inner, ok := td.Inner(); ok && td.IsOption {
		td = inner
	}
	if td.IsVec {
		return nil, nil, false
	}
	rt := g.resolver.Resolve(td.Name)
	if rt == nil || rt.Kind != model.KindStruct || g.flattening[rt.Name] {
		return nil, nil, false
	}
	g.flattening[rt.Name] = true
	defer delete(g.flattening, rt.Name)

	inner := g.objectSchema(rt)
	if f.Optional || f.Type.IsOption {
		return inner.Properties, nil, true
	}
	return inner.Properties, inner.Required, true
}

// mapTypes serialize as JSON objects keyed by their first type argument.
var mapTypes = map[string]bool{"HashMap": true, "BTreeMap": true, "IndexMap": true}

// setTypes serialize as JSON arrays.
var setTypes = map[string]bool{"HashSet": true, "BTreeSet": true, "IndexSet": true, "VecDeque": true}

func primitiveSchema(name string) *openapi3.Schema {
	switch name {
	case "i8", "i16", "i32", "u8", "u16", "u32":
		return openapi3.NewInt32Schema()
	case "i64", "i128", "isize", "u64", "u128", "usize":
		return openapi3.NewInt64Schema()
	case "f32":
		return openapi3.NewFloat64Schema().WithFormat("float")
	case "f64":
		return openapi3.NewFloat64Schema().WithFormat("double")
	case "bool":
		return openapi3.NewBoolSchema()
	case "String", "str", "char":
		return openapi3.NewStringSchema()
	}
	return nil
}
