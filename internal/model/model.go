package model

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// APIModel is the top-level container for the entire discovered API.
type APIModel struct {
	// Frameworks lists the routing styles whose extractors ran.
	Frameworks []Framework
	// Routes holds every discovered endpoint in discovery order.
	Routes []*RouteInfo
	// Schemas turns the routes' type references into schemas and owns the
	// catalog of named schemas emitted along the way.
	Schemas SchemaSource
}

// SchemaSource produces OpenAPI schemas for type descriptors. Generating a
// schema for a named record or enum adds it to the catalog as a side effect.
type SchemaSource interface {
	GenerateSchema(td TypeDescriptor) *openapi3.SchemaRef
	GenerateParameterSchema(p Parameter) *openapi3.Parameter
	// Schemas returns the catalog of named schemas emitted so far.
	Schemas() openapi3.Schemas
}

// Framework identifies a supported routing style.
type Framework string

const (
	FrameworkAxum  Framework = "axum"
	FrameworkActix Framework = "actix-web"
)

// Frameworks lists the supported frameworks in their canonical order.
var Frameworks = []Framework{FrameworkAxum, FrameworkActix}

// ParseFramework maps a user-supplied name to a Framework. Matching is
// case-insensitive and accepts "actix" and "actix_web" as aliases.
func ParseFramework(s string) (Framework, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "axum":
		return FrameworkAxum, nil
	case "actix-web", "actix_web", "actix":
		return FrameworkActix, nil
	}
	return "", fmt.Errorf("unknown framework %q (supported: axum, actix-web)", s)
}

// FrameworkSet is an unordered set of detected frameworks.
type FrameworkSet map[Framework]struct{}

// Add inserts f into the set.
func (s FrameworkSet) Add(f Framework) {
	s[f] = struct{}{}
}

// Has reports whether f is in the set.
func (s FrameworkSet) Has(f Framework) bool {
	_, ok := s[f]
	return ok
}

// Sorted returns the members in canonical order.
func (s FrameworkSet) Sorted() []Framework {
	var out []Framework
	for _, f := range Frameworks {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// HTTPMethod is an upper-case HTTP method name.
type HTTPMethod string

const (
	MethodGet     HTTPMethod = "GET"
	MethodPost    HTTPMethod = "POST"
	MethodPut     HTTPMethod = "PUT"
	MethodDelete  HTTPMethod = "DELETE"
	MethodPatch   HTTPMethod = "PATCH"
	MethodHead    HTTPMethod = "HEAD"
	MethodOptions HTTPMethod = "OPTIONS"
)

// ParseHTTPMethod maps a routing function or attribute name such as "get"
// to its HTTPMethod. Matching is case-insensitive.
func ParseHTTPMethod(name string) (HTTPMethod, bool) {
	switch m := HTTPMethod(strings.ToUpper(name)); m {
	case MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodHead, MethodOptions:
		return m, true
	}
	return "", false
}

// ParameterLocation is where a parameter's value comes from.
type ParameterLocation string

const (
	LocationPath   ParameterLocation = "path"
	LocationQuery  ParameterLocation = "query"
	LocationHeader ParameterLocation = "header"
)

// RouteInfo is one discovered endpoint. Path keeps the extractor's native
// parameter syntax (:id for axum, {id} for actix-web).
type RouteInfo struct {
	Path         string
	Method       HTTPMethod
	HandlerName  string
	Parameters   []Parameter
	RequestBody  *TypeDescriptor
	ResponseType *TypeDescriptor
}

// Parameter is a path, query or header parameter of a route.
type Parameter struct {
	Name     string
	Location ParameterLocation
	Type     TypeDescriptor
	Required bool
}

// TypeDescriptor is a reference to a type before resolution. IsOption and
// IsVec are mutually exclusive; an Option or Vec node carries its inner type
// as the single generic argument and mirrors the inner type's name.
type TypeDescriptor struct {
	Name        string
	IsOption    bool
	IsVec       bool
	GenericArgs []TypeDescriptor
}

// NewType returns a bare descriptor for name.
func NewType(name string, args ...TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Name: name, GenericArgs: args}
}

// OptionOf wraps inner in an Option node.
func OptionOf(inner TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Name: inner.Name, IsOption: true, GenericArgs: []TypeDescriptor{inner}}
}

// VecOf wraps inner in a Vec node.
func VecOf(inner TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Name: inner.Name, IsVec: true, GenericArgs: []TypeDescriptor{inner}}
}

// Inner returns the wrapped type of an Option or Vec node.
func (td TypeDescriptor) Inner() (TypeDescriptor, bool) {
	if (td.IsOption || td.IsVec) && len(td.GenericArgs) == 1 {
		return td.GenericArgs[0], true
	}
	return TypeDescriptor{}, false
}

func (td TypeDescriptor) String() string {
	if inner, ok := td.Inner(); ok {
		if td.IsOption {
			return "Option<" + inner.String() + ">"
		}
		return "Vec<" + inner.String() + ">"
	}
	if len(td.GenericArgs) == 0 {
		return td.Name
	}
	args := make([]string, len(td.GenericArgs))
	for i, a := range td.GenericArgs {
		args[i] = a.String()
	}
	return td.Name + "<" + strings.Join(args, ", ") + ">"
}

// TypeKind classifies a ResolvedType.
type TypeKind int

const (
	KindPrimitive TypeKind = iota
	KindStruct
	KindEnum
	// KindGeneric marks a type that is still being resolved (a cycle) and
	// must not be treated as a record.
	KindGeneric
)

func (k TypeKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindGeneric:
		return "generic"
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// ResolvedType is the declaration a type name refers to.
type ResolvedType struct {
	Name string
	Kind TypeKind
	// Rename is the container-level serde rename, if any. Catalog keys keep
	// the declared name.
	Rename string
	// Fields is set for KindStruct, in declaration order.
	Fields []FieldDef
	// Variants is set for KindEnum, already renamed.
	Variants []string
}

// FieldDef is one named field of a record. Optional mirrors Type.IsOption.
// Name is the exposed name after serde renaming.
type FieldDef struct {
	Name     string
	Type     TypeDescriptor
	Optional bool
	Attrs    SerdeAttrs
}

// SerdeAttrs are the serde field attributes that shape a schema.
type SerdeAttrs struct {
	Rename  *string
	Skip    bool
	Flatten bool
}
