package extractor

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/Zachacious/rs-respec/internal/model"
	"github.com/Zachacious/rs-respec/internal/resolver"
	"github.com/Zachacious/rs-respec/internal/syntax"
)

var (
	// axumParamRe matches :id, *rest, {id} and {*rest} segments.
	axumParamRe = regexp.MustCompile(`^[:*](\w+)$|^\{\*?(\w+)\}$`)
	// actixParamRe matches {id} and {id:regex} segments.
	actixParamRe = regexp.MustCompile(`^\{(\w+)(?::.*)?\}$`)
)

// combinePath joins a scope prefix and a path with exactly one slash
// between them. An empty prefix leaves path unchanged.
func combinePath(prefix, path string) string {
	if prefix == "" {
		return path
	}
	prefix = strings.TrimRight(prefix, "/")
	path = strings.TrimLeft(path, "/")
	if path == "" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	return prefix + "/" + path
}

// pathParams returns one required String parameter per placeholder segment
// of path, in order.
func pathParams(path string, re *regexp.Regexp) []model.Parameter {
	var params []model.Parameter
	for _, seg := range strings.Split(path, "/") {
		m := re.FindStringSubmatch(seg)
		if m == nil {
			continue
		}
		name := ""
		for _, g := range m[1:] {
			if g != "" {
				name = g
				break
			}
		}
		params = append(params, model.Parameter{
			Name:     name,
			Location: model.LocationPath,
			Type:     model.NewType("String"),
			Required: true,
		})
	}
	return params
}

// newRoute builds a RouteInfo with its path-derived parameters.
func newRoute(path string, method model.HTTPMethod, handler string, re *regexp.Regexp) *model.RouteInfo {
	return &model.RouteInfo{
		Path:        path,
		Method:      method,
		HandlerName: handler,
		Parameters:  pathParams(path, re),
	}
}

// symbols is what pass 1 learns about the declarations of all files.
type symbols struct {
	// fns maps a function name to its last declaration.
	fns map[string]*syntax.FnItem
	// consts maps the name of a string const or static to its value.
	consts map[string]string
}

func collectSymbols(files []*syntax.File) *symbols {
	s := &symbols{fns: map[string]*syntax.FnItem{}, consts: map[string]string{}}
	for _, f := range files {
		syntax.Inspect(f, func(n syntax.Node) bool {
			switch n := n.(type) {
			case *syntax.FnItem:
				s.fns[n.Sig.Name] = n
			case *syntax.ConstItem:
				if lit, ok := n.Value.(*syntax.LitExpr); ok {
					if v, ok := lit.StringValue(); ok {
						s.consts[n.Name] = v
					}
				}
			}
			return true
		})
	}
	return s
}

// stringValue resolves a string literal, or a path naming a string const.
func (s *symbols) stringValue(x syntax.Expr) (string, bool) {
	switch x := x.(type) {
	case *syntax.LitExpr:
		return x.StringValue()
	case *syntax.PathExpr:
		v, ok := s.consts[x.Path.LastName()]
		return v, ok
	case *syntax.ParenExpr:
		return s.stringValue(x.X)
	}
	return "", false
}

// handlerName returns the last segment of a path expression such as
// handlers::users::list.
func handlerName(x syntax.Expr) (string, bool) {
	p, ok := x.(*syntax.PathExpr)
	if !ok || len(p.Path.Segments) == 0 {
		return "", false
	}
	return p.Path.LastName(), true
}

// bindHandlers is the second pass. Each route whose handler is known gets the
// parameters, body and response type read off the handler's signature.
// Routes for which drop reports true are removed when their handler is
// unknown; other unknown handlers are logged and kept unenriched.
func bindHandlers(routes []*model.RouteInfo, syms *symbols, logger *slog.Logger, drop func(*model.RouteInfo) bool) []*model.RouteInfo {
	logger.Debug("Analyzing handlers", "functions", len(syms.fns), "routes", len(routes))
	out := routes[:0]
	for _, r := range routes {
		fn, ok := syms.fns[r.HandlerName]
		if !ok {
			if drop != nil && drop(r) {
				logger.Debug("Dropping shorthand call without a known handler", "method", r.Method, "handler", r.HandlerName)
				continue
			}
			logger.Warn("Unknown handler", "handler", r.HandlerName, "path", r.Path)
			out = append(out, r)
			continue
		}
		enrich(r, fn.Sig)
		out = append(out, r)
	}
	return out
}

// enrich classifies the handler's typed parameters by their wrapper type and
// records the unwrapped return type.
func enrich(r *model.RouteInfo, sig *syntax.Signature) {
	for _, in := range sig.Inputs {
		if in.Receiver || in.Type == nil {
			continue
		}
		wrapper, inner, ok := wrapperType(in.Type)
		if !ok {
			continue
		}
		switch wrapper {
		case "Json", "Form":
			body := inner
			r.RequestBody = &body
		case "Path":
			r.Parameters = append(r.Parameters, model.Parameter{
				Name: "path_params", Location: model.LocationPath, Type: inner, Required: true,
			})
		case "Query":
			r.Parameters = append(r.Parameters, model.Parameter{
				Name: "query_params", Location: model.LocationQuery, Type: inner, Required: false,
			})
		case "TypedHeader":
			r.Parameters = append(r.Parameters, model.Parameter{
				Name: inner.Name, Location: model.LocationHeader, Type: inner, Required: true,
			})
		}
	}
	r.ResponseType = responseType(sig.Output)
}

// wrapperType splits an extractor type such as web::Json<T> into its last
// segment name and the descriptor of T.
func wrapperType(t syntax.Type) (string, model.TypeDescriptor, bool) {
	pt, ok := t.(*syntax.PathType)
	if !ok {
		return "", model.TypeDescriptor{}, false
	}
	seg := pt.Path.Last()
	if seg == nil || len(seg.Args) == 0 {
		return "", model.TypeDescriptor{}, false
	}
	return seg.Name, resolver.Describe(seg.Args[0]), true
}

// responseType unwraps a handler's return type down to the payload type.
// It returns nil when nothing useful can be said about the response.
func responseType(t syntax.Type) *model.TypeDescriptor {
	switch t := t.(type) {
	case nil, *syntax.ImplTraitType:
		return nil
	case *syntax.RefType:
		td := resolver.Describe(t.Elem)
		return &td
	case *syntax.TupleType:
		for _, elem := range t.Elems {
			if name, inner, ok := wrapperType(elem); ok && name == "Json" {
				return &inner
			}
		}
		return nil
	case *syntax.PathType:
		if seg := t.Path.Last(); seg != nil && len(seg.Args) > 0 {
			switch seg.Name {
			case "Json":
				td := resolver.Describe(seg.Args[0])
				return &td
			case "Result":
				return responseType(seg.Args[0])
			}
		}
		td := resolver.Describe(t)
		return &td
	}
	return nil
}
