package extractor

import (
	"log/slog"

	"github.com/Zachacious/rs-respec/internal/model"
	"github.com/Zachacious/rs-respec/internal/syntax"
)

// ActixExtractor recovers actix-web routes declared with method attributes
// such as #[get("/users")], and routes added with the App and scope
// builders.
type ActixExtractor struct {
	logger *slog.Logger
}

// ExtractRoutes implements Extractor.
func (e *ActixExtractor) ExtractRoutes(files []*syntax.File) []*model.RouteInfo {
	run := &actixRun{
		syms:       collectSymbols(files),
		attrRoutes: map[string][]attrRoute{},
	}
	for _, f := range files {
		syntax.Walk(actixVisitor{run: run}, f)
	}
	run.applyRegistrations(e.logger)
	return bindHandlers(run.routes, run.syms, e.logger, nil)
}

// attrRoute is a route declared by a handler attribute, with the path it
// had before any scope registration.
type attrRoute struct {
	route *model.RouteInfo
	path  string
}

// registration records .service(handler) on a web::scope chain.
type registration struct {
	prefix  string
	handler string
}

type actixRun struct {
	syms          *symbols
	routes        []*model.RouteInfo
	attrRoutes    map[string][]attrRoute
	registrations []registration
}

func (r *actixRun) add(route *model.RouteInfo) {
	r.routes = append(r.routes, route)
}

// applyRegistrations prefixes attribute routes with the path of the scope
// they were registered on. A handler registered on several scopes gets one
// route per scope.
func (r *actixRun) applyRegistrations(logger *slog.Logger) {
	placed := map[*model.RouteInfo]bool{}
	for _, reg := range r.registrations {
		routes, ok := r.attrRoutes[reg.handler]
		if !ok {
			logger.Debug("Service registration without an attribute route", "handler", reg.handler, "scope", reg.prefix)
			continue
		}
		for _, ar := range routes {
			path := combinePath(reg.prefix, ar.path)
			if !placed[ar.route] {
				placed[ar.route] = true
				ar.route.Path = path
				ar.route.Parameters = pathParams(path, actixParamRe)
				continue
			}
			r.add(newRoute(path, ar.route.Method, ar.route.HandlerName, actixParamRe))
		}
	}
}

// actixVisitor carries the scope prefix of the code being walked.
type actixVisitor struct {
	run    *actixRun
	prefix string
}

func (v actixVisitor) with(prefix string) actixVisitor {
	return actixVisitor{run: v.run, prefix: prefix}
}

func (v actixVisitor) Visit(n syntax.Node) syntax.Visitor {
	switch n := n.(type) {
	case nil:
		return nil
	case *syntax.FnItem:
		v.attributeRoutes(n)
	case *syntax.MethodCallExpr:
		root, links := chainOf(n)
		if path, ok := v.rootPath(root, "scope"); ok {
			v.scopeChain(combinePath(v.prefix, path), links)
			return nil
		}
		if path, ok := v.rootPath(root, "resource"); ok {
			v.resourceChain(combinePath(v.prefix, path), links)
			return nil
		}
		switch n.Method {
		case "scope":
			if len(n.Args) > 0 {
				if path, ok := v.run.syms.stringValue(n.Args[0]); ok {
					return v.with(combinePath(v.prefix, path))
				}
			}
		case "route":
			if len(n.Args) == 2 {
				syntax.Walk(v, n.Receiver)
				v.builderRoute(v.prefix, n.Args[0], n.Args[1])
				return nil
			}
		}
	}
	return v
}

// attributeRoutes records the routes declared by fn's method attributes.
func (v actixVisitor) attributeRoutes(fn *syntax.FnItem) {
	for _, a := range fn.Attrs {
		if a.Inner {
			continue
		}
		if method, ok := model.ParseHTTPMethod(a.Name()); ok {
			if path, ok := a.StringArg(); ok {
				v.attributeRoute(fn.Sig.Name, path, method)
			}
			continue
		}
		if a.Name() != "route" {
			continue
		}
		var path string
		var methods []model.HTTPMethod
		for _, m := range a.Metas() {
			switch {
			case m.Name() == "" && m.Lit != nil:
				path, _ = m.StringValue()
			case m.Name() == "method":
				if s, ok := m.StringValue(); ok {
					if method, ok := model.ParseHTTPMethod(s); ok {
						methods = append(methods, method)
					}
				}
			}
		}
		if path == "" {
			continue
		}
		for _, method := range methods {
			v.attributeRoute(fn.Sig.Name, path, method)
		}
	}
}

func (v actixVisitor) attributeRoute(handler, path string, method model.HTTPMethod) {
	full := combinePath(v.prefix, path)
	r := newRoute(full, method, handler, actixParamRe)
	v.run.add(r)
	v.run.attrRoutes[handler] = append(v.run.attrRoutes[handler], attrRoute{route: r, path: full})
}

// rootPath returns the path argument of a chain root such as
// web::scope("/api").
func (v actixVisitor) rootPath(root syntax.Expr, fn string) (string, bool) {
	call, ok := root.(*syntax.CallExpr)
	if !ok || len(call.Args) == 0 {
		return "", false
	}
	if name, ok := handlerName(call.Func); !ok || name != fn {
		return "", false
	}
	return v.run.syms.stringValue(call.Args[0])
}

// scopeChain walks the builder calls made on a web::scope(prefix) value.
func (v actixVisitor) scopeChain(prefix string, links []*syntax.MethodCallExpr) {
	inner := v.with(prefix)
	for _, l := range links {
		switch {
		case l.Method == "service":
			for _, arg := range l.Args {
				inner.service(arg)
			}
		case l.Method == "route" && len(l.Args) == 2:
			inner.builderRoute(prefix, l.Args[0], l.Args[1])
		default:
			for _, arg := range l.Args {
				syntax.Walk(inner, arg)
			}
		}
	}
}

// service handles one argument of .service(..) inside a scope. A bare
// handler name is a registration of an attribute route.
func (v actixVisitor) service(arg syntax.Expr) {
	switch a := arg.(type) {
	case *syntax.PathExpr:
		if name, ok := handlerName(a); ok {
			v.run.registrations = append(v.run.registrations, registration{prefix: v.prefix, handler: name})
		}
	case *syntax.TupleExpr:
		for _, elem := range a.Elems {
			v.service(elem)
		}
	default:
		syntax.Walk(v, arg)
	}
}

// resourceChain walks the builder calls made on a web::resource(path) value.
func (v actixVisitor) resourceChain(path string, links []*syntax.MethodCallExpr) {
	for _, l := range links {
		if l.Method == "route" && len(l.Args) == 1 {
			if method, handler, ok := builderTarget(l.Args[0]); ok {
				v.run.add(newRoute(path, method, handler, actixParamRe))
			}
			continue
		}
		for _, arg := range l.Args {
			syntax.Walk(v, arg)
		}
	}
}

// builderRoute handles .route("/path", web::get().to(handler)).
func (v actixVisitor) builderRoute(prefix string, pathArg, builder syntax.Expr) {
	path, ok := v.run.syms.stringValue(pathArg)
	if !ok {
		return
	}
	if method, handler, ok := builderTarget(builder); ok {
		v.run.add(newRoute(combinePath(prefix, path), method, handler, actixParamRe))
	}
}

// builderTarget reads web::get().to(handler), allowing calls such as
// .guard(..) between the method and .to.
func builderTarget(x syntax.Expr) (model.HTTPMethod, string, bool) {
	to, ok := x.(*syntax.MethodCallExpr)
	if !ok || to.Method != "to" || len(to.Args) != 1 {
		return "", "", false
	}
	handler := linkHandler(to.Args[0])
	root, _ := chainOf(to)
	call, ok := root.(*syntax.CallExpr)
	if !ok {
		return "", "", false
	}
	name, ok := handlerName(call.Func)
	if !ok {
		return "", "", false
	}
	method, ok := model.ParseHTTPMethod(name)
	if !ok {
		return "", "", false
	}
	return method, handler, true
}

// chainOf splits a method call chain into its root receiver and its calls,
// innermost first.
func chainOf(m *syntax.MethodCallExpr) (syntax.Expr, []*syntax.MethodCallExpr) {
	var links []*syntax.MethodCallExpr
	var x syntax.Expr = m
	for {
		mc, ok := x.(*syntax.MethodCallExpr)
		if !ok {
			break
		}
		links = append(links, mc)
		x = mc.Receiver
	}
	for i, j := 0, len(links)-1; i < j; i, j = i+1, j-1 {
		links[i], links[j] = links[j], links[i]
	}
	return x, links
}
