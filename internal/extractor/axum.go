package extractor

import (
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Zachacious/rs-respec/internal/model"
	"github.com/Zachacious/rs-respec/internal/syntax"
)

// AxumExtractor recovers routes built with axum's Router method chains.
type AxumExtractor struct {
	logger *slog.Logger
}

// ExtractRoutes implements Extractor.
func (e *AxumExtractor) ExtractRoutes(files []*syntax.File) []*model.RouteInfo {
	run := &axumRun{
		syms:       collectSymbols(files),
		bare:       map[*model.RouteInfo]bool{},
		nestedLets: map[string]bool{},
		nestedFns:  map[*syntax.FnItem]bool{},
		activeFns:  map[*syntax.FnItem]bool{},
		activeLets: map[*letBinding]bool{},
	}
	run.collectNestTargets(files)
	for _, f := range files {
		syntax.Walk(axumVisitor{run: run}, f)
	}
	return bindHandlers(run.routes, run.syms, e.logger, func(r *model.RouteInfo) bool {
		return run.bare[r]
	})
}

// axumRun is the accumulator of one extraction.
type axumRun struct {
	syms   *symbols
	routes []*model.RouteInfo
	// bare marks routes from the .get(handler) shorthand.
	bare map[*model.RouteInfo]bool

	// nestedLets and nestedFns name the routers passed to nest or merge by
	// identifier or zero-argument call. Their definitions are walked where
	// they are used, under the prefix in effect there.
	nestedLets map[string]bool
	nestedFns  map[*syntax.FnItem]bool
	// calls maps each zero-argument call to the function it resolves to.
	calls map[*syntax.CallExpr]*syntax.FnItem

	activeFns  map[*syntax.FnItem]bool
	activeLets map[*letBinding]bool
}

func (r *axumRun) collectNestTargets(files []*syntax.File) {
	fns := collectRouterFns(files)
	r.calls = map[*syntax.CallExpr]*syntax.FnItem{}
	var targets []*syntax.CallExpr
	for _, f := range files {
		syntax.Walk(moduleVisitor{path: fileModule(f.Path), visit: func(mod []string, n syntax.Node) {
			switch n := n.(type) {
			case *syntax.CallExpr:
				if fn := fns.resolve(mod, n); fn != nil {
					r.calls[n] = fn
				}
			case *syntax.MethodCallExpr:
				if c := r.nestTarget(n); c != nil {
					targets = append(targets, c)
				}
			}
		}}, f)
	}
	for _, c := range targets {
		if fn := r.calls[c]; fn != nil {
			r.nestedFns[fn] = true
		}
	}
}

// nestTarget records a let-bound nest or merge target and returns a
// zero-argument call target.
func (r *axumRun) nestTarget(m *syntax.MethodCallExpr) *syntax.CallExpr {
	var target syntax.Expr
	switch {
	case m.Method == "nest" && len(m.Args) >= 2:
		target = m.Args[1]
	case m.Method == "merge" && len(m.Args) == 1:
		target = m.Args[0]
	default:
		return nil
	}
	// users_router().layer(..) nests whatever users_router builds.
	for {
		mc, ok := target.(*syntax.MethodCallExpr)
		if !ok {
			break
		}
		target = mc.Receiver
	}
	switch t := target.(type) {
	case *syntax.PathExpr:
		if len(t.Path.Segments) == 1 {
			r.nestedLets[t.Path.LastName()] = true
		}
	case *syntax.CallExpr:
		if name, ok := handlerName(t.Func); ok && len(t.Args) == 0 && !constructors[name] {
			return t
		}
	}
	return nil
}

// constructors are zero-argument calls such as Router::new() that build an
// empty router rather than returning one defined in the project.
var constructors = map[string]bool{"new": true, "default": true}

// routerFn is a zero-argument function with a body, and the module path it
// is declared in.
type routerFn struct {
	module []string
	fn     *syntax.FnItem
}

// routerFns groups zero-argument functions by name.
type routerFns map[string][]routerFn

func collectRouterFns(files []*syntax.File) routerFns {
	fns := routerFns{}
	for _, f := range files {
		syntax.Walk(moduleVisitor{path: fileModule(f.Path), visit: func(mod []string, n syntax.Node) {
			if fn, ok := n.(*syntax.FnItem); ok && fn.Body != nil && len(fn.Sig.Inputs) == 0 {
				fns[fn.Sig.Name] = append(fns[fn.Sig.Name], routerFn{module: mod, fn: fn})
			}
		}}, f)
	}
	return fns
}

// resolve finds the declaration a zero-argument call made from module mod
// refers to. A qualified call is looked up relative to mod, then by module
// suffix; an unqualified one in mod itself. When that finds nothing, a name
// declared exactly once resolves to that declaration. Ambiguous calls
// resolve to nil.
func (fns routerFns) resolve(mod []string, c *syntax.CallExpr) *syntax.FnItem {
	p, ok := c.Func.(*syntax.PathExpr)
	if !ok || len(c.Args) != 0 || len(p.Path.Segments) == 0 {
		return nil
	}
	cands := fns[p.Path.LastName()]
	if len(cands) == 0 {
		return nil
	}
	var qual []string
	for _, seg := range p.Path.Segments[:len(p.Path.Segments)-1] {
		qual = append(qual, seg.Name)
	}

	var want [][]string
	switch {
	case len(qual) == 0:
		want = append(want, mod)
	case qual[0] == "crate":
		want = append(want, qual[1:])
	case qual[0] == "self" || qual[0] == "Self":
		want = append(want, joinModule(mod, qual[1:]))
	case qual[0] == "super":
		up := mod
		for len(qual) > 0 && qual[0] == "super" && len(up) > 0 {
			up, qual = up[:len(up)-1], qual[1:]
		}
		want = append(want, joinModule(up, qual))
	default:
		want = append(want, joinModule(mod, qual))
	}
	for _, w := range want {
		if fn := unique(cands, func(rf routerFn) bool { return slices.Equal(rf.module, w) }); fn != nil {
			return fn
		}
	}
	if len(qual) > 0 && !slices.Contains([]string{"crate", "self", "Self", "super"}, qual[0]) {
		if fn := unique(cands, func(rf routerFn) bool { return hasSuffix(rf.module, qual) }); fn != nil {
			return fn
		}
	}
	if len(cands) == 1 {
		return cands[0].fn
	}
	return nil
}

func unique(cands []routerFn, match func(routerFn) bool) *syntax.FnItem {
	var found *syntax.FnItem
	for _, rf := range cands {
		if !match(rf) {
			continue
		}
		if found != nil {
			return nil
		}
		found = rf.fn
	}
	return found
}

func joinModule(mod, rest []string) []string {
	return append(slices.Clip(mod), rest...)
}

func hasSuffix(mod, suffix []string) bool {
	return len(mod) >= len(suffix) && slices.Equal(mod[len(mod)-len(suffix):], suffix)
}

// fileModule derives the module path of a source file from its location
// below src/. src/main.rs and src/lib.rs are the crate root, and
// src/api/mod.rs is module api.
func fileModule(path string) []string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	root := len(parts) - 1
	for i := len(parts) - 2; i >= 0; i-- {
		if parts[i] == "src" {
			root = i + 1
			break
		}
	}
	mod := slices.Clone(parts[root:])
	last := strings.TrimSuffix(mod[len(mod)-1], ".rs")
	mod[len(mod)-1] = last
	switch {
	case last == "mod":
		mod = mod[:len(mod)-1]
	case len(mod) == 1 && (last == "main" || last == "lib"):
		mod = nil
	}
	if len(mod) == 0 {
		return nil
	}
	return mod
}

// moduleVisitor reports every node along with the module path it sits in.
// Inline modules and impl blocks extend the path.
type moduleVisitor struct {
	path  []string
	visit func(mod []string, n syntax.Node)
}

func (v moduleVisitor) Visit(n syntax.Node) syntax.Visitor {
	if n == nil {
		return nil
	}
	v.visit(v.path, n)
	switch n := n.(type) {
	case *syntax.ModItem:
		return moduleVisitor{path: joinModule(v.path, []string{n.Name}), visit: v.visit}
	case *syntax.ImplItem:
		if pt, ok := n.SelfType.(*syntax.PathType); ok && pt.Path.LastName() != "" {
			return moduleVisitor{path: joinModule(v.path, []string{pt.Path.LastName()}), visit: v.visit}
		}
	}
	return v
}

// letBinding is one let statement. prev is the binding visible before it,
// so a shadowing let refers to the router it shadows.
type letBinding struct {
	name string
	init syntax.Expr
	prev *letBinding
}

func (b *letBinding) lookup(name string) *letBinding {
	for ; b != nil; b = b.prev {
		if b.name == name {
			return b
		}
	}
	return nil
}

// letScope holds the bindings of one block seen so far, chained onto the
// bindings of the enclosing blocks.
type letScope struct {
	head *letBinding
}

// axumVisitor carries the route prefix of the router being walked. Nested
// routers are walked with a new visitor; the parent's prefix is untouched.
type axumVisitor struct {
	run    *axumRun
	prefix string
	scope  *letScope
}

func (v axumVisitor) with(prefix string) axumVisitor {
	return axumVisitor{run: v.run, prefix: prefix, scope: v.scope}
}

func (v axumVisitor) Visit(n syntax.Node) syntax.Visitor {
	switch n := n.(type) {
	case nil:
		return nil
	case *syntax.FnItem:
		if v.run.nestedFns[n] {
			return nil
		}
	case *syntax.Block:
		scope := &letScope{}
		if v.scope != nil {
			scope.head = v.scope.head
		}
		return axumVisitor{run: v.run, prefix: v.prefix, scope: scope}
	case *syntax.LetStmt:
		if name := n.Pat.Ident(); name != "" && n.Init != nil && v.scope != nil {
			nested := v.run.nestedLets[name]
			if !nested {
				// The initializer sees the bindings before this one.
				syntax.Walk(v, n.Init)
			}
			v.scope.head = &letBinding{name: name, init: n.Init, prev: v.scope.head}
			if nested || n.Else == nil {
				return nil
			}
			syntax.Walk(v, n.Else)
			return nil
		}
	case *syntax.PathExpr:
		v.expandLet(n)
	case *syntax.CallExpr:
		if v.expandFn(n) {
			return nil
		}
	case *syntax.MethodCallExpr:
		return v.visitMethodCall(n)
	}
	return v
}

// expandLet walks the initializer of a let-bound router where the binding
// is used, under the prefix in effect there.
func (v axumVisitor) expandLet(p *syntax.PathExpr) {
	name := p.Path.LastName()
	if len(p.Path.Segments) != 1 || !v.run.nestedLets[name] || v.scope == nil {
		return
	}
	b := v.scope.head.lookup(name)
	if b == nil || v.run.activeLets[b] {
		return
	}
	v.run.activeLets[b] = true
	syntax.Walk(axumVisitor{run: v.run, prefix: v.prefix, scope: &letScope{head: b.prev}}, b.init)
	delete(v.run.activeLets, b)
}

// expandFn walks the body of a zero-argument router function at its call
// site. It reports whether the call was expanded.
func (v axumVisitor) expandFn(c *syntax.CallExpr) bool {
	fn := v.run.calls[c]
	if fn == nil || !v.run.nestedFns[fn] || v.run.activeFns[fn] {
		return false
	}
	v.run.activeFns[fn] = true
	syntax.Walk(axumVisitor{run: v.run, prefix: v.prefix}, fn.Body)
	delete(v.run.activeFns, fn)
	return true
}

func (v axumVisitor) visitMethodCall(m *syntax.MethodCallExpr) syntax.Visitor {
	switch m.Method {
	case "route":
		if len(m.Args) < 2 {
			return v
		}
		// The method router is consumed here so that its .post(b) links are
		// not mistaken for shorthand calls.
		syntax.Walk(v, m.Receiver)
		if path, ok := v.run.syms.stringValue(m.Args[0]); ok {
			full := combinePath(v.prefix, path)
			for _, l := range methodRouterLinks(m.Args[1]) {
				v.run.routes = append(v.run.routes, newRoute(full, l.method, l.handler, axumParamRe))
			}
		}
		return nil
	case "nest":
		if len(m.Args) < 2 {
			return v
		}
		if path, ok := v.run.syms.stringValue(m.Args[0]); ok {
			syntax.Walk(v, m.Receiver)
			syntax.Walk(v.with(combinePath(v.prefix, path)), m.Args[1])
			return nil
		}
	default:
		method, ok := model.ParseHTTPMethod(m.Method)
		if !ok {
			return v
		}
		if r, bare := v.shorthand(m, method); r != nil {
			syntax.Walk(v, m.Receiver)
			v.run.routes = append(v.run.routes, r)
			if bare {
				v.run.bare[r] = true
			}
			return nil
		}
	}
	return v
}

// shorthand reads .get("/path", handler) and the bare .get(handler) form,
// which takes the current prefix as its path. It returns nil for calls of
// any other shape.
func (v axumVisitor) shorthand(m *syntax.MethodCallExpr, method model.HTTPMethod) (*model.RouteInfo, bool) {
	switch len(m.Args) {
	case 1:
		name, ok := handlerName(m.Args[0])
		if !ok {
			return nil, false
		}
		path := v.prefix
		if path == "" {
			path = "/"
		}
		return newRoute(path, method, name, axumParamRe), true
	case 2:
		path, ok := v.run.syms.stringValue(m.Args[0])
		if !ok {
			return nil, false
		}
		name, ok := handlerName(m.Args[1])
		if !ok {
			return nil, false
		}
		return newRoute(combinePath(v.prefix, path), method, name, axumParamRe), false
	}
	return nil, false
}

// routeLink is one method of a method router such as get(a).post(b).
type routeLink struct {
	method  model.HTTPMethod
	handler string
}

// methodRouterLinks flattens a method router chain into its links, innermost
// first. Links that are not HTTP method routers, such as .layer(..), are
// skipped. A handler that is not a path, such as a closure, is recorded as
// "unknown".
func methodRouterLinks(x syntax.Expr) []routeLink {
	var links []routeLink
	for x != nil {
		switch c := x.(type) {
		case *syntax.MethodCallExpr:
			if method, ok := model.ParseHTTPMethod(c.Method); ok && len(c.Args) == 1 {
				links = append(links, routeLink{method: method, handler: linkHandler(c.Args[0])})
			}
			x = c.Receiver
		case *syntax.CallExpr:
			if name, ok := handlerName(c.Func); ok && len(c.Args) == 1 {
				if method, ok := model.ParseHTTPMethod(name); ok {
					links = append(links, routeLink{method: method, handler: linkHandler(c.Args[0])})
				}
			}
			x = nil
		default:
			x = nil
		}
	}
	for i, j := 0, len(links)-1; i < j; i, j = i+1, j-1 {
		links[i], links[j] = links[j], links[i]
	}
	return links
}

func linkHandler(x syntax.Expr) string {
	if name, ok := handlerName(x); ok {
		return name
	}
	return "unknown"
}
