package syntax

import (
	"fmt"
)

// operators lists every multi-character operator, longest first. Single
// character punctuation is matched directly.
var operators = []string{
	"<<=", ">>=", "...", "..=",
	"::", "->", "=>", "==", "!=", "<=", ">=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "^=", "&=", "|=", "<<", ">>", "..",
}

// bailout unwinds the parser to the nearest recovery point.
type bailout struct {
	err *Error
}

type parser struct {
	filename  string
	toks      []Token
	pos       int
	end       Pos
	recovered *ErrorList
}

func newParser(filename string, toks []Token, end Pos, recovered *ErrorList) *parser {
	return &parser{filename: filename, toks: toks, end: end, recovered: recovered}
}

// ParseFile parses one source file. Lexing errors and malformed items are
// returned as an ErrorList. Statements inside function bodies that cannot be
// parsed are replaced by BadExpr nodes and reported in File.Recovered
// instead of failing the whole file.
func ParseFile(filename string, src []byte) (f *File, err error) {
	toks, err := Tokenize(filename, src)
	if err != nil {
		return nil, err
	}

	var recovered ErrorList
	p := newParser(filename, toks, Pos{Line: 1, Col: 1}, &recovered)
	f = &File{Span: Span{Position: Pos{Line: 1, Col: 1}}, Path: filename}

	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			f, err = nil, ErrorList{b.err}
		}
	}()

	f.Attrs = p.parseInnerAttrs()
	for !p.atEOF() {
		f.Items = append(f.Items, p.parseItem())
	}
	f.Recovered = recovered
	return f, nil
}

// sub returns a parser over the contents of a group token.
func (p *parser) sub(group Token) *parser {
	return newParser(p.filename, group.Tokens, group.Pos, p.recovered)
}

// ----------------------------------------------------------------------------
// Cursor helpers

func (p *parser) atEOF() bool {
	return p.pos >= len(p.toks)
}

func (p *parser) peek() Token {
	return p.peekN(0)
}

func (p *parser) peekN(n int) Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return Token{Kind: EOF, Pos: p.end}
}

func (p *parser) next() Token {
	t := p.peek()
	if !p.atEOF() {
		p.pos++
	}
	return t
}

func (p *parser) errorf(format string, args ...any) {
	pos := p.peek().Pos
	panic(bailout{err: &Error{Filename: p.filename, Pos: pos, Msg: fmt.Sprintf(format, args...)}})
}

// opAt returns the operator starting n tokens ahead, reassembling joint
// punctuation into the longest known operator.
func (p *parser) opAt(n int) string {
	t := p.peekN(n)
	if t.Kind != Punct {
		return ""
	}
	for _, op := range operators {
		if p.matchOp(n, op) {
			return op
		}
	}
	return t.Text
}

func (p *parser) matchOp(n int, op string) bool {
	for i := 0; i < len(op); i++ {
		t := p.peekN(n + i)
		if t.Kind != Punct || t.Text != op[i:i+1] {
			return false
		}
		if i < len(op)-1 && !t.Joint {
			return false
		}
	}
	return true
}

// peekOp returns the operator at the cursor, or "" for non-punctuation.
func (p *parser) peekOp() string {
	return p.opAt(0)
}

// isOp reports whether the operator at the cursor is exactly op.
func (p *parser) isOp(op string) bool {
	return p.peekOp() == op
}

// eatOp consumes op if it is the operator at the cursor.
func (p *parser) eatOp(op string) bool {
	if !p.isOp(op) {
		return false
	}
	p.pos += len(op)
	return true
}

func (p *parser) expectOp(op string) {
	if !p.eatOp(op) {
		p.errorf("expected %q, found %s", op, p.peek())
	}
}

// nextOp consumes and returns the operator at the cursor.
func (p *parser) nextOp() string {
	op := p.peekOp()
	p.pos += len(op)
	return op
}

// expectTok consumes the single punctuation token s. Angle brackets are
// matched this way so that `>>` closes two generic lists.
func (p *parser) expectTok(s string) {
	if !p.isTok(s) {
		p.errorf("expected %q, found %s", s, p.peek())
	}
	p.next()
}

// isTok reports whether the raw token at the cursor is the single
// punctuation character s, regardless of what follows it.
func (p *parser) isTok(s string) bool {
	t := p.peek()
	return t.Kind == Punct && t.Text == s
}

func (p *parser) isKeyword(name string) bool {
	return p.peekN(0).Is(name) && p.peek().Kind == Ident
}

func (p *parser) isKeywordAt(n int, name string) bool {
	t := p.peekN(n)
	return t.Kind == Ident && !t.Raw && t.Text == name
}

func (p *parser) eatKeyword(name string) bool {
	if p.isKeyword(name) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectKeyword(name string) {
	if !p.eatKeyword(name) {
		p.errorf("expected %q, found %s", name, p.peek())
	}
}

func (p *parser) expectIdent() string {
	t := p.peek()
	if t.Kind != Ident {
		p.errorf("expected identifier, found %s", t)
	}
	p.pos++
	return t.Text
}

func (p *parser) expectGroup(d Delim) Token {
	t := p.peek()
	if !t.IsGroup(d) {
		p.errorf("expected %q, found %s", d.open(), t)
	}
	p.pos++
	return t
}

// collectUntil consumes tokens until stop reports true at the top level
// or the stream ends. Multi-character operators are consumed as a unit so
// that the second ':' of '::' is never mistaken for a type separator.
func (p *parser) collectUntil(stop func() bool) []Token {
	start := p.pos
	for !p.atEOF() && !stop() {
		if op := p.peekOp(); op != "" {
			p.pos += len(op)
			continue
		}
		p.pos++
	}
	return p.toks[start:p.pos]
}

func (p *parser) parsePatUntil(stop func() bool) Pat {
	pos := p.peek().Pos
	toks := p.collectUntil(stop)
	if len(toks) == 0 {
		p.errorf("expected pattern, found %s", p.peek())
	}
	return Pat{Span: Span{Position: pos}, Tokens: toks}
}

// ----------------------------------------------------------------------------
// Attributes and visibility

func (p *parser) parseOuterAttrs() []*Attribute {
	var attrs []*Attribute
	for p.isTok("#") && p.peekN(1).IsGroup(Bracket) {
		pos := p.next().Pos
		attrs = append(attrs, p.parseAttrBody(pos, p.next(), false))
	}
	return attrs
}

func (p *parser) parseInnerAttrs() []*Attribute {
	var attrs []*Attribute
	for p.isTok("#") && p.peekN(1).Is("!") && p.peekN(2).IsGroup(Bracket) {
		pos := p.next().Pos
		p.next()
		attrs = append(attrs, p.parseAttrBody(pos, p.next(), true))
	}
	return attrs
}

func (p *parser) parseAttrBody(pos Pos, group Token, inner bool) *Attribute {
	sp := p.sub(group)
	attr := &Attribute{Span: Span{Position: pos}, Inner: inner}
	// #[unsafe(no_mangle)] wraps the real attribute.
	if sp.isKeyword("unsafe") && sp.peekN(1).IsGroup(Paren) {
		sp.next()
		sp = sp.sub(sp.next())
	}
	attr.Path = sp.parseSimplePath()
	switch {
	case sp.peek().Kind == Group:
		attr.HasArgs = true
		attr.Args = sp.next().Tokens
	case sp.eatOp("="):
		attr.Value = sp.toks[sp.pos:]
	}
	return attr
}

// parseSimplePath parses a path without generic arguments.
func (p *parser) parseSimplePath() Path {
	var path Path
	if p.eatOp("::") {
		path.Global = true
	}
	for {
		path.Segments = append(path.Segments, PathSegment{Name: p.expectIdent()})
		if p.isOp("::") && p.peekN(2).Kind == Ident {
			p.nextOp()
			continue
		}
		return path
	}
}

func (p *parser) parseVis() Visibility {
	if !p.isKeyword("pub") {
		if p.isKeyword("crate") && p.peekN(1).Kind == Ident {
			p.next()
			return Visibility{Public: true, Restriction: "crate"}
		}
		return Visibility{}
	}
	p.next()
	vis := Visibility{Public: true}
	if g := p.peek(); g.IsGroup(Paren) && len(g.Tokens) > 0 {
		first := g.Tokens[0]
		if first.Is("crate") || first.Is("super") || first.Is("self") || first.Is("in") {
			p.next()
			vis.Restriction = first.Text
		}
	}
	return vis
}

// ----------------------------------------------------------------------------
// Items

// isItemStart reports whether the cursor (after attributes) starts an item.
func (p *parser) isItemStart() bool {
	t := p.peek()
	if t.Kind != Ident || t.Raw {
		return false
	}
	switch t.Text {
	case "use", "fn", "struct", "enum", "mod", "impl", "trait", "type", "extern", "pub":
		return true
	case "const":
		next := p.peekN(1)
		return next.Kind == Ident || (next.Is("_"))
	case "static":
		next := p.peekN(1)
		return next.Kind == Ident && !next.Is("move")
	case "unsafe":
		return p.isKeywordAt(1, "fn") || p.isKeywordAt(1, "impl") || p.isKeywordAt(1, "trait") ||
			p.isKeywordAt(1, "extern") || p.isKeywordAt(1, "auto")
	case "async":
		return p.isKeywordAt(1, "fn") || (p.isKeywordAt(1, "unsafe") && p.isKeywordAt(2, "fn"))
	case "default":
		return p.isKeywordAt(1, "fn") || p.isKeywordAt(1, "impl") || p.isKeywordAt(1, "async") || p.isKeywordAt(1, "unsafe")
	case "auto":
		return p.isKeywordAt(1, "trait")
	case "union":
		return p.peekN(1).Kind == Ident
	case "macro_rules":
		return p.peekN(1).Is("!")
	case "crate":
		return p.peekN(1).Kind == Ident && !p.matchOp(1, "::")
	}
	return false
}

// isFnStart reports whether the qualifiers at the cursor lead to `fn`.
func (p *parser) isFnStart() bool {
	for n := 0; ; n++ {
		t := p.peekN(n)
		switch {
		case t.Kind == Ident && !t.Raw && t.Text == "fn":
			return true
		case t.Kind == Ident && !t.Raw && (t.Text == "const" || t.Text == "async" || t.Text == "unsafe" || t.Text == "default" || t.Text == "extern"):
			continue
		case t.Kind == Literal && t.LitKind == LitStr && n > 0 && p.isKeywordAt(n-1, "extern"):
			continue
		default:
			return false
		}
	}
}

func (p *parser) parseItem() Item {
	pos := p.peek().Pos
	attrs := p.parseOuterAttrs()
	return p.parseItemAfterAttrs(pos, attrs)
}

func (p *parser) parseItemAfterAttrs(pos Pos, attrs []*Attribute) Item {
	vis := p.parseVis()
	span := Span{Position: pos}

	switch {
	case p.isKeyword("use"):
		return p.parseUse(span, attrs, vis)
	case p.isFnStart():
		return p.parseFn(span, attrs, vis)
	case p.isKeyword("struct"):
		p.next()
		return p.parseStruct(span, attrs, vis)
	case p.isKeyword("union") && p.peekN(1).Kind == Ident:
		p.next()
		return p.parseStruct(span, attrs, vis)
	case p.isKeyword("enum"):
		return p.parseEnum(span, attrs, vis)
	case p.isKeyword("mod"):
		return p.parseMod(span, attrs, vis)
	case p.isKeyword("impl"),
		p.isKeyword("unsafe") && p.isKeywordAt(1, "impl"),
		p.isKeyword("default") && p.isKeywordAt(1, "impl"):
		return p.parseImpl(span, attrs)
	case p.isKeyword("trait"),
		p.isKeyword("unsafe") && (p.isKeywordAt(1, "trait") || p.isKeywordAt(1, "auto")),
		p.isKeyword("auto") && p.isKeywordAt(1, "trait"):
		return p.parseTrait(span, attrs, vis)
	case p.isKeyword("const"), p.isKeyword("static"):
		return p.parseConst(span, attrs, vis)
	case p.isKeyword("type"):
		return p.parseTypeAlias(span, attrs, vis)
	case p.isKeyword("extern") && p.isKeywordAt(1, "crate"):
		return p.parseExternCrate(span, attrs)
	case p.isKeyword("extern") || (p.isKeyword("unsafe") && p.isKeywordAt(1, "extern")):
		return p.parseForeignMod(span, attrs)
	case p.isKeyword("macro_rules") && p.peekN(1).Is("!"):
		p.next()
		p.next()
		name := p.expectIdent()
		return p.finishMacroItem(span, attrs, Path{Segments: []PathSegment{{Name: "macro_rules"}}}, name)
	case p.peek().Kind == Ident || p.isOp("::"):
		path := p.parseSimplePath()
		if !p.isTok("!") {
			p.errorf("expected item, found %s", p.peek())
		}
		p.next()
		name := ""
		if p.peek().Kind == Ident {
			name = p.next().Text
		}
		return p.finishMacroItem(span, attrs, path, name)
	}
	p.errorf("expected item, found %s", p.peek())
	return nil
}

func (p *parser) finishMacroItem(span Span, attrs []*Attribute, path Path, name string) Item {
	g := p.peek()
	if g.Kind != Group {
		p.errorf("expected macro body, found %s", g)
	}
	p.next()
	if g.Delim != Brace {
		p.eatOp(";")
	}
	return &MacroItem{Span: span, Attrs: attrs, Path: path, Name: name, Tokens: g.Tokens}
}

func (p *parser) parseUse(span Span, attrs []*Attribute, vis Visibility) Item {
	p.expectKeyword("use")
	tree := p.parseUseTree()
	p.expectOp(";")
	return &UseItem{Span: span, Attrs: attrs, Vis: vis, Tree: tree}
}

func (p *parser) parseUseTree() UseTree {
	p.eatOp("::")
	t := p.peek()
	span := Span{Position: t.Pos}
	switch {
	case t.Is("*"):
		p.next()
		return &UseGlob{Span: span}
	case t.IsGroup(Brace):
		p.next()
		sp := p.sub(t)
		group := &UseGroup{Span: span}
		for !sp.atEOF() {
			group.Trees = append(group.Trees, sp.parseUseTree())
			if !sp.eatOp(",") && !sp.atEOF() {
				sp.errorf("expected ',' in use group, found %s", sp.peek())
			}
		}
		return group
	case t.Kind == Ident:
		p.next()
		if p.eatOp("::") {
			return &UsePath{Span: span, Name: t.Text, Tree: p.parseUseTree()}
		}
		if p.eatKeyword("as") {
			return &UseRename{Span: span, Name: t.Text, Rename: p.expectIdent()}
		}
		return &UseName{Span: span, Name: t.Text}
	}
	p.errorf("expected use tree, found %s", t)
	return nil
}

func (p *parser) parseFn(span Span, attrs []*Attribute, vis Visibility) Item {
	sig := &Signature{Span: span}
	for !p.isKeyword("fn") {
		switch t := p.next(); {
		case t.Is("const"):
			sig.Const = true
		case t.Is("async"):
			sig.Async = true
		case t.Is("unsafe"):
			sig.Unsafe = true
		}
	}
	p.expectKeyword("fn")
	sig.Name = p.expectIdent()
	p.skipGenerics()
	params := p.expectGroup(Paren)
	sig.Inputs = p.sub(params).parseFnArgs()
	if p.eatOp("->") {
		sig.Output = p.parseType()
	}
	p.skipWhereClause()

	fn := &FnItem{Span: span, Attrs: attrs, Vis: vis, Sig: sig}
	if p.peek().IsGroup(Brace) {
		fn.Body = p.parseBlockGroup(p.next())
	} else {
		p.expectOp(";")
	}
	return fn
}

func (p *parser) isSingleColon() bool {
	return p.isOp(":")
}

func (p *parser) parseFnArgs() []*FnArg {
	var args []*FnArg
	for !p.atEOF() {
		pos := p.peek().Pos
		arg := &FnArg{Span: Span{Position: pos}, Attrs: p.parseOuterAttrs()}
		if p.isReceiver() {
			arg.Receiver = true
			arg.Pat = Pat{Span: Span{Position: pos}, Tokens: p.collectUntil(func() bool {
				return p.isSingleColon() || p.isOp(",")
			})}
			if p.eatOp(":") {
				arg.Type = p.parseType()
			}
		} else {
			arg.Pat = p.parsePatUntil(p.isSingleColon)
			p.expectOp(":")
			arg.Type = p.parseType()
		}
		args = append(args, arg)
		if !p.eatOp(",") && !p.atEOF() {
			p.errorf("expected ',' between parameters, found %s", p.peek())
		}
	}
	return args
}

// isReceiver recognizes self, mut self, &self, &'a self and &mut self.
func (p *parser) isReceiver() bool {
	n := 0
	if p.peekN(n).Is("&") {
		n++
		if p.peekN(n).Kind == Lifetime {
			n++
		}
	}
	if p.isKeywordAt(n, "mut") {
		n++
	}
	return p.isKeywordAt(n, "self") && !p.matchOp(n+1, "::")
}

// skipGenerics skips a <...> generic parameter list.
func (p *parser) skipGenerics() {
	if !p.isTok("<") {
		return
	}
	depth := 0
	for !p.atEOF() {
		switch {
		case p.isOp("->"):
			p.pos += 2
			continue
		case p.isTok("<"):
			depth++
		case p.isTok(">"):
			depth--
		}
		p.pos++
		if depth == 0 {
			return
		}
	}
	p.errorf("unterminated generic parameter list")
}

// skipWhereClause skips a where clause up to the item body or ';'.
func (p *parser) skipWhereClause() {
	if !p.eatKeyword("where") {
		return
	}
	p.collectUntil(func() bool {
		return p.peek().IsGroup(Brace) || p.isOp(";") || p.isOp("=")
	})
}

func (p *parser) parseStruct(span Span, attrs []*Attribute, vis Visibility) Item {
	st := &StructItem{Span: span, Attrs: attrs, Vis: vis, Name: p.expectIdent()}
	p.skipGenerics()
	p.skipWhereClause()
	switch g := p.peek(); {
	case g.IsGroup(Brace):
		p.next()
		st.Kind = NamedFields
		st.Fields = p.sub(g).parseNamedFields()
	case g.IsGroup(Paren):
		p.next()
		st.Kind = TupleFields
		st.Fields = p.sub(g).parseTupleFields()
		p.skipWhereClause()
		p.expectOp(";")
	default:
		st.Kind = UnitFields
		p.expectOp(";")
	}
	return st
}

func (p *parser) parseNamedFields() []*Field {
	var fields []*Field
	for !p.atEOF() {
		pos := p.peek().Pos
		f := &Field{Span: Span{Position: pos}, Attrs: p.parseOuterAttrs(), Vis: p.parseVis()}
		f.Name = p.expectIdent()
		p.expectOp(":")
		f.Type = p.parseType()
		if p.eatOp("=") {
			// Default field values are an unstable extension; skip them.
			p.collectUntil(func() bool { return p.isOp(",") })
		}
		fields = append(fields, f)
		if !p.eatOp(",") && !p.atEOF() {
			p.errorf("expected ',' between fields, found %s", p.peek())
		}
	}
	return fields
}

func (p *parser) parseTupleFields() []*Field {
	var fields []*Field
	for !p.atEOF() {
		pos := p.peek().Pos
		f := &Field{Span: Span{Position: pos}, Attrs: p.parseOuterAttrs(), Vis: p.parseVis()}
		f.Type = p.parseType()
		fields = append(fields, f)
		if !p.eatOp(",") && !p.atEOF() {
			p.errorf("expected ',' between fields, found %s", p.peek())
		}
	}
	return fields
}

func (p *parser) parseEnum(span Span, attrs []*Attribute, vis Visibility) Item {
	p.expectKeyword("enum")
	en := &EnumItem{Span: span, Attrs: attrs, Vis: vis, Name: p.expectIdent()}
	p.skipGenerics()
	p.skipWhereClause()
	body := p.expectGroup(Brace)
	sp := p.sub(body)
	for !sp.atEOF() {
		pos := sp.peek().Pos
		v := &Variant{Span: Span{Position: pos}, Attrs: sp.parseOuterAttrs()}
		sp.parseVis()
		v.Name = sp.expectIdent()
		switch g := sp.peek(); {
		case g.IsGroup(Brace):
			sp.next()
			v.Kind = NamedFields
			v.Fields = sp.sub(g).parseNamedFields()
		case g.IsGroup(Paren):
			sp.next()
			v.Kind = TupleFields
			v.Fields = sp.sub(g).parseTupleFields()
		default:
			v.Kind = UnitFields
		}
		if sp.eatOp("=") {
			v.Discriminant = sp.parseExpr()
		}
		en.Variants = append(en.Variants, v)
		if !sp.eatOp(",") && !sp.atEOF() {
			sp.errorf("expected ',' between variants, found %s", sp.peek())
		}
	}
	return en
}

func (p *parser) parseMod(span Span, attrs []*Attribute, vis Visibility) Item {
	p.expectKeyword("mod")
	m := &ModItem{Span: span, Attrs: attrs, Vis: vis, Name: p.expectIdent()}
	if p.eatOp(";") {
		return m
	}
	body := p.expectGroup(Brace)
	m.Inline = true
	sp := p.sub(body)
	m.Attrs = append(m.Attrs, sp.parseInnerAttrs()...)
	for !sp.atEOF() {
		m.Items = append(m.Items, sp.parseItem())
	}
	return m
}

func (p *parser) parseImpl(span Span, attrs []*Attribute) Item {
	p.eatKeyword("default")
	p.eatKeyword("unsafe")
	p.expectKeyword("impl")
	p.skipGenerics()
	p.eatKeyword("const")
	negative := p.isTok("!")
	if negative {
		p.next()
	}

	impl := &ImplItem{Span: span, Attrs: attrs}
	first := p.parseTypeNoBounds()
	if p.eatKeyword("for") {
		if pt, ok := first.(*PathType); ok {
			trait := pt.Path
			impl.Trait = &trait
		}
		impl.SelfType = p.parseTypeNoBounds()
	} else {
		impl.SelfType = first
	}
	p.skipWhereClause()

	body := p.expectGroup(Brace)
	sp := p.sub(body)
	sp.parseInnerAttrs()
	for !sp.atEOF() {
		impl.Items = append(impl.Items, sp.parseItem())
	}
	return impl
}

func (p *parser) parseTrait(span Span, attrs []*Attribute, vis Visibility) Item {
	p.eatKeyword("unsafe")
	p.eatKeyword("auto")
	p.expectKeyword("trait")
	tr := &TraitItem{Span: span, Attrs: attrs, Vis: vis, Name: p.expectIdent()}
	p.skipGenerics()
	p.collectUntil(func() bool {
		return p.peek().IsGroup(Brace) || p.isOp(";")
	})
	if p.eatOp(";") {
		return tr
	}
	body := p.expectGroup(Brace)
	sp := p.sub(body)
	sp.parseInnerAttrs()
	for !sp.atEOF() {
		tr.Items = append(tr.Items, sp.parseItem())
	}
	return tr
}

func (p *parser) parseConst(span Span, attrs []*Attribute, vis Visibility) Item {
	c := &ConstItem{Span: span, Attrs: attrs, Vis: vis}
	if p.eatKeyword("static") {
		c.Static = true
		p.eatKeyword("mut")
	} else {
		p.expectKeyword("const")
	}
	c.Name = p.expectIdent()
	p.skipGenerics()
	if p.eatOp(":") {
		c.Type = p.parseType()
	}
	if p.eatOp("=") {
		c.Value = p.parseExpr()
	}
	p.expectOp(";")
	return c
}

func (p *parser) parseTypeAlias(span Span, attrs []*Attribute, vis Visibility) Item {
	p.expectKeyword("type")
	ta := &TypeAliasItem{Span: span, Attrs: attrs, Vis: vis, Name: p.expectIdent()}
	p.skipGenerics()
	if p.eatOp(":") {
		p.parseBounds()
	}
	p.skipWhereClause()
	if p.eatOp("=") {
		ta.Type = p.parseType()
	}
	p.skipWhereClause()
	p.expectOp(";")
	return ta
}

func (p *parser) parseExternCrate(span Span, attrs []*Attribute) Item {
	p.expectKeyword("extern")
	p.expectKeyword("crate")
	ec := &ExternCrateItem{Span: span, Attrs: attrs, Name: p.expectIdent()}
	if p.eatKeyword("as") {
		ec.Rename = p.expectIdent()
	}
	p.expectOp(";")
	return ec
}

func (p *parser) parseForeignMod(span Span, attrs []*Attribute) Item {
	p.eatKeyword("unsafe")
	p.expectKeyword("extern")
	if t := p.peek(); t.Kind == Literal {
		p.next()
	}
	body := p.expectGroup(Brace)
	return &ForeignModItem{Span: span, Attrs: attrs, Tokens: body.Tokens}
}
