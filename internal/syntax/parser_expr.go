package syntax

// Binary operator precedences, loosest first. Assignment and ranges are
// handled by their own levels above these.
var binaryPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3, "<": 3, ">": 3, "<=": 3, ">=": 3,
	"|":  4,
	"^":  5,
	"&":  6,
	"<<": 7, ">>": 7,
	"+": 8, "-": 8,
	"*": 9, "/": 9, "%": 9,
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"^=": true, "&=": true, "|=": true, "<<=": true, ">>=": true,
}

// ----------------------------------------------------------------------------
// Blocks and statements

func (p *parser) parseBlockGroup(group Token) *Block {
	sp := p.sub(group)
	b := &Block{Span: Span{Position: group.Pos}}
	sp.parseInnerAttrs()
	for !sp.atEOF() {
		if sp.eatOp(";") {
			continue
		}
		b.Stmts = append(b.Stmts, sp.parseStmtRecover())
	}
	return b
}

func (p *parser) expectBlock() *Block {
	return p.parseBlockGroup(p.expectGroup(Brace))
}

// parseStmtRecover parses one statement. On failure it records the error,
// skips to the next ';' and returns a BadExpr statement.
func (p *parser) parseStmtRecover() (s Stmt) {
	start := p.pos
	pos := p.peek().Pos
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*p.recovered = append(*p.recovered, b.err)
		for !p.atEOF() && !p.isOp(";") {
			p.pos++
		}
		p.eatOp(";")
		if p.pos == start {
			p.pos++
		}
		s = &ExprStmt{
			Span: Span{Position: pos},
			X:    &BadExpr{Span: Span{Position: pos}, Tokens: p.toks[start:p.pos]},
			Semi: true,
		}
	}()
	return p.parseStmt()
}

func (p *parser) parseStmt() Stmt {
	pos := p.peek().Pos
	span := Span{Position: pos}
	attrs := p.parseOuterAttrs()

	if p.isItemStart() {
		return &ItemStmt{Span: span, Item: p.parseItemAfterAttrs(pos, attrs)}
	}
	if p.eatKeyword("let") {
		return p.parseLet(span)
	}
	// Statement macros: name! { .. } needs no ';'.
	if p.peek().Kind == Ident && p.isPathMacroStart() {
		x := p.parseExpr()
		if m, ok := x.(*MacroExpr); ok && m.Delim == Brace {
			return &ExprStmt{Span: span, X: x, Semi: p.eatOp(";")}
		}
		return p.finishExprStmt(span, x)
	}

	if p.isBlockLikeStart() {
		x := p.parseBlockLike()
		if p.isOp(".") || p.isOp("?") {
			x = p.continueExpr(x)
			return p.finishExprStmt(span, x)
		}
		return &ExprStmt{Span: span, X: x, Semi: p.eatOp(";")}
	}
	return p.finishExprStmt(span, p.parseExpr())
}

func (p *parser) finishExprStmt(span Span, x Expr) Stmt {
	semi := p.eatOp(";")
	if !semi && !p.atEOF() {
		p.errorf("expected ';', found %s", p.peek())
	}
	return &ExprStmt{Span: span, X: x, Semi: semi}
}

// isPathMacroStart reports whether a `path!` macro invocation starts here.
func (p *parser) isPathMacroStart() bool {
	n := 0
	for {
		if p.peekN(n).Kind != Ident {
			return false
		}
		n++
		if p.matchOp(n, "::") {
			n += 2
			continue
		}
		return p.peekN(n).Is("!") && !p.matchOp(n, "!=") && p.peekN(n+1).Kind == Group
	}
}

func (p *parser) parseLet(span Span) Stmt {
	let := &LetStmt{Span: span}
	let.Pat = p.parsePatUntil(func() bool {
		return p.isOp(":") || p.isOp("=") || p.isOp(";")
	})
	if p.eatOp(":") {
		let.Type = p.parseType()
	}
	if p.eatOp("=") {
		let.Init = p.parseExpr()
		if p.eatKeyword("else") {
			let.Else = p.expectBlock()
		}
	}
	if !p.eatOp(";") && !p.atEOF() {
		p.errorf("expected ';' after let, found %s", p.peek())
	}
	return let
}

// isBlockLikeStart reports whether the cursor begins an expression that
// ends a statement without ';' when it closes.
func (p *parser) isBlockLikeStart() bool {
	t := p.peek()
	switch {
	case t.IsGroup(Brace):
		return true
	case t.Kind == Lifetime && p.matchOp(1, ":"):
		return true
	case t.Is("if"), t.Is("match"), t.Is("loop"), t.Is("while"), t.Is("for"):
		return true
	case t.Is("unsafe") && p.peekN(1).IsGroup(Brace):
		return true
	case t.Is("const") && p.peekN(1).IsGroup(Brace):
		return true
	}
	return false
}

func (p *parser) parseBlockLike() Expr {
	return p.parsePrimary(false)
}

// continueExpr resumes expression parsing with x as the leftmost operand.
func (p *parser) continueExpr(x Expr) Expr {
	x = p.parsePostfix(x)
	x = p.parseCastFrom(x)
	x = p.parseBinaryFrom(x, 1, false)
	if p.isOp("..") || p.isOp("..=") {
		x = p.parseRangeFrom(x, false)
	}
	if op := p.peekOp(); assignOps[op] {
		pos := x.Pos()
		p.nextOp()
		x = &BinaryExpr{Span: Span{Position: pos}, Op: op, X: x, Y: p.parseExpr()}
	}
	return x
}

// ----------------------------------------------------------------------------
// Expressions

func (p *parser) parseExpr() Expr {
	return p.parseExprCtx(false)
}

// parseExprNoStruct parses the head of if, match, while and for, where a
// brace group starts the body rather than a struct literal.
func (p *parser) parseExprNoStruct() Expr {
	return p.parseExprCtx(true)
}

func (p *parser) parseExprCtx(noStruct bool) Expr {
	x := p.parseRange(noStruct)
	if op := p.peekOp(); assignOps[op] {
		p.nextOp()
		return &BinaryExpr{Span: Span{Position: x.Pos()}, Op: op, X: x, Y: p.parseExprCtx(noStruct)}
	}
	return x
}

func (p *parser) parseRange(noStruct bool) Expr {
	if p.isOp("..") || p.isOp("..=") {
		pos := p.peek().Pos
		inclusive := p.nextOp() == "..="
		r := &RangeExpr{Span: Span{Position: pos}, Inclusive: inclusive}
		if p.canStartExpr(noStruct) {
			r.To = p.parseBinary(1, noStruct)
		}
		return r
	}
	x := p.parseBinary(1, noStruct)
	if p.isOp("..") || p.isOp("..=") {
		return p.parseRangeFrom(x, noStruct)
	}
	return x
}

func (p *parser) parseRangeFrom(from Expr, noStruct bool) Expr {
	inclusive := p.nextOp() == "..="
	r := &RangeExpr{Span: Span{Position: from.Pos()}, From: from, Inclusive: inclusive}
	if p.canStartExpr(noStruct) {
		r.To = p.parseBinary(1, noStruct)
	}
	return r
}

// canStartExpr reports whether the cursor can begin an operand, used for
// the optional parts of ranges, return and break.
func (p *parser) canStartExpr(noStruct bool) bool {
	t := p.peek()
	switch t.Kind {
	case EOF:
		return false
	case Literal, Lifetime:
		return true
	case Group:
		return !(noStruct && t.Delim == Brace)
	case Ident:
		return !t.Is("as") && !t.Is("else")
	case Punct:
		switch p.peekOp() {
		case "-", "!", "*", "&", "&&", "|", "||", "<", "::", "..", "#":
			return true
		}
	}
	return false
}

func (p *parser) parseBinary(minPrec int, noStruct bool) Expr {
	return p.parseBinaryFrom(p.parseUnary(noStruct), minPrec, noStruct)
}

func (p *parser) parseBinaryFrom(x Expr, minPrec int, noStruct bool) Expr {
	for {
		op := p.peekOp()
		prec, ok := binaryPrec[op]
		if !ok || prec < minPrec {
			return x
		}
		p.nextOp()
		y := p.parseBinary(prec+1, noStruct)
		x = &BinaryExpr{Span: Span{Position: x.Pos()}, Op: op, X: x, Y: y}
	}
}

func (p *parser) parseUnary(noStruct bool) Expr {
	pos := p.peek().Pos
	span := Span{Position: pos}
	switch op := p.peekOp(); op {
	case "-", "!", "*":
		p.nextOp()
		return &UnaryExpr{Span: span, Op: op, X: p.parseUnary(noStruct)}
	case "&", "&&":
		p.nextOp()
		// &raw const x and &raw mut x.
		if p.isKeyword("raw") && (p.isKeywordAt(1, "const") || p.isKeywordAt(1, "mut")) {
			p.pos += 2
		}
		ref := &RefExpr{Span: span, Mut: p.eatKeyword("mut"), X: p.parseUnary(noStruct)}
		if op == "&&" {
			return &RefExpr{Span: span, X: ref}
		}
		return ref
	}
	return p.parseCastFrom(p.parsePostfix(p.parsePrimary(noStruct)))
}

func (p *parser) parseCastFrom(x Expr) Expr {
	for p.eatKeyword("as") {
		x = &CastExpr{Span: Span{Position: x.Pos()}, X: x, Type: p.parseTypeNoBounds()}
	}
	return x
}

func (p *parser) parsePostfix(x Expr) Expr {
	for {
		span := Span{Position: x.Pos()}
		t := p.peek()
		switch {
		case p.isOp("?"):
			p.next()
			x = &TryExpr{Span: span, X: x}
		case p.isOp("."):
			p.next()
			x = p.parseDotSuffix(span, x)
		case t.IsGroup(Paren):
			p.next()
			x = &CallExpr{Span: span, Func: x, Args: p.sub(t).parseExprList()}
		case t.IsGroup(Bracket):
			p.next()
			x = &IndexExpr{Span: span, X: x, Index: p.sub(t).parseExpr()}
		default:
			return x
		}
	}
}

func (p *parser) parseDotSuffix(span Span, x Expr) Expr {
	t := p.next()
	switch {
	case t.Kind == Ident && t.Text == "await" && !t.Raw:
		return &AwaitExpr{Span: span, X: x}
	case t.Kind == Ident:
		var turbofish []Type
		if p.isOp("::") && p.peekN(2).Is("<") {
			p.nextOp()
			turbofish = p.parseGenericArgs()
		}
		if g := p.peek(); g.IsGroup(Paren) {
			p.next()
			return &MethodCallExpr{Span: span, Receiver: x, Method: t.Text, Turbofish: turbofish, Args: p.sub(g).parseExprList()}
		}
		return &FieldExpr{Span: span, X: x, Name: t.Text}
	case t.Kind == Literal && t.LitKind == LitInt:
		return &FieldExpr{Span: span, X: x, Name: t.Text}
	case t.Kind == Literal && t.LitKind == LitFloat:
		// x.0.1 lexes as x . 0.1
		for i := 0; i < len(t.Text); i++ {
			if t.Text[i] == '.' {
				inner := &FieldExpr{Span: span, X: x, Name: t.Text[:i]}
				return &FieldExpr{Span: span, X: inner, Name: t.Text[i+1:]}
			}
		}
		return &FieldExpr{Span: span, X: x, Name: t.Text}
	}
	p.pos--
	p.errorf("expected field or method name, found %s", t)
	return nil
}

// parseExprList parses comma-separated expressions filling the parser.
func (p *parser) parseExprList() []Expr {
	var list []Expr
	for !p.atEOF() {
		p.parseOuterAttrs()
		list = append(list, p.parseExpr())
		if !p.eatOp(",") && !p.atEOF() {
			p.errorf("expected ',', found %s", p.peek())
		}
	}
	return list
}

func (p *parser) parsePrimary(noStruct bool) Expr {
	t := p.peek()
	span := Span{Position: t.Pos}

	switch t.Kind {
	case Literal:
		p.next()
		return &LitExpr{Span: span, Tok: t}
	case Lifetime:
		if p.matchOp(1, ":") && !p.matchOp(1, "::") {
			p.pos += 2
			return p.parseLabeled(span, t.Text)
		}
	case Group:
		p.next()
		switch t.Delim {
		case Brace:
			return &BlockExpr{Span: span, Block: p.parseBlockGroup(t)}
		case Paren:
			return p.sub(t).parseParenContents(span)
		case Bracket:
			return p.sub(t).parseArrayContents(span)
		}
	case Punct:
		switch p.peekOp() {
		case "|", "||":
			return p.parseClosure(span, false, false, noStruct)
		case "<", "::":
			return p.parsePathExpr(span, noStruct)
		}
	case Ident:
		if !t.Raw {
			if x := p.parseKeywordExpr(span, t.Text, noStruct); x != nil {
				return x
			}
		}
		return p.parsePathExpr(span, noStruct)
	}
	p.errorf("expected expression, found %s", t)
	return nil
}

// parseKeywordExpr parses expressions introduced by a keyword. It returns
// nil when the identifier at the cursor does not start one.
func (p *parser) parseKeywordExpr(span Span, kw string, noStruct bool) Expr {
	switch kw {
	case "true", "false":
		return &LitExpr{Span: span, Tok: p.next()}
	case "if":
		return p.parseIf(span)
	case "match":
		p.next()
		m := &MatchExpr{Span: span, X: p.parseExprNoStruct()}
		m.Arms = p.sub(p.expectGroup(Brace)).parseArms()
		return m
	case "loop", "while", "for":
		return p.parseLabeled(span, "")
	case "unsafe":
		if p.peekN(1).IsGroup(Brace) {
			p.next()
			return &BlockExpr{Span: span, Unsafe: true, Block: p.expectBlock()}
		}
	case "const":
		if p.peekN(1).IsGroup(Brace) {
			p.next()
			return &BlockExpr{Span: span, Const: true, Block: p.expectBlock()}
		}
	case "async":
		p.next()
		move := p.eatKeyword("move")
		if p.peek().IsGroup(Brace) {
			return &BlockExpr{Span: span, Async: true, Move: move, Block: p.expectBlock()}
		}
		return p.parseClosure(span, true, move, noStruct)
	case "move":
		p.next()
		return p.parseClosure(span, false, true, noStruct)
	case "static":
		if p.isKeywordAt(1, "move") || p.peekN(1).Is("|") {
			p.next()
			move := p.eatKeyword("move")
			return p.parseClosure(span, false, move, noStruct)
		}
	case "return":
		p.next()
		r := &ReturnExpr{Span: span}
		if p.canStartExpr(noStruct) {
			r.X = p.parseExprCtx(noStruct)
		}
		return r
	case "break":
		p.next()
		b := &BreakExpr{Span: span}
		if lt := p.peek(); lt.Kind == Lifetime {
			p.next()
			b.Label = lt.Text
		}
		if p.canStartExpr(noStruct) {
			b.X = p.parseExprCtx(noStruct)
		}
		return b
	case "continue":
		p.next()
		c := &ContinueExpr{Span: span}
		if lt := p.peek(); lt.Kind == Lifetime {
			p.next()
			c.Label = lt.Text
		}
		return c
	case "let":
		p.next()
		let := &LetExpr{Span: span}
		let.Pat = p.parsePatUntil(func() bool { return p.isOp("=") })
		p.expectOp("=")
		let.X = p.parseBinary(binaryPrec["&&"]+1, true)
		return let
	case "yield", "become", "do":
		// Unstable expression keywords are parsed as plain paths.
	}
	return nil
}

// parseLabeled parses loop, while, for or a block, after an optional label.
func (p *parser) parseLabeled(span Span, label string) Expr {
	switch {
	case p.eatKeyword("loop"):
		return &LoopExpr{Span: span, Label: label, Body: p.expectBlock()}
	case p.eatKeyword("while"):
		w := &WhileExpr{Span: span, Label: label, Cond: p.parseExprNoStruct()}
		w.Body = p.expectBlock()
		return w
	case p.eatKeyword("for"):
		f := &ForExpr{Span: span, Label: label}
		f.Pat = p.parsePatUntil(func() bool { return p.isKeyword("in") })
		p.expectKeyword("in")
		f.Iter = p.parseExprNoStruct()
		f.Body = p.expectBlock()
		return f
	case p.peek().IsGroup(Brace):
		return &BlockExpr{Span: span, Label: label, Block: p.expectBlock()}
	}
	p.errorf("expected loop or block after label, found %s", p.peek())
	return nil
}

func (p *parser) parseIf(span Span) Expr {
	p.expectKeyword("if")
	x := &IfExpr{Span: span, Cond: p.parseExprNoStruct()}
	x.Then = p.expectBlock()
	if p.eatKeyword("else") {
		elsePos := Span{Position: p.peek().Pos}
		if p.isKeyword("if") {
			x.Else = p.parseIf(elsePos)
		} else {
			x.Else = &BlockExpr{Span: elsePos, Block: p.expectBlock()}
		}
	}
	return x
}

func (p *parser) parseArms() []*Arm {
	var arms []*Arm
	for !p.atEOF() {
		pos := p.peek().Pos
		p.parseOuterAttrs()
		arm := &Arm{Span: Span{Position: pos}}
		p.eatOp("|")
		arm.Pat = p.parsePatUntil(func() bool {
			return p.isOp("=>") || p.isKeyword("if")
		})
		if p.eatKeyword("if") {
			arm.Guard = p.parseExpr()
		}
		p.expectOp("=>")
		if p.peek().IsGroup(Brace) {
			arm.Body = &BlockExpr{Span: Span{Position: p.peek().Pos}, Block: p.expectBlock()}
			if p.isOp(".") || p.isOp("?") {
				arm.Body = p.continueExpr(arm.Body)
			}
			p.eatOp(",")
		} else {
			arm.Body = p.parseExpr()
			if !p.eatOp(",") && !p.atEOF() && !isBlockLike(arm.Body) {
				p.errorf("expected ',' after match arm, found %s", p.peek())
			}
		}
		arms = append(arms, arm)
	}
	return arms
}

func isBlockLike(x Expr) bool {
	switch x := x.(type) {
	case *BlockExpr, *IfExpr, *MatchExpr, *LoopExpr, *WhileExpr, *ForExpr:
		return true
	case *MacroExpr:
		return x.Delim == Brace
	}
	return false
}

func (p *parser) parseClosure(span Span, async, move bool, noStruct bool) Expr {
	c := &ClosureExpr{Span: span, Async: async, Move: move}
	if !p.eatOp("||") {
		p.expectTok("|")
		for !p.isTok("|") {
			if p.atEOF() {
				p.errorf("unterminated closure parameters")
			}
			pos := p.peek().Pos
			p.parseOuterAttrs()
			param := &ClosureParam{Span: Span{Position: pos}}
			param.Pat = p.parsePatUntil(func() bool {
				return p.isTok("|") || p.isOp(",") || p.isOp(":")
			})
			if p.eatOp(":") {
				param.Type = p.parseTypeNoBounds()
			}
			c.Params = append(c.Params, param)
			if !p.eatOp(",") && !p.isTok("|") {
				p.errorf("expected ',' or '|' in closure parameters, found %s", p.peek())
			}
		}
		p.next()
	}
	if p.eatOp("->") {
		c.Output = p.parseTypeNoBounds()
		c.Body = &BlockExpr{Span: Span{Position: p.peek().Pos}, Block: p.expectBlock()}
		return c
	}
	c.Body = p.parseExprCtx(noStruct)
	return c
}

func (p *parser) parseParenContents(span Span) Expr {
	if p.atEOF() {
		return &TupleExpr{Span: span}
	}
	p.parseOuterAttrs()
	first := p.parseExpr()
	if p.atEOF() {
		return &ParenExpr{Span: span, X: first}
	}
	tup := &TupleExpr{Span: span, Elems: []Expr{first}}
	p.expectOp(",")
	tup.Elems = append(tup.Elems, p.parseExprList()...)
	return tup
}

func (p *parser) parseArrayContents(span Span) Expr {
	arr := &ArrayExpr{Span: span}
	if p.atEOF() {
		return arr
	}
	first := p.parseExpr()
	if p.eatOp(";") {
		arr.Elems = []Expr{first}
		arr.Len = p.parseExpr()
		return arr
	}
	arr.Elems = []Expr{first}
	if p.eatOp(",") {
		arr.Elems = append(arr.Elems, p.parseExprList()...)
	} else if !p.atEOF() {
		p.errorf("expected ',' in array, found %s", p.peek())
	}
	return arr
}

// parseExprPath parses a path in expression position, where generic
// arguments need the `::<` turbofish.
func (p *parser) parseExprPath() Path {
	var path Path
	if p.eatOp("::") {
		path.Global = true
	}
	for {
		seg := PathSegment{Name: p.expectIdent()}
		if p.isOp("::") && p.peekN(2).Is("<") {
			p.nextOp()
			seg.Args = p.parseGenericArgs()
		}
		path.Segments = append(path.Segments, seg)
		if p.isOp("::") && p.peekN(2).Kind == Ident {
			p.nextOp()
			continue
		}
		return path
	}
}

func (p *parser) parsePathExpr(span Span, noStruct bool) Expr {
	var path Path
	if p.isTok("<") {
		p.parseQSelf()
		p.expectOp("::")
		path = p.parseExprPath()
	} else {
		path = p.parseExprPath()
	}

	// Macro invocation: path!(..), path![..] or path!{..}.
	if p.isTok("!") && !p.isOp("!=") && p.peekN(1).Kind == Group {
		p.next()
		g := p.next()
		return &MacroExpr{Span: span, Path: path, Delim: g.Delim, Tokens: g.Tokens, Args: p.tryParseMacroArgs(g)}
	}

	if !noStruct && p.peek().IsGroup(Brace) && p.looksLikeStructLit(path) {
		return p.sub(p.next()).parseStructLit(span, path)
	}
	return &PathExpr{Span: span, Path: path}
}

// looksLikeStructLit rejects the few identifier-then-brace forms that are
// not struct literals outside condition heads.
func (p *parser) looksLikeStructLit(path Path) bool {
	if len(path.Segments) != 1 {
		return true
	}
	switch path.Segments[0].Name {
	case "else", "in":
		return false
	}
	return true
}

func (p *parser) parseStructLit(span Span, path Path) Expr {
	st := &StructExpr{Span: span, Path: path}
	for !p.atEOF() {
		if p.eatOp("..") {
			if !p.atEOF() {
				st.Rest = p.parseExpr()
			}
			break
		}
		pos := p.peek().Pos
		p.parseOuterAttrs()
		fv := &FieldValue{Span: Span{Position: pos}}
		t := p.next()
		if t.Kind != Ident && !(t.Kind == Literal && t.LitKind == LitInt) {
			p.pos--
			p.errorf("expected field name, found %s", t)
		}
		fv.Name = t.Text
		if p.eatOp(":") {
			fv.Value = p.parseExpr()
		} else {
			fv.Value = &PathExpr{Span: fv.Span, Path: Path{Segments: []PathSegment{{Name: t.Text}}}}
		}
		st.Fields = append(st.Fields, fv)
		if !p.eatOp(",") && !p.atEOF() {
			p.errorf("expected ',' in struct literal, found %s", p.peek())
		}
	}
	return st
}

// tryParseMacroArgs parses macro input as comma-separated expressions, or
// as statements for brace-delimited macros. Inputs that do not parse
// cleanly, such as custom DSLs, yield nil.
func (p *parser) tryParseMacroArgs(g Token) (args []Expr) {
	if len(g.Tokens) == 0 {
		return nil
	}
	var scratch ErrorList
	sp := newParser(p.filename, g.Tokens, g.Pos, &scratch)
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			args = nil
		}
		if len(scratch) > 0 {
			args = nil
		}
	}()
	if g.Delim == Brace {
		for _, s := range sp.parseBlockGroup(g).Stmts {
			if es, ok := s.(*ExprStmt); ok {
				args = append(args, es.X)
			}
		}
		return args
	}
	return sp.parseExprList()
}
