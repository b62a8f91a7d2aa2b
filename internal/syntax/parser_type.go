package syntax

// parseType parses a type, allowing `A + B` trait object sums.
func (p *parser) parseType() Type {
	return p.parseTypeCtx(true)
}

// parseTypeNoBounds parses a type where a following '+' belongs to the
// enclosing construct, as after `&` or `as`.
func (p *parser) parseTypeNoBounds() Type {
	return p.parseTypeCtx(false)
}

func (p *parser) parseTypeCtx(allowPlus bool) Type {
	t := p.peek()
	span := Span{Position: t.Pos}

	switch {
	case p.isOp("&&"):
		p.pos += 2
		return &RefType{Span: span, Elem: p.parseRefType(span)}
	case t.Is("&"):
		p.next()
		return p.parseRefType(span)
	case t.Is("*"):
		p.next()
		ptr := &PtrType{Span: span}
		if p.eatKeyword("mut") {
			ptr.Mut = true
		} else {
			p.expectKeyword("const")
		}
		ptr.Elem = p.parseTypeNoBounds()
		return ptr
	case t.IsGroup(Paren):
		p.next()
		return p.sub(t).parseTupleType(span)
	case t.IsGroup(Bracket):
		p.next()
		sp := p.sub(t)
		elem := sp.parseType()
		if sp.eatOp(";") {
			return &ArrayType{Span: span, Elem: elem, Len: sp.parseExpr()}
		}
		return &SliceType{Span: span, Elem: elem}
	case t.Is("!"):
		p.next()
		return &NeverType{Span: span}
	case t.Is("_"):
		p.next()
		return &InferType{Span: span}
	case t.Is("impl"):
		p.next()
		return &ImplTraitType{Span: span, Bounds: p.parseBounds()}
	case t.Is("dyn"):
		p.next()
		return &DynTraitType{Span: span, Bounds: p.parseBounds()}
	case t.Is("for") && p.peekN(1).Is("<"):
		p.next()
		p.skipGenerics()
		return p.parseTypeCtx(allowPlus)
	case p.isFnPtrStart():
		return p.parseFnPtrType(span)
	case t.Is("?"):
		// ?Sized as a bare bound inside generic argument positions.
		return &DynTraitType{Span: span, Bounds: p.parseBounds()}
	case t.Is("<"):
		return p.parsePathTypeRest(span, allowPlus, p.parseQSelf())
	case t.Kind == Ident || p.isOp("::"):
		return p.parsePathTypeRest(span, allowPlus, nil)
	}
	p.errorf("expected type, found %s", t)
	return nil
}

func (p *parser) parseRefType(span Span) Type {
	ref := &RefType{Span: span}
	if lt := p.peek(); lt.Kind == Lifetime {
		p.next()
		ref.Lifetime = lt.Text
	}
	ref.Mut = p.eatKeyword("mut")
	ref.Elem = p.parseTypeNoBounds()
	return ref
}

func (p *parser) parseTupleType(span Span) Type {
	tup := &TupleType{Span: span}
	trailingComma := false
	for !p.atEOF() {
		tup.Elems = append(tup.Elems, p.parseType())
		trailingComma = p.eatOp(",")
		if !trailingComma && !p.atEOF() {
			p.errorf("expected ',' in tuple type, found %s", p.peek())
		}
	}
	if len(tup.Elems) == 1 && !trailingComma {
		return tup.Elems[0]
	}
	return tup
}

func (p *parser) isFnPtrStart() bool {
	n := 0
	if p.isKeywordAt(n, "unsafe") {
		n++
	}
	if p.isKeywordAt(n, "extern") {
		n++
		if p.peekN(n).Kind == Literal {
			n++
		}
	}
	return p.isKeywordAt(n, "fn")
}

func (p *parser) parseFnPtrType(span Span) Type {
	for !p.eatKeyword("fn") {
		p.next()
	}
	fp := &FnPtrType{Span: span}
	params := p.expectGroup(Paren)
	sp := p.sub(params)
	for !sp.atEOF() {
		sp.parseOuterAttrs()
		// Named parameters: fn(name: T).
		if sp.peek().Kind == Ident && sp.matchOp(1, ":") && !sp.matchOp(1, "::") {
			sp.pos += 2
		}
		if sp.eatOp("...") {
			continue
		}
		fp.Inputs = append(fp.Inputs, sp.parseType())
		if !sp.eatOp(",") && !sp.atEOF() {
			sp.errorf("expected ',' in fn pointer type, found %s", sp.peek())
		}
	}
	if p.eatOp("->") {
		fp.Output = p.parseTypeNoBounds()
	}
	return fp
}

// parseQSelf parses the `<T as Trait>` prefix of a qualified path and
// returns T. A trailing `::` is left for the path parser.
func (p *parser) parseQSelf() Type {
	p.expectTok("<")
	self := p.parseType()
	if p.eatKeyword("as") {
		p.parseTypePath()
	}
	p.expectTok(">")
	return self
}

func (p *parser) parsePathTypeRest(span Span, allowPlus bool, qself Type) Type {
	var path Path
	if qself != nil {
		p.expectOp("::")
		path = p.parseTypePathSegments()
	} else {
		path = p.parseTypePath()
	}

	if qself == nil && p.isTok("!") && p.peekN(1).Kind == Group {
		p.next()
		return &MacroType{Span: span, Path: path, Tokens: p.next().Tokens}
	}

	pt := &PathType{Span: span, QSelf: qself, Path: path}
	if allowPlus && p.isOp("+") {
		bounds := []Path{path}
		for p.eatOp("+") {
			bounds = append(bounds, p.parseBound()...)
		}
		return &DynTraitType{Span: span, Bounds: bounds}
	}
	return pt
}

// parseTypePath parses a path in type position, where generic arguments
// follow a segment directly.
func (p *parser) parseTypePath() Path {
	global := p.eatOp("::")
	path := p.parseTypePathSegments()
	path.Global = global
	return path
}

func (p *parser) parseTypePathSegments() Path {
	var path Path
	for {
		seg := PathSegment{Name: p.expectIdent()}
		switch {
		case p.isOp("::") && p.peekN(2).Is("<"):
			p.nextOp()
			seg.Args = p.parseGenericArgs()
		case p.isTok("<") && !p.isOp("<=") && !p.isOp("<<="):
			seg.Args = p.parseGenericArgs()
		case p.peek().IsGroup(Paren):
			// Fn(A, B) -> C sugar.
			seg.Args = p.sub(p.next()).parseTypeList()
			if p.eatOp("->") {
				seg.Args = append(seg.Args, p.parseTypeNoBounds())
			}
		}
		path.Segments = append(path.Segments, seg)
		if p.isOp("::") && p.peekN(2).Kind == Ident {
			p.nextOp()
			continue
		}
		return path
	}
}

func (p *parser) parseTypeList() []Type {
	var types []Type
	for !p.atEOF() {
		types = append(types, p.parseType())
		if !p.eatOp(",") && !p.atEOF() {
			p.errorf("expected ',' in type list, found %s", p.peek())
		}
	}
	return types
}

// parseGenericArgs parses <...>, keeping only type arguments. Lifetimes,
// const arguments, associated type bindings and constraints are skipped.
func (p *parser) parseGenericArgs() []Type {
	p.expectTok("<")
	var args []Type
	for !p.isTok(">") {
		if p.atEOF() {
			p.errorf("unterminated generic argument list")
		}
		t := p.peek()
		switch {
		case t.Kind == Lifetime:
			p.next()
		case t.Kind == Literal, t.IsGroup(Brace):
			p.next()
		case t.Is("-") && p.peekN(1).Kind == Literal:
			p.pos += 2
		case t.Kind == Ident && p.matchOp(1, "=") && !p.matchOp(1, "==") && !p.matchOp(1, "=>"):
			// Item = Type binding.
			p.pos += 2
			p.parseType()
		case t.Kind == Ident && p.matchOp(1, ":") && !p.matchOp(1, "::"):
			// Item: Bound constraint.
			p.pos += 2
			p.parseBounds()
		default:
			args = append(args, p.parseType())
		}
		if !p.eatOp(",") && !p.isTok(">") {
			p.errorf("expected ',' or '>' in generic arguments, found %s", p.peek())
		}
	}
	p.next()
	return args
}

// parseBounds parses `Bound + Bound + 'a`, returning the trait paths.
func (p *parser) parseBounds() []Path {
	bounds := p.parseBound()
	for p.eatOp("+") {
		if !p.canStartBound() {
			break
		}
		bounds = append(bounds, p.parseBound()...)
	}
	return bounds
}

func (p *parser) canStartBound() bool {
	t := p.peek()
	return t.Kind == Ident || t.Kind == Lifetime || t.Is("?") || t.Is("~") || t.IsGroup(Paren) || p.isOp("::") || t.Is("<")
}

func (p *parser) parseBound() []Path {
	t := p.peek()
	switch {
	case t.Kind == Lifetime:
		p.next()
		return nil
	case t.IsGroup(Paren):
		p.next()
		return p.sub(t).parseBounds()
	case t.Is("?"), t.Is("~"):
		p.next()
		p.eatKeyword("const")
		return p.parseBound()
	case t.Is("for") && p.peekN(1).Is("<"):
		p.next()
		p.skipGenerics()
		return p.parseBound()
	case t.Is("use") && p.peekN(1).Is("<"):
		// Precise capturing: use<'a, T>.
		p.next()
		p.skipGenerics()
		return nil
	}
	return []Path{p.parseTypePath()}
}
