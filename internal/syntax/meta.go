package syntax

// Meta is one comma-separated element of an attribute argument list: a
// bare path such as `flatten`, a name-value pair such as
// `rename = "id"`, a nested list such as `serde(default)`, or a lone
// literal such as the "/users" in #[get("/users")].
type Meta struct {
	Path Path
	// Lit is set when the element is a literal or a name-value pair whose
	// value is a single literal.
	Lit *Token
	// List is set for nested lists; IsList distinguishes an empty list.
	List   []Meta
	IsList bool
	// Value holds the raw tokens after '=' for name-value pairs.
	Value []Token
}

// Name returns the last segment of the meta's path.
func (m Meta) Name() string {
	return m.Path.LastName()
}

// StringValue returns the decoded string literal of a name-value pair or a
// lone string literal.
func (m Meta) StringValue() (string, bool) {
	if m.Lit != nil && m.Lit.Kind == Literal && m.Lit.LitKind == LitStr {
		return m.Lit.Value, true
	}
	return "", false
}

// Metas parses the attribute's arguments as a meta list.
func (a *Attribute) Metas() []Meta {
	return ParseMetaList(a.Args)
}

// ParseMetaList splits toks at top-level commas and parses each element.
// Elements that are not meta-shaped are skipped.
func ParseMetaList(toks []Token) []Meta {
	var metas []Meta
	start := 0
	for i := 0; i <= len(toks); i++ {
		if i < len(toks) && !toks[i].Is(",") {
			continue
		}
		if m, ok := parseMeta(toks[start:i]); ok {
			metas = append(metas, m)
		}
		start = i + 1
	}
	return metas
}

func parseMeta(toks []Token) (Meta, bool) {
	if len(toks) == 0 {
		return Meta{}, false
	}
	if toks[0].Kind == Literal {
		lit := toks[0]
		return Meta{Lit: &lit}, true
	}

	var m Meta
	i := 0
	if isPathSep(toks, i) {
		m.Path.Global = true
		i += 2
	}
	for i < len(toks) && toks[i].Kind == Ident {
		m.Path.Segments = append(m.Path.Segments, PathSegment{Name: toks[i].Text})
		i++
		if !isPathSep(toks, i) {
			break
		}
		i += 2
	}
	if len(m.Path.Segments) == 0 {
		return Meta{}, false
	}

	switch {
	case i == len(toks):
	case toks[i].IsGroup(Paren):
		m.IsList = true
		m.List = ParseMetaList(toks[i].Tokens)
	case toks[i].Is("="):
		m.Value = toks[i+1:]
		if len(m.Value) == 1 && m.Value[0].Kind == Literal {
			lit := m.Value[0]
			m.Lit = &lit
		}
	}
	return m, true
}

func isPathSep(toks []Token, i int) bool {
	return i+1 < len(toks) && toks[i].Is(":") && toks[i].Joint && toks[i+1].Is(":")
}
