package syntax

import "fmt"

// Pos is a 1-based line/column position inside a source file.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// IsValid reports whether the position was set by the lexer.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	Ident
	Lifetime
	Literal
	Punct
	Group
)

var kindNames = [...]string{
	EOF:      "EOF",
	Ident:    "identifier",
	Lifetime: "lifetime",
	Literal:  "literal",
	Punct:    "punctuation",
	Group:    "group",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// LitKind classifies literal tokens.
type LitKind int

const (
	LitStr LitKind = iota
	LitByteStr
	LitCStr
	LitChar
	LitByte
	LitInt
	LitFloat
)

// Delim is the delimiter of a Group token.
type Delim int

const (
	Paren Delim = iota
	Bracket
	Brace
)

func (d Delim) open() string {
	switch d {
	case Paren:
		return "("
	case Bracket:
		return "["
	default:
		return "{"
	}
}

func (d Delim) close() string {
	switch d {
	case Paren:
		return ")"
	case Bracket:
		return "]"
	default:
		return "}"
	}
}

// Token is a single lexical token or, when Kind is Group, a delimited
// token tree. Punctuation is always one character wide; Joint records
// whether the next character is also punctuation so that multi-character
// operators can be reassembled by the parser.
type Token struct {
	Kind Kind
	Pos  Pos

	// Text is the identifier name, the punctuation character, the lifetime
	// name including the leading quote, or the literal exactly as written.
	Text string

	// Value is the decoded contents of string, byte-string and char literals.
	Value   string
	LitKind LitKind

	Joint bool
	// Raw marks identifiers written as r#name; they never act as keywords.
	Raw bool

	Delim  Delim
	Tokens []Token
}

// Is reports whether t is the punctuation character or non-raw identifier s.
func (t Token) Is(s string) bool {
	return (t.Kind == Punct || (t.Kind == Ident && !t.Raw)) && t.Text == s
}

// IsGroup reports whether t is a group with delimiter d.
func (t Token) IsGroup(d Delim) bool {
	return t.Kind == Group && t.Delim == d
}

// String renders the token roughly as it appeared in the source.
func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case Group:
		return t.Delim.open() + "…" + t.Delim.close()
	default:
		return t.Text
	}
}

var keywords = map[string]bool{
	"as": true, "async": true, "await": true, "break": true, "const": true,
	"continue": true, "crate": true, "dyn": true, "else": true, "enum": true,
	"extern": true, "false": true, "fn": true, "for": true, "if": true,
	"impl": true, "in": true, "let": true, "loop": true, "match": true,
	"mod": true, "move": true, "mut": true, "pub": true, "ref": true,
	"return": true, "self": true, "Self": true, "static": true, "struct": true,
	"super": true, "trait": true, "true": true, "type": true, "unsafe": true,
	"use": true, "where": true, "while": true,
}

// IsKeyword reports whether name is a strict Rust keyword.
func IsKeyword(name string) bool {
	return keywords[name]
}
