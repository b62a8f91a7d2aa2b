package syntax

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const punctChars = "=<>!~+-*/%^&|@.,;:#$?"

func isPunct(r rune) bool {
	return strings.ContainsRune(punctChars, r)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

type lexer struct {
	filename string
	src      []rune
	off      int
	line     int
	col      int
	errs     ErrorList
	out      []Token
}

// Tokenize splits src into token trees. Comments and whitespace are dropped
// and every bracket pair becomes a single Group token.
func Tokenize(filename string, src []byte) ([]Token, error) {
	lx := &lexer{filename: filename, src: []rune(string(src)), line: 1, col: 1}
	lx.skipShebang()
	lx.run()
	if err := lx.errs.Err(); err != nil {
		return nil, err
	}
	return buildTrees(filename, lx.out)
}

func (lx *lexer) peek(n int) rune {
	if lx.off+n < len(lx.src) {
		return lx.src[lx.off+n]
	}
	return 0
}

func (lx *lexer) eof() bool {
	return lx.off >= len(lx.src)
}

func (lx *lexer) advance() rune {
	r := lx.src[lx.off]
	lx.off++
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return r
}

func (lx *lexer) pos() Pos {
	return Pos{Line: lx.line, Col: lx.col}
}

func (lx *lexer) errorf(pos Pos, format string, args ...any) {
	lx.errs.Add(lx.filename, pos, fmt.Sprintf(format, args...))
}

func (lx *lexer) skipShebang() {
	if lx.peek(0) == '#' && lx.peek(1) == '!' && lx.peek(2) != '[' {
		for !lx.eof() && lx.peek(0) != '\n' {
			lx.advance()
		}
	}
}

func (lx *lexer) run() {
	for {
		lx.skipSpaceAndComments()
		if lx.eof() || len(lx.errs) > 0 {
			return
		}
		lx.next()
	}
}

func (lx *lexer) skipSpaceAndComments() {
	for !lx.eof() {
		r := lx.peek(0)
		switch {
		case unicode.IsSpace(r):
			lx.advance()
		case r == '/' && lx.peek(1) == '/':
			for !lx.eof() && lx.peek(0) != '\n' {
				lx.advance()
			}
		case r == '/' && lx.peek(1) == '*':
			lx.skipBlockComment()
		default:
			return
		}
	}
}

func (lx *lexer) skipBlockComment() {
	start := lx.pos()
	lx.advance()
	lx.advance()
	depth := 1
	for depth > 0 {
		if lx.eof() {
			lx.errorf(start, "unterminated block comment")
			return
		}
		switch {
		case lx.peek(0) == '/' && lx.peek(1) == '*':
			lx.advance()
			lx.advance()
			depth++
		case lx.peek(0) == '*' && lx.peek(1) == '/':
			lx.advance()
			lx.advance()
			depth--
		default:
			lx.advance()
		}
	}
}

func (lx *lexer) emit(t Token) {
	lx.out = append(lx.out, t)
}

func (lx *lexer) next() {
	pos := lx.pos()
	r := lx.peek(0)

	switch {
	case r == 'r' && lx.isRawStringStart(1):
		lx.advance()
		lx.lexRawString(pos, LitStr, "r")
	case r == 'b' && lx.peek(1) == 'r' && lx.isRawStringStart(2):
		lx.advance()
		lx.advance()
		lx.lexRawString(pos, LitByteStr, "br")
	case r == 'c' && lx.peek(1) == 'r' && lx.isRawStringStart(2):
		lx.advance()
		lx.advance()
		lx.lexRawString(pos, LitCStr, "cr")
	case r == 'b' && lx.peek(1) == '"':
		lx.advance()
		lx.lexString(pos, LitByteStr, "b")
	case r == 'c' && lx.peek(1) == '"':
		lx.advance()
		lx.lexString(pos, LitCStr, "c")
	case r == 'b' && lx.peek(1) == '\'':
		lx.advance()
		lx.lexChar(pos, LitByte, "b")
	case r == 'r' && lx.peek(1) == '#' && isIdentStart(lx.peek(2)):
		lx.advance()
		lx.advance()
		name := lx.readIdent()
		lx.emit(Token{Kind: Ident, Pos: pos, Text: name, Raw: true})
	case isIdentStart(r):
		lx.emit(Token{Kind: Ident, Pos: pos, Text: lx.readIdent()})
	case unicode.IsDigit(r):
		lx.lexNumber(pos)
	case r == '"':
		lx.lexString(pos, LitStr, "")
	case r == '\'':
		lx.lexQuote(pos)
	case strings.ContainsRune("()[]{}", r):
		lx.advance()
		lx.emit(Token{Kind: Punct, Pos: pos, Text: string(r)})
	case isPunct(r):
		lx.advance()
		lx.emit(Token{Kind: Punct, Pos: pos, Text: string(r), Joint: isPunct(lx.peek(0))})
	default:
		lx.errorf(pos, "unexpected character %q", r)
	}
}

func (lx *lexer) readIdent() string {
	start := lx.off
	for !lx.eof() && isIdentContinue(lx.peek(0)) {
		lx.advance()
	}
	return string(lx.src[start:lx.off])
}

// isRawStringStart reports whether the runes at offset n look like #*".
func (lx *lexer) isRawStringStart(n int) bool {
	for lx.peek(n) == '#' {
		n++
	}
	return lx.peek(n) == '"'
}

func (lx *lexer) lexRawString(pos Pos, kind LitKind, prefix string) {
	hashes := 0
	for lx.peek(0) == '#' {
		lx.advance()
		hashes++
	}
	lx.advance() // opening quote
	closing := "\"" + strings.Repeat("#", hashes)
	var sb strings.Builder
	for {
		if lx.eof() {
			lx.errorf(pos, "unterminated raw string literal")
			return
		}
		if lx.peek(0) == '"' && lx.hasPrefix(closing) {
			for range closing {
				lx.advance()
			}
			break
		}
		sb.WriteRune(lx.advance())
	}
	value := sb.String()
	lx.emit(Token{
		Kind:    Literal,
		Pos:     pos,
		LitKind: kind,
		Text:    prefix + strings.Repeat("#", hashes) + `"` + value + closing,
		Value:   value,
	})
	lx.skipSuffix()
}

func (lx *lexer) hasPrefix(s string) bool {
	i := 0
	for _, r := range s {
		if lx.peek(i) != r {
			return false
		}
		i++
	}
	return true
}

func (lx *lexer) lexString(pos Pos, kind LitKind, prefix string) {
	start := lx.off
	lx.advance() // opening quote
	var sb strings.Builder
	for {
		if lx.eof() {
			lx.errorf(pos, "unterminated string literal")
			return
		}
		r := lx.advance()
		if r == '"' {
			break
		}
		if r == '\\' {
			lx.readEscape(&sb, pos)
			continue
		}
		sb.WriteRune(r)
	}
	lx.emit(Token{
		Kind:    Literal,
		Pos:     pos,
		LitKind: kind,
		Text:    prefix + string(lx.src[start:lx.off]),
		Value:   sb.String(),
	})
	lx.skipSuffix()
}

// readEscape decodes the escape sequence following a backslash.
func (lx *lexer) readEscape(sb *strings.Builder, pos Pos) {
	if lx.eof() {
		lx.errorf(pos, "unterminated escape sequence")
		return
	}
	r := lx.advance()
	switch r {
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case '0':
		sb.WriteByte(0)
	case '\\', '\'', '"':
		sb.WriteRune(r)
	case 'x':
		if lx.off+2 > len(lx.src) {
			lx.errorf(pos, "unterminated hex escape")
			return
		}
		hex := string([]rune{lx.advance(), lx.advance()})
		v, err := strconv.ParseUint(hex, 16, 8)
		if err != nil {
			lx.errorf(pos, "invalid hex escape \\x%s", hex)
			return
		}
		sb.WriteRune(rune(v))
	case 'u':
		if lx.peek(0) != '{' {
			lx.errorf(pos, "invalid unicode escape")
			return
		}
		lx.advance()
		var digits strings.Builder
		for !lx.eof() && lx.peek(0) != '}' {
			if c := lx.advance(); c != '_' {
				digits.WriteRune(c)
			}
		}
		if lx.eof() {
			lx.errorf(pos, "unterminated unicode escape")
			return
		}
		lx.advance()
		v, err := strconv.ParseUint(digits.String(), 16, 32)
		if err != nil {
			lx.errorf(pos, "invalid unicode escape \\u{%s}", digits.String())
			return
		}
		sb.WriteRune(rune(v))
	case '\n':
		for !lx.eof() && unicode.IsSpace(lx.peek(0)) {
			lx.advance()
		}
	case '\r':
		if lx.peek(0) == '\n' {
			lx.advance()
		}
		for !lx.eof() && unicode.IsSpace(lx.peek(0)) {
			lx.advance()
		}
	default:
		lx.errorf(pos, "unknown escape sequence \\%c", r)
	}
}

// lexQuote disambiguates between a char literal and a lifetime or label.
func (lx *lexer) lexQuote(pos Pos) {
	if lx.peek(1) == '\\' || (lx.peek(2) == '\'' && lx.peek(1) != 0) {
		lx.lexChar(pos, LitChar, "")
		return
	}
	if isIdentStart(lx.peek(1)) {
		lx.advance()
		name := lx.readIdent()
		lx.emit(Token{Kind: Lifetime, Pos: pos, Text: "'" + name})
		return
	}
	lx.errorf(pos, "invalid character literal")
	lx.advance()
}

func (lx *lexer) lexChar(pos Pos, kind LitKind, prefix string) {
	start := lx.off
	lx.advance() // opening quote
	var sb strings.Builder
	if lx.eof() {
		lx.errorf(pos, "unterminated character literal")
		return
	}
	r := lx.advance()
	if r == '\\' {
		lx.readEscape(&sb, pos)
	} else {
		sb.WriteRune(r)
	}
	if lx.eof() || lx.peek(0) != '\'' {
		lx.errorf(pos, "unterminated character literal")
		return
	}
	lx.advance()
	lx.emit(Token{
		Kind:    Literal,
		Pos:     pos,
		LitKind: kind,
		Text:    prefix + string(lx.src[start:lx.off]),
		Value:   sb.String(),
	})
	lx.skipSuffix()
}

// skipSuffix consumes a literal suffix such as the u8 in b'a'u8. Suffixes
// are rare outside numbers and carry no meaning for the analysis.
func (lx *lexer) skipSuffix() {
	if isIdentStart(lx.peek(0)) {
		lx.readIdent()
	}
}

func (lx *lexer) lexNumber(pos Pos) {
	start := lx.off
	kind := LitInt

	if lx.peek(0) == '0' && strings.ContainsRune("xob", lx.peek(1)) {
		lx.advance()
		lx.advance()
		for !lx.eof() && (isIdentContinue(lx.peek(0))) {
			lx.advance()
		}
		lx.emit(Token{Kind: Literal, Pos: pos, LitKind: LitInt, Text: string(lx.src[start:lx.off])})
		return
	}

	lx.readDigits()
	if lx.peek(0) == '.' && lx.peek(1) != '.' && !isIdentStart(lx.peek(1)) {
		kind = LitFloat
		lx.advance()
		lx.readDigits()
	}
	if (lx.peek(0) == 'e' || lx.peek(0) == 'E') &&
		(unicode.IsDigit(lx.peek(1)) || ((lx.peek(1) == '+' || lx.peek(1) == '-') && unicode.IsDigit(lx.peek(2)))) {
		kind = LitFloat
		lx.advance()
		if lx.peek(0) == '+' || lx.peek(0) == '-' {
			lx.advance()
		}
		lx.readDigits()
	}
	if isIdentStart(lx.peek(0)) {
		suffix := lx.readIdent()
		if strings.HasPrefix(suffix, "f") {
			kind = LitFloat
		}
	}
	lx.emit(Token{Kind: Literal, Pos: pos, LitKind: kind, Text: string(lx.src[start:lx.off])})
}

func (lx *lexer) readDigits() {
	for !lx.eof() && (unicode.IsDigit(lx.peek(0)) || lx.peek(0) == '_') {
		lx.advance()
	}
}

// buildTrees folds the flat token stream into delimited groups.
func buildTrees(filename string, flat []Token) ([]Token, error) {
	type frame struct {
		open   Token
		delim  Delim
		tokens []Token
	}
	stack := []*frame{{}}
	var errs ErrorList

	for _, t := range flat {
		if t.Kind == Punct {
			switch t.Text {
			case "(", "[", "{":
				d := Paren
				if t.Text == "[" {
					d = Bracket
				} else if t.Text == "{" {
					d = Brace
				}
				stack = append(stack, &frame{open: t, delim: d})
				continue
			case ")", "]", "}":
				top := stack[len(stack)-1]
				if len(stack) == 1 || top.delim.close() != t.Text {
					errs.Add(filename, t.Pos, fmt.Sprintf("unexpected closing delimiter %q", t.Text))
					return nil, errs
				}
				stack = stack[:len(stack)-1]
				parent := stack[len(stack)-1]
				parent.tokens = append(parent.tokens, Token{
					Kind:   Group,
					Pos:    top.open.Pos,
					Delim:  top.delim,
					Tokens: top.tokens,
				})
				continue
			}
		}
		top := stack[len(stack)-1]
		top.tokens = append(top.tokens, t)
	}

	if len(stack) > 1 {
		open := stack[len(stack)-1].open
		errs.Add(filename, open.Pos, fmt.Sprintf("unclosed delimiter %q", open.Text))
		return nil, errs
	}
	return stack[0].tokens, nil
}
