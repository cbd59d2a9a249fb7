package syntax

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind identifies the type of a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenString
	TokenTemplate
	TokenNumber
	TokenRegex
	TokenPunct
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenIdent:
		return "identifier"
	case TokenString:
		return "string"
	case TokenTemplate:
		return "template"
	case TokenNumber:
		return "number"
	case TokenRegex:
		return "regex"
	case TokenPunct:
		return "punctuator"
	default:
		return "unknown"
	}
}

// Token is a lexical token.
type Token struct {
	Kind TokenKind
	Text string // raw text
	// Value is the decoded string for strings and substitution-free templates,
	// the identifier name for identifiers.
	Value string
	// Substitutions is set for templates containing ${...}.
	Substitutions bool
	Pos           Position
	// NewlineBefore reports a line break between this token and the previous one.
	NewlineBefore bool
}

// punctuators ordered longest first so the scanner can take the first match.
// '>' is never combined (except '>=' and '=>') so closing generic brackets
// always come out one at a time.
var punctuators = []string{
	"...", "===", "!==", "**=", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "**", "<<",
	"{", "}", "(", ")", "[", "]", ";", ",", ".", "<", ">", "+", "-",
	"*", "/", "%", "&", "|", "^", "!", "~", "?", ":", "=", "@", "#",
}

// keywords after which a '/' starts a regular expression rather than a division
var regexAfterKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "else": true,
	"do": true, "await": true, "yield": true, "instanceof": true,
}

// Scanner tokenizes TypeScript source text.
type Scanner struct {
	src     []byte
	offset  int
	line    int
	col     int
	newline bool
	prev    *Token
	errs    SyntaxErrors
}

// NewScanner creates a scanner for the given source bytes.
func NewScanner(src []byte) *Scanner {
	s := &Scanner{src: src, line: 1, col: 1}
	// Shebang line
	if len(src) > 1 && src[0] == '#' && src[1] == '!' {
		s.skipLineComment()
	}
	return s
}

// Tokenize scans the whole input. The returned slice always ends with an EOF token.
func Tokenize(src []byte) ([]Token, SyntaxErrors) {
	s := NewScanner(src)
	var tokens []Token
	for {
		tok := s.Next()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			break
		}
	}
	return tokens, s.errs
}

// Next returns the next token. Errors are collected and scanning continues.
func (s *Scanner) Next() Token {
	s.newline = false
	s.skipWhitespaceAndComments()

	pos := s.pos()
	if s.offset >= len(s.src) {
		return s.emit(Token{Kind: TokenEOF, Pos: pos})
	}

	ch := s.peek()
	switch {
	case ch == '"' || ch == '\'':
		return s.emit(s.scanString(pos, ch))
	case ch == '`':
		return s.emit(s.scanTemplate(pos))
	case isDigit(ch) || (ch == '.' && isDigit(s.peekAt(1))):
		return s.emit(s.scanNumber(pos))
	case isIdentStart(ch):
		return s.emit(s.scanIdent(pos))
	case ch == '/' && s.regexAllowed():
		return s.emit(s.scanRegex(pos))
	}

	rest := s.src[s.offset:]
	for _, p := range punctuators {
		if !hasPrefix(rest, p) {
			continue
		}
		// "?." followed by a digit is a conditional, not optional chaining
		if p == "?." && isDigit(s.peekAt(2)) {
			continue
		}
		for range p {
			s.advance()
		}
		return s.emit(Token{Kind: TokenPunct, Text: p, Value: p, Pos: pos})
	}

	s.advance()
	s.errorf(pos, "unexpected character %q", ch)
	return s.Next()
}

func (s *Scanner) emit(tok Token) Token {
	tok.NewlineBefore = s.newline
	t := tok
	s.prev = &t
	return tok
}

func (s *Scanner) errorf(pos Position, format string, args ...any) {
	s.errs = append(s.errs, Diagnostic{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// regexAllowed applies the usual heuristic: a slash begins a regular
// expression unless the previous token can end an expression.
func (s *Scanner) regexAllowed() bool {
	if s.prev == nil {
		return true
	}
	switch s.prev.Kind {
	case TokenNumber, TokenString, TokenTemplate, TokenRegex:
		return false
	case TokenIdent:
		return regexAfterKeywords[s.prev.Text]
	case TokenPunct:
		switch s.prev.Text {
		case ")", "]", "}", "++", "--":
			return false
		}
		return true
	}
	return true
}

func (s *Scanner) scanIdent(pos Position) Token {
	start := s.offset
	for s.offset < len(s.src) && isIdentContinue(s.peek()) {
		s.advance()
	}
	text := string(s.src[start:s.offset])
	return Token{Kind: TokenIdent, Text: text, Value: text, Pos: pos}
}

func (s *Scanner) scanNumber(pos Position) Token {
	start := s.offset
	if s.peek() == '0' && strings.ContainsRune("xXoObB", s.peekAt(1)) {
		s.advance()
		s.advance()
		for s.offset < len(s.src) && (isHexDigit(s.peek()) || s.peek() == '_') {
			s.advance()
		}
	} else {
		for s.offset < len(s.src) && (isDigit(s.peek()) || s.peek() == '_') {
			s.advance()
		}
		if s.peek() == '.' {
			s.advance()
			for s.offset < len(s.src) && (isDigit(s.peek()) || s.peek() == '_') {
				s.advance()
			}
		}
		if s.peek() == 'e' || s.peek() == 'E' {
			s.advance()
			if s.peek() == '+' || s.peek() == '-' {
				s.advance()
			}
			for s.offset < len(s.src) && isDigit(s.peek()) {
				s.advance()
			}
		}
	}
	if s.peek() == 'n' {
		s.advance()
	}
	text := string(s.src[start:s.offset])
	return Token{Kind: TokenNumber, Text: text, Value: text, Pos: pos}
}

func (s *Scanner) scanString(pos Position, quote rune) Token {
	start := s.offset
	s.advance() // opening quote
	var b strings.Builder
	for s.offset < len(s.src) {
		ch := s.peek()
		switch {
		case ch == quote:
			s.advance()
			return Token{Kind: TokenString, Text: string(s.src[start:s.offset]), Value: b.String(), Pos: pos}
		case ch == '\n':
			s.errorf(pos, "unterminated string literal")
			return Token{Kind: TokenString, Text: string(s.src[start:s.offset]), Value: b.String(), Pos: pos}
		case ch == '\\':
			s.advance()
			s.scanEscape(&b)
		default:
			b.WriteRune(ch)
			s.advance()
		}
	}
	s.errorf(pos, "unterminated string literal")
	return Token{Kind: TokenString, Text: string(s.src[start:s.offset]), Value: b.String(), Pos: pos}
}

// scanEscape decodes the escape sequence following a backslash.
func (s *Scanner) scanEscape(b *strings.Builder) {
	if s.offset >= len(s.src) {
		return
	}
	ch := s.peek()
	s.advance()
	switch ch {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		b.WriteByte(0)
	case '\r':
		// line continuation, optionally \r\n
		if s.peek() == '\n' {
			s.advance()
		}
	case '\n', 0x2028, 0x2029:
		// line continuation
	case 'x':
		s.writeCodePoint(b, s.takeHex(2))
	case 'u':
		if s.peek() == '{' {
			s.advance()
			start := s.offset
			for s.offset < len(s.src) && s.peek() != '}' {
				s.advance()
			}
			hex := string(s.src[start:s.offset])
			if s.offset < len(s.src) {
				s.advance()
			}
			s.writeCodePoint(b, hex)
		} else {
			s.writeCodePoint(b, s.takeHex(4))
		}
	default:
		b.WriteRune(ch)
	}
}

func (s *Scanner) takeHex(n int) string {
	start := s.offset
	for i := 0; i < n && s.offset < len(s.src) && isHexDigit(s.peek()); i++ {
		s.advance()
	}
	return string(s.src[start:s.offset])
}

func (s *Scanner) writeCodePoint(b *strings.Builder, hex string) {
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		s.errorf(s.pos(), "invalid escape sequence")
		return
	}
	b.WriteRune(rune(v))
}

// scanTemplate scans a template literal including nested substitutions.
func (s *Scanner) scanTemplate(pos Position) Token {
	start := s.offset
	s.advance() // opening backtick
	var b strings.Builder
	subs := false
	for s.offset < len(s.src) {
		ch := s.peek()
		switch {
		case ch == '`':
			s.advance()
			return Token{Kind: TokenTemplate, Text: string(s.src[start:s.offset]), Value: b.String(), Substitutions: subs, Pos: pos}
		case ch == '\\':
			s.advance()
			s.scanEscape(&b)
		case ch == '$' && s.peekAt(1) == '{':
			subs = true
			s.advance()
			s.advance()
			s.skipSubstitution()
		default:
			b.WriteRune(ch)
			s.advance()
		}
	}
	s.errorf(pos, "unterminated template literal")
	return Token{Kind: TokenTemplate, Text: string(s.src[start:s.offset]), Value: b.String(), Substitutions: subs, Pos: pos}
}

// skipSubstitution consumes a ${...} body up to and including its closing brace.
func (s *Scanner) skipSubstitution() {
	depth := 1
	for s.offset < len(s.src) {
		ch := s.peek()
		switch ch {
		case '{':
			depth++
			s.advance()
		case '}':
			depth--
			s.advance()
			if depth == 0 {
				return
			}
		case '"', '\'':
			s.scanString(s.pos(), ch)
		case '`':
			s.scanTemplate(s.pos())
		default:
			s.advance()
		}
	}
}

func (s *Scanner) scanRegex(pos Position) Token {
	start := s.offset
	s.advance() // opening slash
	inClass := false
	for s.offset < len(s.src) {
		ch := s.peek()
		switch {
		case ch == '\n':
			s.errorf(pos, "unterminated regular expression")
			return Token{Kind: TokenRegex, Text: string(s.src[start:s.offset]), Pos: pos}
		case ch == '\\':
			s.advance()
			if s.offset < len(s.src) {
				s.advance()
			}
			continue
		case ch == '[':
			inClass = true
		case ch == ']':
			inClass = false
		case ch == '/' && !inClass:
			s.advance()
			for s.offset < len(s.src) && isIdentContinue(s.peek()) {
				s.advance()
			}
			return Token{Kind: TokenRegex, Text: string(s.src[start:s.offset]), Pos: pos}
		}
		s.advance()
	}
	s.errorf(pos, "unterminated regular expression")
	return Token{Kind: TokenRegex, Text: string(s.src[start:s.offset]), Pos: pos}
}

func (s *Scanner) skipWhitespaceAndComments() {
	for s.offset < len(s.src) {
		ch := s.peek()
		if ch == '\n' || ch == 0x2028 || ch == 0x2029 {
			s.newline = true
			s.advance()
			continue
		}
		if unicode.IsSpace(ch) || ch == '\uFEFF' {
			s.advance()
			continue
		}
		if ch == '/' && s.peekAt(1) == '/' {
			s.skipLineComment()
			continue
		}
		if ch == '/' && s.peekAt(1) == '*' {
			s.skipBlockComment()
			continue
		}
		break
	}
}

func (s *Scanner) skipLineComment() {
	for s.offset < len(s.src) && s.peek() != '\n' {
		s.advance()
	}
}

func (s *Scanner) skipBlockComment() {
	pos := s.pos()
	s.advance() // /
	s.advance() // *
	for s.offset < len(s.src) {
		ch := s.peek()
		if ch == '*' && s.peekAt(1) == '/' {
			s.advance()
			s.advance()
			return
		}
		if ch == '\n' {
			s.newline = true
		}
		s.advance()
	}
	s.errorf(pos, "unterminated comment")
}

func (s *Scanner) peek() rune {
	if s.offset >= len(s.src) {
		return 0
	}
	ch, _ := utf8.DecodeRune(s.src[s.offset:])
	return ch
}

// peekAt returns the rune n positions ahead (ASCII lookahead only).
func (s *Scanner) peekAt(n int) rune {
	if s.offset+n >= len(s.src) {
		return 0
	}
	return rune(s.src[s.offset+n])
}

func (s *Scanner) advance() {
	ch, size := utf8.DecodeRune(s.src[s.offset:])
	s.offset += size
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

func (s *Scanner) pos() Position {
	return Position{Line: s.line, Column: s.col, Offset: s.offset}
}

func hasPrefix(b []byte, p string) bool {
	return len(b) >= len(p) && string(b[:len(p)]) == p
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch)
}

func isIdentContinue(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == 0x200c || ch == 0x200d
}
