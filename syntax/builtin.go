package syntax

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Builtin parses the TypeScript subset Convex schema and function files are
// written in. Constructs it does not model (functions, classes, types,
// control flow) are consumed and reported as Opaque or OtherStatement.
type Builtin struct{}

// NewBuiltin returns the built-in parser.
func NewBuiltin() *Builtin {
	return &Builtin{}
}

// Parse implements Parser.
func (b *Builtin) Parse(path string, src []byte, kind SourceKind) (*File, error) {
	tokens, errs := Tokenize(src)
	if len(errs) > 0 {
		return nil, errs
	}
	p := &parser{tokens: tokens}
	body, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return &File{Path: path, Kind: kind, Body: body}, nil
}

// statementKeywords start a new statement after a line break.
var statementKeywords = map[string]bool{
	"import": true, "export": true, "const": true, "let": true, "var": true,
	"function": true, "class": true, "interface": true, "type": true,
	"enum": true, "declare": true, "namespace": true, "module": true,
	"abstract": true, "async": true, "if": true, "for": true, "while": true,
	"do": true, "return": true, "throw": true, "try": true, "switch": true,
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "&=": true, "|=": true, "^=": true, "&&=": true, "||=": true,
	"??=": true,
}

const precRelational = 8

var binaryPrec = map[string]int{
	"??": 1,
	"||": 2,
	"&&": 3,
	"|":  4,
	"^":  5,
	"&":  6,
	"==": 7, "!=": 7, "===": 7, "!==": 7,
	"<": precRelational, ">": precRelational, "<=": precRelational, ">=": precRelational,
	"instanceof": precRelational, "in": precRelational,
	"<<": 9,
	"+":  10, "-": 10,
	"*": 11, "/": 11, "%": 11,
	"**": 12,
}

type typeContext int

const (
	// typeAnnotation follows ':' in a declaration or 'as'/'satisfies'.
	typeAnnotation typeContext = iota
	// typeReturn is a function return type and may be followed by a body.
	typeReturn
)

type parser struct {
	tokens []Token
	pos    int
}

func (t Token) is(punct string) bool {
	return t.Kind == TokenPunct && t.Text == punct
}

func (t Token) isKeyword(name string) bool {
	return t.Kind == TokenIdent && t.Text == name
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) peekN(n int) Token {
	if i := p.pos + n; i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) is(punct string) bool {
	return p.peek().is(punct)
}

func (p *parser) accept(punct string) bool {
	if p.is(punct) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(punct string) error {
	if p.accept(punct) {
		return nil
	}
	return p.errorf("expected %q, got %s", punct, describe(p.peek()))
}

func (p *parser) expectKeyword(name string) error {
	if p.peek().isKeyword(name) {
		p.next()
		return nil
	}
	return p.errorf("expected %q, got %s", name, describe(p.peek()))
}

func (p *parser) ident() (string, error) {
	tok := p.peek()
	if tok.Kind != TokenIdent {
		return "", p.errorf("expected identifier, got %s", describe(tok))
	}
	p.next()
	return tok.Text, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return p.errorAt(p.peek().Pos, format, args...)
}

func (p *parser) errorAt(pos Position, format string, args ...any) error {
	return SyntaxErrors{{Pos: pos, Message: fmt.Sprintf(format, args...)}}
}

func describe(tok Token) string {
	switch tok.Kind {
	case TokenEOF:
		return "end of file"
	case TokenPunct:
		return strconv.Quote(tok.Text)
	default:
		return fmt.Sprintf("%s %q", tok.Kind, tok.Text)
	}
}

// list parses comma-separated items up to close, allowing a trailing comma.
// The opening delimiter must already be consumed.
func (p *parser) list(close string, item func() error) error {
	for !p.accept(close) {
		if p.peek().Kind == TokenEOF {
			return p.errorf("expected %q, got end of file", close)
		}
		if err := item(); err != nil {
			return err
		}
		if !p.accept(",") {
			return p.expect(close)
		}
	}
	return nil
}

// Statements

func (p *parser) parseProgram() ([]Node, error) {
	var body []Node
	for p.peek().Kind != TokenEOF {
		if p.accept(";") {
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	return body, nil
}

func (p *parser) parseStatement() (Node, error) {
	tok := p.peek()
	if tok.Kind == TokenIdent {
		switch tok.Text {
		case "import":
			if next := p.peekN(1); !next.is("(") && !next.is(".") {
				return p.parseImport()
			}
		case "export":
			return p.parseExport()
		case "const", "let", "var":
			if p.declarationStarts(1) {
				return p.parseVarDecl(tok.Pos, false)
			}
		}
	}
	if err := p.skipStatement(); err != nil {
		return nil, err
	}
	return &OtherStatement{At: tok.Pos}, nil
}

// declarationStarts reports whether the token n positions ahead begins a
// variable declarator (and not `const enum`).
func (p *parser) declarationStarts(n int) bool {
	tok := p.peekN(n)
	switch {
	case tok.Kind == TokenIdent:
		return tok.Text != "enum"
	case tok.is("{"), tok.is("["):
		return true
	}
	return false
}

// endStatement consumes an optional semicolon, applying automatic semicolon
// insertion at line breaks, closing braces and end of file.
func (p *parser) endStatement() error {
	if p.accept(";") {
		return nil
	}
	tok := p.peek()
	if tok.Kind == TokenEOF || tok.NewlineBefore || tok.is("}") {
		return nil
	}
	return p.errorf("expected \";\", got %s", describe(tok))
}

// skipStatement consumes one statement the parser does not model.
func (p *parser) skipStatement() error {
	depth := 0
	start := p.pos
	for {
		tok := p.peek()
		if tok.Kind == TokenEOF {
			if depth > 0 {
				return p.errorf("unexpected end of file")
			}
			return nil
		}
		if p.pos > start && depth == 0 && tok.NewlineBefore && tok.Kind == TokenIdent && statementKeywords[tok.Text] {
			return nil
		}
		p.next()
		if tok.Kind != TokenPunct {
			continue
		}
		switch tok.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
			if depth < 0 {
				return p.errorAt(tok.Pos, "unexpected %q", tok.Text)
			}
			if depth == 0 && tok.Text == "}" && p.peek().NewlineBefore {
				return nil
			}
		case ";":
			if depth == 0 {
				return nil
			}
		}
	}
}

func (p *parser) parseImport() (Node, error) {
	at := p.next().Pos
	decl := &ImportDecl{At: at}

	if tok := p.peek(); tok.Kind == TokenString {
		p.next()
		decl.Source = tok.Value
		return decl, p.endStatement()
	}

	// import type { A } from "x" binds no values
	if p.peek().isKeyword("type") {
		next := p.peekN(1)
		if next.is("{") || next.is("*") || (next.Kind == TokenIdent && next.Text != "from") {
			if err := p.skipStatement(); err != nil {
				return nil, err
			}
			return &OtherStatement{At: at}, nil
		}
	}

	if tok := p.peek(); tok.Kind == TokenIdent {
		p.next()
		decl.Specifiers = append(decl.Specifiers, ImportSpecifier{Imported: "default", Local: tok.Text})
		if p.accept(",") {
			if err := p.parseImportClause(decl); err != nil {
				return nil, err
			}
		}
	} else if err := p.parseImportClause(decl); err != nil {
		return nil, err
	}

	if err := p.expectKeyword("from"); err != nil {
		return nil, err
	}
	src := p.peek()
	if src.Kind != TokenString {
		return nil, p.errorf("expected module specifier, got %s", describe(src))
	}
	p.next()
	decl.Source = src.Value

	// import attributes: with { type: "json" }
	if tok := p.peek(); (tok.isKeyword("with") || tok.isKeyword("assert")) && !tok.NewlineBefore {
		p.next()
		if !p.is("{") {
			return nil, p.errorf("expected \"{\", got %s", describe(p.peek()))
		}
		if err := p.skipBalanced(); err != nil {
			return nil, err
		}
	}
	return decl, p.endStatement()
}

func (p *parser) parseImportClause(decl *ImportDecl) error {
	switch {
	case p.accept("*"):
		if err := p.expectKeyword("as"); err != nil {
			return err
		}
		local, err := p.ident()
		if err != nil {
			return err
		}
		decl.Specifiers = append(decl.Specifiers, ImportSpecifier{Imported: "*", Local: local})
		return nil
	case p.accept("{"):
		return p.list("}", func() error {
			typeOnly := p.typeOnlySpecifier()
			imported, err := p.moduleExportName()
			if err != nil {
				return err
			}
			local := imported
			if p.peek().isKeyword("as") {
				p.next()
				if local, err = p.ident(); err != nil {
					return err
				}
			}
			if !typeOnly {
				decl.Specifiers = append(decl.Specifiers, ImportSpecifier{Imported: imported, Local: local})
			}
			return nil
		})
	default:
		return p.errorf("expected import clause, got %s", describe(p.peek()))
	}
}

// typeOnlySpecifier consumes a `type` modifier inside an import or export list.
func (p *parser) typeOnlySpecifier() bool {
	if !p.peek().isKeyword("type") {
		return false
	}
	next := p.peekN(1)
	if (next.Kind == TokenIdent && next.Text != "as") || next.Kind == TokenString {
		p.next()
		return true
	}
	return false
}

func (p *parser) moduleExportName() (string, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokenIdent:
		p.next()
		return tok.Text, nil
	case TokenString:
		p.next()
		return tok.Value, nil
	}
	return "", p.errorf("expected name, got %s", describe(tok))
}

func (p *parser) parseExport() (Node, error) {
	at := p.next().Pos
	tok := p.peek()
	switch {
	case tok.isKeyword("default"):
		p.next()
		if p.peek().isKeyword("interface") {
			if err := p.skipStatement(); err != nil {
				return nil, err
			}
			return &ExportDefault{At: at, Expr: &Opaque{At: tok.Pos, What: "interface"}}, nil
		}
		expr, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ExportDefault{At: at, Expr: expr}, p.endStatement()
	case (tok.isKeyword("const") || tok.isKeyword("let") || tok.isKeyword("var")) && p.declarationStarts(1):
		return p.parseVarDecl(at, true)
	case tok.is("{"):
		return p.parseExportNames(at)
	}
	if err := p.skipStatement(); err != nil {
		return nil, err
	}
	return &OtherStatement{At: at}, nil
}

func (p *parser) parseExportNames(at Position) (Node, error) {
	p.next() // {
	decl := &ExportNames{At: at}
	err := p.list("}", func() error {
		typeOnly := p.typeOnlySpecifier()
		local, err := p.moduleExportName()
		if err != nil {
			return err
		}
		exported := local
		if p.peek().isKeyword("as") {
			p.next()
			if exported, err = p.moduleExportName(); err != nil {
				return err
			}
		}
		if !typeOnly {
			decl.Specifiers = append(decl.Specifiers, ExportSpecifier{Local: local, Exported: exported})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if p.peek().isKeyword("from") {
		p.next()
		src := p.peek()
		if src.Kind != TokenString {
			return nil, p.errorf("expected module specifier, got %s", describe(src))
		}
		p.next()
		decl.Source = src.Value
	}
	return decl, p.endStatement()
}

func (p *parser) parseVarDecl(at Position, exported bool) (Node, error) {
	kind := p.next().Text
	decl := &VarDecl{At: at, Kind: kind, Exported: exported}
	for {
		var name string
		switch tok := p.peek(); {
		case tok.Kind == TokenIdent:
			p.next()
			name = tok.Text
		case tok.is("{"), tok.is("["):
			// destructuring patterns bind nothing the generator reads
			if err := p.skipBalanced(); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorf("expected variable name, got %s", describe(tok))
		}
		p.accept("!")
		if p.accept(":") {
			if err := p.skipType(typeAnnotation); err != nil {
				return nil, err
			}
		}
		var init Node
		if p.accept("=") {
			var err error
			if init, err = p.parseAssignment(); err != nil {
				return nil, err
			}
		}
		if name != "" {
			decl.Declarations = append(decl.Declarations, Declarator{Name: name, Init: init})
		}
		if !p.accept(",") {
			break
		}
	}
	return decl, p.endStatement()
}

// Expressions

func (p *parser) parseExpression() (Node, error) {
	expr, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	for p.accept(",") {
		if _, err := p.parseAssignment(); err != nil {
			return nil, err
		}
		expr = &Opaque{At: expr.Pos(), What: "sequence expression"}
	}
	return expr, nil
}

func (p *parser) parseAssignment() (Node, error) {
	at, ok, err := p.tryArrow()
	if err != nil {
		return nil, err
	}
	if ok {
		return &Opaque{At: at, What: "arrow function"}, nil
	}

	expr, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind == TokenPunct && assignOps[tok.Text] {
		p.next()
		if _, err := p.parseAssignment(); err != nil {
			return nil, err
		}
		return &Opaque{At: expr.Pos(), What: "assignment"}, nil
	}
	return expr, nil
}

// tryArrow consumes an arrow function if one starts at the cursor.
// The cursor is left untouched when it does not.
func (p *parser) tryArrow() (Position, bool, error) {
	start := p.pos
	at := p.peek().Pos
	if tok := p.peek(); tok.isKeyword("async") {
		next := p.peekN(1)
		if !next.NewlineBefore && (next.is("(") || next.is("<") || (next.Kind == TokenIdent && p.peekN(2).is("=>"))) {
			p.next()
		}
	}
	if !p.scanArrowHead() {
		p.pos = start
		return at, false, nil
	}
	p.next() // =>
	if p.is("{") {
		return at, true, p.skipBalanced()
	}
	_, err := p.parseAssignment()
	return at, true, err
}

// scanArrowHead reports whether the tokens at the cursor form an arrow
// function head, leaving the cursor on "=>" when they do.
func (p *parser) scanArrowHead() bool {
	if tok := p.peek(); tok.Kind == TokenIdent {
		p.next()
		return p.is("=>") && !p.peek().NewlineBefore
	}
	if p.is("<") && !p.skipTypeArgs() {
		return false
	}
	if !p.is("(") || p.skipBalanced() != nil {
		return false
	}
	if p.is("=>") {
		return true
	}
	if p.accept(":") {
		if p.skipType(typeReturn) != nil {
			return false
		}
		return p.is("=>")
	}
	return false
}

func (p *parser) parseConditional() (Node, error) {
	test, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if !p.accept("?") {
		return test, nil
	}
	if _, err := p.parseAssignment(); err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	if _, err := p.parseAssignment(); err != nil {
		return nil, err
	}
	return &Opaque{At: test.Pos(), What: "conditional expression"}, nil
}

func (p *parser) parseBinary(minPrec int) (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if (tok.isKeyword("as") || tok.isKeyword("satisfies")) && !tok.NewlineBefore && minPrec < precRelational {
			p.next()
			if tok.Text == "as" && p.peek().isKeyword("const") {
				p.next()
				continue
			}
			if err := p.skipType(typeAnnotation); err != nil {
				return nil, err
			}
			continue
		}

		prec, width := p.binaryOp()
		if prec == 0 || prec <= minPrec {
			return left, nil
		}
		p.pos += width
		rightPrec := prec
		if tok.Text == "**" {
			rightPrec--
		}
		if _, err := p.parseBinary(rightPrec); err != nil {
			return nil, err
		}
		left = &Opaque{At: left.Pos(), What: "binary expression"}
	}
}

// binaryOp returns the precedence of the operator at the cursor and the
// number of tokens it spans. Shift operators built from '>' span several
// adjacent tokens.
func (p *parser) binaryOp() (int, int) {
	tok := p.peek()
	switch tok.Kind {
	case TokenIdent:
		if tok.Text == "instanceof" || tok.Text == "in" {
			return precRelational, 1
		}
		return 0, 0
	case TokenPunct:
		if tok.Text == ">" {
			width := 1
			for width < 3 {
				next := p.peekN(width)
				if !next.is(">") || next.Pos.Offset != tok.Pos.Offset+width {
					break
				}
				width++
			}
			if width > 1 {
				return 9, width
			}
		}
		return binaryPrec[tok.Text], 1
	}
	return 0, 0
}

func (p *parser) parseUnary() (Node, error) {
	tok := p.peek()
	switch {
	case tok.is("!"), tok.is("-"), tok.is("+"), tok.is("~"), tok.is("++"), tok.is("--"),
		tok.isKeyword("typeof"), tok.isKeyword("void"), tok.isKeyword("delete"), tok.isKeyword("await"):
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{At: tok.Pos, Op: tok.Text, Operand: operand}, nil
	case tok.is("<"):
		// type assertion: <T>expr
		if !p.skipTypeArgs() {
			return nil, p.errorf("unexpected \"<\"")
		}
		return p.parseUnary()
	case tok.isKeyword("new"):
		return p.parseNew()
	}

	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	expr, err := p.parsePostfix(primary)
	if err != nil {
		return nil, err
	}
	if next := p.peek(); (next.is("++") || next.is("--")) && !next.NewlineBefore {
		p.next()
		return &Opaque{At: expr.Pos(), What: "update expression"}, nil
	}
	return expr, nil
}

func (p *parser) parseNew() (Node, error) {
	at := p.next().Pos
	if p.accept(".") {
		if _, err := p.ident(); err != nil {
			return nil, err
		}
		return p.parsePostfix(&Opaque{At: at, What: "new.target"})
	}
	callee, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept("."):
			name, err := p.ident()
			if err != nil {
				return nil, err
			}
			callee = &Member{At: callee.Pos(), Object: callee, Property: name}
			continue
		case p.is("["):
			if callee, err = p.parseComputed(callee); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if p.is("<") {
		start := p.pos
		if !p.skipTypeArgs() || !p.is("(") {
			p.pos = start
		}
	}
	if p.is("(") {
		if _, err := p.parseArgs(); err != nil {
			return nil, err
		}
	}
	return p.parsePostfix(&Opaque{At: at, What: "new expression"})
}

func (p *parser) parsePostfix(expr Node) (Node, error) {
	for {
		tok := p.peek()
		switch {
		case tok.is("."):
			p.next()
			p.accept("#")
			name, err := p.ident()
			if err != nil {
				return nil, err
			}
			expr = &Member{At: expr.Pos(), Object: expr, Property: name}
		case tok.is("?."):
			p.next()
			var err error
			switch {
			case p.is("("):
				var args []Node
				if args, err = p.parseArgs(); err == nil {
					expr = &Call{At: expr.Pos(), Callee: expr, Args: args}
				}
			case p.is("["):
				expr, err = p.parseComputed(expr)
			default:
				var name string
				if name, err = p.ident(); err == nil {
					expr = &Member{At: expr.Pos(), Object: expr, Property: name}
				}
			}
			if err != nil {
				return nil, err
			}
		case tok.is("("):
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			expr = &Call{At: expr.Pos(), Callee: expr, Args: args}
		case tok.is("["):
			var err error
			if expr, err = p.parseComputed(expr); err != nil {
				return nil, err
			}
		case tok.is("!") && !tok.NewlineBefore:
			// non-null assertion
			p.next()
		case tok.is("<"):
			start := p.pos
			if p.skipTypeArgs() && p.is("(") {
				continue
			}
			p.pos = start
			return expr, nil
		case tok.Kind == TokenTemplate:
			p.next()
			expr = &Opaque{At: expr.Pos(), What: "tagged template"}
		default:
			return expr, nil
		}
	}
}

func (p *parser) parseArgs() ([]Node, error) {
	p.next() // (
	var args []Node
	err := p.list(")", func() error {
		tok := p.peek()
		spread := p.accept("...")
		arg, err := p.parseAssignment()
		if err != nil {
			return err
		}
		if spread {
			arg = &Unary{At: tok.Pos, Op: "...", Operand: arg}
		}
		args = append(args, arg)
		return nil
	})
	return args, err
}

// parseComputed parses obj[key]. String keys become plain member access.
func (p *parser) parseComputed(obj Node) (Node, error) {
	p.next() // [
	key, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect("]"); err != nil {
		return nil, err
	}
	if s, ok := key.(*StringLit); ok {
		return &Member{At: obj.Pos(), Object: obj, Property: s.Value}, nil
	}
	return &Opaque{At: obj.Pos(), What: "computed member"}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokenIdent:
		switch tok.Text {
		case "true", "false":
			p.next()
			return &BooleanLit{At: tok.Pos, Value: tok.Text == "true"}, nil
		case "null":
			p.next()
			return &NullLit{At: tok.Pos}, nil
		case "function":
			return p.skipFunction(tok.Pos)
		case "class":
			return p.skipClass(tok.Pos)
		case "async":
			if next := p.peekN(1); next.isKeyword("function") && !next.NewlineBefore {
				p.next()
				return p.skipFunction(tok.Pos)
			}
		}
		p.next()
		return &Identifier{At: tok.Pos, Name: tok.Text}, nil
	case TokenString:
		p.next()
		return &StringLit{At: tok.Pos, Value: tok.Value}, nil
	case TokenTemplate:
		p.next()
		if tok.Substitutions {
			return &Opaque{At: tok.Pos, What: "template literal"}, nil
		}
		return &StringLit{At: tok.Pos, Value: tok.Value}, nil
	case TokenNumber:
		p.next()
		lit, err := parseNumber(tok)
		if err != nil {
			return nil, err
		}
		return lit, nil
	case TokenRegex:
		p.next()
		return &Opaque{At: tok.Pos, What: "regular expression"}, nil
	case TokenPunct:
		switch tok.Text {
		case "(":
			p.next()
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			return expr, p.expect(")")
		case "{":
			return p.parseObject()
		case "[":
			return p.parseArray()
		}
	}
	return nil, p.errorf("unexpected %s", describe(tok))
}

func parseNumber(tok Token) (*NumberLit, error) {
	lit := &NumberLit{At: tok.Pos, Raw: tok.Text}
	text := strings.ReplaceAll(tok.Text, "_", "")
	if strings.HasSuffix(text, "n") {
		lit.BigInt = true
		text = strings.TrimSuffix(text, "n")
	}
	if len(text) > 1 && text[0] == '0' && strings.ContainsRune("xXoObB", rune(text[1])) {
		n, ok := new(big.Int).SetString(text, 0)
		if !ok {
			return nil, SyntaxErrors{{Pos: tok.Pos, Message: fmt.Sprintf("invalid number %q", tok.Text)}}
		}
		lit.Value, _ = new(big.Float).SetInt(n).Float64()
		return lit, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, SyntaxErrors{{Pos: tok.Pos, Message: fmt.Sprintf("invalid number %q", tok.Text)}}
	}
	lit.Value = v
	return lit, nil
}

func (p *parser) parseObject() (Node, error) {
	obj := &ObjectLit{At: p.next().Pos}
	err := p.list("}", func() error {
		prop, err := p.parseProperty()
		if err != nil {
			return err
		}
		obj.Properties = append(obj.Properties, prop)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (p *parser) parseProperty() (*Property, error) {
	tok := p.peek()
	prop := &Property{At: tok.Pos}

	if p.accept("...") {
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		prop.Spread = true
		prop.Value = value
		return prop, nil
	}

	// get x() {}, set x(v) {}, async x() {}, *gen() {}
	if p.accept("*") {
		if err := p.parsePropertyKey(prop); err != nil {
			return nil, err
		}
		return prop, p.skipMethod(prop)
	}
	if (tok.isKeyword("get") || tok.isKeyword("set") || tok.isKeyword("async")) && p.propertyNameStarts(1) {
		p.next()
		p.accept("*")
		if err := p.parsePropertyKey(prop); err != nil {
			return nil, err
		}
		return prop, p.skipMethod(prop)
	}

	if err := p.parsePropertyKey(prop); err != nil {
		return nil, err
	}
	switch {
	case p.accept(":"):
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		prop.Value = value
	case p.is("("), p.is("<"):
		return prop, p.skipMethod(prop)
	default:
		if prop.Computed || tok.Kind != TokenIdent {
			return nil, p.errorf("expected \":\", got %s", describe(p.peek()))
		}
		prop.Shorthand = true
		prop.Value = &Identifier{At: tok.Pos, Name: prop.Key}
		// shorthand with default, only valid in patterns
		if p.accept("=") {
			if _, err := p.parseAssignment(); err != nil {
				return nil, err
			}
		}
	}
	return prop, nil
}

func (p *parser) propertyNameStarts(n int) bool {
	tok := p.peekN(n)
	switch tok.Kind {
	case TokenIdent, TokenString, TokenNumber:
		return true
	}
	return tok.is("[") || tok.is("*")
}

func (p *parser) parsePropertyKey(prop *Property) error {
	tok := p.next()
	switch tok.Kind {
	case TokenIdent:
		prop.Key = tok.Text
		return nil
	case TokenString:
		prop.Key = tok.Value
		return nil
	case TokenNumber:
		n, err := parseNumber(tok)
		if err != nil {
			return err
		}
		prop.Key = strconv.FormatFloat(n.Value, 'f', -1, 64)
		return nil
	case TokenPunct:
		if tok.Text == "[" {
			key, err := p.parseAssignment()
			if err != nil {
				return err
			}
			if s, ok := key.(*StringLit); ok {
				prop.Key = s.Value
			} else {
				prop.Computed = true
			}
			return p.expect("]")
		}
	}
	return p.errorAt(tok.Pos, "expected property name, got %s", describe(tok))
}

// skipMethod consumes a method's parameters, return type and body.
func (p *parser) skipMethod(prop *Property) error {
	prop.Method = true
	prop.Value = &Opaque{At: prop.At, What: "method"}
	if p.is("<") && !p.skipTypeArgs() {
		return p.errorf("invalid type parameters")
	}
	if !p.is("(") {
		return p.errorf("expected \"(\", got %s", describe(p.peek()))
	}
	if err := p.skipBalanced(); err != nil {
		return err
	}
	if p.accept(":") {
		if err := p.skipType(typeReturn); err != nil {
			return err
		}
	}
	if !p.is("{") {
		return p.errorf("expected \"{\", got %s", describe(p.peek()))
	}
	return p.skipBalanced()
}

func (p *parser) parseArray() (Node, error) {
	arr := &ArrayLit{At: p.next().Pos}
	for !p.accept("]") {
		if p.accept(",") {
			arr.Elements = append(arr.Elements, nil)
			continue
		}
		tok := p.peek()
		spread := p.accept("...")
		el, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if spread {
			el = &Unary{At: tok.Pos, Op: "...", Operand: el}
		}
		arr.Elements = append(arr.Elements, el)
		if !p.accept(",") {
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			break
		}
	}
	return arr, nil
}

func (p *parser) skipFunction(at Position) (Node, error) {
	p.next() // function
	p.accept("*")
	if p.peek().Kind == TokenIdent {
		p.next()
	}
	if p.is("<") && !p.skipTypeArgs() {
		return nil, p.errorf("invalid type parameters")
	}
	if !p.is("(") {
		return nil, p.errorf("expected \"(\", got %s", describe(p.peek()))
	}
	if err := p.skipBalanced(); err != nil {
		return nil, err
	}
	if p.accept(":") {
		if err := p.skipType(typeReturn); err != nil {
			return nil, err
		}
	}
	if !p.is("{") {
		return nil, p.errorf("expected \"{\", got %s", describe(p.peek()))
	}
	if err := p.skipBalanced(); err != nil {
		return nil, err
	}
	return &Opaque{At: at, What: "function"}, nil
}

func (p *parser) skipClass(at Position) (Node, error) {
	p.next() // class
	depth := 0
	for {
		tok := p.peek()
		if tok.Kind == TokenEOF {
			return nil, p.errorf("unexpected end of file")
		}
		if depth == 0 && tok.is("{") {
			break
		}
		p.next()
		switch {
		case tok.is("("), tok.is("["), tok.is("<"):
			depth++
		case tok.is(")"), tok.is("]"), tok.is(">"):
			depth--
		}
	}
	if err := p.skipBalanced(); err != nil {
		return nil, err
	}
	return &Opaque{At: at, What: "class"}, nil
}

var closerOf = map[string]string{"(": ")", "[": "]", "{": "}"}

// skipBalanced consumes a bracketed group starting at the cursor.
func (p *parser) skipBalanced() error {
	var stack []string
	for {
		tok := p.next()
		if tok.Kind == TokenEOF {
			return p.errorAt(tok.Pos, "unexpected end of file")
		}
		if tok.Kind != TokenPunct {
			continue
		}
		switch tok.Text {
		case "(", "[", "{":
			stack = append(stack, closerOf[tok.Text])
		case ")", "]", "}":
			if len(stack) == 0 || stack[len(stack)-1] != tok.Text {
				return p.errorAt(tok.Pos, "unexpected %q", tok.Text)
			}
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			return nil
		}
	}
}

// skipTypeArgs consumes a <...> group. It reports false and leaves the
// cursor untouched when the tokens cannot be type arguments.
func (p *parser) skipTypeArgs() bool {
	if !p.is("<") {
		return false
	}
	start := p.pos
	depth := 0
	for {
		tok := p.next()
		if tok.Kind == TokenEOF {
			p.pos = start
			return false
		}
		if tok.Kind != TokenPunct {
			continue
		}
		switch tok.Text {
		case "<", "(", "[", "{":
			depth++
		case ">", ")", "]", "}":
			depth--
			if depth == 0 {
				if tok.Text == ">" {
					return true
				}
				p.pos = start
				return false
			}
		case ";", "&&", "||", "==", "===", "!=", "!==", "=", ">=", "<=":
			p.pos = start
			return false
		}
	}
}

// endsType reports whether tok can be the last token of a type.
func endsType(tok Token) bool {
	switch tok.Kind {
	case TokenIdent, TokenString, TokenNumber, TokenTemplate:
		return true
	}
	return tok.is(")") || tok.is("]") || tok.is("}") || tok.is(">")
}

// skipType consumes a type expression.
func (p *parser) skipType(ctx typeContext) error {
	depth := 0
	consumed := false
	var prev Token
	for {
		tok := p.peek()
		if tok.Kind == TokenEOF {
			if depth > 0 {
				return p.errorf("unexpected end of file in type")
			}
			return nil
		}
		if depth == 0 && consumed {
			if tok.NewlineBefore && endsType(prev) && !tok.is("|") && !tok.is("&") {
				return nil
			}
			if tok.isKeyword("as") || tok.isKeyword("satisfies") {
				return nil
			}
			if tok.Kind == TokenPunct {
				switch tok.Text {
				case ",", ")", "]", "}", ";", "=", ":", "?", "&&", "||", "??", ">", ">=",
					"==", "===", "!=", "!==", "+", "-", "*", "/", "%":
					return nil
				case "=>":
					if !prev.is(")") {
						return nil
					}
				case "{":
					if ctx == typeReturn && !prev.is("|") && !prev.is("&") && !prev.is("=>") {
						return nil
					}
				}
			}
		}
		if depth == 0 && !consumed && (tok.is(",") || tok.is(")") || tok.is("]") || tok.is("}") || tok.is(";") || tok.is("=")) {
			return p.errorf("expected type, got %s", describe(tok))
		}
		p.next()
		consumed = true
		prev = tok
		if tok.Kind != TokenPunct {
			continue
		}
		switch tok.Text {
		case "(", "[", "{", "<":
			depth++
		case ")", "]", "}", ">":
			depth--
			if depth < 0 {
				return p.errorAt(tok.Pos, "unexpected %q", tok.Text)
			}
		}
	}
}
