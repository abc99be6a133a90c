package parser

import (
	"strconv"

	"github.com/minqlang/minq/pkg/minq/ast"
	merrors "github.com/minqlang/minq/pkg/minq/errors"
	"github.com/minqlang/minq/pkg/minq/lexer"
)

// Parser builds an AST from a token slice using one token of lookahead.
// Only the first error is kept; once it is set every parse function unwinds.
type Parser struct {
	tokens []lexer.Token
	pos    int

	structuredErrors []*merrors.MinqError
}

// New creates a parser over an already tokenized input. The slice must end
// with an EOF token, which lexer.Tokenize guarantees.
func New(tokens []lexer.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.EOF {
		tokens = append(tokens, lexer.Token{Type: lexer.EOF, Literal: lexer.EOFLiteral})
	}
	return &Parser{tokens: tokens}
}

// Parse tokenizes and parses source in one step.
func Parse(source string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	p := New(tokens)
	program := p.ParseProgram()
	if len(p.structuredErrors) > 0 {
		return nil, p.structuredErrors[0]
	}
	return program, nil
}

// Errors returns parser errors as strings (convenience method for tests).
func (p *Parser) Errors() []string {
	result := make([]string, len(p.structuredErrors))
	for i, err := range p.structuredErrors {
		result[i] = err.String()
	}
	return result
}

// StructuredErrors returns parser errors as structured MinqError objects.
func (p *Parser) StructuredErrors() []*merrors.MinqError {
	return p.structuredErrors
}

func (p *Parser) failed() bool {
	return len(p.structuredErrors) > 0
}

func (p *Parser) addError(code string, tok lexer.Token, data map[string]any) {
	if p.failed() {
		return
	}
	p.structuredErrors = append(p.structuredErrors, merrors.NewWithPosition(code, tok.Line, tok.Column, data))
}

func (p *Parser) cur() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.cur().Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	if p.pos+1 >= len(p.tokens) {
		return t == lexer.EOF
	}
	return p.tokens[p.pos+1].Type == t
}

// eat returns the current token and advances. EOF is never consumed.
func (p *Parser) eat() lexer.Token {
	tok := p.cur()
	if tok.Type != lexer.EOF {
		p.pos++
	}
	return tok
}

// expect consumes a token of type t or records PARSE-0001.
func (p *Parser) expect(t lexer.TokenType, expected string) (lexer.Token, bool) {
	tok := p.cur()
	if tok.Type != t {
		p.addError("PARSE-0001", tok, map[string]any{"Expected": expected, "Got": tok.Literal})
		return tok, false
	}
	p.eat()
	return tok, true
}

// atBlockEnd reports whether a statement list should stop.
func (p *Parser) atBlockEnd() bool {
	return p.failed() || p.curTokenIs(lexer.RBRACE) || p.curTokenIs(lexer.EOF)
}

// ParseProgram parses statements until EOF or the first error.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	for !p.curTokenIs(lexer.EOF) && !p.failed() {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}
	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case lexer.VAR, lexer.CONST:
		return p.parseVarDeclaration()
	case lexer.FUNCTION:
		// function(...) in statement position is a lambda expression
		if p.peekTokenIs(lexer.LPAREN) {
			return p.parseExpressionStatement()
		}
		return p.parseFunctionDeclaration(false)
	case lexer.CLASS:
		return p.parseClassDeclaration()
	case lexer.MODULE:
		return p.parseModuleDeclaration()
	case lexer.ENUM:
		return p.parseEnumDeclaration()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileLoop()
	case lexer.IMPORT:
		return p.parseImportStatement()
	case lexer.SANDBOX:
		return p.parseSandboxStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	return expr
}

// parseBlock parses '{' statements '}'.
func (p *Parser) parseBlock(context string) []ast.Statement {
	if _, ok := p.expect(lexer.LBRACE, "'{' to open "+context); !ok {
		return nil
	}
	var body []ast.Statement
	for !p.atBlockEnd() {
		if stmt := p.parseStatement(); stmt != nil {
			body = append(body, stmt)
		}
	}
	p.expect(lexer.RBRACE, "'}' to close "+context)
	return body
}

// var IDENT [= EXPR] | const IDENT = EXPR
func (p *Parser) parseVarDeclaration() ast.Statement {
	tok := p.eat()
	decl := &ast.VarDeclaration{Token: tok, Constant: tok.Type == lexer.CONST}

	name, ok := p.expect(lexer.IDENT, "identifier after "+tok.Literal)
	if !ok {
		return nil
	}
	decl.Name = name.Literal

	if !p.curTokenIs(lexer.ASSIGN) {
		if decl.Constant {
			p.expect(lexer.ASSIGN, "'=' after constant name")
			return nil
		}
		return decl
	}
	p.eat()

	decl.Value = p.parseExpression()
	if decl.Value == nil {
		return nil
	}
	return decl
}

// parseFunctionDeclaration parses both shapes. A lambda requires '(' right
// after the keyword, a named function requires an identifier.
func (p *Parser) parseFunctionDeclaration(lambda bool) *ast.FunctionDeclaration {
	fn := &ast.FunctionDeclaration{Token: p.eat(), Lambda: lambda}

	if lambda {
		if !p.curTokenIs(lexer.LPAREN) {
			p.expect(lexer.LPAREN, "'(' after function in a lambda")
			return nil
		}
	} else {
		name, ok := p.expect(lexer.IDENT, "function name")
		if !ok {
			return nil
		}
		fn.Name = name.Literal
	}

	fn.Parameters = p.parseParameters()
	if p.failed() {
		return nil
	}

	fn.Body = p.parseBlock("function body")
	if p.failed() {
		return nil
	}
	return fn
}

func (p *Parser) parseParameters() []string {
	args := p.parseArguments()
	if p.failed() {
		return nil
	}
	params := make([]string, 0, len(args))
	for _, arg := range args {
		ident, ok := arg.(*ast.Identifier)
		if !ok {
			p.addError("PARSE-0006", p.cur(), map[string]any{"Got": arg.String()})
			return nil
		}
		params = append(params, ident.Value)
	}
	return params
}

// parseMemberDeclarations parses a class or module body. Only const and
// named function declarations are allowed.
func (p *Parser) parseMemberDeclarations(context string) []ast.Statement {
	if _, ok := p.expect(lexer.LBRACE, "'{' after "+context+" name"); !ok {
		return nil
	}
	var members []ast.Statement
	for !p.atBlockEnd() {
		switch p.cur().Type {
		case lexer.CONST:
			if decl := p.parseVarDeclaration(); decl != nil {
				members = append(members, decl)
			}
		case lexer.FUNCTION:
			if fn := p.parseFunctionDeclaration(false); fn != nil {
				members = append(members, fn)
			}
		default:
			p.addError("PARSE-0005", p.cur(), map[string]any{"Token": p.cur().Literal, "Context": context})
		}
	}
	p.expect(lexer.RBRACE, "'}' at end of "+context)
	return members
}

func (p *Parser) parseClassDeclaration() ast.Statement {
	cd := &ast.ClassDeclaration{Token: p.eat()}
	name, ok := p.expect(lexer.IDENT, "class name")
	if !ok {
		return nil
	}
	cd.Name = name.Literal

	members := p.parseMemberDeclarations("class")
	if p.failed() {
		return nil
	}

	for _, m := range members {
		if fn, ok := m.(*ast.FunctionDeclaration); ok && fn.Name == "constructor" {
			if cd.Constructor != nil {
				p.addError("PARSE-0004", fn.Token, map[string]any{"Name": cd.Name})
				return nil
			}
			cd.Constructor = fn
			continue
		}
		cd.Members = append(cd.Members, m)
	}

	if cd.Constructor == nil {
		p.addError("PARSE-0003", cd.Token, map[string]any{"Name": cd.Name})
		return nil
	}
	return cd
}

func (p *Parser) parseModuleDeclaration() ast.Statement {
	md := &ast.ModuleDeclaration{Token: p.eat()}
	name, ok := p.expect(lexer.IDENT, "module name")
	if !ok {
		return nil
	}
	md.Name = name.Literal

	md.Members = p.parseMemberDeclarations("module")
	if p.failed() {
		return nil
	}
	return md
}

// enum NAME { A, B, C }
func (p *Parser) parseEnumDeclaration() ast.Statement {
	ed := &ast.EnumDeclaration{Token: p.eat()}
	name, ok := p.expect(lexer.IDENT, "enum name")
	if !ok {
		return nil
	}
	ed.Name = name.Literal

	if _, ok := p.expect(lexer.LBRACE, "'{' after enum name"); !ok {
		return nil
	}
	for !p.atBlockEnd() {
		member, ok := p.expect(lexer.IDENT, "enum member name")
		if !ok {
			return nil
		}
		ed.Members = append(ed.Members, member.Literal)
		if p.curTokenIs(lexer.COMMA) {
			p.eat()
		} else if !p.curTokenIs(lexer.RBRACE) {
			p.addError("PARSE-0002", p.cur(), map[string]any{"Token": p.cur().Literal})
			return nil
		}
	}
	if _, ok := p.expect(lexer.RBRACE, "'}' at end of enum"); !ok {
		return nil
	}
	return ed
}

// parseCondition parses '(' logic-expression ')'.
func (p *Parser) parseCondition(context string) ast.Expression {
	if _, ok := p.expect(lexer.LPAREN, "'(' after "+context); !ok {
		return nil
	}
	cond := p.parseLogicExpression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(lexer.RPAREN, "')' after "+context+" condition"); !ok {
		return nil
	}
	return cond
}

func (p *Parser) parseIfStatement() ast.Statement {
	is := &ast.IfStatement{Token: p.eat()}
	is.Condition = p.parseCondition("if")
	if is.Condition == nil {
		return nil
	}
	is.Body = p.parseBlock("if body")
	if p.failed() {
		return nil
	}
	return is
}

func (p *Parser) parseWhileLoop() ast.Statement {
	wl := &ast.WhileLoop{Token: p.eat()}
	wl.Condition = p.parseCondition("while")
	if wl.Condition == nil {
		return nil
	}
	wl.Body = p.parseBlock("while body")
	if p.failed() {
		return nil
	}
	return wl
}

// import NAME [as ALIAS]
func (p *Parser) parseImportStatement() ast.Statement {
	is := &ast.ImportStatement{Token: p.eat()}
	name, ok := p.expect(lexer.IDENT, "module name after import")
	if !ok {
		return nil
	}
	is.Name = name.Literal

	if p.curTokenIs(lexer.AS) {
		p.eat()
		alias, ok := p.expect(lexer.IDENT, "alias after as")
		if !ok {
			return nil
		}
		is.Alias = alias.Literal
	}
	return is
}

func (p *Parser) parseSandboxStatement() ast.Statement {
	ss := &ast.SandboxStatement{Token: p.eat()}
	ss.Body = p.parseBlock("sandbox")
	if p.failed() {
		return nil
	}
	return ss
}

// parseLogicExpression is only reachable from if and while conditions.
func (p *Parser) parseLogicExpression() ast.Expression {
	left := p.parseExpression()
	if left == nil || !p.cur().Type.IsComparison() {
		return left
	}
	op := p.eat()
	right := p.parseExpression()
	if right == nil {
		return nil
	}
	return &ast.LogicExpression{Token: op, Left: left, Operator: op.Literal, Right: right}
}

func (p *Parser) parseExpression() ast.Expression {
	return p.parseAssignmentExpression()
}

func (p *Parser) parseAssignmentExpression() ast.Expression {
	left := p.parseObjectExpression()
	if left == nil {
		return nil
	}
	if !p.curTokenIs(lexer.ASSIGN) {
		return left
	}
	tok := p.eat()
	value := p.parseAssignmentExpression()
	if value == nil {
		return nil
	}
	return &ast.AssignmentExpression{Token: tok, Target: left, Value: value}
}

// parseObjectExpression parses { key: value, shorthand } or falls through to
// the additive level. Keys are identifiers or string literals.
func (p *Parser) parseObjectExpression() ast.Expression {
	if !p.curTokenIs(lexer.LBRACE) {
		return p.parseAdditiveExpression()
	}
	ol := &ast.ObjectLiteral{Token: p.eat()}

	for !p.atBlockEnd() {
		keyTok := p.cur()
		if keyTok.Type != lexer.IDENT && keyTok.Type != lexer.STRING {
			p.addError("PARSE-0001", keyTok, map[string]any{"Expected": "object key", "Got": keyTok.Literal})
			return nil
		}
		p.eat()

		if keyTok.Type == lexer.IDENT && (p.curTokenIs(lexer.COMMA) || p.curTokenIs(lexer.RBRACE)) {
			ol.Properties = append(ol.Properties, ast.Property{Key: keyTok.Literal})
			if p.curTokenIs(lexer.COMMA) {
				p.eat()
			}
			continue
		}

		if _, ok := p.expect(lexer.COLON, "':' after object key"); !ok {
			return nil
		}
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		ol.Properties = append(ol.Properties, ast.Property{Key: keyTok.Literal, Value: value})

		if !p.curTokenIs(lexer.RBRACE) {
			if _, ok := p.expect(lexer.COMMA, "',' or '}' after property"); !ok {
				return nil
			}
		}
	}

	if _, ok := p.expect(lexer.RBRACE, "'}' to close object literal"); !ok {
		return nil
	}
	return ol
}

func (p *Parser) parseAdditiveExpression() ast.Expression {
	left := p.parseMultiplicativeExpression()
	for left != nil && (p.curTokenIs(lexer.PLUS) || p.curTokenIs(lexer.MINUS)) {
		op := p.eat()
		right := p.parseMultiplicativeExpression()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpression{Token: op, Left: left, Operator: op.Literal, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicativeExpression() ast.Expression {
	left := p.parseCallMemberExpression()
	for left != nil && (p.curTokenIs(lexer.ASTERISK) || p.curTokenIs(lexer.SLASH) || p.curTokenIs(lexer.PERCENT)) {
		op := p.eat()
		right := p.parseCallMemberExpression()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpression{Token: op, Left: left, Operator: op.Literal, Right: right}
	}
	return left
}

// parseCallMemberExpression parses a primary followed by any mix of
// .ident, [expr] and (args).
func (p *Parser) parseCallMemberExpression() ast.Expression {
	expr := p.parsePrimaryExpression()
	for expr != nil && !p.failed() {
		switch p.cur().Type {
		case lexer.DOT:
			tok := p.eat()
			prop := p.cur()
			if prop.Type != lexer.IDENT {
				p.addError("PARSE-0007", prop, map[string]any{"Got": prop.Literal})
				return nil
			}
			p.eat()
			expr = &ast.MemberExpression{
				Token:    tok,
				Object:   expr,
				Property: &ast.Identifier{Token: prop, Value: prop.Literal},
			}
		case lexer.LBRACKET:
			tok := p.eat()
			prop := p.parseExpression()
			if prop == nil {
				return nil
			}
			if _, ok := p.expect(lexer.RBRACKET, "']' after computed member"); !ok {
				return nil
			}
			expr = &ast.MemberExpression{Token: tok, Object: expr, Property: prop, Computed: true}
		case lexer.LPAREN:
			tok := p.cur()
			args := p.parseArguments()
			if p.failed() {
				return nil
			}
			expr = &ast.CallExpression{Token: tok, Callee: expr, Arguments: args}
		default:
			return expr
		}
	}
	if p.failed() {
		return nil
	}
	return expr
}

// parseArguments parses '(' [expr {, expr}] ')'.
func (p *Parser) parseArguments() []ast.Expression {
	if _, ok := p.expect(lexer.LPAREN, "'('"); !ok {
		return nil
	}
	args := p.parseExpressionList(lexer.RPAREN)
	if p.failed() {
		return nil
	}
	p.expect(lexer.RPAREN, "')' to close argument list")
	return args
}

// parseExpressionList parses comma-separated expressions up to, but not
// including, end. A trailing comma is allowed.
func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	list := []ast.Expression{}
	for !p.curTokenIs(end) && !p.curTokenIs(lexer.EOF) && !p.failed() {
		expr := p.parseAssignmentExpression()
		if expr == nil {
			return nil
		}
		list = append(list, expr)
		if p.curTokenIs(lexer.COMMA) {
			p.eat()
		} else if !p.curTokenIs(end) && !p.curTokenIs(lexer.EOF) {
			p.addError("PARSE-0002", p.cur(), map[string]any{"Token": p.cur().Literal})
			return nil
		}
	}
	return list
}

func (p *Parser) parsePrimaryExpression() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case lexer.IDENT:
		p.eat()
		return &ast.Identifier{Token: tok, Value: tok.Literal}
	case lexer.NUMBER:
		p.eat()
		return &ast.NumericLiteral{Token: tok, Value: parseNumber(tok.Literal)}
	case lexer.STRING:
		p.eat()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}
	case lexer.FUNCTION:
		fn := p.parseFunctionDeclaration(true)
		if fn == nil {
			return nil
		}
		return fn
	case lexer.LBRACKET:
		p.eat()
		elements := p.parseExpressionList(lexer.RBRACKET)
		if p.failed() {
			return nil
		}
		if _, ok := p.expect(lexer.RBRACKET, "']' to close list"); !ok {
			return nil
		}
		return &ast.ListLiteral{Token: tok, Elements: elements}
	case lexer.LPAREN:
		p.eat()
		expr := p.parseExpression()
		if expr == nil {
			return nil
		}
		if _, ok := p.expect(lexer.RPAREN, "')' to close grouped expression"); !ok {
			return nil
		}
		return expr
	default:
		p.addError("PARSE-0002", tok, map[string]any{"Token": tok.Literal})
		return nil
	}
}

// parseNumber converts the longest valid float prefix of a digit-and-dot run,
// so "1.2.3" is 1.2 and "42." is 42.
func parseNumber(literal string) float64 {
	end := 0
	for end < len(literal) && literal[end] != '.' {
		end++
	}
	if end < len(literal) {
		frac := end + 1
		for frac < len(literal) && literal[frac] != '.' {
			frac++
		}
		if frac > end+1 {
			end = frac
		}
	}
	value, err := strconv.ParseFloat(literal[:end], 64)
	if err != nil {
		return 0
	}
	return value
}
