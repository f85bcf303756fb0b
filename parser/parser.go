// Package parser implements the syntactic analyzer for the Flux programming
// language.
//
// The parser takes a stream of tokens from the lexer and constructs an
// abstract syntax tree representing the structure of the program. It is a
// recursive-descent parser with Pratt parsing (precedence climbing) for
// expressions.
//
// Parse errors are accumulated as [diag.Diagnostic] records rather than
// aborting: on a syntax error the parser synchronizes to the next statement
// boundary and keeps going, so a single pass can surface many problems.
//
// The main entry point is [New], which wraps a [lexer.Lexer], and
// [Parser.ParseProgram], which parses a complete program into an AST.
package parser

import (
	"fmt"
	"strconv"

	"github.com/flux-lang/flux/ast"
	"github.com/flux-lang/flux/diag"
	"github.com/flux-lang/flux/lexer"
	"github.com/flux-lang/flux/token"
)

const (
	_ int = iota

	// Lowest is the default, weakest binding precedence.
	Lowest

	// Pipe is the precedence of the `|>` operator, the loosest-binding
	// operator in the language.
	Pipe

	// Or is the precedence of `||`.
	Or

	// And is the precedence of `&&`.
	And

	// Equals is the precedence of the equality operators.
	Equals // == !=

	// LessGreater is the precedence of the ordering comparisons, which bind
	// tighter than equality.
	LessGreater // < > <= >=

	// Sum is the precedence of `+`/`-`.
	Sum

	// Product is the precedence of `*`/`/`/`%`.
	Product

	// Prefix is the precedence of unary `-x` / `!x`.
	Prefix

	// Call is the precedence of function calls.
	Call // myFunc(x)

	// Index is the precedence of indexing and member access.
	Index // array[i], record.field
)

var precedences = map[token.Type]int{
	token.PIPE:     Pipe,
	token.OR:       Or,
	token.AND:      And,
	token.EQ:       Equals,
	token.NOT_EQ:   Equals,
	token.LT:       LessGreater,
	token.GT:       LessGreater,
	token.LTE:      LessGreater,
	token.GTE:      LessGreater,
	token.PLUS:     Sum,
	token.MINUS:    Sum,
	token.SLASH:    Product,
	token.ASTERISK: Product,
	token.PERCENT:  Product,
	token.LPAREN:   Call,
	token.LBRACKET: Index,
	token.DOT:      Index,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser represents a Flux parser.
type Parser struct {
	l       *lexer.Lexer
	diags   diag.Diagnostics
	errors  []string
	current token.Token
	peek    token.Token
	peek2   token.Token

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New creates a new [Parser] over the given [lexer.Lexer].
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[token.Type]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.NONE, p.parseNoneLiteral)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.IF, p.parseIfExpression)
	p.registerPrefix(token.MATCH, p.parseMatchExpression)
	p.registerPrefix(token.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.INTERP_START, p.parseInterpolatedString)
	p.registerPrefix(token.LBRACKET, p.parseListExpression)
	p.registerPrefix(token.LBRACE, p.parseHashLiteral)

	p.infixParseFns = make(map[token.Type]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)
	p.registerInfix(token.PERCENT, p.parseInfixExpression)
	p.registerInfix(token.EQ, p.parseInfixExpression)
	p.registerInfix(token.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(token.LT, p.parseInfixExpression)
	p.registerInfix(token.LTE, p.parseInfixExpression)
	p.registerInfix(token.GT, p.parseInfixExpression)
	p.registerInfix(token.GTE, p.parseInfixExpression)
	p.registerInfix(token.AND, p.parseInfixExpression)
	p.registerInfix(token.OR, p.parseInfixExpression)
	p.registerInfix(token.PIPE, p.parsePipeExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)
	p.registerInfix(token.DOT, p.parseMemberExpression)

	// Prime current/peek/peek2.
	p.nextToken()
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t token.Type, fn infixParseFn)   { p.infixParseFns[t] = fn }

// Errors returns the accumulated parse errors as plain strings, for callers
// that only want a quick human-readable summary.
func (p *Parser) Errors() []string { return p.errors }

// Diagnostics returns the accumulated parse errors as structured records.
func (p *Parser) Diagnostics() diag.Diagnostics { return p.diags }

func (p *Parser) addError(code, msg string, span token.Span) {
	p.diags = append(p.diags, diag.New(code, msg, span))
	p.errors = append(p.errors, msg)
}

func (p *Parser) peekError(t token.Type) {
	p.addError(diag.CodeUnexpectedToken,
		fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peek.Type), p.peek.Span)
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return Lowest
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.current.Type]; ok {
		return pr
	}
	return Lowest
}

func (p *Parser) nextToken() {
	p.current = p.peek
	p.peek = p.peek2
	p.peek2 = p.l.NextToken()
}

func (p *Parser) currentTokenIs(t token.Type) bool { return p.current.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool    { return p.peek.Type == t }
func (p *Parser) peek2TokenIs(t token.Type) bool    { return p.peek2.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// synchronize recovers from a parse error by skipping tokens until the next
// statement boundary: either just past a semicolon, or just before a token
// that starts a new statement.
func (p *Parser) synchronize() {
	for !p.currentTokenIs(token.EOF) {
		if p.currentTokenIs(token.SEMICOLON) {
			p.nextToken()
			return
		}
		switch p.peek.Type {
		case token.LET, token.FUNCTION, token.MODULE, token.IMPORT, token.RETURN:
			p.nextToken()
			return
		}
		p.nextToken()
	}
}

// ParseProgram parses a complete Flux program and returns its AST.
// Check [Parser.Diagnostics] afterward for any syntax errors encountered;
// parsing recovers from each and keeps going rather than aborting early.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.currentTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
			p.nextToken()
		} else {
			p.synchronize()
		}
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.current.Type {
	case token.LET:
		return p.parseLetStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.MODULE:
		return p.parseModuleStatement()
	case token.IMPORT:
		return p.parseImportStatement()
	case token.FUNCTION:
		if p.peekTokenIs(token.IDENT) {
			return p.parseFunctionStatement()
		}
		return p.parseExpressionStatement()
	case token.IDENT:
		if p.peekTokenIs(token.ASSIGN) {
			return p.parseAssignStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() ast.Statement {
	startTok := p.current
	mutable := false
	if p.peekTokenIs(token.MUT) {
		p.nextToken()
		mutable = true
	}

	if p.peekTokenIs(token.IDENT) && p.peek2TokenIs(token.ASSIGN) {
		p.nextToken()
		name := &ast.Identifier{Token: p.current, Value: p.current.Literal}
		if !p.expectPeek(token.ASSIGN) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(Lowest)
		if value == nil {
			return nil
		}
		if fl, ok := value.(*ast.FunctionLiteral); ok {
			fl.Name = name.Value
		}
		end := p.current.Span.End
		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
			end = p.current.Span.End
		}
		return ast.NewLetStatement(startTok, name, value, mutable, token.Span{Start: startTok.Span.Start, End: end})
	}

	p.nextToken()
	pattern := p.parsePattern()
	if pattern == nil {
		return nil
	}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(Lowest)
	if value == nil {
		return nil
	}
	end := p.current.Span.End
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		end = p.current.Span.End
	}
	return ast.NewLetPatternStatement(startTok, pattern, value, token.Span{Start: startTok.Span.Start, End: end})
}

func (p *Parser) parseAssignStatement() ast.Statement {
	startTok := p.current
	target := &ast.Identifier{Token: p.current, Value: p.current.Literal}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(Lowest)
	if value == nil {
		return nil
	}
	end := p.current.Span.End
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		end = p.current.Span.End
	}
	return ast.NewAssignStatement(startTok, target, value, token.Span{Start: startTok.Span.Start, End: end})
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	tok := p.current
	p.nextToken()
	value := p.parseExpression(Lowest)
	end := p.current.Span.End
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		end = p.current.Span.End
	}
	return ast.NewReturnStatement(tok, value, token.Span{Start: tok.Span.Start, End: end})
}

func (p *Parser) parseFunctionStatement() ast.Statement {
	tok := p.current
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.current.Literal
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params := p.parseFunctionParameters()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	return ast.NewFunctionStatement(tok, name, params, body, token.Span{Start: tok.Span.Start, End: body.Span().End})
}

func (p *Parser) parseModuleStatement() ast.Statement {
	tok := p.current
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.current.Literal
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()
	body := &ast.Program{}
	for !p.currentTokenIs(token.RBRACE) && !p.currentTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			body.Statements = append(body.Statements, stmt)
			p.nextToken()
		} else {
			p.synchronize()
		}
	}
	return ast.NewModuleStatement(tok, name, body, token.Span{Start: tok.Span.Start, End: p.current.Span.End})
}

func (p *Parser) parseImportStatement() ast.Statement {
	tok := p.current
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	path := []string{p.current.Literal}
	for p.peekTokenIs(token.DOT) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		path = append(path, p.current.Literal)
	}
	alias := ""
	if p.peekTokenIs(token.AS) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		alias = p.current.Literal
	}
	end := p.current.Span.End
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		end = p.current.Span.End
	}
	return ast.NewImportStatement(tok, path, alias, token.Span{Start: tok.Span.Start, End: end})
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.current}
	stmt.Expression = p.parseExpression(Lowest)
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.current.Type]
	if prefix == nil {
		p.addError(diag.CodeUnexpectedToken,
			fmt.Sprintf("no prefix parse function for %s found", p.current.Type), p.current.Span)
		return nil
	}
	leftExp := prefix()

	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peek.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	if p.peekTokenIs(token.LPAREN) {
		switch p.current.Literal {
		case "Some":
			return p.parseWrapExpression(func(tok token.Token, v ast.Expression, span token.Span) ast.Expression {
				return ast.NewSomeExpression(tok, v, span)
			})
		case "Left":
			return p.parseWrapExpression(func(tok token.Token, v ast.Expression, span token.Span) ast.Expression {
				return ast.NewLeftExpression(tok, v, span)
			})
		case "Right":
			return p.parseWrapExpression(func(tok token.Token, v ast.Expression, span token.Span) ast.Expression {
				return ast.NewRightExpression(tok, v, span)
			})
		}
	}
	return &ast.Identifier{Token: p.current, Value: p.current.Literal}
}

func (p *Parser) parseWrapExpression(build func(token.Token, ast.Expression, token.Span) ast.Expression) ast.Expression {
	tok := p.current
	p.nextToken() // '('
	p.nextToken()
	inner := p.parseExpression(Lowest)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return build(tok, inner, token.Span{Start: tok.Span.Start, End: p.current.Span.End})
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.current}
	value, err := strconv.ParseInt(p.current.Literal, 0, 64)
	if err != nil {
		p.addError(diag.CodeInvalidNumber, fmt.Sprintf("could not parse %q as integer", p.current.Literal), p.current.Span)
		return nil
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.FloatLiteral{Token: p.current}
	value, err := strconv.ParseFloat(p.current.Literal, 64)
	if err != nil {
		p.addError(diag.CodeInvalidNumber, fmt.Sprintf("could not parse %q as float", p.current.Literal), p.current.Span)
		return nil
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.Boolean{Token: p.current, Value: p.currentTokenIs(token.TRUE)}
}

func (p *Parser) parseNoneLiteral() ast.Expression {
	return &ast.NoneLiteral{Token: p.current}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.PrefixExpression{Token: p.current, Operator: p.current.Literal}
	p.nextToken()
	expr.Right = p.parseExpression(Prefix)
	return expr
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expr := &ast.InfixExpression{Token: p.current, Operator: p.current.Literal, Left: left}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	return expr
}

// parsePipeExpression desugars `a |> f(args)` into `f(a, args)` and
// `a |> f` into `f(a)`.
func (p *Parser) parsePipeExpression(left ast.Expression) ast.Expression {
	tok := p.current
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	if call, ok := right.(*ast.CallExpression); ok {
		args := append([]ast.Expression{left}, call.Arguments...)
		return ast.NewCallExpression(call.Token, call.Function, args, token.Span{Start: left.Span().Start, End: call.Span().End})
	}
	return ast.NewCallExpression(tok, right, []ast.Expression{left}, token.Span{Start: left.Span().Start, End: right.Span().End})
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	tok := p.current
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	return ast.NewMemberExpression(tok, left, p.current.Literal, token.Span{Start: left.Span().Start, End: p.current.Span.End})
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(Lowest)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseIfExpression() ast.Expression {
	tok := p.current
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	condition := p.parseExpression(Lowest)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	consequence := p.parseBlockStatement()

	var alternative *ast.BlockStatement
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			elseTok := p.current
			nested := p.parseIfExpression()
			alternative = ast.NewBlockStatement(elseTok, []ast.Statement{
				&ast.ExpressionStatement{Token: elseTok, Expression: nested},
			}, nested.Span())
		} else {
			if !p.expectPeek(token.LBRACE) {
				return nil
			}
			alternative = p.parseBlockStatement()
		}
	}

	end := consequence.Span().End
	if alternative != nil {
		end = alternative.Span().End
	}
	return ast.NewIfExpression(tok, condition, consequence, alternative, token.Span{Start: tok.Span.Start, End: end})
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	tok := p.current
	var stmts []ast.Statement
	p.nextToken()
	for !p.currentTokenIs(token.RBRACE) && !p.currentTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
			p.nextToken()
		} else {
			p.synchronize()
		}
	}
	return ast.NewBlockStatement(tok, stmts, token.Span{Start: tok.Span.Start, End: p.current.Span.End})
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.current
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params := p.parseFunctionParameters()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	return ast.NewFunctionLiteral(tok, params, body, token.Span{Start: tok.Span.Start, End: body.Span().End})
}

func (p *Parser) parseFunctionParameters() []*ast.Identifier {
	var identifiers []*ast.Identifier

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return identifiers
	}
	p.nextToken()
	identifiers = append(identifiers, &ast.Identifier{Token: p.current, Value: p.current.Literal})

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		identifiers = append(identifiers, &ast.Identifier{Token: p.current, Value: p.current.Literal})
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return identifiers
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	tok := p.current
	args := p.parseExpressionList(token.RPAREN)
	return ast.NewCallExpression(tok, function, args, token.Span{Start: function.Span().Start, End: p.current.Span.End})
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.current, Value: p.current.Literal}
}

// parseInterpolatedString parses the INTERP_START/INTERP_MID/INTERP_END
// cooperative token stream the lexer produces for `"...#{expr}..."`.
func (p *Parser) parseInterpolatedString() ast.Expression {
	startTok := p.current
	parts := []ast.Expression{&ast.StringLiteral{Token: startTok, Value: startTok.Literal}}

	for {
		p.nextToken()
		expr := p.parseExpression(Lowest)
		if expr != nil {
			parts = append(parts, expr)
		}

		if p.peekTokenIs(token.INTERP_MID) {
			p.nextToken()
			parts = append(parts, &ast.StringLiteral{Token: p.current, Value: p.current.Literal})
			continue
		}
		if p.peekTokenIs(token.INTERP_END) {
			p.nextToken()
			parts = append(parts, &ast.StringLiteral{Token: p.current, Value: p.current.Literal})
			break
		}
		p.peekError(token.INTERP_END)
		break
	}

	return ast.NewInterpolatedStringLiteral(startTok, parts, token.Span{Start: startTok.Span.Start, End: p.current.Span.End})
}

// parseListExpression parses the three `[` forms: `[]` (empty list),
// `[h | t]` (cons), and `[e1, e2, ...]` (array literal).
func (p *Parser) parseListExpression() ast.Expression {
	tok := p.current

	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return &ast.EmptyListExpression{Token: tok}
	}

	p.nextToken()
	first := p.parseExpression(Lowest)

	if p.peekTokenIs(token.CONS) {
		p.nextToken()
		p.nextToken()
		tail := p.parseExpression(Lowest)
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
		return ast.NewConsExpression(tok, first, tail, token.Span{Start: tok.Span.Start, End: p.current.Span.End})
	}

	elements := []ast.Expression{first}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		elements = append(elements, p.parseExpression(Lowest))
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return ast.NewArrayLiteral(tok, elements, token.Span{Start: tok.Span.Start, End: p.current.Span.End})
}

func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	var list []ast.Expression

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parseExpression(Lowest))

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(Lowest))
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.current
	p.nextToken()
	index := p.parseExpression(Lowest)
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return ast.NewIndexExpression(tok, left, index, token.Span{Start: left.Span().Start, End: p.current.Span.End})
}

func (p *Parser) parseHashLiteral() ast.Expression {
	tok := p.current
	var pairs []ast.HashPair

	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		key := p.parseExpression(Lowest)

		if !p.expectPeek(token.COLON) {
			return nil
		}

		p.nextToken()
		value := p.parseExpression(Lowest)
		pairs = append(pairs, ast.HashPair{Key: key, Value: value})

		if !p.peekTokenIs(token.RBRACE) && !p.expectPeek(token.COMMA) {
			return nil
		}
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}

	return ast.NewHashLiteral(tok, pairs, token.Span{Start: tok.Span.Start, End: p.current.Span.End})
}

func (p *Parser) parseMatchExpression() ast.Expression {
	tok := p.current
	p.nextToken()
	subject := p.parseExpression(Lowest)
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()

	var arms []ast.MatchArm
	for !p.currentTokenIs(token.RBRACE) && !p.currentTokenIs(token.EOF) {
		pattern := p.parsePattern()
		if pattern == nil {
			p.synchronize()
			continue
		}

		var guard ast.Expression
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			p.nextToken()
			guard = p.parseExpression(Lowest)
		}

		if !p.expectPeek(token.ARROW) {
			return nil
		}
		p.nextToken()
		body := p.parseExpression(Lowest)
		arms = append(arms, ast.MatchArm{Pattern: pattern, Guard: guard, Body: body})

		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
		p.nextToken()
	}

	return ast.NewMatchExpression(tok, subject, arms, token.Span{Start: tok.Span.Start, End: p.current.Span.End})
}

// parsePattern parses a single `match`-arm or pattern-let pattern.
func (p *Parser) parsePattern() ast.Pattern {
	switch p.current.Type {
	case token.NONE:
		return &ast.NonePattern{Token: p.current}

	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE:
		startTok := p.current
		val := p.parseExpression(Lowest)
		if val == nil {
			return nil
		}
		return &ast.LiteralPattern{Token: startTok, Value: val}

	case token.IDENT:
		if p.current.Literal == "_" {
			return &ast.WildcardPattern{Token: p.current}
		}
		switch p.current.Literal {
		case "Some":
			return p.parseWrapPattern(func(tok token.Token, inner ast.Pattern, span token.Span) ast.Pattern {
				return ast.NewSomePattern(tok, inner, span)
			})
		case "Left":
			return p.parseWrapPattern(func(tok token.Token, inner ast.Pattern, span token.Span) ast.Pattern {
				return ast.NewLeftPattern(tok, inner, span)
			})
		case "Right":
			return p.parseWrapPattern(func(tok token.Token, inner ast.Pattern, span token.Span) ast.Pattern {
				return ast.NewRightPattern(tok, inner, span)
			})
		}
		return &ast.IdentifierPattern{Token: p.current, Name: p.current.Literal}

	case token.LBRACKET:
		tok := p.current
		if p.peekTokenIs(token.RBRACKET) {
			p.nextToken()
			return &ast.EmptyListPattern{Token: tok}
		}
		p.nextToken()
		head := p.parsePattern()
		if !p.expectPeek(token.CONS) {
			return nil
		}
		p.nextToken()
		tail := p.parsePattern()
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
		return ast.NewConsPattern(tok, head, tail, token.Span{Start: tok.Span.Start, End: p.current.Span.End})

	default:
		p.addError(diag.CodeInvalidPattern,
			fmt.Sprintf("unexpected token %s in pattern", p.current.Type), p.current.Span)
		return nil
	}
}

func (p *Parser) parseWrapPattern(build func(token.Token, ast.Pattern, token.Span) ast.Pattern) ast.Pattern {
	tok := p.current
	p.nextToken() // '('
	p.nextToken()
	inner := p.parsePattern()
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return build(tok, inner, token.Span{Start: tok.Span.Start, End: p.current.Span.End})
}
