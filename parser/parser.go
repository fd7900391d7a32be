package parser

import (
	"fmt"

	"github.com/titivuk/golox/ast"
	"github.com/titivuk/golox/diag"
	"github.com/titivuk/golox/token"
)

// MaxArity is the largest number of parameters a function may declare and
// the largest number of arguments a call may pass.
const MaxArity = 8

type (
	prefixParseFn func() (ast.Expression, error)
	infixParseFn  func(ast.Expression) (ast.Expression, error) // param is left side of infix operator
)

const (
	_ int = iota // use iota to give the following constants incrementing numbers as values
	LOWEST
	ASSIGNMENT  // =
	OR          // or
	AND         // and
	EQUALS      // ==
	LESSGREATER // > or <
	SUM         // +
	PRODUCT     // *
	PREFIX      // -X or !X
	CALL        // myFunction(X) or obj.field
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:   ASSIGNMENT,
	token.OR:       OR,
	token.AND:      AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.LT_EQ:    LESSGREATER,
	token.GT:       LESSGREATER,
	token.GT_EQ:    LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.LPAREN:   CALL,
	token.DOT:      CALL,
}

// Error is the signal a grammar rule returns when it cannot continue.
// It has already been reported by the time a caller sees it.
type Error struct {
	Token   token.Token
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d at %q: %s", e.Token.Line, e.Token.Lexeme, e.Message)
}

type Parser struct {
	tokens  []token.Token
	current int

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	reporter *diag.Reporter
	errors   []*Error
}

// New expects tokens to end with an EOF token, as lexer.ScanTokens produces.
func New(tokens []token.Token, reporter *diag.Reporter) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, token.Token{Type: token.EOF, Line: line})
	}

	p := &Parser{tokens: tokens, reporter: reporter}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefixFn(token.IDENT, p.parseIdentifier)
	p.registerPrefixFn(token.NUMBER, p.parseLiteral)
	p.registerPrefixFn(token.STRING, p.parseLiteral)
	p.registerPrefixFn(token.TRUE, p.parseLiteral)
	p.registerPrefixFn(token.FALSE, p.parseLiteral)
	p.registerPrefixFn(token.NIL, p.parseLiteral)
	p.registerPrefixFn(token.BANG, p.parseUnaryExpression)
	p.registerPrefixFn(token.MINUS, p.parseUnaryExpression)
	p.registerPrefixFn(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefixFn(token.THIS, p.parseThis)
	p.registerPrefixFn(token.SUPER, p.parseSuper)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfixFn(token.ASSIGN, p.parseAssignment)
	p.registerInfixFn(token.OR, p.parseLogicalExpression)
	p.registerInfixFn(token.AND, p.parseLogicalExpression)
	p.registerInfixFn(token.EQ, p.parseBinaryExpression)
	p.registerInfixFn(token.NOT_EQ, p.parseBinaryExpression)
	p.registerInfixFn(token.LT, p.parseBinaryExpression)
	p.registerInfixFn(token.LT_EQ, p.parseBinaryExpression)
	p.registerInfixFn(token.GT, p.parseBinaryExpression)
	p.registerInfixFn(token.GT_EQ, p.parseBinaryExpression)
	p.registerInfixFn(token.PLUS, p.parseBinaryExpression)
	p.registerInfixFn(token.MINUS, p.parseBinaryExpression)
	p.registerInfixFn(token.ASTERISK, p.parseBinaryExpression)
	p.registerInfixFn(token.SLASH, p.parseBinaryExpression)
	p.registerInfixFn(token.LPAREN, p.parseCallExpression)
	p.registerInfixFn(token.DOT, p.parseGetExpression)

	return p
}

// ParseProgram parses declarations until EOF. A declaration that fails to
// parse is reported, skipped up to the next statement boundary and left out
// of the program.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	// parse until we reach the end
	for !p.isAtEnd() {
		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}

	return program
}

// Errors returns every error the parser reported, including the ones it
// recovered from without abandoning a declaration.
func (p *Parser) Errors() []*Error {
	return p.errors
}

func (p *Parser) registerPrefixFn(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfixFn(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// parseDeclaration recovers from errors, so it never fails; it returns nil
// for a declaration it had to abandon.
func (p *Parser) parseDeclaration() ast.Statement {
	var (
		stmt ast.Statement
		err  error
	)
	switch {
	case p.match(token.CLASS):
		stmt, err = p.parseClassDeclaration()
	case p.match(token.FUNCTION):
		stmt, err = p.parseFunction("function")
	case p.match(token.VAR):
		stmt, err = p.parseVarDeclaration()
	default:
		stmt, err = p.parseStatement()
	}

	if err != nil {
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *Parser) parseClassDeclaration() (ast.Statement, error) {
	name, err := p.consume(token.IDENT, "Expect class name.")
	if err != nil {
		return nil, err
	}
	stmt := &ast.ClassStatement{Name: name}

	if p.match(token.LT) {
		superName, err := p.consume(token.IDENT, "Expect superclass name.")
		if err != nil {
			return nil, err
		}
		stmt.Superclass = &ast.Identifier{Token: superName, Value: superName.Lexeme}
	}

	if _, err := p.consume(token.LBRACE, "Expect '{' before class body."); err != nil {
		return nil, err
	}

	for !p.check(token.RBRACE) && !p.isAtEnd() {
		method, err := p.parseFunction("method")
		if err != nil {
			return nil, err
		}
		stmt.Methods = append(stmt.Methods, method)
	}

	if _, err := p.consume(token.RBRACE, "Expect '}' after class body."); err != nil {
		return nil, err
	}

	return stmt, nil
}

// kind is "function" or "method" and only affects error messages
func (p *Parser) parseFunction(kind string) (*ast.FunctionStatement, error) {
	name, err := p.consume(token.IDENT, "Expect "+kind+" name.")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LPAREN, "Expect '(' after "+kind+" name."); err != nil {
		return nil, err
	}

	stmt := &ast.FunctionStatement{Name: name, Params: []token.Token{}}
	if !p.check(token.RPAREN) {
		for {
			if len(stmt.Params) >= MaxArity {
				p.errorAt(p.peek(), fmt.Sprintf("Can't have more than %d parameters.", MaxArity))
			}
			param, err := p.consume(token.IDENT, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			stmt.Params = append(stmt.Params, param)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(token.RPAREN, "Expect ')' after parameters."); err != nil {
		return nil, err
	}

	if _, err := p.consume(token.LBRACE, "Expect '{' before "+kind+" body."); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body

	return stmt, nil
}

func (p *Parser) parseVarDeclaration() (ast.Statement, error) {
	stmt := &ast.VarStatement{Token: p.previous()}

	name, err := p.consume(token.IDENT, "Expect variable name.")
	if err != nil {
		return nil, err
	}
	stmt.Name = name

	if p.match(token.ASSIGN) {
		stmt.Initializer, err = p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(token.SEMICOLON, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}

	return stmt, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch {
	case p.match(token.FOR):
		return p.parseForStatement()
	case p.match(token.IF):
		return p.parseIfStatement()
	case p.match(token.PRINT):
		return p.parsePrintStatement()
	case p.match(token.RETURN):
		return p.parseReturnStatement()
	case p.match(token.WHILE):
		return p.parseWhileStatement()
	case p.match(token.LBRACE):
		lbrace := p.previous()
		statements, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStatement{Token: lbrace, Statements: statements}, nil
	default:
		return p.parseExpressionStatement()
	}
}

// parseBlock expects the opening brace to be consumed already. Declarations
// inside the block recover on their own, so only a missing '}' fails it.
func (p *Parser) parseBlock() ([]ast.Statement, error) {
	statements := []ast.Statement{}

	for !p.check(token.RBRACE) && !p.isAtEnd() {
		statement := p.parseDeclaration()
		if statement != nil {
			statements = append(statements, statement)
		}
	}

	if _, err := p.consume(token.RBRACE, "Expect '}' after block."); err != nil {
		return nil, err
	}

	return statements, nil
}

// parseForStatement desugars
//
//	for (init; cond; incr) body
//
// into
//
//	{ init; while (cond) { body; incr; } }
func (p *Parser) parseForStatement() (ast.Statement, error) {
	forToken := p.previous()

	if _, err := p.consume(token.LPAREN, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var (
		initializer ast.Statement
		err         error
	)
	switch {
	case p.match(token.SEMICOLON):
	case p.match(token.VAR):
		initializer, err = p.parseVarDeclaration()
	default:
		initializer, err = p.parseExpressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var condition ast.Expression
	if !p.check(token.SEMICOLON) {
		if condition, err = p.parseExpression(LOWEST); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "Expect ';' after for loop condition."); err != nil {
		return nil, err
	}

	var increment ast.Expression
	if !p.check(token.RPAREN) {
		if increment, err = p.parseExpression(LOWEST); err != nil {
			return nil, err
		}
	}
	rparen, err := p.consume(token.RPAREN, "Expect ')' after for loop clauses.")
	if err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	if increment != nil {
		body = &ast.BlockStatement{
			Token: rparen,
			Statements: []ast.Statement{
				body,
				&ast.ExpressionStatement{Token: rparen, Expression: increment},
			},
		}
	}

	if condition == nil {
		condition = &ast.Literal{Token: forToken, Value: true}
	}
	body = &ast.WhileStatement{Token: forToken, Condition: condition, Body: body}

	if initializer != nil {
		body = &ast.BlockStatement{Token: forToken, Statements: []ast.Statement{initializer, body}}
	}

	return body, nil
}

func (p *Parser) parseIfStatement() (ast.Statement, error) {
	stmt := &ast.IfStatement{Token: p.previous()}

	if _, err := p.consume(token.LPAREN, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	condition, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Condition = condition
	if _, err := p.consume(token.RPAREN, "Expect ')' after if condition."); err != nil {
		return nil, err
	}

	if stmt.Consequence, err = p.parseStatement(); err != nil {
		return nil, err
	}

	// parse else branch if there is token.ELSE token
	if p.match(token.ELSE) {
		if stmt.Alternative, err = p.parseStatement(); err != nil {
			return nil, err
		}
	}

	return stmt, nil
}

func (p *Parser) parsePrintStatement() (ast.Statement, error) {
	stmt := &ast.PrintStatement{Token: p.previous()}

	value, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Value = value

	if _, err := p.consume(token.SEMICOLON, "Expect ';' after value."); err != nil {
		return nil, err
	}

	return stmt, nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	stmt := &ast.ReturnStatement{Token: p.previous()}

	if !p.check(token.SEMICOLON) {
		value, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		stmt.ReturnValue = value
	}

	if _, err := p.consume(token.SEMICOLON, "Expect ';' after return value."); err != nil {
		return nil, err
	}

	return stmt, nil
}

func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	stmt := &ast.WhileStatement{Token: p.previous()}

	if _, err := p.consume(token.LPAREN, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	condition, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Condition = condition
	if _, err := p.consume(token.RPAREN, "Expect ')' after while condition."); err != nil {
		return nil, err
	}

	if stmt.Body, err = p.parseStatement(); err != nil {
		return nil, err
	}

	return stmt, nil
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	stmt := &ast.ExpressionStatement{Token: p.peek()}

	expression, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Expression = expression

	if _, err := p.consume(token.SEMICOLON, "Expect ';' after expression."); err != nil {
		return nil, err
	}

	return stmt, nil
}

func (p *Parser) parseExpression(precedence int) (ast.Expression, error) {
	prefix := p.prefixParseFns[p.peek().Type]
	if prefix == nil {
		return nil, p.errorAt(p.peek(), "Expect expression.")
	}
	p.advance()

	expression, err := prefix()
	if err != nil {
		return nil, err
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peek().Type]
		// if there is no infix parser => it's prefix expression => return immediately
		if infix == nil {
			return expression, nil
		}

		// previous() is now the infix operator and expression is its left side
		p.advance()

		expression, err = infix(expression)
		if err != nil {
			return nil, err
		}
	}

	return expression, nil
}

func (p *Parser) parseIdentifier() (ast.Expression, error) {
	tok := p.previous()
	return &ast.Identifier{Token: tok, Value: tok.Lexeme}, nil
}

func (p *Parser) parseLiteral() (ast.Expression, error) {
	tok := p.previous()
	literal := &ast.Literal{Token: tok}
	switch tok.Type {
	case token.TRUE:
		literal.Value = true
	case token.FALSE:
		literal.Value = false
	case token.NIL:
		literal.Value = nil
	default:
		literal.Value = tok.Literal
	}
	return literal, nil
}

func (p *Parser) parseThis() (ast.Expression, error) {
	return &ast.ThisExpression{Token: p.previous()}, nil
}

func (p *Parser) parseSuper() (ast.Expression, error) {
	expression := &ast.SuperExpression{Token: p.previous()}

	if _, err := p.consume(token.DOT, "Expect '.' after 'super'."); err != nil {
		return nil, err
	}
	method, err := p.consume(token.IDENT, "Expect superclass method name.")
	if err != nil {
		return nil, err
	}
	expression.Method = method

	return expression, nil
}

func (p *Parser) parseUnaryExpression() (ast.Expression, error) {
	expression := &ast.UnaryExpression{Operator: p.previous()}

	right, err := p.parseExpression(PREFIX)
	if err != nil {
		return nil, err
	}
	expression.Right = right

	return expression, nil
}

func (p *Parser) parseBinaryExpression(left ast.Expression) (ast.Expression, error) {
	expression := &ast.BinaryExpression{Left: left, Operator: p.previous()}

	right, err := p.parseExpression(p.currPrecedence())
	if err != nil {
		return nil, err
	}
	expression.Right = right

	return expression, nil
}

func (p *Parser) parseLogicalExpression(left ast.Expression) (ast.Expression, error) {
	expression := &ast.LogicalExpression{Left: left, Operator: p.previous()}

	right, err := p.parseExpression(p.currPrecedence())
	if err != nil {
		return nil, err
	}
	expression.Right = right

	return expression, nil
}

// parseAssignment is right-associative: the value is parsed at the lowest
// precedence so that a = b = c groups as a = (b = c). An invalid target is
// reported at the '=' but does not abort the statement.
func (p *Parser) parseAssignment(target ast.Expression) (ast.Expression, error) {
	equals := p.previous()

	value, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}

	switch target := target.(type) {
	case *ast.Identifier:
		return &ast.AssignExpression{Name: target.Token, Value: value}, nil
	case *ast.GetExpression:
		return &ast.SetExpression{Object: target.Object, Name: target.Name, Value: value}, nil
	}

	p.errorAt(equals, "Invalid assignment target.")
	return target, nil
}

func (p *Parser) parseGroupedExpression() (ast.Expression, error) {
	lparen := p.previous()

	exp, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}

	if _, err := p.consume(token.RPAREN, "Expect ')' after expression."); err != nil {
		return nil, err
	}

	return &ast.GroupedExpression{Token: lparen, Expression: exp}, nil
}

func (p *Parser) parseCallExpression(function ast.Expression) (ast.Expression, error) {
	expression := &ast.CallExpression{Function: function, Arguments: []ast.Expression{}}

	if !p.check(token.RPAREN) {
		for {
			if len(expression.Arguments) >= MaxArity {
				p.errorAt(p.peek(), fmt.Sprintf("Can't have more than %d arguments.", MaxArity))
			}
			argument, err := p.parseExpression(LOWEST)
			if err != nil {
				return nil, err
			}
			expression.Arguments = append(expression.Arguments, argument)
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	paren, err := p.consume(token.RPAREN, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	expression.Paren = paren

	return expression, nil
}

func (p *Parser) parseGetExpression(object ast.Expression) (ast.Expression, error) {
	name, err := p.consume(token.IDENT, "Expect property name after '.'.")
	if err != nil {
		return nil, err
	}
	return &ast.GetExpression{Object: object, Name: name}, nil
}

// synchronize discards tokens until it has passed a ';' or sits on a token
// that starts a declaration, so one bad statement does not cascade.
func (p *Parser) synchronize() {
	p.advance()

	for !p.isAtEnd() {
		if p.previous().Type == token.SEMICOLON {
			return
		}
		if token.StartsDeclaration(p.peek().Type) {
			return
		}
		p.advance()
	}
}

func (p *Parser) errorAt(tok token.Token, message string) *Error {
	p.reporter.TokenError(tok, message)
	err := &Error{Token: tok, Message: message}
	p.errors = append(p.errors, err)
	return err
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(t token.TokenType) bool {
	return !p.isAtEnd() && p.peek().Type == t
}

func (p *Parser) match(types ...token.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// consume checks the type of the next token and only if the type is correct
// does it advance past it
func (p *Parser) consume(t token.TokenType, message string) (token.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorAt(p.peek(), message)
}

// returns the precedence associated with the type of the next token
func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peek().Type]; ok {
		return p
	}

	return LOWEST
}

// returns the precedence associated with the operator just consumed
func (p *Parser) currPrecedence() int {
	if p, ok := precedences[p.previous().Type]; ok {
		return p
	}

	return LOWEST
}
