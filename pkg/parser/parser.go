// Package parser implements a recursive descent parser with precedence
// climbing for expressions.
package parser

import (
	"fmt"
	"strconv"

	"github.com/ulang/ucc/pkg/cabs"
	"github.com/ulang/ucc/pkg/lexer"
)

// Parser parses source code into a cabs AST
type Parser struct {
	l         *lexer.Lexer
	curToken  lexer.Token
	peekToken lexer.Token
	errors    []string
}

// New creates a new Parser for the given lexer
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// Errors returns the list of parsing errors
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Sprintf("line %d, col %d: %s",
		p.curToken.Line, p.curToken.Column, msg))
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("expected %s, got %s", t, p.curToken.Type))
	return false
}

// ParseProgram parses one translation unit: a single function definition
// followed by end of input.
func (p *Parser) ParseProgram() *cabs.Program {
	fn := p.parseFunction()
	if fn == nil {
		return nil
	}
	if !p.curTokenIs(lexer.TokenEOF) {
		p.addError(fmt.Sprintf("expected end of input, got %s", p.curToken.Type))
		return nil
	}
	return &cabs.Program{Function: *fn}
}

func (p *Parser) parseFunction() *cabs.FunDef {
	if !p.isTypeSpecifier() {
		p.addError(fmt.Sprintf("expected type specifier, got %s", p.curToken.Type))
		return nil
	}
	returnType := p.curToken.Literal
	p.nextToken()

	if !p.curTokenIs(lexer.TokenIdent) {
		p.addError(fmt.Sprintf("expected function name, got %s", p.curToken.Type))
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()

	// Parameter list: () or (void)
	if !p.expect(lexer.TokenLParen) {
		return nil
	}
	if p.curTokenIs(lexer.TokenVoid) {
		p.nextToken()
	}
	if !p.expect(lexer.TokenRParen) {
		return nil
	}

	if !p.curTokenIs(lexer.TokenLBrace) {
		p.addError(fmt.Sprintf("expected '{', got %s", p.curToken.Type))
		return nil
	}
	body := p.parseBody()

	return &cabs.FunDef{
		ReturnType: returnType,
		Name:       name,
		Body:       body,
	}
}

func (p *Parser) isTypeSpecifier() bool {
	switch p.curToken.Type {
	case lexer.TokenInt_, lexer.TokenVoid:
		return true
	}
	return false
}

func (p *Parser) parseBody() []cabs.Stmt {
	body := []cabs.Stmt{}

	p.nextToken() // consume '{'

	for !p.curTokenIs(lexer.TokenRBrace) && !p.curTokenIs(lexer.TokenEOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			body = append(body, stmt)
		}
	}

	p.nextToken() // consume '}'

	return body
}

func (p *Parser) parseStatement() cabs.Stmt {
	switch p.curToken.Type {
	case lexer.TokenReturn:
		return p.parseReturnStatement()
	case lexer.TokenInt_:
		return p.parseDeclaration()
	default:
		p.addError(fmt.Sprintf("unexpected token in statement: %s", p.curToken.Type))
		p.nextToken()
		return nil
	}
}

func (p *Parser) parseReturnStatement() cabs.Stmt {
	p.nextToken() // consume 'return'

	expr := p.parseExpression(0)
	if expr == nil {
		return nil
	}

	if !p.expect(lexer.TokenSemicolon) {
		return nil
	}

	return cabs.Return{Expr: expr}
}

func (p *Parser) parseDeclaration() cabs.Stmt {
	varType := p.curToken.Literal
	p.nextToken() // consume 'int'

	if !p.curTokenIs(lexer.TokenIdent) {
		p.addError(fmt.Sprintf("expected variable name, got %s", p.curToken.Type))
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()

	// Initializers would need '=' which the language does not lex; only the
	// uninitialized form parses.
	if !p.expect(lexer.TokenSemicolon) {
		return nil
	}

	return cabs.Declare{VarType: varType, Name: name}
}

// binaryPrecedence returns the precedence for a binary operator token,
// or -1 if the token is not a binary operator. Higher binds tighter.
func binaryPrecedence(t lexer.TokenType) int {
	switch t {
	case lexer.TokenOr:
		return 1
	case lexer.TokenAnd:
		return 2
	case lexer.TokenEq, lexer.TokenNe:
		return 3
	case lexer.TokenLt, lexer.TokenLe, lexer.TokenGt, lexer.TokenGe:
		return 4
	case lexer.TokenPlus, lexer.TokenMinus:
		return 5
	case lexer.TokenStar, lexer.TokenSlash, lexer.TokenPercent:
		return 6
	}
	return -1
}

func binaryOp(t lexer.TokenType) cabs.BinaryOp {
	switch t {
	case lexer.TokenPlus:
		return cabs.OpAdd
	case lexer.TokenMinus:
		return cabs.OpSub
	case lexer.TokenStar:
		return cabs.OpMul
	case lexer.TokenSlash:
		return cabs.OpDiv
	case lexer.TokenPercent:
		return cabs.OpMod
	case lexer.TokenLt:
		return cabs.OpLt
	case lexer.TokenLe:
		return cabs.OpLe
	case lexer.TokenGt:
		return cabs.OpGt
	case lexer.TokenGe:
		return cabs.OpGe
	case lexer.TokenEq:
		return cabs.OpEq
	case lexer.TokenNe:
		return cabs.OpNe
	case lexer.TokenAnd:
		return cabs.OpAnd
	}
	return cabs.OpOr
}

// parseExpression implements precedence climbing. All binary operators are
// left-associative, so the recursive call requires strictly higher precedence.
func (p *Parser) parseExpression(minPrec int) cabs.Expr {
	left := p.parseFactor()
	if left == nil {
		return nil
	}

	for {
		prec := binaryPrecedence(p.curToken.Type)
		if prec < 0 || prec < minPrec {
			return left
		}
		op := binaryOp(p.curToken.Type)
		p.nextToken()

		right := p.parseExpression(prec + 1)
		if right == nil {
			return nil
		}
		left = cabs.Binary{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseFactor() cabs.Expr {
	switch p.curToken.Type {
	case lexer.TokenInt:
		lit := p.curToken.Literal
		p.nextToken()
		value, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			p.addError(fmt.Sprintf("invalid integer literal %q", lit))
			return nil
		}
		return cabs.Constant{Value: value}

	case lexer.TokenMinus:
		p.nextToken()
		inner := p.parseFactor()
		if inner == nil {
			return nil
		}
		return cabs.Unary{Op: cabs.OpNeg, Expr: inner}

	case lexer.TokenTilde:
		p.nextToken()
		inner := p.parseFactor()
		if inner == nil {
			return nil
		}
		return cabs.Unary{Op: cabs.OpBitNot, Expr: inner}

	case lexer.TokenNot:
		p.nextToken()
		inner := p.parseFactor()
		if inner == nil {
			return nil
		}
		return cabs.Unary{Op: cabs.OpNot, Expr: inner}

	case lexer.TokenLParen:
		p.nextToken()
		inner := p.parseExpression(0)
		if inner == nil {
			return nil
		}
		if !p.expect(lexer.TokenRParen) {
			return nil
		}
		return cabs.Paren{Expr: inner}
	}

	p.addError(fmt.Sprintf("expected expression, got %s", p.curToken.Type))
	return nil
}
