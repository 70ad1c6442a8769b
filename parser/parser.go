// Package parser implements minicc's recursive-descent parser.
//
// Structurally this follows the precedence-cascade shape of
// j-alexander3375-Lotus/src/parser.go (current()/peek()/advance()/expect(),
// one parse function per precedence level calling the next-tighter level),
// generalized to the nine-level table minicc's grammar actually needs
// (assignment, logical-or, logical-and, equality, relational, additive,
// multiplicative, unary, primary) instead of Lotus's own language grammar.
package parser

import (
	"fmt"

	"github.com/minicc/minicc/ast"
	"github.com/minicc/minicc/diagnostics"
	"github.com/minicc/minicc/lexer"
	"github.com/minicc/minicc/token"
)

// Parser consumes tokens from a Lexer one lookahead token at a time.
type Parser struct {
	lex *lexer.Lexer
	cur token.Token
}

// New creates a Parser over src and primes the first lookahead token.
func New(src string) *Parser {
	p := &Parser{lex: lexer.New(src)}
	p.cur = p.lex.Next()
	return p
}

func (p *Parser) advance() token.Token {
	t := p.cur
	p.cur = p.lex.Next()
	return t
}

func (p *Parser) at(k token.Kind) bool {
	return p.cur.Kind == k
}

func (p *Parser) fatalf(format string, args ...any) {
	panic(diagnostics.New(diagnostics.Syntactic, p.cur.Line, p.cur.Col, fmt.Sprintf(format, args...)))
}

func (p *Parser) expect(k token.Kind) token.Token {
	if p.cur.Kind != k {
		p.fatalf("expected %s but found %s", k, p.cur.Kind)
	}
	return p.advance()
}

// Parse parses a full program: a sequence of global declarations and
// function definitions terminated by end-of-input.
func Parse(src string) (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if d, ok := r.(*diagnostics.Diagnostic); ok {
				err = d
				return
			}
			panic(r)
		}
	}()
	p := New(src)
	prog = p.parseProgram()
	return prog, nil
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.at(token.EOF) {
		decl, isFunc := p.parseTopLevel()
		if isFunc {
			prog.Functions = append(prog.Functions, decl.(*ast.FunctionDecl))
		} else {
			prog.Globals = append(prog.Globals, decl.(*ast.VariableDecl))
		}
	}
	return prog
}

// parseTopLevel disambiguates a function definition from a global variable
// declaration by consuming the type and identifier, then peeking for '('.
func (p *Parser) parseTopLevel() (ast.Node, bool) {
	isVoid := false
	switch p.cur.Kind {
	case token.INT:
		p.advance()
	case token.VOID:
		p.advance()
		isVoid = true
	default:
		p.fatalf("expected 'int' or 'void' at top level but found %s", p.cur.Kind)
	}

	name := p.expect(token.IDENT).Lexeme

	if p.at(token.LPAREN) {
		return p.parseFunctionTail(name, isVoid), true
	}

	if isVoid {
		p.fatalf("'void' is not a valid variable type")
	}
	return p.parseVariableDeclTail(name), false
}

func (p *Parser) parseFunctionTail(name string, isVoid bool) *ast.FunctionDecl {
	p.expect(token.LPAREN)
	var params []string
	if !p.at(token.RPAREN) {
		for {
			if p.at(token.INT) {
				p.advance() // redundant 'int' accepted and ignored
			}
			params = append(params, p.expect(token.IDENT).Lexeme)
			if p.at(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return &ast.FunctionDecl{Name: name, Params: params, Body: body, IsVoid: isVoid}
}

// parseVariableDeclTail parses the remainder of a declaration after `int
// name` has already been consumed: optional `[N]`, optional `= initializer`,
// required `;`.
func (p *Parser) parseVariableDeclTail(name string) *ast.VariableDecl {
	decl := &ast.VariableDecl{Name: name}
	if p.at(token.LBRACKET) {
		p.advance()
		sizeTok := p.expect(token.NUMBER)
		decl.IsArray = true
		decl.ArraySize = sizeTok.Num
		p.expect(token.RBRACKET)
	}
	if p.at(token.ASSIGN) {
		p.advance()
		decl.Initializer = p.parseExpr()
	}
	p.expect(token.SEMI)
	return decl
}

func (p *Parser) parseBlock() *ast.Block {
	p.expect(token.LBRACE)
	block := &ast.Block{}
	for !p.at(token.RBRACE) {
		block.Statements = append(block.Statements, p.parseStatement())
	}
	p.expect(token.RBRACE)
	return block
}

func (p *Parser) parseStatement() ast.Node {
	switch p.cur.Kind {
	case token.INT:
		p.advance()
		name := p.expect(token.IDENT).Lexeme
		return p.parseVariableDeclTail(name)
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		return p.parseReturn()
	case token.LBRACE:
		return p.parseBlock()
	default:
		expr := p.parseExpr()
		p.expect(token.SEMI)
		return expr
	}
}

func (p *Parser) parseIf() ast.Node {
	p.advance()
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	then := p.parseStatement()
	node := &ast.If{Condition: cond, Then: then}
	if p.at(token.ELSE) {
		p.advance()
		node.Else = p.parseStatement()
	}
	return node
}

func (p *Parser) parseWhile() ast.Node {
	p.advance()
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseStatement()
	return &ast.While{Condition: cond, Body: body}
}

func (p *Parser) parseFor() ast.Node {
	p.advance()
	p.expect(token.LPAREN)

	var init ast.Node
	if !p.at(token.SEMI) {
		if p.at(token.INT) {
			p.advance()
			name := p.expect(token.IDENT).Lexeme
			decl := &ast.VariableDecl{Name: name}
			if p.at(token.ASSIGN) {
				p.advance()
				decl.Initializer = p.parseExpr()
			}
			init = decl
		} else {
			init = p.parseExpr()
		}
	}
	p.expect(token.SEMI)

	var cond ast.Node
	if !p.at(token.SEMI) {
		cond = p.parseExpr()
	}
	p.expect(token.SEMI)

	var update ast.Node
	if !p.at(token.RPAREN) {
		update = p.parseExpr()
	}
	p.expect(token.RPAREN)

	body := p.parseStatement()
	return &ast.For{Init: init, Condition: cond, Update: update, Body: body}
}

func (p *Parser) parseReturn() ast.Node {
	p.advance()
	node := &ast.Return{}
	if !p.at(token.SEMI) {
		node.Value = p.parseExpr()
	}
	p.expect(token.SEMI)
	return node
}

// Expression grammar, lowest to highest precedence:
// assignment > logical-or > logical-and > equality > relational >
// additive > multiplicative > unary-prefix > primary

func (p *Parser) parseExpr() ast.Node {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Node {
	left := p.parseLogicalOr()

	if p.at(token.ASSIGN) || p.at(token.PLUSEQ) || p.at(token.MINUSEQ) {
		switch left.(type) {
		case *ast.VariableRef, *ast.ArrayAccess:
		default:
			p.fatalf("invalid assignment target")
		}
	}

	switch p.cur.Kind {
	case token.ASSIGN:
		p.advance()
		right := p.parseAssignment()
		return &ast.Assignment{Left: left, Right: right, Op: ast.OpPlain}
	case token.PLUSEQ:
		p.advance()
		right := p.parseAssignment()
		return &ast.Assignment{Left: left, Right: right, Op: ast.OpPlus}
	case token.MINUSEQ:
		p.advance()
		right := p.parseAssignment()
		return &ast.Assignment{Left: left, Right: right, Op: ast.OpMinus}
	}
	return left
}

func (p *Parser) parseLogicalOr() ast.Node {
	left := p.parseLogicalAnd()
	for p.at(token.OR) {
		op := p.advance()
		right := p.parseLogicalAnd()
		left = &ast.BinaryOp{Operator: op.Kind.String(), Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Node {
	left := p.parseEquality()
	for p.at(token.AND) {
		op := p.advance()
		right := p.parseEquality()
		left = &ast.BinaryOp{Operator: op.Kind.String(), Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseEquality() ast.Node {
	left := p.parseRelational()
	for p.at(token.EQ) || p.at(token.NEQ) {
		op := p.advance()
		right := p.parseRelational()
		left = &ast.BinaryOp{Operator: op.Kind.String(), Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseRelational() ast.Node {
	left := p.parseAdditive()
	for p.at(token.LT) || p.at(token.GT) || p.at(token.LE) || p.at(token.GE) {
		op := p.advance()
		right := p.parseAdditive()
		left = &ast.BinaryOp{Operator: op.Kind.String(), Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Node {
	left := p.parseMultiplicative()
	for p.at(token.PLUS) || p.at(token.MINUS) {
		op := p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryOp{Operator: op.Kind.String(), Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Node {
	left := p.parseUnary()
	for p.at(token.STAR) || p.at(token.SLASH) || p.at(token.PERCENT) {
		op := p.advance()
		right := p.parseUnary()
		left = &ast.BinaryOp{Operator: op.Kind.String(), Left: left, Right: right}
	}
	return left
}

// parseUnary handles `-x`, `!x`, and prefix `++x`/`--x`. Prefix inc/dec are
// desugared here into an assignment node (spec §4.2, §9): `++x` becomes
// `x = x + 1`. No dedicated AST node exists for them.
func (p *Parser) parseUnary() ast.Node {
	switch p.cur.Kind {
	case token.MINUS:
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryOp{Operator: "-", Operand: operand}
	case token.NOT:
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryOp{Operator: "!", Operand: operand}
	case token.INC, token.DEC:
		op := p.advance()
		name := p.expectIdentAfter(op.Kind)
		sign := "+"
		if op.Kind == token.DEC {
			sign = "-"
		}
		ref := &ast.VariableRef{Name: name, Line: op.Line, Col: op.Col}
		one := &ast.NumberLiteral{Value: 1}
		sum := &ast.BinaryOp{Operator: sign, Left: ref, Right: one}
		lvalue := &ast.VariableRef{Name: name, Line: op.Line, Col: op.Col}
		return &ast.Assignment{Left: lvalue, Right: sum, Op: ast.OpPlain}
	}
	return p.parsePrimary()
}

func (p *Parser) expectIdentAfter(k token.Kind) string {
	if !p.at(token.IDENT) {
		p.fatalf("expected identifier after '%s' but found %s", k, p.cur.Kind)
	}
	return p.advance().Lexeme
}

func (p *Parser) parsePrimary() ast.Node {
	switch p.cur.Kind {
	case token.NUMBER:
		tok := p.advance()
		return &ast.NumberLiteral{Value: tok.Num}
	case token.STRING:
		tok := p.advance()
		return &ast.StringLiteral{Value: tok.Lexeme}
	case token.AMP:
		p.advance()
		name := p.expectIdentAfter(token.AMP)
		return &ast.AddressOf{Name: name}
	case token.LPAREN:
		p.advance()
		expr := p.parseExpr()
		p.expect(token.RPAREN)
		return expr
	case token.IDENT:
		identTok := p.advance()
		name := identTok.Lexeme
		switch p.cur.Kind {
		case token.LPAREN:
			p.advance()
			var args []ast.Node
			if !p.at(token.RPAREN) {
				for {
					args = append(args, p.parseExpr())
					if p.at(token.COMMA) {
						p.advance()
						continue
					}
					break
				}
			}
			p.expect(token.RPAREN)
			return &ast.Call{Callee: name, Args: args}
		case token.LBRACKET:
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBRACKET)
			return &ast.ArrayAccess{Array: name, Index: idx, Line: identTok.Line, Col: identTok.Col}
		default:
			return &ast.VariableRef{Name: name, Line: identTok.Line, Col: identTok.Col}
		}
	}
	p.fatalf("expected expression but found %s", p.cur.Kind)
	panic("unreachable")
}
