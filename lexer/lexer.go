// Package lexer turns minicc source text into a stream of tokens.
//
// The Lexer is driven on demand by the parser, which holds the one-token
// lookahead. Whitespace and both comment forms are skipped transparently;
// line numbers advance on every '\n' encountered in a skipped span.
package lexer

import (
	"fmt"

	"github.com/minicc/minicc/diagnostics"
	"github.com/minicc/minicc/token"
)

// Lexer scans a source buffer into tokens with line/column provenance.
type Lexer struct {
	src  []byte
	pos  int
	line int
	col  int
}

// New creates a Lexer over src, positioned before the first byte.
func New(src string) *Lexer {
	return &Lexer{src: []byte(src), pos: 0, line: 1, col: 1}
}

// Tokenize scans src to completion and returns every token, including the
// trailing EOF. The parser never calls this — it drives a Lexer one token at
// a time — this exists for callers (e.g. compilation stats) that want a
// standalone count and timing of the tokenize phase.
func Tokenize(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekByteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

func (l *Lexer) fatalf(format string, args ...any) {
	panic(diagnostics.New(diagnostics.Lexical, l.line, l.col, fmt.Sprintf(format, args...)))
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isAlpha(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isAlnum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for isSpace(l.peekByte()) {
			l.advance()
		}
		if l.peekByte() == '/' && l.peekByteAt(1) == '/' {
			for l.pos < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
			continue
		}
		if l.peekByte() == '/' && l.peekByteAt(1) == '*' {
			l.advance()
			l.advance()
			for l.pos < len(l.src) && !(l.peekByte() == '*' && l.peekByteAt(1) == '/') {
				l.advance()
			}
			if l.pos < len(l.src) {
				l.advance()
				l.advance()
			}
			continue
		}
		break
	}
}

// Next scans and returns the next token, advancing the lexer past it.
func (l *Lexer) Next() token.Token {
	l.skipWhitespaceAndComments()

	line, col := l.line, l.col
	if l.pos >= len(l.src) {
		return token.Token{Kind: token.EOF, Line: line, Col: col}
	}

	b := l.peekByte()

	switch {
	case isDigit(b):
		return l.lexNumber(line, col)
	case isAlpha(b):
		return l.lexIdentOrKeyword(line, col)
	case b == '"':
		return l.lexString(line, col)
	}

	switch b {
	case '+':
		l.advance()
		if l.peekByte() == '+' {
			l.advance()
			return token.Token{Kind: token.INC, Lexeme: "++", Line: line, Col: col}
		}
		if l.peekByte() == '=' {
			l.advance()
			return token.Token{Kind: token.PLUSEQ, Lexeme: "+=", Line: line, Col: col}
		}
		return token.Token{Kind: token.PLUS, Lexeme: "+", Line: line, Col: col}
	case '-':
		l.advance()
		if l.peekByte() == '-' {
			l.advance()
			return token.Token{Kind: token.DEC, Lexeme: "--", Line: line, Col: col}
		}
		if l.peekByte() == '=' {
			l.advance()
			return token.Token{Kind: token.MINUSEQ, Lexeme: "-=", Line: line, Col: col}
		}
		return token.Token{Kind: token.MINUS, Lexeme: "-", Line: line, Col: col}
	case '*':
		l.advance()
		return token.Token{Kind: token.STAR, Lexeme: "*", Line: line, Col: col}
	case '/':
		l.advance()
		return token.Token{Kind: token.SLASH, Lexeme: "/", Line: line, Col: col}
	case '%':
		l.advance()
		return token.Token{Kind: token.PERCENT, Lexeme: "%", Line: line, Col: col}
	case '=':
		l.advance()
		if l.peekByte() == '=' {
			l.advance()
			return token.Token{Kind: token.EQ, Lexeme: "==", Line: line, Col: col}
		}
		return token.Token{Kind: token.ASSIGN, Lexeme: "=", Line: line, Col: col}
	case '!':
		l.advance()
		if l.peekByte() == '=' {
			l.advance()
			return token.Token{Kind: token.NEQ, Lexeme: "!=", Line: line, Col: col}
		}
		return token.Token{Kind: token.NOT, Lexeme: "!", Line: line, Col: col}
	case '<':
		l.advance()
		if l.peekByte() == '=' {
			l.advance()
			return token.Token{Kind: token.LE, Lexeme: "<=", Line: line, Col: col}
		}
		return token.Token{Kind: token.LT, Lexeme: "<", Line: line, Col: col}
	case '>':
		l.advance()
		if l.peekByte() == '=' {
			l.advance()
			return token.Token{Kind: token.GE, Lexeme: ">=", Line: line, Col: col}
		}
		return token.Token{Kind: token.GT, Lexeme: ">", Line: line, Col: col}
	case '&':
		l.advance()
		if l.peekByte() == '&' {
			l.advance()
			return token.Token{Kind: token.AND, Lexeme: "&&", Line: line, Col: col}
		}
		return token.Token{Kind: token.AMP, Lexeme: "&", Line: line, Col: col}
	case '|':
		l.advance()
		if l.peekByte() == '|' {
			l.advance()
			return token.Token{Kind: token.OR, Lexeme: "||", Line: line, Col: col}
		}
		l.fatalf("unexpected character '|'")
	case '(':
		l.advance()
		return token.Token{Kind: token.LPAREN, Lexeme: "(", Line: line, Col: col}
	case ')':
		l.advance()
		return token.Token{Kind: token.RPAREN, Lexeme: ")", Line: line, Col: col}
	case '{':
		l.advance()
		return token.Token{Kind: token.LBRACE, Lexeme: "{", Line: line, Col: col}
	case '}':
		l.advance()
		return token.Token{Kind: token.RBRACE, Lexeme: "}", Line: line, Col: col}
	case '[':
		l.advance()
		return token.Token{Kind: token.LBRACKET, Lexeme: "[", Line: line, Col: col}
	case ']':
		l.advance()
		return token.Token{Kind: token.RBRACKET, Lexeme: "]", Line: line, Col: col}
	case ';':
		l.advance()
		return token.Token{Kind: token.SEMI, Lexeme: ";", Line: line, Col: col}
	case ',':
		l.advance()
		return token.Token{Kind: token.COMMA, Lexeme: ",", Line: line, Col: col}
	}

	l.fatalf("unexpected byte %q", b)
	panic("unreachable")
}

func (l *Lexer) lexNumber(line, col int) token.Token {
	start := l.pos
	for isDigit(l.peekByte()) {
		l.advance()
	}
	lit := string(l.src[start:l.pos])
	var v int64
	for _, c := range lit {
		v = v*10 + int64(c-'0')
	}
	return token.Token{Kind: token.NUMBER, Lexeme: lit, Num: v, Line: line, Col: col}
}

func (l *Lexer) lexIdentOrKeyword(line, col int) token.Token {
	start := l.pos
	for isAlnum(l.peekByte()) {
		l.advance()
	}
	lit := string(l.src[start:l.pos])
	if kw, ok := token.Keywords[lit]; ok {
		return token.Token{Kind: kw, Lexeme: lit, Line: line, Col: col}
	}
	return token.Token{Kind: token.IDENT, Lexeme: lit, Line: line, Col: col}
}

// lexString scans a double-quoted string literal. A backslash consumes and
// preserves the following character literally; escape decoding is left to
// the downstream assembler (spec §4.1).
func (l *Lexer) lexString(line, col int) token.Token {
	l.advance() // opening quote
	var buf []byte
	for {
		if l.pos >= len(l.src) {
			l.fatalf("unterminated string literal")
		}
		b := l.peekByte()
		if b == '"' {
			l.advance()
			break
		}
		if b == '\\' {
			buf = append(buf, l.advance())
			if l.pos < len(l.src) {
				buf = append(buf, l.advance())
			}
			continue
		}
		buf = append(buf, l.advance())
	}
	return token.Token{Kind: token.STRING, Lexeme: string(buf), Line: line, Col: col}
}
