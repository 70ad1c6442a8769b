package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minicc/minicc/token"
)

type tokenCase struct {
	Input    string
	Expected []token.Token
}

func collect(src string) []token.Token {
	return Tokenize(src)
}

func TestTokenize_MatchesIncrementalNext(t *testing.T) {
	src := `int main() { return 1 + 2; }`
	toks := Tokenize(src)
	assert.Equal(t, token.EOF, toks[len(toks)-1].Kind)

	l := New(src)
	for i := 0; ; i++ {
		tok := l.Next()
		assert.Equal(t, toks[i], tok)
		if tok.Kind == token.EOF {
			break
		}
	}
}

func TestLexer_Operators(t *testing.T) {
	tests := []tokenCase{
		{
			Input: `+ - * / % = == != < > <= >=`,
			Expected: []token.Token{
				{Kind: token.PLUS}, {Kind: token.MINUS}, {Kind: token.STAR},
				{Kind: token.SLASH}, {Kind: token.PERCENT}, {Kind: token.ASSIGN},
				{Kind: token.EQ}, {Kind: token.NEQ}, {Kind: token.LT},
				{Kind: token.GT}, {Kind: token.LE}, {Kind: token.GE},
			},
		},
		{
			Input: `&& || ! & ++ -- += -=`,
			Expected: []token.Token{
				{Kind: token.AND}, {Kind: token.OR}, {Kind: token.NOT},
				{Kind: token.AMP}, {Kind: token.INC}, {Kind: token.DEC},
				{Kind: token.PLUSEQ}, {Kind: token.MINUSEQ},
			},
		},
	}

	for _, tc := range tests {
		got := collect(tc.Input)
		require := len(tc.Expected) + 1 // trailing EOF
		assert.Equal(t, require, len(got))
		for i, exp := range tc.Expected {
			assert.Equal(t, exp.Kind, got[i].Kind, "input %q token %d", tc.Input, i)
		}
		assert.Equal(t, token.EOF, got[len(got)-1].Kind)
	}
}

func TestLexer_KeywordsAndIdentifiers(t *testing.T) {
	got := collect(`int void if else while for return foo bar_1`)
	want := []token.Kind{
		token.INT, token.VOID, token.IF, token.ELSE, token.WHILE,
		token.FOR, token.RETURN, token.IDENT, token.IDENT, token.EOF,
	}
	assert.Equal(t, len(want), len(got))
	for i, k := range want {
		assert.Equal(t, k, got[i].Kind)
	}
	assert.Equal(t, "foo", got[7].Lexeme)
	assert.Equal(t, "bar_1", got[8].Lexeme)
}

func TestLexer_NumbersAndStrings(t *testing.T) {
	got := collect(`42 0 "hello\n" "a\"b"`)
	assert.Equal(t, token.NUMBER, got[0].Kind)
	assert.Equal(t, int64(42), got[0].Num)
	assert.Equal(t, token.NUMBER, got[1].Kind)
	assert.Equal(t, int64(0), got[1].Num)
	assert.Equal(t, token.STRING, got[2].Kind)
	assert.Equal(t, `hello\n`, got[2].Lexeme)
	assert.Equal(t, token.STRING, got[3].Kind)
	assert.Equal(t, `a\"b`, got[3].Lexeme)
}

func TestLexer_Comments(t *testing.T) {
	got := collect("1 // line comment\n2 /* block\ncomment */ 3")
	want := []int64{1, 2, 3}
	var nums []int64
	for _, tok := range got {
		if tok.Kind == token.NUMBER {
			nums = append(nums, tok.Num)
		}
	}
	assert.Equal(t, want, nums)
}

func TestLexer_LonePipeIsFatal(t *testing.T) {
	assert.Panics(t, func() {
		collect(`1 | 2`)
	})
}

func TestLexer_LineColProvenance(t *testing.T) {
	got := collect("int\nmain")
	assert.Equal(t, 1, got[0].Line)
	assert.Equal(t, 1, got[0].Col)
	assert.Equal(t, 2, got[1].Line)
	assert.Equal(t, 1, got[1].Col)
}
