package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmofishsauce/gup/internal/diag"
)

func newTestLexer(src string) *lexer {
	return newLexer(strings.NewReader(src), newArena(), diag.New("test"))
}

func TestLexerPunctuation(t *testing.T) {
	lx := newTestLexer("; * + - / ( ) { } < > .")
	want := []tokenKind{tokSemi, tokStar, tokPlus, tokMinus, tokSlash,
		tokLParen, tokRParen, tokLBrace, tokRBrace, tokLT, tokGT, tokDot}
	for _, k := range want {
		tok, eof, err := lx.scan()
		require.NoError(t, err)
		require.False(t, eof)
		assert.Equal(t, k, tok.kind)
	}
	_, eof, err := lx.scan()
	require.NoError(t, err)
	assert.True(t, eof)
}

func TestLexerNumber(t *testing.T) {
	lx := newTestLexer("1_000_000;")
	tok, eof, err := lx.scan()
	require.NoError(t, err)
	require.False(t, eof)
	require.Equal(t, tokNumber, tok.kind)
	assert.EqualValues(t, 1000000, tok.num)

	semi, _, err := lx.scan()
	require.NoError(t, err)
	assert.Equal(t, tokSemi, semi.kind)
}

func TestLexerNumberOverflowRejected(t *testing.T) {
	lx := newTestLexer("99999999999999999999;")
	_, _, err := lx.scan()
	assert.Error(t, err)
}

func TestLexerIdentAndKeywords(t *testing.T) {
	lx := newTestLexer("foo proc pub loop u64")
	tok, _, err := lx.scan()
	require.NoError(t, err)
	assert.Equal(t, tokIdent, tok.kind)
	assert.Equal(t, "foo", tok.str)

	for _, k := range []tokenKind{tokProc, tokPub, tokLoop, tokU64} {
		tok, _, err := lx.scan()
		require.NoError(t, err)
		assert.Equal(t, k, tok.kind)
	}
}

func TestLexerKeywordIsCaseSensitive(t *testing.T) {
	lx := newTestLexer("Proc")
	tok, _, err := lx.scan()
	require.NoError(t, err)
	assert.Equal(t, tokIdent, tok.kind)
}

func TestLexerInlineAsm(t *testing.T) {
	lx := newTestLexer("@ mov rax, 1;")
	tok, _, err := lx.scan()
	require.NoError(t, err)
	require.Equal(t, tokASM, tok.kind)
	assert.Equal(t, "mov rax, 1", tok.str)
}

func TestLexerInlineAsmNoSeparatorSpace(t *testing.T) {
	lx := newTestLexer("@mov rax, 1;")
	tok, _, err := lx.scan()
	require.NoError(t, err)
	require.Equal(t, tokASM, tok.kind)
	assert.Equal(t, "mov rax, 1", tok.str)
}

func TestLexerInlineAsmUnterminatedIsError(t *testing.T) {
	lx := newTestLexer("@ mov rax, 1")
	_, _, err := lx.scan()
	assert.Error(t, err)
	var derr *diag.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, diag.UnexpectedEOF, derr.Kind)
}

func TestLexerLineCounting(t *testing.T) {
	lx := newTestLexer("foo\nbar\nbaz")
	for i := 0; i < 3; i++ {
		_, _, err := lx.scan()
		require.NoError(t, err)
	}
	assert.Equal(t, 3, lx.line)
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	lx := newTestLexer("$")
	_, _, err := lx.scan()
	assert.Error(t, err)
	var derr *diag.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, diag.UnexpectedToken, derr.Kind)
}
