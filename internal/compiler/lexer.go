/*
Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package compiler

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/gmofishsauce/gup/internal/diag"
)

const numBufMax = 22

// pushbackByteReader is a byte reader with a one-byte unread slot. It
// wraps a bufio.Reader the way the original pushback reader wraps an
// os.File: small and exact, one byte of lookahead and no more.
type pushbackByteReader struct {
	br    *bufio.Reader
	pb    byte
	hasPb bool
}

func newPushbackByteReader(r io.Reader) *pushbackByteReader {
	return &pushbackByteReader{br: bufio.NewReader(r)}
}

func (p *pushbackByteReader) ReadByte() (byte, error) {
	if p.hasPb {
		b := p.pb
		p.hasPb = false
		return b, nil
	}
	return p.br.ReadByte()
}

// UnreadByte pushes b back for the next ReadByte. Only one byte of
// pushback is ever outstanding at a time; the lexer never calls this
// twice in a row without an intervening read.
func (p *pushbackByteReader) UnreadByte(b byte) {
	if p.hasPb {
		panic("lexer: pushback byte reader: too many pushbacks")
	}
	p.hasPb = true
	p.pb = b
}

// lexer scans gup source text into tokens, one at a time. It tracks
// the current line for diagnostics and owns no allocation beyond a
// handful of growable scratch buffers; identifier and inline-asm text
// is handed off to the arena as soon as it's recognized.
type lexer struct {
	r     *pushbackByteReader
	arena *arena
	sink  *diag.Sink
	line  int
}

func newLexer(r io.Reader, a *arena, sink *diag.Sink) *lexer {
	return &lexer{r: newPushbackByteReader(r), arena: a, sink: sink, line: 1}
}

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\f', '\n':
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func isIdentChar(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

// nom consumes one byte from the input. In skip-whitespace mode,
// whitespace bytes are silently discarded (each newline still bumps
// the line counter) until a non-whitespace byte or EOF is seen. In
// accept-whitespace mode every byte, whitespace or not, is returned.
// Returns ok=false at end of file.
func (lx *lexer) nom(acceptWS bool) (b byte, ok bool) {
	for {
		// A byte replayed from the pushback slot was already counted
		// when it was first read.
		replay := lx.r.hasPb
		c, err := lx.r.ReadByte()
		if err != nil {
			return 0, false
		}
		if c == '\n' && !replay {
			lx.line++
		}
		if isWhitespace(c) && !acceptWS {
			continue
		}
		return c, true
	}
}

// single-byte punctuation tokens, excluding '@' (starts inline-asm)
// and the digit/identifier lead bytes, which get their own sub-scans.
var punctuation = map[byte]tokenKind{
	';': tokSemi,
	'*': tokStar,
	'+': tokPlus,
	'-': tokMinus,
	'/': tokSlash,
	'(': tokLParen,
	')': tokRParen,
	'{': tokLBrace,
	'}': tokRBrace,
	'<': tokLT,
	'>': tokGT,
	'.': tokDot,
}

// scan returns the next token. eof is true at a clean end of file
// (tok is then meaningless); err wraps diag.UnexpectedEOF or
// diag.UnexpectedToken on a scanning failure.
func (lx *lexer) scan() (tok token, eof bool, err error) {
	b, ok := lx.nom(false)
	if !ok {
		return token{}, true, nil
	}

	switch {
	case b == '@':
		tok, err = lx.scanASM()
	case punctuation[b] != tokNone || b == ';':
		tok, err = token{kind: punctuation[b], ch: b}, nil
	case isDigit(b):
		tok, err = lx.scanNumber(b)
	case isAlpha(b):
		tok, err = lx.scanIdent(b)
	default:
		err = lx.sink.Errorf(diag.UnexpectedToken, lx.line, "unexpected character %q", b)
	}
	return tok, false, err
}

// scanASM implements the "@ ... ;" inline-assembly literal. The byte
// immediately following '@' is consumed and pushed back unless it's a
// space, so "@ mov rax, 1;" and "@mov rax, 1;" both scan the same body.
func (lx *lexer) scanASM() (token, error) {
	sep, ok := lx.nom(true)
	if ok && sep != ' ' {
		lx.r.UnreadByte(sep)
	}

	var buf strings.Builder
	for {
		c, ok := lx.nom(true)
		if !ok {
			lx.sink.Warnf(lx.line, "missing a semicolon?")
			return token{}, lx.sink.Errorf(diag.UnexpectedEOF, lx.line, "unexpected end of file")
		}
		if c == ';' {
			break
		}
		buf.WriteByte(c)
	}
	return token{kind: tokASM, str: lx.arena.dup(buf.String())}, nil
}

// scanNumber implements the fixed-size decimal literal scanner. '_' is
// accepted as a silent digit-group separator. Overflow of a signed
// 64-bit integer is rejected rather than wrapped.
func (lx *lexer) scanNumber(lead byte) (token, error) {
	var buf [numBufMax]byte
	n := 0
	buf[n] = lead
	n++

	for {
		c, ok := lx.nom(true)
		if !ok {
			break
		}
		if c == '_' {
			continue
		}
		if !isDigit(c) {
			lx.r.UnreadByte(c)
			break
		}
		if n >= numBufMax {
			return token{}, lx.sink.Errorf(diag.UnexpectedToken, lx.line, "number literal too long")
		}
		buf[n] = c
		n++
	}

	val, err := strconv.ParseInt(string(buf[:n]), 10, 64)
	if err != nil {
		return token{}, lx.sink.Errorf(diag.UnexpectedToken, lx.line, "invalid number %q: %v", string(buf[:n]), err)
	}
	return token{kind: tokNumber, num: val}, nil
}

// scanIdent implements the identifier scanner. The accumulated text is
// duplicated into the arena and, on a keyword-table match, the token's
// kind is rewritten in place from tokIdent to the keyword's kind.
func (lx *lexer) scanIdent(lead byte) (token, error) {
	var buf strings.Builder
	buf.WriteByte(lead)

	for {
		c, ok := lx.nom(true)
		if !ok {
			break
		}
		if !isIdentChar(c) {
			lx.r.UnreadByte(c)
			break
		}
		buf.WriteByte(c)
	}

	text := lx.arena.dup(buf.String())
	if kw, isKeyword := keywords[text]; isKeyword {
		return token{kind: kw, str: text}, nil
	}
	return token{kind: tokIdent, str: text}, nil
}
