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
	"github.com/gmofishsauce/gup/internal/diag"
)

// parser.go - the recursive-descent parser (gup/parser.c in the
// original source). Every production allocates its AST fragment and
// hands it straight to the emitter: the parser never retains a
// whole-program tree.

// parser is the "bag o' context" the whole grammar runs against: the
// lexer it pulls tokens from, the symbol table and scope stack it
// builds up, the arena its nodes and strings live in, and the emitter
// every finished fragment is lowered through.
type parser struct {
	lx     *lexer
	arena  *arena
	syms   *symbolTable
	scopes scopeStack
	em     *emitter
	sink   *diag.Sink

	cur         token   // current token
	tail        token   // previous top-level token (lookbehind(1))
	thisFunc    *symbol // enclosing PROC, or nil at file scope
	unreachable bool    // suppresses the next PROC epilogue after RETURN
}

func newParser(lx *lexer, syms *symbolTable, a *arena, em *emitter, sink *diag.Sink) *parser {
	return &parser{lx: lx, arena: a, syms: syms, em: em, sink: sink}
}

// lookbehind returns the current token (n==0) or the previous
// top-level token (n==1). Deeper lookbehind isn't supported.
func (p *parser) lookbehind(n int) token {
	if n == 0 {
		return p.cur
	}
	return p.tail
}

// scan advances p.cur to the next token. eof is true at a clean end of
// file.
func (p *parser) scan() (eof bool, err error) {
	tok, eof, err := p.lx.scan()
	if err != nil || eof {
		return eof, err
	}
	p.cur = tok
	return false, nil
}

// expect scans the next token and requires it to be of kind want.
func (p *parser) expect(want tokenKind) error {
	eof, err := p.scan()
	if err != nil {
		return err
	}
	if eof {
		return p.sink.Errorf(diag.UnexpectedEOF, p.lx.line, "unexpected end of file")
	}
	if p.cur.kind != want {
		return p.sink.Errorf(diag.UnexpectedToken, p.lx.line, "expected %s, got %s instead", want, p.cur.kind)
	}
	return nil
}

// parseType parses a type keyword followed by zero or more '*'. On
// return p.cur holds the first token after the type.
func (p *parser) parseType() (datumType, error) {
	base := typeFromToken(p.cur.kind)
	if base == typeBad {
		return datumType{}, p.sink.Errorf(diag.UnexpectedToken, p.lx.line, "expected TYPE, got %s instead", p.cur.kind)
	}
	dt := datumType{base: base}

	eof, err := p.scan()
	if err != nil {
		return datumType{}, err
	}
	if eof {
		return datumType{}, p.sink.Errorf(diag.UnexpectedEOF, p.lx.line, "unexpected end of file")
	}

	for p.cur.kind == tokStar {
		dt.ptrDepth++
		eof, err := p.scan()
		if err != nil {
			return datumType{}, err
		}
		if eof {
			return datumType{}, p.sink.Errorf(diag.UnexpectedEOF, p.lx.line, "unexpected end of file")
		}
	}
	return dt, nil
}

func (p *parser) inLoop() bool {
	return p.scopes.top() == tokLoop
}

// run is the driver loop: scan, dispatch, repeat until EOF or error.
// After a clean EOF, a non-empty scope stack is reported as a missing
// closing brace.
func (p *parser) run() error {
	for {
		eof, err := p.scan()
		if err != nil {
			return err
		}
		if eof {
			break
		}
		p.sink.Debugf(p.lx.line, "token %s", p.cur.kind)
		if err := p.beginParse(); err != nil {
			return err
		}
		p.tail = p.cur
	}

	if p.scopes.top() != tokNone {
		p.sink.Warnf(p.lx.line, "missing '}'?")
		return p.sink.Errorf(diag.UnexpectedEOF, p.lx.line, "unexpected end of file")
	}
	return nil
}

// beginParse dispatches on the current token, the way begin_parse does
// in the original source.
func (p *parser) beginParse() error {
	switch p.cur.kind {
	case tokASM:
		return p.parseASM()
	case tokProc:
		return p.parseProc()
	case tokRBrace:
		return p.parseRBrace()
	case tokLoop:
		return p.parseLoop()
	case tokBreak:
		return p.parseBreak()
	case tokContinue:
		return p.parseContinue()
	case tokIdent:
		return p.parseIdentStmt()
	case tokReturn:
		return p.parseReturn()
	case tokStruct:
		return p.parseStruct()
	case tokPub, tokComment:
		return nil
	default:
		return p.parseVar()
	}
}

func (p *parser) parseASM() error {
	n := p.arena.alloc()
	n.kind = nkASM
	n.str = p.cur.str
	return p.em.compile(n)
}

// parseRBrace closes whichever scope is on top: a PROC epilogue
// (unless the body ended in an unreachable return), a LOOP epilogue,
// or nothing for a STRUCT definition's closing brace.
func (p *parser) parseRBrace() error {
	scope := p.scopes.pop()
	if scope == tokNone {
		return p.sink.Errorf(diag.ScopeViolation, p.lx.line, "unexpected '}', no open scope")
	}

	switch scope {
	case tokProc:
		p.thisFunc = nil
		if p.unreachable {
			p.unreachable = false
			return nil
		}
		n := p.arena.alloc()
		n.kind = nkPROC
		n.epilogue = true
		return p.em.compile(n)
	case tokLoop:
		n := p.arena.alloc()
		n.kind = nkLOOP
		n.epilogue = true
		return p.em.compile(n)
	default:
		return nil
	}
}

func (p *parser) pushScope(scopeTok tokenKind) error {
	if !p.scopes.push(scopeTok) {
		return p.sink.Errorf(diag.ScopeOverflow, p.lx.line, "maximum scope depth reached")
	}
	return nil
}

// parseProc handles `[pub] proc IDENT -> TYPE ;` (forward declaration)
// or `[pub] proc IDENT -> TYPE { ... }` (definition).
func (p *parser) parseProc() error {
	if p.thisFunc != nil {
		return p.sink.Errorf(diag.ScopeViolation, p.lx.line, "nested functions not supported")
	}
	isGlobal := p.lookbehind(1).kind == tokPub

	if err := p.expect(tokIdent); err != nil {
		return err
	}
	name := p.cur.str

	if err := p.expect(tokMinus); err != nil {
		return err
	}
	if err := p.expect(tokGT); err != nil {
		return err
	}
	if eof, err := p.scan(); err != nil || eof {
		if err != nil {
			return err
		}
		return p.sink.Errorf(diag.UnexpectedEOF, p.lx.line, "unexpected end of file")
	}

	dt, err := p.parseType()
	if err != nil {
		return err
	}

	sym := p.syms.insert(name, dt.base)
	sym.global = isGlobal
	sym.kind = symFunc
	sym.datatype = dt

	n := p.arena.alloc()
	n.kind = nkPROC
	n.str = name
	n.symbol = sym

	switch p.cur.kind {
	case tokSemi:
		return nil
	case tokLBrace:
		if err := p.pushScope(tokProc); err != nil {
			return err
		}
		p.thisFunc = sym
		return p.em.compile(n)
	default:
		return p.sink.Errorf(diag.UnexpectedToken, p.lx.line, "unexpected token %s", p.cur.kind)
	}
}

func (p *parser) parseLoop() error {
	if err := p.expect(tokLBrace); err != nil {
		return err
	}
	if err := p.pushScope(tokLoop); err != nil {
		return err
	}
	n := p.arena.alloc()
	n.kind = nkLOOP
	return p.em.compile(n)
}

func (p *parser) parseBreak() error {
	if !p.inLoop() {
		return p.sink.Errorf(diag.ScopeViolation, p.lx.line, "break statement not in a loop")
	}
	if err := p.expect(tokSemi); err != nil {
		return err
	}
	n := p.arena.alloc()
	n.kind = nkBREAK
	return p.em.compile(n)
}

func (p *parser) parseContinue() error {
	if !p.inLoop() {
		return p.sink.Errorf(diag.ScopeViolation, p.lx.line, "continue statement not in a loop")
	}
	if err := p.expect(tokSemi); err != nil {
		return err
	}
	n := p.arena.alloc()
	n.kind = nkCONTINUE
	return p.em.compile(n)
}

// parseVar handles a file-scope global variable declaration: `TYPE
// [*...] IDENT ;`. Only file scope is supported.
func (p *parser) parseVar() error {
	if p.scopes.top() != tokNone {
		return p.sink.Errorf(diag.ScopeViolation, p.lx.line, "only globals are supported")
	}

	dt, err := p.parseType()
	if err != nil {
		return err
	}
	if p.cur.kind != tokIdent {
		return p.sink.Errorf(diag.UnexpectedToken, p.lx.line, "expected IDENT, got %s instead", p.cur.kind)
	}

	sym := p.syms.insert(p.cur.str, dt.base)
	sym.kind = symVar
	sym.datatype = dt

	n := p.arena.alloc()
	n.kind = nkGLOBVAR
	n.symbol = sym

	if err := p.expect(tokSemi); err != nil {
		return err
	}
	return p.em.compile(n)
}

// parseIdentStmt handles an identifier appearing in statement
// position: either a call (IDENT ( )) or a struct field access chain
// (IDENT . IDENT ...).
func (p *parser) parseIdentStmt() error {
	ident := p.cur.str

	eof, err := p.scan()
	if err != nil {
		return err
	}
	if eof {
		return p.sink.Errorf(diag.UnexpectedEOF, p.lx.line, "unexpected end of file")
	}

	switch p.cur.kind {
	case tokLParen:
		return p.parseCall(ident)
	case tokDot:
		return p.parseStructAccess(ident)
	default:
		return p.sink.Errorf(diag.UnexpectedToken, p.lx.line, "unexpected token %s", p.cur.kind)
	}
}

// parseCall handles the `( )` tail of a call; arguments aren't
// supported yet.
func (p *parser) parseCall(ident string) error {
	if err := p.expect(tokRParen); err != nil {
		return err
	}

	sym := p.syms.lookupByName(ident)
	if sym == nil {
		return p.sink.Errorf(diag.UndefinedReference, p.lx.line, "undefined reference to function %s", ident)
	}

	n := p.arena.alloc()
	n.kind = nkCALL
	n.symbol = sym

	if err := p.expect(tokSemi); err != nil {
		return err
	}
	return p.em.compile(n)
}

// parseStructAccess parses a `.`-separated field access chain rooted
// at ident, chaining one ACCESS node per component via right.
func (p *parser) parseStructAccess(ident string) error {
	root := p.arena.alloc()
	root.kind = nkACCESS
	root.str = ident
	cur := root

	for {
		if err := p.expect(tokIdent); err != nil {
			return err
		}
		field := p.arena.alloc()
		field.kind = nkACCESS
		field.str = p.arena.dup(p.cur.str)
		cur.right = field
		cur = field

		eof, err := p.scan()
		if err != nil {
			return err
		}
		if eof {
			return p.sink.Errorf(diag.UnexpectedEOF, p.lx.line, "unexpected end of file")
		}
		if p.cur.kind == tokSemi {
			break
		}
		if p.cur.kind != tokDot {
			return p.sink.Errorf(diag.UnexpectedToken, p.lx.line, "expected DOT or SEMI, got %s instead", p.cur.kind)
		}
	}
	return p.em.compile(root)
}

// parseReturn handles `return NUMBER ;` inside a non-void function.
// Binary expressions aren't supported yet.
func (p *parser) parseReturn() error {
	if p.thisFunc == nil {
		return p.sink.Errorf(diag.ScopeViolation, p.lx.line, "cannot use RETURN outside of a function")
	}
	if p.thisFunc.datatype.base == typeVoid {
		return p.sink.Errorf(diag.ScopeViolation, p.lx.line, "cannot use RETURN in a VOID function")
	}

	if err := p.expect(tokNumber); err != nil {
		return err
	}
	n := p.arena.alloc()
	n.kind = nkRET
	n.num = p.cur.num
	n.symbol = p.thisFunc

	if err := p.expect(tokSemi); err != nil {
		return err
	}
	p.unreachable = true
	return p.em.compile(n)
}

// parseStruct handles three forms: a forward declaration (`struct
// IDENT ;`), an instance declaration (`struct IDENT IDENT ;`), and a
// definition (`struct IDENT { FIELD* }`).
func (p *parser) parseStruct() error {
	if err := p.expect(tokIdent); err != nil {
		return err
	}
	structName := p.arena.dup(p.cur.str)

	eof, err := p.scan()
	if err != nil {
		return err
	}
	if eof {
		return p.sink.Errorf(diag.UnexpectedEOF, p.lx.line, "unexpected end of file")
	}

	switch p.cur.kind {
	case tokSemi:
		return nil
	case tokIdent:
		instanceName := p.arena.dup(p.cur.str)
		if err := p.expect(tokSemi); err != nil {
			return err
		}
		sym := p.syms.lookupByName(structName)
		if sym == nil {
			return p.sink.Errorf(diag.UndefinedReference, p.lx.line, "undefined reference to struct %s", structName)
		}
		n := p.arena.alloc()
		n.kind = nkSTRUCT
		n.str = instanceName
		n.right = sym.tree
		return p.em.compile(n)
	case tokLBrace:
		return p.parseStructDef(structName)
	default:
		return p.sink.Errorf(diag.UnexpectedToken, p.lx.line, "unexpected token %s", p.cur.kind)
	}
}

func (p *parser) parseStructDef(structName string) error {
	if err := p.pushScope(tokStruct); err != nil {
		return err
	}

	sym := p.syms.insert(structName, typeVoid)
	sym.kind = symStruct

	root := p.arena.alloc()
	root.kind = nkSTRUCT
	root.str = structName
	root.symbol = sym
	cur := root

	for {
		eof, err := p.scan()
		if err != nil {
			return err
		}
		if eof {
			return p.sink.Errorf(diag.UnexpectedEOF, p.lx.line, "unexpected end of file")
		}
		if p.cur.kind == tokRBrace {
			if err := p.parseRBrace(); err != nil {
				return err
			}
			break
		}

		dt, err := p.parseType()
		if err != nil {
			return err
		}
		if p.cur.kind != tokIdent {
			return p.sink.Errorf(diag.UnexpectedToken, p.lx.line, "expected IDENT, got %s instead", p.cur.kind)
		}
		fieldName := p.arena.dup(p.cur.str)
		if err := p.expect(tokSemi); err != nil {
			return err
		}

		field := p.arena.alloc()
		field.kind = nkFIELD
		field.str = fieldName
		field.fieldType = dt.base
		cur.right = field
		cur = field
	}

	sym.tree = root
	return nil
}
