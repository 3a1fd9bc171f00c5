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
	"fmt"

	"github.com/gmofishsauce/gup/internal/diag"
)

// codegen.go - the assembly emitter (gup/codegen.c + gup/arch/x86_64.c
// in the original source).

type section int

const (
	secNone section = iota
	secText
	secData
	secBSS
)

func (s section) String() string {
	switch s {
	case secText:
		return ".text"
	case secData:
		return ".data"
	case secBSS:
		return ".bss"
	default:
		return "none"
	}
}

// dsize is a NASM data-define size. bad marks a type that has no
// storage representation (used only for skipped struct fields).
type dsize int

const (
	dsizeBad dsize = iota
	dsizeByte
	dsizeWord
	dsizeDword
	dsizeQword
)

func (d dsize) directive() string {
	switch d {
	case dsizeByte:
		return "db"
	case dsizeWord:
		return "dw"
	case dsizeDword:
		return "dd"
	case dsizeQword:
		return "dq"
	default:
		return "bad"
	}
}

func (d dsize) retReg() string {
	switch d {
	case dsizeByte:
		return "al"
	case dsizeWord:
		return "ax"
	case dsizeDword:
		return "eax"
	case dsizeQword:
		return "rax"
	default:
		return "bad"
	}
}

func dsizeOf(dt datumType) dsize {
	if dt.isPointer() {
		return dsizeQword
	}
	switch dt.base {
	case typeU8:
		return dsizeByte
	case typeU16:
		return dsizeWord
	case typeU32:
		return dsizeDword
	case typeU64:
		return dsizeQword
	default:
		return dsizeBad
	}
}

// emitter lowers AST fragments to NASM-like text as soon as the parser
// produces them. It tracks the current output section and a stack of
// open loop labels so that break/continue inside a nested loop always
// reach the innermost enclosing one, even after a sibling loop inside
// it has opened and closed.
type emitter struct {
	w           *bufio.Writer
	sink        *diag.Sink
	section     section
	loopLabels  []int
	nextLoopNum int
}

func newEmitter(w *bufio.Writer, sink *diag.Sink) *emitter {
	return &emitter{w: w, sink: sink}
}

func (e *emitter) assertSection(want section) {
	if e.section != want {
		fmt.Fprintf(e.w, "[section %s]\n", want)
		e.section = want
	}
}

// compile lowers a single AST fragment. It mirrors cg_compile_node's
// dispatch, extended with the node kinds the original snapshot hadn't
// wired yet (RET, STRUCT, ACCESS, CONTINUE).
func (e *emitter) compile(n *node) error {
	switch n.kind {
	case nkASM:
		return e.emitASM(n)
	case nkPROC:
		return e.emitProc(n)
	case nkLOOP:
		return e.emitLoop(n)
	case nkGLOBVAR:
		return e.emitGlobvar(n)
	case nkBREAK:
		return e.emitBreak(n)
	case nkCONTINUE:
		return e.emitContinue(n)
	case nkCALL:
		return e.emitCall(n)
	case nkRET:
		return e.emitRet(n)
	case nkSTRUCT:
		return e.emitStruct(n)
	case nkACCESS:
		return e.emitAccess(n)
	default:
		return e.sink.Errorf(diag.BadAST, 0, "bad AST node [kind=%s]", n.kind)
	}
}

func (e *emitter) emitASM(n *node) error {
	if n.str == "" {
		return nil
	}
	e.assertSection(secText)
	fmt.Fprintf(e.w, "\t%s\n", n.str)
	return nil
}

func (e *emitter) emitProc(n *node) error {
	if n.epilogue {
		fmt.Fprintf(e.w, "\tret\n")
		return nil
	}
	if n.symbol == nil {
		return e.sink.Errorf(diag.BadAST, 0, "PROC node missing symbol")
	}
	e.assertSection(secText)
	if n.symbol.global {
		fmt.Fprintf(e.w, "[global %s]\n", n.str)
	}
	fmt.Fprintf(e.w, "%s:\n", n.str)
	return nil
}

// emitLoop handles both the loop-open and loop-close (epilogue)
// variants. Opening pushes a freshly numbered label pair onto the
// stack; closing pops it. Because the stack is LIFO, a loop nested and
// fully closed inside another leaves the outer loop's own label
// correctly on top afterward, unlike a single shared counter that
// never decrements.
func (e *emitter) emitLoop(n *node) error {
	e.assertSection(secText)
	if !n.epilogue {
		label := e.nextLoopNum
		e.nextLoopNum++
		e.loopLabels = append(e.loopLabels, label)
		fmt.Fprintf(e.w, "L.%d:\n", label)
		return nil
	}

	if len(e.loopLabels) == 0 {
		return e.sink.Errorf(diag.BadAST, 0, "LOOP epilogue with no open loop")
	}
	label := e.loopLabels[len(e.loopLabels)-1]
	e.loopLabels = e.loopLabels[:len(e.loopLabels)-1]
	fmt.Fprintf(e.w, "\tjmp L.%d\n", label)
	fmt.Fprintf(e.w, "L.%d.1:\n", label)
	return nil
}

func (e *emitter) emitGlobvar(n *node) error {
	if n.symbol == nil {
		return e.sink.Errorf(diag.BadAST, 0, "GLOBVAR node missing symbol")
	}
	size := dsizeOf(n.symbol.datatype)
	e.assertSection(secData)
	fmt.Fprintf(e.w, "%s: %s 0\n", n.symbol.name, size.directive())
	return nil
}

func (e *emitter) emitBreak(n *node) error {
	if len(e.loopLabels) == 0 {
		return e.sink.Errorf(diag.ScopeViolation, 0, "break outside of loop")
	}
	label := e.loopLabels[len(e.loopLabels)-1]
	fmt.Fprintf(e.w, "\tjmp L.%d.1\n", label)
	return nil
}

func (e *emitter) emitContinue(n *node) error {
	if len(e.loopLabels) == 0 {
		return e.sink.Errorf(diag.ScopeViolation, 0, "continue outside of loop")
	}
	label := e.loopLabels[len(e.loopLabels)-1]
	fmt.Fprintf(e.w, "\tjmp L.%d\n", label)
	return nil
}

func (e *emitter) emitCall(n *node) error {
	if n.symbol == nil {
		return e.sink.Errorf(diag.BadAST, 0, "CALL node missing symbol")
	}
	if n.symbol.kind != symFunc {
		return e.sink.Errorf(diag.UndefinedReference, 0, "%q is not a function", n.symbol.name)
	}
	fmt.Fprintf(e.w, "\tcall %s\n", n.symbol.name)
	return nil
}

func (e *emitter) emitRet(n *node) error {
	size := dsizeOf(n.symbol.datatype)
	fmt.Fprintf(e.w, "\tmov %s, %d\n", size.retReg(), n.num)
	fmt.Fprintf(e.w, "\tret\n")
	return nil
}

// emitStruct handles only the instance form; the definition form
// stores its field chain on the struct symbol's tree and emits
// nothing (there's no storage to reserve until an instance exists).
func (e *emitter) emitStruct(n *node) error {
	e.assertSection(secData)
	if n.right == nil {
		return nil
	}
	for cur := n.right.right; cur != nil; cur = cur.right {
		size := dsizeOf(datumType{base: cur.fieldType})
		if size == dsizeBad {
			continue
		}
		fmt.Fprintf(e.w, "%s.%s: %s 0\n", n.str, cur.str, size.directive())
	}
	return nil
}

// emitAccess prints a diagnostic trace of the access chain; semantic
// lowering of field access into load/store instructions is not yet
// implemented.
func (e *emitter) emitAccess(n *node) error {
	chain := n.str
	for cur := n.right; cur != nil; cur = cur.right {
		chain += "." + cur.str
	}
	e.sink.Debugf(0, "access %s", chain)
	return nil
}
