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

// Package compiler implements the single-pass front end and assembly
// emitter (gup/state.c, parser.c, codegen.c, and friends in the
// original source): lexer, symbol table, scope stack, parser, and
// emitter wired together into one compilation.
package compiler

import (
	"bufio"
	"io"
	"os"

	"github.com/gmofishsauce/gup/internal/diag"
)

// DefaultAsmOut is the generated assembly file name the CLI feeds to
// the external assembler.
const DefaultAsmOut = "gupgen.asm"

// State owns one compilation: the open input and output files, the
// symbol table, the arena, and the parser/emitter pair built on top of
// them. Compile runs the whole front end to completion.
type State struct {
	src  *os.File
	out  *os.File
	sink *diag.Sink

	arena *arena
	syms  *symbolTable
	em    *emitter
	p     *parser
}

// Open starts a compilation of the source at path, truncating and
// creating outPath for the generated assembly. Call Close when done,
// whether or not Compile succeeded.
func Open(path, outPath string, sink *diag.Sink) (*State, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, sink.Errorf(diag.IOFailure, 0, "open source file %s: %v", path, err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		src.Close()
		return nil, sink.Errorf(diag.IOFailure, 0, "create output file %s: %v", outPath, err)
	}

	a := newArena()
	syms := newSymbolTable()
	w := bufio.NewWriter(out)
	em := newEmitter(w, sink)
	lx := newLexer(src, a, sink)
	p := newParser(lx, syms, a, em, sink)

	return &State{src: src, out: out, sink: sink, arena: a, syms: syms, em: em, p: p}, nil
}

// Compile runs the parser to completion, lowering every fragment to
// assembly as it's recognized.
func (s *State) Compile() error {
	return s.p.run()
}

// Close flushes the generated assembly, closes the output file and then
// the input file, and finally drops the arena.
func (s *State) Close() error {
	flushErr := s.em.w.Flush()
	outErr := s.out.Close()
	srcErr := s.src.Close()
	s.arena.reset()

	switch {
	case flushErr != nil:
		return flushErr
	case outErr != nil:
		return outErr
	default:
		return srcErr
	}
}

// newStateFromReader exists only so tests can drive a parser over an
// in-memory source without touching the filesystem.
func newStateFromReader(r io.Reader, out io.Writer, sink *diag.Sink) *State {
	a := newArena()
	syms := newSymbolTable()
	w := bufio.NewWriter(out)
	em := newEmitter(w, sink)
	lx := newLexer(r, a, sink)
	p := newParser(lx, syms, a, em, sink)
	return &State{sink: sink, arena: a, syms: syms, em: em, p: p}
}
