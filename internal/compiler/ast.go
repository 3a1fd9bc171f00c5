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

// ast.go - abstract syntax tree node taxonomy (gup/ast.h in the
// original source).

type nodeKind int

const (
	nkNone nodeKind = iota
	nkASM
	nkPROC
	nkLOOP
	nkGLOBVAR
	nkBREAK
	nkCONTINUE
	nkCALL
	nkRET
	nkSTRUCT
	nkFIELD
	nkACCESS
	nkASSIGN
	nkNUMBER
	nkEQUALITY
	nkIF
)

var nodeKindNames = [...]string{
	nkNone:     "NONE",
	nkASM:      "ASM",
	nkPROC:     "PROC",
	nkLOOP:     "LOOP",
	nkGLOBVAR:  "GLOBVAR",
	nkBREAK:    "BREAK",
	nkCONTINUE: "CONTINUE",
	nkCALL:     "CALL",
	nkRET:      "RET",
	nkSTRUCT:   "STRUCT",
	nkFIELD:    "FIELD",
	nkACCESS:   "ACCESS",
	nkASSIGN:   "ASSIGN",
	nkNUMBER:   "NUMBER",
	nkEQUALITY: "EQUALITY",
	nkIF:       "IF",
}

func (k nodeKind) String() string {
	if int(k) < 0 || int(k) >= len(nodeKindNames) || nodeKindNames[k] == "" {
		return "UNKNOWN"
	}
	return nodeKindNames[k]
}

// node is a single AST fragment. Every node is owned by the arena and
// consumed immediately by the emitter except the field chain attached
// to a STRUCT symbol's tree, which survives for the life of the
// compilation.
//
//	kind == nkASM                      -> str holds the inline-asm body
//	kind == nkPROC, nkSTRUCT, nkACCESS,
//	kind == nkFIELD                    -> str holds the name payload
//	kind == nkRET                      -> num holds the immediate
//	kind == nkPROC, nkLOOP             -> epilogue marks block-close
//	kind == nkFIELD                    -> fieldType holds the declared
//	                                       base type, right chains to
//	                                       the next field (nil-terminated)
//	kind == nkSTRUCT (instance form)   -> right is the struct definition's
//	                                       root node; the field chain
//	                                       starts at right.right
type node struct {
	kind      nodeKind
	left      *node
	right     *node
	symbol    *symbol
	epilogue  bool
	str       string
	num       int64
	fieldType baseType
}
