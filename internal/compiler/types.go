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

// types.go - program data types (gup/types.h in the original source).

// baseType is a program type besides the BAD sentinel.
type baseType int

const (
	typeBad baseType = iota
	typeVoid
	typeU8
	typeU16
	typeU32
	typeU64
)

func (b baseType) String() string {
	switch b {
	case typeVoid:
		return "void"
	case typeU8:
		return "u8"
	case typeU16:
		return "u16"
	case typeU32:
		return "u32"
	case typeU64:
		return "u64"
	default:
		return "bad"
	}
}

// datumType is the specific type of a piece of data: a base type plus
// a pointer depth. ptrDepth == 0 means "not a pointer"; each lexical
// '*' following the base type increases it by one. Any non-zero
// pointer depth promotes the machine size to 64 bits regardless of
// base, handled in codegen.go.
type datumType struct {
	base     baseType
	ptrDepth uint
}

func (d datumType) isPointer() bool {
	return d.ptrDepth > 0
}

// typeFromToken maps a lexical token kind to its base data type.
// Returns typeBad for anything that isn't a type keyword.
func typeFromToken(k tokenKind) baseType {
	switch k {
	case tokVoid:
		return typeVoid
	case tokU8:
		return typeU8
	case tokU16:
		return typeU16
	case tokU32:
		return typeU32
	case tokU64:
		return typeU64
	default:
		return typeBad
	}
}
