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

// arena.go - scratch arena (gup/ptrbox in the original source).
//
// The arena owns every variable-length string and AST node produced
// during one compilation. Nodes and symbols hold non-owning references
// into it; nothing frees piecemeal, the whole arena is dropped at
// compile teardown. Go's GC would reclaim individual strings and nodes
// on its own, but keeping them arena-owned preserves the single-owner
// lifetime story the rest of the compiler is written against, and
// gives teardown one obvious place to happen.

type arena struct {
	strs  []string
	nodes []*node
}

func newArena() *arena {
	return &arena{}
}

// dup duplicates s into arena-owned storage and returns the copy. The
// original source backing s (a lexer accumulator buffer) may be reused
// or dropped immediately after this call.
func (a *arena) dup(s string) string {
	cp := string([]byte(s))
	a.strs = append(a.strs, cp)
	return cp
}

// alloc returns a freshly zeroed node owned by the arena.
func (a *arena) alloc() *node {
	n := &node{}
	a.nodes = append(a.nodes, n)
	return n
}

// reset drops every reference the arena holds. Call once, at teardown;
// nothing else synchronizes with it.
func (a *arena) reset() {
	a.strs = nil
	a.nodes = nil
}
