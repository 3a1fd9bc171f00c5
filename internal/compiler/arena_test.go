package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArenaDupIsIndependentCopy(t *testing.T) {
	a := newArena()
	src := []byte("hello")
	s := a.dup(string(src))
	src[0] = 'H'
	assert.Equal(t, "hello", s)
}

func TestArenaAllocReturnsZeroedDistinctNodes(t *testing.T) {
	a := newArena()
	n1 := a.alloc()
	n2 := a.alloc()
	assert.NotSame(t, n1, n2)
	assert.Equal(t, nkNone, n1.kind)
}

func TestArenaReset(t *testing.T) {
	a := newArena()
	a.dup("x")
	a.alloc()
	a.reset()
	assert.Empty(t, a.strs)
	assert.Empty(t, a.nodes)
}
