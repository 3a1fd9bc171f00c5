package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmofishsauce/gup/internal/diag"
)

func compileString(t *testing.T, src string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	st := newStateFromReader(strings.NewReader(src), &out, diag.New("test"))
	err := st.p.run()
	require.NoError(t, st.em.w.Flush())
	return out.String(), err
}

func TestParseInlineAsmOnly(t *testing.T) {
	out, err := compileString(t, "@ mov rax, 60;")
	require.NoError(t, err)
	assert.Contains(t, out, "[section .text]")
	assert.Contains(t, out, "\tmov rax, 60\n")
}

func TestParsePublicProcedureWithReturn(t *testing.T) {
	out, err := compileString(t, "pub\nproc main -> u64 {\nreturn 0;\n}")
	require.NoError(t, err)
	assert.Contains(t, out, "[global main]")
	assert.Contains(t, out, "main:\n")
	assert.Contains(t, out, "mov rax, 0")
	assert.Contains(t, out, "ret")
	// the epilogue must not double-emit ret after an explicit return
	assert.Equal(t, 1, strings.Count(out, "ret"))
}

func TestParseGlobalPointerVariable(t *testing.T) {
	out, err := compileString(t, "u64 * counter;")
	require.NoError(t, err)
	assert.Contains(t, out, "[section .data]")
	assert.Contains(t, out, "counter: dq 0")
}

func TestParseLoopWithBreakAndContinue(t *testing.T) {
	out, err := compileString(t, "proc spin -> void {\nloop {\ncontinue;\nbreak;\n}\n}")
	require.NoError(t, err)
	assert.Contains(t, out, "L.0:")
	assert.Contains(t, out, "\tjmp L.0\n")
	assert.Contains(t, out, "\tjmp L.0.1\n")
	assert.Contains(t, out, "L.0.1:")
}

func TestParseNestedLoopsUseDistinctLabels(t *testing.T) {
	src := "proc spin -> void {\nloop {\nloop {\nbreak;\n}\nbreak;\n}\n}"
	out, err := compileString(t, src)
	require.NoError(t, err)
	// inner loop is L.1, outer is L.0; the outer break must still
	// target L.0.1 even though the inner loop opened and closed first
	assert.Contains(t, out, "L.0:")
	assert.Contains(t, out, "L.1:")
	assert.Contains(t, out, "\tjmp L.1.1\n")
	assert.Contains(t, out, "\tjmp L.0.1\n")
}

func TestParseStructDefinitionAndInstance(t *testing.T) {
	src := "struct point {\nu32 x;\nu32 y;\n}\nstruct point origin;"
	out, err := compileString(t, src)
	require.NoError(t, err)
	assert.Contains(t, out, "origin.x: dd 0")
	assert.Contains(t, out, "origin.y: dd 0")
}

func TestParseForwardProcedureDeclaration(t *testing.T) {
	src := "proc helper -> void;\nproc main -> void {\nhelper();\n}"
	out, err := compileString(t, src)
	require.NoError(t, err)
	assert.Contains(t, out, "\tcall helper\n")
}

func TestParseBreakOutsideLoopIsError(t *testing.T) {
	_, err := compileString(t, "proc f -> void {\nbreak;\n}")
	require.Error(t, err)
	var derr *diag.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, diag.ScopeViolation, derr.Kind)
}

func TestParseUndefinedCallIsError(t *testing.T) {
	_, err := compileString(t, "proc f -> void {\nghost();\n}")
	require.Error(t, err)
	var derr *diag.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, diag.UndefinedReference, derr.Kind)
}

func TestParseMissingClosingBraceIsError(t *testing.T) {
	_, err := compileString(t, "proc f -> void {\n")
	require.Error(t, err)
}

func TestParseLocalVariableOutsideFileScopeIsError(t *testing.T) {
	_, err := compileString(t, "proc f -> void {\nu32 x;\n}")
	require.Error(t, err)
	var derr *diag.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, diag.ScopeViolation, derr.Kind)
}

func TestParseStructFieldAccessChain(t *testing.T) {
	src := "struct point {\nu32 x;\nu32 y;\n}\nstruct point origin;\norigin.x;"
	_, err := compileString(t, src)
	require.NoError(t, err)
}
