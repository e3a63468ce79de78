package editor

import (
	"strings"
	"testing"

	"github.com/dekarrin/stlc/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ExtractMethod_classifiesInputOutputAndReplacesRangeWithCall(t *testing.T) {
	src := "PROGRAM Test VAR a : DINT; b : DINT; END_VAR b := a + 1; END_PROGRAM"
	tab := buildTable(t, symbols.FileID(1), src)

	start := strings.Index(src, "b := a + 1;")
	end := start + len("b := a + 1;")

	source := NewSource(map[symbols.FileID]string{1: src})
	byFile, err := ExtractMethod([]*symbols.Table{tab}, source, symbols.FileID(1), start, end, "ComputeB", "FUNCTION", "END_FUNCTION", 0)
	require.NoError(t, err)

	out := Apply(src, byFile[symbols.FileID(1)])
	assert.Contains(t, out, "FUNCTION ComputeB")
	assert.Contains(t, out, "VAR_INPUT")
	assert.Contains(t, out, "a : DINT;")
	assert.Contains(t, out, "VAR_OUTPUT")
	assert.Contains(t, out, "b : DINT;")
	assert.Contains(t, out, "ComputeB(a := a, b => b);")
}

func Test_ExtractMethod_rejectsEmptyRange(t *testing.T) {
	src := "PROGRAM Test VAR a : DINT; END_VAR a := 1; END_PROGRAM"
	tab := buildTable(t, symbols.FileID(1), src)
	source := NewSource(map[symbols.FileID]string{1: src})

	_, err := ExtractMethod([]*symbols.Table{tab}, source, symbols.FileID(1), 10, 10, "X", "FUNCTION", "END_FUNCTION", 0)
	assert.Error(t, err)
}

func Test_ClassifyOccurrences_distinguishesReadWriteInOut(t *testing.T) {
	assert.Equal(t, classInput, classifyOccurrences("y := x + 1;", "x"))
	assert.Equal(t, classOutput, classifyOccurrences("y := x + 1;", "y"))
	assert.Equal(t, classInOut, classifyOccurrences("z := z + 1;", "z"))
}
