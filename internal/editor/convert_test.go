package editor

import (
	"testing"

	"github.com/dekarrin/stlc/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ConvertFunctionToFunctionBlock_rewritesKeywordsAndAddsOutput(t *testing.T) {
	src := "FUNCTION Scale : DINT\nVAR_INPUT x : DINT; END_VAR\nScale := x * 2;\nEND_FUNCTION\n"
	tab := buildTable(t, symbols.FileID(1), src)
	target := findByName(tab, "Scale")
	require.NotNil(t, target)

	source := NewSource(map[symbols.FileID]string{1: src})
	byFile, err := ConvertFunctionToFunctionBlock([]*symbols.Table{tab}, source, symbols.FileID(1), target.ID, "DINT")
	require.NoError(t, err)

	out := Apply(src, byFile[symbols.FileID(1)])
	assert.Contains(t, out, "FUNCTION_BLOCK Scale")
	assert.Contains(t, out, "END_FUNCTION_BLOCK")
	assert.Contains(t, out, "VAR_OUTPUT")
	assert.Contains(t, out, "result : DINT;")
}

func Test_ConvertFunctionToFunctionBlock_rejectsNonFunction(t *testing.T) {
	src := "PROGRAM Test VAR x : DINT; END_VAR END_PROGRAM"
	tab := buildTable(t, symbols.FileID(1), src)
	target := findByName(tab, "Test")
	require.NotNil(t, target)

	source := NewSource(map[symbols.FileID]string{1: src})
	_, err := ConvertFunctionToFunctionBlock([]*symbols.Table{tab}, source, symbols.FileID(1), target.ID, "DINT")
	assert.Error(t, err)
}
