package editor

import (
	"testing"

	"github.com/dekarrin/stlc/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_InlineSymbol_replacesReferencesAndRemovesDeclaration(t *testing.T) {
	src := "PROGRAM Test VAR CONSTANT MAX_COUNT : DINT := 10; x : DINT; END_VAR x := MAX_COUNT + 1; END_PROGRAM"
	tab := buildTable(t, symbols.FileID(1), src)
	target := findByName(tab, "MAX_COUNT")
	require.NotNil(t, target)

	source := NewSource(map[symbols.FileID]string{1: src})
	byFile, err := InlineSymbol([]*symbols.Table{tab}, source, symbols.FileID(1), target.ID)
	require.NoError(t, err)

	out := Apply(src, byFile[symbols.FileID(1)])
	assert.NotContains(t, out, "MAX_COUNT")
	assert.Contains(t, out, "x := (10) + 1")
}

func Test_InlineSymbol_rejectsDeclarationWithoutInitializer(t *testing.T) {
	src := "PROGRAM Test VAR x : DINT; END_VAR x := x + 1; END_PROGRAM"
	tab := buildTable(t, symbols.FileID(1), src)
	target := findByName(tab, "x")
	require.NotNil(t, target)

	source := NewSource(map[symbols.FileID]string{1: src})
	_, err := InlineSymbol([]*symbols.Table{tab}, source, symbols.FileID(1), target.ID)
	assert.Error(t, err)
}

func Test_InlineSymbol_rejectsNonVariableSymbol(t *testing.T) {
	src := "PROGRAM Test VAR x : DINT; END_VAR END_PROGRAM"
	tab := buildTable(t, symbols.FileID(1), src)
	target := findByName(tab, "Test")
	require.NotNil(t, target)

	source := NewSource(map[symbols.FileID]string{1: src})
	_, err := InlineSymbol([]*symbols.Table{tab}, source, symbols.FileID(1), target.ID)
	assert.Error(t, err)
}
