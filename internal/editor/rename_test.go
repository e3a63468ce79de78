package editor

import (
	"testing"

	"github.com/dekarrin/stlc/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Rename_renamesDeclarationAndEveryReference(t *testing.T) {
	src := "PROGRAM Test VAR counter : DINT; END_VAR counter := counter + 1; END_PROGRAM"
	tab := buildTable(t, symbols.FileID(1), src)
	target := findByName(tab, "counter")
	require.NotNil(t, target)

	byFile, err := Rename([]*symbols.Table{tab}, symbols.FileID(1), target.ID, "total")
	require.NoError(t, err)

	edits := byFile[symbols.FileID(1)]
	assert.Len(t, edits, 3) // declaration + two references
	out := Apply(src, edits)
	assert.NotContains(t, out, "counter")
	assert.Contains(t, out, "total := total + 1")
}

func Test_Rename_rejectsReservedWord(t *testing.T) {
	src := "PROGRAM Test VAR counter : DINT; END_VAR END_PROGRAM"
	tab := buildTable(t, symbols.FileID(1), src)
	target := findByName(tab, "counter")
	require.NotNil(t, target)

	_, err := Rename([]*symbols.Table{tab}, symbols.FileID(1), target.ID, "WHILE")
	assert.Error(t, err)
}

func Test_Rename_rejectsConflictWithExistingDeclaration(t *testing.T) {
	src := "PROGRAM Test VAR counter : DINT; total : DINT; END_VAR END_PROGRAM"
	tab := buildTable(t, symbols.FileID(1), src)
	target := findByName(tab, "counter")
	require.NotNil(t, target)

	_, err := Rename([]*symbols.Table{tab}, symbols.FileID(1), target.ID, "total")
	assert.Error(t, err)
}

func Test_Rename_unknownSymbolErrors(t *testing.T) {
	src := "PROGRAM Test VAR counter : DINT; END_VAR END_PROGRAM"
	tab := buildTable(t, symbols.FileID(1), src)

	_, err := Rename([]*symbols.Table{tab}, symbols.FileID(1), 999, "total")
	assert.Error(t, err)
}
