package symbols

import (
	"testing"

	"github.com/dekarrin/stlc/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable(t *testing.T, src string) *Table {
	t.Helper()
	tree, errs := syntax.ParseSourceFile(src)
	require.Empty(t, errs)
	return Build(FileID(1), tree, src)
}

func Test_Build_declaresLocalVariable(t *testing.T) {
	tab := buildTable(t, "PROGRAM Test VAR x : DINT; END_VAR x := 10; END_PROGRAM")

	var found *Symbol
	for _, s := range tab.Syms {
		if s.Name == "x" {
			found = s
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, KindVariable, found.Kind)
	assert.True(t, found.Used)
}

func Test_Build_undefinedVariableReference(t *testing.T) {
	tab := buildTable(t, "PROGRAM Test VAR x : DINT; END_VAR x := y; END_PROGRAM")

	var sawUndefined bool
	for _, res := range tab.Refs {
		if res.Err == "UndefinedVariable" {
			sawUndefined = true
		}
	}
	assert.True(t, sawUndefined)
}

func Test_Build_duplicateDeclarationFlagged(t *testing.T) {
	tab := buildTable(t, "PROGRAM Test VAR x : DINT; x : INT; END_VAR END_PROGRAM")

	var sawDup bool
	for _, iss := range tab.Issues {
		if iss.Code == "DuplicateDeclaration" {
			sawDup = true
		}
	}
	assert.True(t, sawDup)
}

func Test_Build_invalidIdentifierLeadingDoubleUnderscore(t *testing.T) {
	tab := buildTable(t, "PROGRAM Test VAR __x : DINT; END_VAR END_PROGRAM")

	var sawInvalid bool
	for _, iss := range tab.Issues {
		if iss.Code == "InvalidIdentifier" {
			sawInvalid = true
		}
	}
	assert.True(t, sawInvalid)
}

func Test_Merge_crossFileDuplicateConflict(t *testing.T) {
	t1 := buildTable(t, "PROGRAM A VAR x : DINT; END_VAR END_PROGRAM")
	t2 := buildTable(t, "PROGRAM A VAR y : DINT; END_VAR END_PROGRAM")

	idx := Merge(t1, t2)

	assert.NotEmpty(t, idx.Conflicts)
}
