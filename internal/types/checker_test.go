package types

import (
	"testing"

	"github.com/dekarrin/stlc/internal/diag"
	"github.com/dekarrin/stlc/internal/symbols"
	"github.com/dekarrin/stlc/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkSource(t *testing.T, src string) []diag.Diagnostic {
	t.Helper()
	tree, errs := syntax.ParseSourceFile(src)
	require.Empty(t, errs)
	tab := symbols.Build(symbols.FileID(1), tree, src)
	c := NewChecker(diag.FileID(1), tree, src, tab)
	return c.Check()
}

func hasCode(ds []diag.Diagnostic, code diag.Code) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}

func Test_Check_cleanProgramHasNoErrors(t *testing.T) {
	ds := checkSource(t, "PROGRAM Test VAR x : DINT; END_VAR x := 10; END_PROGRAM")

	for _, d := range ds {
		assert.NotEqual(t, diag.SeverityError, d.Severity, "unexpected error diagnostic: %s %s", d.Code, d.Message)
	}
}

func Test_Check_undefinedVariableBecomesCannotResolveOrUndefined(t *testing.T) {
	ds := checkSource(t, "PROGRAM Test VAR x : DINT; END_VAR x := y; END_PROGRAM")

	assert.True(t, hasCode(ds, diag.CodeUndefinedVariable))
}

func Test_Check_constantModificationFlagged(t *testing.T) {
	ds := checkSource(t, "PROGRAM Test VAR CONSTANT x : DINT := 1; END_VAR x := 2; END_PROGRAM")

	assert.True(t, hasCode(ds, diag.CodeConstantModification))
}

func Test_Check_subrangeOutOfRangeFlagged(t *testing.T) {
	ds := checkSource(t, "PROGRAM Test VAR x : INT(10..5); END_VAR END_PROGRAM")

	assert.True(t, hasCode(ds, diag.CodeOutOfRange))
}

func Test_Check_caseWithoutElseFlagsMissingElse(t *testing.T) {
	ds := checkSource(t, `PROGRAM Test
VAR x : DINT; END_VAR
CASE x OF
1: x := 1;
END_CASE
END_PROGRAM`)

	assert.True(t, hasCode(ds, diag.CodeMissingElse))
}

func Test_Check_caseWithElseDoesNotFlagMissingElse(t *testing.T) {
	ds := checkSource(t, `PROGRAM Test
VAR x : DINT; END_VAR
CASE x OF
1: x := 1;
ELSE
x := 0;
END_CASE
END_PROGRAM`)

	assert.False(t, hasCode(ds, diag.CodeMissingElse))
}

func Test_Check_unusedVariableFlagged(t *testing.T) {
	ds := checkSource(t, "PROGRAM Test VAR x : DINT; y : DINT; END_VAR x := 1; END_PROGRAM")

	assert.True(t, hasCode(ds, diag.CodeUnusedVariable))
}

func Test_Check_namedArgFollowedByPositionalFlagged(t *testing.T) {
	ds := checkSource(t, `PROGRAM Test
VAR fb : SomeFB; END_VAR
fb(IN1 := 1, 2);
END_PROGRAM`)

	assert.True(t, hasCode(ds, diag.CodeInvalidArgumentType))
}

func Test_Check_unreachableCodeAfterReturnFlagged(t *testing.T) {
	ds := checkSource(t, `FUNCTION Test : DINT
VAR x : DINT; END_VAR
RETURN;
x := 1;
END_FUNCTION`)

	assert.True(t, hasCode(ds, diag.CodeUnreachableCode))
}
