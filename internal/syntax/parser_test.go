package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseSourceFile_simpleProgramHasNoErrors(t *testing.T) {
	src := "PROGRAM Test VAR x : DINT; END_VAR x := 10; END_PROGRAM"

	tree, errs := ParseSourceFile(src)

	require.NotNil(t, tree)
	assert.Empty(t, errs)
	assert.Equal(t, NodeSourceFile, tree.Node(tree.Root).Kind)
}

func Test_ParseSourceFile_isLossless(t *testing.T) {
	src := "PROGRAM Test // header comment\nVAR\n\tx : DINT;\nEND_VAR\nx := x + 1;\nEND_PROGRAM"

	tree, _ := ParseSourceFile(src)

	assert.Equal(t, src, tree.Text(tree.Root, src))
}

func Test_ParseSourceFile_missingEndIfIsRecoverable(t *testing.T) {
	src := "PROGRAM Test VAR x : DINT; END_VAR IF x > 0 THEN x := 1; END_PROGRAM"

	tree, errs := ParseSourceFile(src)

	require.NotNil(t, tree)
	assert.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if strings.Contains(e.Message, "END_IF") {
			found = true
		}
	}
	assert.True(t, found, "expected a missing END_IF diagnostic, got %+v", errs)
}

func Test_ParseSourceFile_deeplyNestedParensHitsBoundedNestingLimit(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("PROGRAM Test VAR x : DINT; END_VAR x := ")
	for i := 0; i < MaxExpressionDepth+50; i++ {
		sb.WriteString("(")
	}
	sb.WriteString("1")
	for i := 0; i < MaxExpressionDepth+50; i++ {
		sb.WriteString(")")
	}
	sb.WriteString("; END_PROGRAM")

	require.NotPanics(t, func() {
		_, errs := ParseSourceFile(sb.String())
		found := false
		for _, e := range errs {
			if e.Message == ErrBoundedNesting {
				found = true
			}
		}
		assert.True(t, found)
	})
}

func Test_ParseSourceFile_neverPanicsOnArbitraryBytes(t *testing.T) {
	inputs := []string{
		"",
		"\x00\x01\x02",
		"PROGRAM",
		")))))((((((",
		"VAR VAR VAR END_VAR END_VAR",
		"PROGRAM Test CASE x OF 1: y := 1; END_CASE END_PROGRAM",
	}

	for _, in := range inputs {
		require.NotPanics(t, func() {
			ParseSourceFile(in)
		})
	}
}

func Test_ParseSourceFile_forStmtRoundTrips(t *testing.T) {
	src := "PROGRAM Test VAR i : DINT; END_VAR FOR i := 1 TO 10 BY 2 DO i := i; END_FOR END_PROGRAM"

	tree, errs := ParseSourceFile(src)

	assert.Empty(t, errs)
	assert.Equal(t, src, tree.Text(tree.Root, src))
}
