package editor

import (
	"testing"

	"github.com/dekarrin/stlc/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MoveNamespace_renamesOnlyDifferingSegment(t *testing.T) {
	src := "NAMESPACE Motors NAMESPACE Drivers PROGRAM P END_PROGRAM END_NAMESPACE END_NAMESPACE"
	tab := buildTable(t, symbols.FileID(1), src)

	byFile, err := MoveNamespace([]*symbols.Table{tab}, "Motors.Drivers", "Motors.Controllers")
	require.NoError(t, err)

	edits := byFile[symbols.FileID(1)]
	require.Len(t, edits, 1)
	out := Apply(src, edits)
	assert.Contains(t, out, "NAMESPACE Motors")
	assert.Contains(t, out, "NAMESPACE Controllers")
	assert.NotContains(t, out, "Drivers")
}

func Test_MoveNamespace_rejectsDifferentSegmentCounts(t *testing.T) {
	tab := buildTable(t, symbols.FileID(1), "NAMESPACE Motors PROGRAM P END_PROGRAM END_NAMESPACE")
	_, err := MoveNamespace([]*symbols.Table{tab}, "Motors", "A.B")
	assert.Error(t, err)
}

func Test_MoveNamespace_unknownPathErrors(t *testing.T) {
	tab := buildTable(t, symbols.FileID(1), "NAMESPACE Motors PROGRAM P END_PROGRAM END_NAMESPACE")
	_, err := MoveNamespace([]*symbols.Table{tab}, "Ghost", "Other")
	assert.Error(t, err)
}
