package editor

import (
	"testing"

	"github.com/dekarrin/stlc/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseInterfaceMembers_extractsMethodsAndProperties(t *testing.T) {
	src := `
	INTERFACE IMotor
		METHOD Start : BOOL
		METHOD Stop : BOOL
		PROPERTY Speed : DINT
	END_INTERFACE
	`
	members := ParseInterfaceMembers(src)
	require.Len(t, members, 3)
	assert.Equal(t, "Start", members[0].Name)
	assert.Equal(t, "METHOD", members[0].Kind)
	assert.Equal(t, "Speed", members[2].Name)
	assert.Equal(t, "PROPERTY", members[2].Kind)
}

func Test_GenerateInterfaceStubs_onlyEmitsUnimplementedMembers(t *testing.T) {
	members := []InterfaceMember{
		{Kind: "METHOD", Name: "Start", Signature: "METHOD Start : BOOL"},
		{Kind: "METHOD", Name: "Stop", Signature: "METHOD Stop : BOOL"},
	}
	implemented := map[string]bool{"START": true}

	byFile, err := GenerateInterfaceStubs(symbols.FileID(1), 42, members, implemented)
	require.NoError(t, err)

	edits := byFile[symbols.FileID(1)]
	require.Len(t, edits, 1)
	assert.Contains(t, edits[0].Text, "METHOD Stop : BOOL")
	assert.Contains(t, edits[0].Text, "END_METHOD")
	assert.NotContains(t, edits[0].Text, "Start")
}

func Test_GenerateInterfaceStubs_emptyWhenFullyImplemented(t *testing.T) {
	members := []InterfaceMember{{Kind: "METHOD", Name: "Start", Signature: "METHOD Start : BOOL"}}
	implemented := map[string]bool{"START": true}

	byFile, err := GenerateInterfaceStubs(symbols.FileID(1), 0, members, implemented)
	require.NoError(t, err)
	assert.Empty(t, byFile[symbols.FileID(1)])
}
