package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_EncodeDecodeBundle_roundTrips(t *testing.T) {
	b := &Bundle{
		Programs: []Program{
			{
				Name: "main",
				Instructions: []Instr{
					{Op: OpPushConst, Const: IntValue(42)},
					{Op: OpWriteIO, Addr: Address{Area: AreaOutput, Size: SizeBit, Byte: 0, Bit: 1}},
					{Op: OpCall, Name: "ADD", Arity: 2},
					{Op: OpJumpIfFalse, Target: 7},
					{Op: OpReturn},
				},
			},
			{Name: "empty"},
		},
		Retained: map[string][]string{
			"main": {"count", "running"},
		},
	}

	data := EncodeBundle(b)
	got, err := DecodeBundle(data)
	require.NoError(t, err)

	require.Len(t, got.Programs, 2)
	assert.Equal(t, "main", got.Programs[0].Name)
	require.Len(t, got.Programs[0].Instructions, 5)
	assert.Equal(t, IntValue(42), got.Programs[0].Instructions[0].Const)
	assert.Equal(t, Address{Area: AreaOutput, Size: SizeBit, Byte: 0, Bit: 1}, got.Programs[0].Instructions[1].Addr)
	assert.Equal(t, "ADD", got.Programs[0].Instructions[2].Name)
	assert.Equal(t, 2, got.Programs[0].Instructions[2].Arity)
	assert.Equal(t, 7, got.Programs[0].Instructions[3].Target)

	assert.Equal(t, "empty", got.Programs[1].Name)
	assert.Empty(t, got.Programs[1].Instructions)

	assert.Equal(t, []string{"count", "running"}, got.Retained["main"])
}

func Test_ProgramByName_findsAndMisses(t *testing.T) {
	b := &Bundle{Programs: []Program{{Name: "a"}, {Name: "b"}}}

	require.NotNil(t, b.ProgramByName("b"))
	assert.Equal(t, "b", b.ProgramByName("b").Name)
	assert.Nil(t, b.ProgramByName("missing"))
}
