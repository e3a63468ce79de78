package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Address_StringFormatsBitAndNonBit(t *testing.T) {
	bit := Address{Area: AreaInput, Size: SizeBit, Byte: 0, Bit: 3}
	assert.Equal(t, "%IX0.3", bit.String())

	word := Address{Area: AreaOutput, Size: SizeWord, Byte: 4}
	assert.Equal(t, "%QW4", word.String())
}

func Test_ParseAddress_roundTripsWithString(t *testing.T) {
	cases := []Address{
		{Area: AreaInput, Size: SizeBit, Byte: 0, Bit: 3},
		{Area: AreaOutput, Size: SizeWord, Byte: 4},
		{Area: AreaMemory, Size: SizeDouble, Byte: 10},
	}
	for _, a := range cases {
		got, err := ParseAddress(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
}

func Test_ParseAddress_rejectsMalformed(t *testing.T) {
	_, err := ParseAddress("not-an-address")
	assert.Error(t, err)

	_, err = ParseAddress("%ZX0.0")
	assert.Error(t, err)
}

func Test_Image_readWriteAndAddresses(t *testing.T) {
	img := NewImage()
	addr := Address{Area: AreaMemory, Size: SizeWord, Byte: 2}

	assert.Equal(t, Value{}, img.Read(addr), "unwritten address reads zero value")

	img.Write(addr, IntValue(42))
	assert.Equal(t, IntValue(42), img.Read(addr))
	assert.Equal(t, []Address{addr}, img.Addresses())
}

func Test_Overlay_forceMasksWritesAndLogsThem(t *testing.T) {
	img := NewImage()
	o := NewOverlay(img)
	addr := Address{Area: AreaOutput, Size: SizeBit, Byte: 0, Bit: 0}

	img.Write(addr, BoolValue(false))
	o.Force(addr, BoolValue(true))

	assert.Equal(t, BoolValue(true), o.Read(addr), "forced read overrides image")

	o.Write(addr, BoolValue(false))
	assert.Equal(t, BoolValue(true), o.Read(addr), "write while forced is masked")
	assert.Equal(t, BoolValue(false), img.Read(addr), "masked write never reaches the image")

	require.Len(t, o.Log(), 1)
	assert.Equal(t, addr, o.Log()[0].Address)

	o.Unforce(addr)
	_, forced := o.Forced(addr)
	assert.False(t, forced)
}

func Test_Overlay_applyToImageCopiesForcedValues(t *testing.T) {
	img := NewImage()
	o := NewOverlay(img)
	addr := Address{Area: AreaInput, Size: SizeBit, Byte: 1, Bit: 2}

	o.Force(addr, BoolValue(true))
	o.ApplyToImage()

	assert.Equal(t, BoolValue(true), img.Read(addr))
}
