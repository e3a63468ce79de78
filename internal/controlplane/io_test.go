package controlplane

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_HandleIOWriteThenRead_roundTrips(t *testing.T) {
	s := newTestSession()

	_, err := handleIOWrite(s, mustParams(t, ioWriteParams{Address: "%QW4", Value: mustParams(t, 42)}))
	require.NoError(t, err)

	result, err := handleIORead(s, mustParams(t, addressParams{Address: "%QW4"}))
	require.NoError(t, err)
	entry := result.(ioEntry)
	assert.EqualValues(t, 42, entry.Value)
	assert.False(t, entry.Forced)
}

func Test_HandleIOList_includesForcedNeverWrittenAddress(t *testing.T) {
	s := newTestSession()
	_, err := handleVarForce(s, mustParams(t, ioWriteParams{Address: "%IX0.0", Value: mustParams(t, true)}))
	require.NoError(t, err)

	result, err := handleIOList(s, nil)
	require.NoError(t, err)
	entries := result.([]ioEntry)
	require.Len(t, entries, 1)
	assert.Equal(t, "%IX0.0", entries[0].Address)
	assert.True(t, entries[0].Forced)
}

func Test_HandleIORead_rejectsMalformedAddress(t *testing.T) {
	s := newTestSession()
	_, err := handleIORead(s, mustParams(t, addressParams{Address: "garbage"}))
	assert.Error(t, err)
}
