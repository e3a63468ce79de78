package controlplane

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_HandleSetThenEval_roundTripsLocal(t *testing.T) {
	s := newTestSession()
	attachDebugger(s, "Main")

	_, err := handleSet(s, mustParams(t, varParams{POU: "Main", Name: "count", Value: mustParams(t, 7)}))
	require.NoError(t, err)

	result, err := handleEval(s, mustParams(t, varParams{POU: "Main", Name: "count"}))
	require.NoError(t, err)
	assert.EqualValues(t, 7, result)
}

func Test_HandleEval_unknownVariableErrors(t *testing.T) {
	s := newTestSession()
	attachDebugger(s, "Main")

	_, err := handleEval(s, mustParams(t, varParams{POU: "Main", Name: "ghost"}))
	assert.Error(t, err)
}

func Test_HandleVarForceThenUnforce_clearsForcedList(t *testing.T) {
	s := newTestSession()
	_, err := handleVarForce(s, mustParams(t, ioWriteParams{Address: "%QX1.0", Value: mustParams(t, true)}))
	require.NoError(t, err)

	result, err := handleVarForced(s, nil)
	require.NoError(t, err)
	assert.Len(t, result.([]ioEntry), 1)

	_, err = handleVarUnforce(s, mustParams(t, addressParams{Address: "%QX1.0"}))
	require.NoError(t, err)

	result, err = handleVarForced(s, nil)
	require.NoError(t, err)
	assert.Empty(t, result.([]ioEntry))
}
