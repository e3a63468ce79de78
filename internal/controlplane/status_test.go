package controlplane

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_HandleStatus_reportsStoppedInitially(t *testing.T) {
	s := newTestSession()
	result, err := handleStatus(s, nil)
	require.NoError(t, err)
	assert.Equal(t, "Stopped", result.(statusResult).State)
}

func Test_HandleHealth_trueWhenNotFaulted(t *testing.T) {
	s := newTestSession()
	result, err := handleHealth(s, nil)
	require.NoError(t, err)
	assert.True(t, result.(map[string]any)["ok"].(bool))
}

func Test_HandleConfigSetThenGet_roundTrips(t *testing.T) {
	s := newTestSession()
	_, err := handleConfigSet(s, mustParams(t, map[string]any{"key": "watchdog.timeout_ms", "value": 50}))
	require.NoError(t, err)

	result, err := handleConfigGet(s, mustParams(t, map[string]any{"key": "watchdog.timeout_ms"}))
	require.NoError(t, err)
	assert.EqualValues(t, 50, result)
}

func Test_HandleConfigGet_unknownKeyErrors(t *testing.T) {
	s := newTestSession()
	_, err := handleConfigGet(s, mustParams(t, map[string]any{"key": "ghost"}))
	assert.Error(t, err)
}

func Test_HandleEventsTail_limitsToRequestedCount(t *testing.T) {
	s := newTestSession()
	s.RecordEvent("a", "1")
	s.RecordEvent("b", "2")
	s.RecordEvent("c", "3")

	result, err := handleEventsTail(s, mustParams(t, tailParams{Count: 2}))
	require.NoError(t, err)
	assert.Len(t, result.([]Event), 2)
}

func Test_HandleTasksStats_reflectsRunnerTasks(t *testing.T) {
	s := newTestSession()
	result, err := handleTasksStats(s, nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}
