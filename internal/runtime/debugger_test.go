package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debugProgram() *Program {
	return &Program{Name: "p", Instructions: []Instr{
		{Op: OpPushConst, Const: IntValue(1)},
		{Op: OpPushConst, Const: IntValue(2)},
		{Op: OpCall, Name: "ADD", Arity: 2},
		{Op: OpStoreVar, Name: "sum"},
		{Op: OpReturn},
	}}
}

func Test_Debugger_stepInAdvancesOneInstruction(t *testing.T) {
	overlay := NewOverlay(NewImage())
	d := NewDebugger(NewFrame(debugProgram()))

	require.NoError(t, d.StepIn(overlay))

	assert.Equal(t, 1, d.Frame.PC)
	assert.True(t, d.Paused)
}

func Test_Debugger_continueStopsAtBreakpoint(t *testing.T) {
	overlay := NewOverlay(NewImage())
	d := NewDebugger(NewFrame(debugProgram()))
	d.SetBreakpoint(3)

	require.NoError(t, d.Continue(overlay))

	assert.Equal(t, 3, d.Frame.PC)
	assert.True(t, d.Paused)
	assert.False(t, d.Frame.Done())
}

func Test_Debugger_continueRunsToCompletionWithoutBreakpoints(t *testing.T) {
	overlay := NewOverlay(NewImage())
	d := NewDebugger(NewFrame(debugProgram()))

	require.NoError(t, d.Continue(overlay))

	assert.True(t, d.Frame.Done())
	assert.Equal(t, IntValue(3), d.Frame.Locals["sum"])
}

func Test_Debugger_breakpointLocationsAndClear(t *testing.T) {
	d := NewDebugger(NewFrame(debugProgram()))
	d.SetBreakpoint(1)
	d.SetBreakpoint(3)

	assert.ElementsMatch(t, []int{1, 3}, d.BreakpointLocations())

	d.ClearBreakpoint(1)
	assert.ElementsMatch(t, []int{3}, d.BreakpointLocations())

	d.ClearAllBreakpoints()
	assert.Empty(t, d.BreakpointLocations())
}
