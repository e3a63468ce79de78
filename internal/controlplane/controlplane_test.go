package controlplane

import (
	"time"

	"github.com/dekarrin/stlc/internal/runtime"
	"github.com/dekarrin/stlc/internal/scheduler"
)

// newTestSession builds a Session with a fresh Stopped Runner, empty
// Overlay, and a Bundle holding one 5-instruction program, shared by this
// package's test files.
func newTestSession() *Session {
	clock := scheduler.NewManualClock(time.Unix(0, 0))
	runner := scheduler.NewRunner(clock, 10*time.Millisecond)
	overlay := runtime.NewOverlay(runtime.NewImage())
	bundle := &runtime.Bundle{Programs: []runtime.Program{testProgram()}}
	return NewSession(runner, overlay, bundle)
}

func testProgram() runtime.Program {
	return runtime.Program{
		Name: "Main",
		Instructions: []runtime.Instr{
			{Op: runtime.OpPushConst, Const: runtime.IntValue(1)},
			{Op: runtime.OpPushConst, Const: runtime.IntValue(2)},
			{Op: runtime.OpCall, Name: "ADD", Arity: 2},
			{Op: runtime.OpStoreVar, Name: "sum"},
			{Op: runtime.OpReturn},
		},
	}
}
