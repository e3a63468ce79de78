package controlplane

import (
	"encoding/json"
	"fmt"

	"github.com/dekarrin/stlc/internal/runtime"
)

func registerDebugHandlers(r *Router) {
	r.register("pause", handlePause)
	r.register("resume", handleResume)
	r.register("step_in", handleStepIn)
	r.register("step_over", handleStepOver)
	r.register("step_out", handleStepOut)
	r.register("debug.state", handleDebugState)
	r.register("debug.stops", handleDebugStops)
	r.register("debug.stack", handleDebugStack)
	r.register("debug.scopes", handleDebugScopes)
	r.register("debug.variables", handleDebugVariables)
	r.register("debug.evaluate", handleEval)
	r.register("debug.breakpoint_locations", handleBreakpointLocations)
	r.register("breakpoints.set", handleBreakpointsSet)
	r.register("breakpoints.clear", handleBreakpointsClear)
	r.register("breakpoints.clear_id", handleBreakpointsClear)
	r.register("breakpoints.list", handleBreakpointsList)
	r.register("breakpoints.clear_all", handleBreakpointsClearAll)
}

type pouParams struct {
	POU string `json:"pou"`
}

func handlePause(s *Session, params json.RawMessage) (any, error) {
	var p pouParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	d, err := s.debugger(p.POU)
	if err != nil {
		return nil, err
	}
	d.Paused = true
	return debugStateResult(p.POU, d), nil
}

func handleResume(s *Session, params json.RawMessage) (any, error) {
	var p pouParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	d, err := s.debugger(p.POU)
	if err != nil {
		return nil, err
	}
	if err := d.Continue(s.Overlay); err != nil {
		return nil, err
	}
	return debugStateResult(p.POU, d), nil
}

func handleStepIn(s *Session, params json.RawMessage) (any, error) {
	return stepHandler(s, params, (*runtime.Debugger).StepIn)
}

func handleStepOver(s *Session, params json.RawMessage) (any, error) {
	return stepHandler(s, params, (*runtime.Debugger).StepOver)
}

func handleStepOut(s *Session, params json.RawMessage) (any, error) {
	return stepHandler(s, params, (*runtime.Debugger).StepOut)
}

func stepHandler(s *Session, params json.RawMessage, step func(*runtime.Debugger, *runtime.Overlay) error) (any, error) {
	var p pouParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	d, err := s.debugger(p.POU)
	if err != nil {
		return nil, err
	}
	if err := step(d, s.Overlay); err != nil {
		return nil, err
	}
	return debugStateResult(p.POU, d), nil
}

type debugState struct {
	POU    string `json:"pou"`
	PC     int    `json:"pc"`
	Paused bool   `json:"paused"`
	Done   bool   `json:"done"`
}

func debugStateResult(pou string, d *runtime.Debugger) debugState {
	return debugState{POU: pou, PC: d.Frame.PC, Paused: d.Paused, Done: d.Frame.Done()}
}

func handleDebugState(s *Session, params json.RawMessage) (any, error) {
	var p pouParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	d, err := s.debugger(p.POU)
	if err != nil {
		return nil, err
	}
	return debugStateResult(p.POU, d), nil
}

// handleDebugStops reports the instruction index every active debugger is
// currently stopped at, the `debug.stops` response.
func handleDebugStops(s *Session, params json.RawMessage) (any, error) {
	stops := make(map[string]int, len(s.Debuggers))
	for pou, d := range s.Debuggers {
		if d.Paused {
			stops[pou] = d.Frame.PC
		}
	}
	return stops, nil
}

// handleDebugStack reports the operand stack of the named POU's frame; the
// flat bytecode model has no call stack, so this is the one-deep "stack" of
// pending operands, not a multi-frame call stack.
func handleDebugStack(s *Session, params json.RawMessage) (any, error) {
	var p pouParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	d, err := s.debugger(p.POU)
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(d.Frame.Stack))
	for i, v := range d.Frame.Stack {
		vals[i] = valueToJSON(v)
	}
	return vals, nil
}

// handleDebugScopes reports the one scope this flat model has: the POU's
// local variables.
func handleDebugScopes(s *Session, params json.RawMessage) (any, error) {
	var p pouParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if _, err := s.debugger(p.POU); err != nil {
		return nil, err
	}
	return []string{"locals"}, nil
}

func handleDebugVariables(s *Session, params json.RawMessage) (any, error) {
	var p pouParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	d, err := s.debugger(p.POU)
	if err != nil {
		return nil, err
	}
	vars := make(map[string]any, len(d.Frame.Locals))
	for name, v := range d.Frame.Locals {
		vars[name] = valueToJSON(v)
	}
	return vars, nil
}

func handleBreakpointLocations(s *Session, params json.RawMessage) (any, error) {
	var p pouParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	d, err := s.debugger(p.POU)
	if err != nil {
		return nil, err
	}
	return d.BreakpointLocations(), nil
}

type breakpointParams struct {
	POU string `json:"pou"`
	PC  int    `json:"pc"`
}

func handleBreakpointsSet(s *Session, params json.RawMessage) (any, error) {
	var p breakpointParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	d, err := s.debugger(p.POU)
	if err != nil {
		return nil, err
	}
	d.SetBreakpoint(p.PC)
	return map[string]any{"pou": p.POU, "pc": p.PC}, nil
}

func handleBreakpointsClear(s *Session, params json.RawMessage) (any, error) {
	var p breakpointParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	d, err := s.debugger(p.POU)
	if err != nil {
		return nil, err
	}
	d.ClearBreakpoint(p.PC)
	return map[string]any{"pou": p.POU, "pc": p.PC}, nil
}

func handleBreakpointsList(s *Session, params json.RawMessage) (any, error) {
	var p pouParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	d, err := s.debugger(p.POU)
	if err != nil {
		return nil, err
	}
	return d.BreakpointLocations(), nil
}

func handleBreakpointsClearAll(s *Session, params json.RawMessage) (any, error) {
	var p pouParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	d, err := s.debugger(p.POU)
	if err != nil {
		return nil, err
	}
	d.ClearAllBreakpoints()
	return fmt.Sprintf("breakpoints cleared for %s", p.POU), nil
}
