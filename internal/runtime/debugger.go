package runtime

// Debugger wraps a Frame with breakpoints and single-step control, giving
// the control plane's debug.* handlers the instruction-boundary pause
// points §1/§5 require ("every instruction boundary is a potential
// pause point... Debug pause and breakpoints trap at instruction
// boundaries"). Program is a flat per-POU instruction stream with no
// nested call frames (the bytecode format is intentionally opaque outside
// this package), so step_over and step_out have no caller frame to
// distinguish from step_in: all three execute exactly one instruction,
// except step_out which runs to completion since there is no enclosing
// frame to return to.
type Debugger struct {
	Frame       *Frame
	Breakpoints map[int]bool
	Paused      bool
}

// NewDebugger wraps frame for stepped execution, paused at instruction 0.
func NewDebugger(frame *Frame) *Debugger {
	return &Debugger{Frame: frame, Breakpoints: make(map[int]bool), Paused: true}
}

// StepIn executes exactly one instruction.
func (d *Debugger) StepIn(overlay *Overlay) error {
	if d.Frame.Done() {
		return nil
	}
	d.Paused = true
	return d.Frame.Step(overlay)
}

// StepOver behaves identically to StepIn: the flat instruction model has no
// call-frame boundary to step across.
func (d *Debugger) StepOver(overlay *Overlay) error {
	return d.StepIn(overlay)
}

// StepOut runs the frame to completion, the nearest coherent meaning of
// "return to caller" when there is no caller frame.
func (d *Debugger) StepOut(overlay *Overlay) error {
	d.Paused = true
	return d.Frame.Run(overlay)
}

// Continue runs until a breakpoint's instruction index is reached or the
// frame finishes.
func (d *Debugger) Continue(overlay *Overlay) error {
	d.Paused = false
	for !d.Frame.Done() {
		if d.Breakpoints[d.Frame.PC] {
			d.Paused = true
			return nil
		}
		if err := d.Frame.Step(overlay); err != nil {
			d.Paused = true
			return err
		}
	}
	d.Paused = true
	return nil
}

// SetBreakpoint marks instruction index pc as a stop point.
func (d *Debugger) SetBreakpoint(pc int) { d.Breakpoints[pc] = true }

// ClearBreakpoint removes a previously set breakpoint.
func (d *Debugger) ClearBreakpoint(pc int) { delete(d.Breakpoints, pc) }

// ClearAllBreakpoints removes every breakpoint.
func (d *Debugger) ClearAllBreakpoints() { d.Breakpoints = make(map[int]bool) }

// BreakpointLocations lists every instruction index with a breakpoint, for
// the `debug.breakpoint_locations` response.
func (d *Debugger) BreakpointLocations() []int {
	var locs []int
	for pc := range d.Breakpoints {
		locs = append(locs, pc)
	}
	return locs
}
