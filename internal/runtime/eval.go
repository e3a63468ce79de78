package runtime

import "fmt"

// Frame is one in-progress execution of a Program: its operand stack, local
// variable bindings, and program counter. The debugger's single-step
// granularity (§5, "Debug pause and breakpoints trap at instruction
// boundaries") is exactly "run the evaluator for one Instr and stop", which
// is what Step below does.
type Frame struct {
	Program *Program
	PC      int
	Stack   []Value
	Locals  map[string]Value
}

// NewFrame starts a fresh execution of prog.
func NewFrame(prog *Program) *Frame {
	return &Frame{Program: prog, Locals: map[string]Value{}}
}

// Done reports whether the frame has run off the end of its instructions.
func (f *Frame) Done() bool {
	return f.PC >= len(f.Program.Instructions)
}

func (f *Frame) push(v Value) { f.Stack = append(f.Stack, v) }

func (f *Frame) pop() Value {
	if len(f.Stack) == 0 {
		return Value{}
	}
	v := f.Stack[len(f.Stack)-1]
	f.Stack = f.Stack[:len(f.Stack)-1]
	return v
}

// Step executes exactly one instruction, mutating f and overlay as needed,
// and advances the program counter. It is the evaluator's sole entry point:
// Run below is just "call Step until Done or error", which lets the
// scheduler and the debug handlers share one execution primitive.
func (f *Frame) Step(overlay *Overlay) error {
	if f.Done() {
		return nil
	}
	instr := f.Program.Instructions[f.PC]

	switch instr.Op {
	case OpPushConst:
		f.push(instr.Const)
		f.PC++
	case OpLoadVar:
		f.push(f.Locals[instr.Name])
		f.PC++
	case OpStoreVar:
		f.Locals[instr.Name] = f.pop()
		f.PC++
	case OpReadIO:
		f.push(overlay.Read(instr.Addr))
		f.PC++
	case OpWriteIO:
		overlay.Write(instr.Addr, f.pop())
		f.PC++
	case OpCall:
		fn, ok := Builtins[instr.Name]
		if !ok {
			return &Fault{Kind: FaultTypeMismatch, Message: fmt.Sprintf("unknown builtin %q", instr.Name)}
		}
		args := make([]Value, instr.Arity)
		for i := instr.Arity - 1; i >= 0; i-- {
			args[i] = f.pop()
		}
		result, err := fn(args)
		if err != nil {
			return err
		}
		f.push(result)
		f.PC++
	case OpPop:
		f.pop()
		f.PC++
	case OpJump:
		f.PC = instr.Target
	case OpJumpIfFalse:
		if !f.pop().Bool() {
			f.PC = instr.Target
		} else {
			f.PC++
		}
	case OpReturn:
		f.PC = len(f.Program.Instructions)
	default:
		return &Fault{Kind: FaultTypeMismatch, Message: fmt.Sprintf("unknown opcode %d", instr.Op)}
	}

	return nil
}

// Run executes f to completion against overlay, stopping early on the first
// Fault. A single task body runs to completion within one cycle per
// §4.6 ("execute one task body to completion").
func (f *Frame) Run(overlay *Overlay) error {
	for !f.Done() {
		if err := f.Step(overlay); err != nil {
			return err
		}
	}
	return nil
}
