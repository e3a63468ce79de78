package runtime

import "github.com/dekarrin/rezi"

// Op is one bytecode instruction opcode. The encoded bundle format itself is
// opaque outside this package; all that's contractually required is that a
// program is loadable and that every instruction boundary is a potential
// pause point (§1), which is exactly what Program/PC below gives the
// debugger: a linear instruction index it can trap on.
type Op int

const (
	OpPushConst Op = iota
	OpLoadVar
	OpStoreVar
	OpReadIO
	OpWriteIO
	OpCall   // call a Builtins entry by name, popping Arity args, pushing 1 result
	OpPop
	OpJumpIfFalse
	OpJump
	OpReturn
)

// Instr is one decoded bytecode instruction.
type Instr struct {
	Op     Op
	Const  Value
	Name   string  // variable or builtin name
	Addr   Address // for OpReadIO/OpWriteIO
	Arity  int     // for OpCall
	Target int     // for OpJump/OpJumpIfFalse: absolute instruction index
}

// Program is one POU body compiled to a flat instruction stream.
type Program struct {
	Name         string
	Instructions []Instr
}

// Bundle is the loaded form of a project's compiled output (program.stbc):
// every POU's Program plus its retained (warm-restart-persisted) variable
// names, keyed by qualified POU name.
type Bundle struct {
	Programs []Program
	Retained map[string][]string // POU name -> retained variable names
}

// ProgramByName finds a Program by name, or nil.
func (b *Bundle) ProgramByName(name string) *Program {
	for i := range b.Programs {
		if b.Programs[i].Name == name {
			return &b.Programs[i]
		}
	}
	return nil
}

// bundleWire is a flattened, rezi-encodable mirror of Bundle. rezi encodes
// structs of basic field types; Instr mixes named int/byte enums (Op, Area,
// Size) with a tagged-union Value, so the bundle is flattened to plain
// int/string/float64/bool slices rather than encoded directly, the same
// approach snapshot.go uses for RetainedSnapshot.
type bundleWire struct {
	ProgramNames   []string
	ProgramCounts  []int // instruction count per program, parallel to ProgramNames

	Ops      []int
	ConstK   []int
	ConstI   []int64
	ConstF   []float64
	ConstS   []string
	ConstB   []bool
	Names    []string
	AddrArea []int
	AddrSize []int
	AddrByte []int
	AddrBit  []int
	Arity    []int
	Target   []int

	RetainedPOUs []string
	RetainedVars []string // RetainedCounts[i] vars for RetainedPOUs[i], flattened
	RetainedCounts []int
}

// EncodeBundle serializes b for storage as program.stbc.
func EncodeBundle(b *Bundle) []byte {
	var w bundleWire
	for _, p := range b.Programs {
		w.ProgramNames = append(w.ProgramNames, p.Name)
		w.ProgramCounts = append(w.ProgramCounts, len(p.Instructions))
		for _, in := range p.Instructions {
			w.Ops = append(w.Ops, int(in.Op))
			w.ConstK = append(w.ConstK, int(in.Const.Kind))
			w.ConstI = append(w.ConstI, in.Const.I)
			w.ConstF = append(w.ConstF, in.Const.F)
			w.ConstS = append(w.ConstS, in.Const.S)
			w.ConstB = append(w.ConstB, in.Const.B)
			w.Names = append(w.Names, in.Name)
			w.AddrArea = append(w.AddrArea, int(in.Addr.Area))
			w.AddrSize = append(w.AddrSize, int(in.Addr.Size))
			w.AddrByte = append(w.AddrByte, in.Addr.Byte)
			w.AddrBit = append(w.AddrBit, in.Addr.Bit)
			w.Arity = append(w.Arity, in.Arity)
			w.Target = append(w.Target, in.Target)
		}
	}
	for pou, vars := range b.Retained {
		w.RetainedPOUs = append(w.RetainedPOUs, pou)
		w.RetainedCounts = append(w.RetainedCounts, len(vars))
		w.RetainedVars = append(w.RetainedVars, vars...)
	}
	return rezi.EncBinary(&w)
}

// DecodeBundle reverses EncodeBundle.
func DecodeBundle(data []byte) (*Bundle, error) {
	var w bundleWire
	if _, err := rezi.DecBinary(data, &w); err != nil {
		return nil, err
	}

	b := &Bundle{Retained: map[string][]string{}}
	idx := 0
	for pi, name := range w.ProgramNames {
		n := w.ProgramCounts[pi]
		prog := Program{Name: name, Instructions: make([]Instr, n)}
		for i := 0; i < n; i++ {
			prog.Instructions[i] = Instr{
				Op:   Op(w.Ops[idx]),
				Const: Value{
					Kind: ValueKind(w.ConstK[idx]),
					I:    w.ConstI[idx],
					F:    w.ConstF[idx],
					S:    w.ConstS[idx],
					B:    w.ConstB[idx],
				},
				Name: w.Names[idx],
				Addr: Address{
					Area: Area(w.AddrArea[idx]),
					Size: Size(w.AddrSize[idx]),
					Byte: w.AddrByte[idx],
					Bit:  w.AddrBit[idx],
				},
				Arity:  w.Arity[idx],
				Target: w.Target[idx],
			}
			idx++
		}
		b.Programs = append(b.Programs, prog)
	}

	varIdx := 0
	for ri, pou := range w.RetainedPOUs {
		n := w.RetainedCounts[ri]
		b.Retained[pou] = append([]string(nil), w.RetainedVars[varIdx:varIdx+n]...)
		varIdx += n
	}

	return b, nil
}
