package runtime

import (
	"fmt"

	"github.com/dekarrin/rezi"
)

// RetainedSnapshot is the warm-restart payload: every retained variable's
// value, keyed by POU-qualified name. `warm` restarts (§4.7 state
// machine, "Faulted --restart(cold|warm)--> Running") decode this back into
// each Frame's Locals before resuming; `cold` restarts discard it.
type RetainedSnapshot struct {
	Values map[string]Value
}

// retainedSnapshotWire is the rezi-encodable mirror of RetainedSnapshot:
// rezi's reflection-based binary codec needs concrete field types, so Value
// (a hand-rolled tagged union) is flattened to its four primitive fields
// rather than encoded directly.
type retainedSnapshotWire struct {
	Names  []string
	Kinds  []int
	Ints   []int64
	Reals  []float64
	Strs   []string
	Bools  []bool
}

// Encode serializes s for persistence between Faulted/warm-restart cycles.
func (s *RetainedSnapshot) Encode() []byte {
	w := retainedSnapshotWire{}
	for name, v := range s.Values {
		w.Names = append(w.Names, name)
		w.Kinds = append(w.Kinds, int(v.Kind))
		w.Ints = append(w.Ints, v.I)
		w.Reals = append(w.Reals, v.F)
		w.Strs = append(w.Strs, v.S)
		w.Bools = append(w.Bools, v.B)
	}
	return rezi.EncBinary(&w)
}

// DecodeRetainedSnapshot reverses Encode.
func DecodeRetainedSnapshot(data []byte) (*RetainedSnapshot, error) {
	var w retainedSnapshotWire
	if _, err := rezi.DecBinary(data, &w); err != nil {
		return nil, fmt.Errorf("decode retained snapshot: %w", err)
	}
	s := &RetainedSnapshot{Values: map[string]Value{}}
	for i, name := range w.Names {
		s.Values[name] = Value{Kind: ValueKind(w.Kinds[i]), I: w.Ints[i], F: w.Reals[i], S: w.Strs[i], B: w.Bools[i]}
	}
	return s, nil
}

// Capture builds a RetainedSnapshot of every retained variable of prog's
// POU, per the bundle's retained-variable list.
func Capture(bundleRetained []string, f *Frame) *RetainedSnapshot {
	s := &RetainedSnapshot{Values: map[string]Value{}}
	for _, name := range bundleRetained {
		s.Values[name] = f.Locals[name]
	}
	return s
}

// Restore writes every value in s back into f's locals, for a warm restart.
func (s *RetainedSnapshot) Restore(f *Frame) {
	for name, v := range s.Values {
		f.Locals[name] = v
	}
}
