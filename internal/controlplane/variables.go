package controlplane

import (
	"encoding/json"
	"fmt"

	"github.com/dekarrin/stlc/internal/runtime"
)

func registerVariableHandlers(r *Router) {
	r.register("eval", handleEval)
	r.register("set", handleSet)
	r.register("var.force", handleVarForce)
	r.register("var.unforce", handleVarUnforce)
	r.register("var.forced", handleVarForced)
}

type varParams struct {
	POU   string          `json:"pou"`
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value,omitempty"`
}

func (s *Session) debugger(pou string) (*runtime.Debugger, error) {
	d, ok := s.Debuggers[pou]
	if !ok {
		return nil, fmt.Errorf("no active debug session for POU %q", pou)
	}
	return d, nil
}

// handleEval reads a local variable's current value out of the named POU's
// active debug frame, the "eval" request of §4.8's variables group.
func handleEval(s *Session, params json.RawMessage) (any, error) {
	var p varParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	d, err := s.debugger(p.POU)
	if err != nil {
		return nil, err
	}
	v, ok := d.Frame.Locals[p.Name]
	if !ok {
		return nil, fmt.Errorf("no variable %q in POU %q", p.Name, p.POU)
	}
	return valueToJSON(v), nil
}

// handleSet writes a local variable's value in the named POU's active debug
// frame, typed by the variable's current kind (untyped-nil has no existing
// kind to infer from, so a never-yet-set variable must be written as a
// number first before its kind can be inferred for later bool writes).
func handleSet(s *Session, params json.RawMessage) (any, error) {
	var p varParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	d, err := s.debugger(p.POU)
	if err != nil {
		return nil, err
	}
	existing, ok := d.Frame.Locals[p.Name]
	size := runtime.SizeWord
	if ok && existing.Kind == runtime.KindBool {
		size = runtime.SizeBit
	}
	v, err := decodeValue(size, p.Value)
	if err != nil {
		return nil, err
	}
	d.Frame.Locals[p.Name] = v
	return valueToJSON(v), nil
}

func handleVarForce(s *Session, params json.RawMessage) (any, error) {
	var p ioWriteParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	addr, err := runtime.ParseAddress(p.Address)
	if err != nil {
		return nil, err
	}
	v, err := decodeValue(addr.Size, p.Value)
	if err != nil {
		return nil, err
	}
	s.Overlay.Force(addr, v)
	return ioEntry{Address: addr.String(), Value: valueToJSON(v), Forced: true}, nil
}

func handleVarUnforce(s *Session, params json.RawMessage) (any, error) {
	var p addressParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	addr, err := runtime.ParseAddress(p.Address)
	if err != nil {
		return nil, err
	}
	s.Overlay.Unforce(addr)
	return map[string]any{"address": addr.String()}, nil
}

func handleVarForced(s *Session, params json.RawMessage) (any, error) {
	addrs := s.Overlay.ForcedAddresses()
	entries := make([]ioEntry, 0, len(addrs))
	for _, a := range addrs {
		v, _ := s.Overlay.Forced(a)
		entries = append(entries, ioEntry{Address: a.String(), Value: valueToJSON(v), Forced: true})
	}
	return entries, nil
}
