package controlplane

import (
	"encoding/json"
	"fmt"

	"github.com/dekarrin/stlc/internal/runtime"
)

func registerIOHandlers(r *Router) {
	r.register("io.list", handleIOList)
	r.register("io.read", handleIORead)
	r.register("io.write", handleIOWrite)
}

type ioEntry struct {
	Address string `json:"address"`
	Value   any    `json:"value"`
	Forced  bool   `json:"forced"`
}

func valueToJSON(v runtime.Value) any {
	switch v.Kind {
	case runtime.KindBool:
		return v.B
	case runtime.KindInt:
		return v.I
	case runtime.KindReal:
		return v.F
	default:
		return v.S
	}
}

func handleIOList(s *Session, params json.RawMessage) (any, error) {
	seen := make(map[runtime.Address]bool)
	var entries []ioEntry
	addAddr := func(a runtime.Address) {
		if seen[a] {
			return
		}
		seen[a] = true
		_, forced := s.Overlay.Forced(a)
		entries = append(entries, ioEntry{Address: a.String(), Value: valueToJSON(s.Overlay.Read(a)), Forced: forced})
	}
	for _, a := range s.Overlay.Image().Addresses() {
		addAddr(a)
	}
	for _, a := range s.Overlay.ForcedAddresses() {
		addAddr(a)
	}
	return entries, nil
}

type addressParams struct {
	Address string `json:"address"`
}

func handleIORead(s *Session, params json.RawMessage) (any, error) {
	var p addressParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	addr, err := runtime.ParseAddress(p.Address)
	if err != nil {
		return nil, err
	}
	_, forced := s.Overlay.Forced(addr)
	return ioEntry{Address: addr.String(), Value: valueToJSON(s.Overlay.Read(addr)), Forced: forced}, nil
}

type ioWriteParams struct {
	Address string          `json:"address"`
	Value   json.RawMessage `json:"value"`
}

func handleIOWrite(s *Session, params json.RawMessage) (any, error) {
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
	s.Overlay.Write(addr, v)
	return ioEntry{Address: addr.String(), Value: valueToJSON(v)}, nil
}

// decodeValue interprets a JSON scalar as a runtime.Value, typed by the
// address's Size: bit addresses decode a bool, all other sizes decode a
// number (non-bit I/O is integral word/byte storage).
func decodeValue(size runtime.Size, raw json.RawMessage) (runtime.Value, error) {
	if size == runtime.SizeBit {
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return runtime.Value{}, fmt.Errorf("expected a boolean for a bit address: %w", err)
		}
		return runtime.BoolValue(b), nil
	}
	var i int64
	if err := json.Unmarshal(raw, &i); err != nil {
		return runtime.Value{}, fmt.Errorf("expected an integer: %w", err)
	}
	return runtime.IntValue(i), nil
}
