package controlplane

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dekarrin/stlc/internal/runtime"
	"github.com/dekarrin/stlc/internal/scheduler"
)

func registerProgramHandlers(r *Router) {
	r.register("shutdown", handleShutdown)
	r.register("restart", handleRestart)
	r.register("bytecode.reload", handleBytecodeReload)
	r.register("pair.start", handlePairStart)
	r.register("pair.claim", handlePairClaim)
	r.register("pair.list", handlePairList)
	r.register("pair.revoke", handlePairRevoke)
}

func handleShutdown(s *Session, params json.RawMessage) (any, error) {
	s.Runner.Shutdown()
	s.RecordEvent("shutdown", "resource shut down by control-plane request")
	return statusResult{State: s.Runner.State().String(), CycleCount: s.Runner.CycleCount()}, nil
}

type restartParams struct {
	Mode string `json:"mode"` // "cold" or "warm", default "warm"
}

func handleRestart(s *Session, params json.RawMessage) (any, error) {
	var p restartParams
	if len(params) > 0 {
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
	}
	mode := scheduler.RestartWarm
	if p.Mode == "cold" {
		mode = scheduler.RestartCold
	}
	if err := s.Runner.Restart(mode); err != nil {
		return nil, err
	}
	s.RecordEvent("restart", fmt.Sprintf("resource restarted (%s)", p.Mode))
	return statusResult{State: s.Runner.State().String(), CycleCount: s.Runner.CycleCount()}, nil
}

type bytecodeReloadParams struct {
	Bundle []byte `json:"bundle"` // rezi-encoded runtime.Bundle, as produced by internal/bundle.Save
}

// handleBytecodeReload replaces the session's loaded Bundle without
// restarting the resource's task schedule, for §4.8's online
// reprogramming path. Active debuggers are dropped since their Frame.Program
// pointers would otherwise reference the superseded bundle.
func handleBytecodeReload(s *Session, params json.RawMessage) (any, error) {
	var p bytecodeReloadParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	nb, err := runtime.DecodeBundle(p.Bundle)
	if err != nil {
		return nil, fmt.Errorf("decoding bytecode bundle: %w", err)
	}
	s.mu.Lock()
	s.Bundle = nb
	s.Debuggers = make(map[string]*runtime.Debugger)
	s.mu.Unlock()
	s.RecordEvent("bytecode.reload", fmt.Sprintf("reloaded bundle with %d programs", len(nb.Programs)))
	return map[string]any{"programs": len(nb.Programs)}, nil
}

// handlePairStart issues a one-time pairing token, the handshake credential
// a second controller connection presents to `pair.claim` to join the same
// Session (§4.8's "pairing" flow for a second debugger/monitor
// client to attach to an already-running control-plane connection).
func handlePairStart(s *Session, params json.RawMessage) (any, error) {
	tok := &PairingToken{ID: uuid.NewString(), Created: time.Now()}
	s.mu.Lock()
	s.pairings[tok.ID] = tok
	s.mu.Unlock()
	return tok, nil
}

type pairClaimParams struct {
	ID string `json:"id"`
}

func handlePairClaim(s *Session, params json.RawMessage) (any, error) {
	var p pairClaimParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.pairings[p.ID]
	if !ok {
		return nil, fmt.Errorf("unknown pairing token %q", p.ID)
	}
	if tok.Claimed {
		return nil, fmt.Errorf("pairing token %q already claimed", p.ID)
	}
	tok.Claimed = true
	return tok, nil
}

func handlePairList(s *Session, params json.RawMessage) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	toks := make([]*PairingToken, 0, len(s.pairings))
	for _, tok := range s.pairings {
		toks = append(toks, tok)
	}
	return toks, nil
}

func handlePairRevoke(s *Session, params json.RawMessage) (any, error) {
	var p pairClaimParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pairings[p.ID]; !ok {
		return nil, fmt.Errorf("unknown pairing token %q", p.ID)
	}
	delete(s.pairings, p.ID)
	return map[string]any{"id": p.ID}, nil
}
