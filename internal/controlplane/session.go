package controlplane

import (
	"sync"
	"time"

	"github.com/dekarrin/stlc/internal/runtime"
	"github.com/dekarrin/stlc/internal/scheduler"
)

// Event is one status/fault event recorded for `events.tail`/`events`.
type Event struct {
	Time    time.Time `json:"time"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
}

// PairingToken is one entry issued by `pair.start` and consumed by
// `pair.claim`, modeled on server/dao's Session{ID, Created} shape.
type PairingToken struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`
	Claimed bool      `json:"claimed"`
}

// Session is the control plane's shared runtime state: everything the
// status/io/variables/debug/program handlers read or mutate. One Session
// backs every connection to a given resource, matching §5's
// "the runtime is single-threaded under the scheduler so all handlers
// observe a consistent cycle boundary" (the mutex below is that boundary).
type Session struct {
	mu sync.Mutex

	Runner  *scheduler.Runner
	Overlay *runtime.Overlay
	Bundle  *runtime.Bundle

	Debuggers map[string]*runtime.Debugger // POU name -> active debugger

	config map[string]any
	events []Event
	faults []Event

	pairings map[string]*PairingToken
}

// NewSession constructs an empty Session wired to runner/overlay/bundle.
func NewSession(runner *scheduler.Runner, overlay *runtime.Overlay, bundle *runtime.Bundle) *Session {
	return &Session{
		Runner:    runner,
		Overlay:   overlay,
		Bundle:    bundle,
		Debuggers: make(map[string]*runtime.Debugger),
		config:    make(map[string]any),
		pairings:  make(map[string]*PairingToken),
	}
}

// RecordEvent appends to the session's event log, trimming to the most
// recent 1000 entries so `events.tail` never grows unbounded.
func (s *Session) RecordEvent(kind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Event{Time: time.Now(), Kind: kind, Message: message})
	if len(s.events) > 1000 {
		s.events = s.events[len(s.events)-1000:]
	}
}

// RecordFault appends to the session's fault log, independent of the
// general event log so `faults` can be queried on its own.
func (s *Session) RecordFault(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, Event{Time: time.Now(), Kind: "fault", Message: message})
}
