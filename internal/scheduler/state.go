package scheduler

import "fmt"

// State is one node of the resource state machine in §4.7.
type State int

const (
	Stopped State = iota
	Running
	Paused
	Faulted
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	case Faulted:
		return "Faulted"
	default:
		return "Unknown"
	}
}

// RestartMode distinguishes a cold restart (retained vars reset) from a warm
// one (retained vars preserved), per §4.7.
type RestartMode int

const (
	RestartCold RestartMode = iota
	RestartWarm
)

// FaultPolicy is the watchdog/assertion fault action of §4.7.
type FaultPolicy string

const (
	PolicyNone    FaultPolicy = "None"
	PolicyWarn    FaultPolicy = "Warn"
	PolicyHalt    FaultPolicy = "Halt"
	PolicyRestart FaultPolicy = "Restart"
)

// ErrInvalidTransition is returned when a requested transition does not
// exist from the current state.
type ErrInvalidTransition struct {
	From  State
	Event string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("cannot %s from state %s", e.Event, e.From)
}

// Machine is the resource's finite state machine. It is not safe for
// concurrent use without the caller's own lock (the Runner holds it under
// the same mutex that serializes cycles and control-plane handlers, per
// §5).
type Machine struct {
	state State
}

// NewMachine starts a Machine in Stopped.
func NewMachine() *Machine { return &Machine{state: Stopped} }

func (m *Machine) State() State { return m.state }

func (m *Machine) Start() error {
	if m.state != Stopped {
		return &ErrInvalidTransition{From: m.state, Event: "start"}
	}
	m.state = Running
	return nil
}

func (m *Machine) Pause() error {
	if m.state != Running {
		return &ErrInvalidTransition{From: m.state, Event: "pause"}
	}
	m.state = Paused
	return nil
}

func (m *Machine) Resume() error {
	if m.state != Paused {
		return &ErrInvalidTransition{From: m.state, Event: "resume"}
	}
	m.state = Running
	return nil
}

// Fault transitions to Faulted from Running or Paused; any other source
// state is a no-op error since a faulted/stopped resource can't re-fault.
func (m *Machine) Fault() error {
	if m.state != Running && m.state != Paused {
		return &ErrInvalidTransition{From: m.state, Event: "fault"}
	}
	m.state = Faulted
	return nil
}

func (m *Machine) Restart() error {
	if m.state != Faulted {
		return &ErrInvalidTransition{From: m.state, Event: "restart"}
	}
	m.state = Running
	return nil
}

// Shutdown transitions to Stopped from any state, per §4.7 ("any
// --shutdown--> Stopped").
func (m *Machine) Shutdown() {
	m.state = Stopped
}
