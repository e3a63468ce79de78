// Package simulation implements the deterministic disturbance controller of
// §4.9: coupling and scripted-fault injection applied exactly at
// cycle boundaries, seeded for reproducible ordering. A scripted
// disturbance advances through ordered steps, each consumed at most once,
// and a coupling is a threshold-triggered, delayed write from one I/O
// address to another.
package simulation

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/dekarrin/stlc/internal/runtime"
)

// DisturbanceKind is the scripted disturbance action of §4.9.
type DisturbanceKind string

const (
	DisturbanceSetInput DisturbanceKind = "SetInput"
	DisturbanceFault    DisturbanceKind = "Fault"
)

// Disturbance is one scripted event, consumed at most once when the
// simulated time reaches its `At`.
type Disturbance struct {
	At      time.Duration
	Kind    DisturbanceKind
	Address runtime.Address // for SetInput
	Value   runtime.Value   // for SetInput
	Message string          // for Fault

	consumed bool
}

// Coupling links a source I/O address to a target input via a threshold
// comparison, delayed by Delay before the resulting bit is written, per
// §4.9 and the worked trace in §8 scenario 2.
type Coupling struct {
	Source    runtime.Address
	Target    runtime.Address
	Threshold float64
	Delay     time.Duration
	OnTrue    runtime.Value
	OnFalse   runtime.Value

	lastBool       bool
	haveLastBool   bool
	pendingAt      time.Duration
	pendingResult  bool
	havePending    bool
}

// SimulationFault is raised when a scripted Fault disturbance fires,
// transitioning the runtime to Faulted (§7).
type SimulationFault struct {
	Message string
}

func (f *SimulationFault) Error() string { return fmt.Sprintf("SimulationFault: %s", f.Message) }

// Controller wraps a runtime Overlay with pre/post-cycle disturbance
// injection. SimTime is simulated elapsed time since the resource started,
// advanced by the caller once per cycle (normally by CycleInterval, or by
// the scheduler's ScaledClock if time_scale != 1).
type Controller struct {
	Overlay      *runtime.Overlay
	Disturbances []*Disturbance
	Couplings    []*Coupling
	Rand         *rand.Rand

	SimTime time.Duration

	// OnFault is invoked when a scripted Fault disturbance fires.
	OnFault func(*SimulationFault)
}

// NewController seeds the controller's RNG from seed, per §4.9
// ("Seeded RNG derived from the configured seed gives reproducible
// disturbance ordering where ties occur").
func NewController(overlay *runtime.Overlay, seed int64) *Controller {
	return &Controller{Overlay: overlay, Rand: rand.New(rand.NewSource(seed))}
}

// PreCycle applies every disturbance whose At has been reached and hasn't
// fired yet, then applies any coupling transition whose delay has elapsed.
func (c *Controller) PreCycle(t time.Duration) {
	c.SimTime = t

	for _, d := range c.Disturbances {
		if d.consumed || d.At > t {
			continue
		}
		d.consumed = true
		switch d.Kind {
		case DisturbanceSetInput:
			c.Overlay.Write(d.Address, d.Value)
		case DisturbanceFault:
			if c.OnFault != nil {
				c.OnFault(&SimulationFault{Message: d.Message})
			}
		}
	}

	for _, cp := range c.Couplings {
		if !cp.havePending || t < cp.pendingAt {
			continue
		}
		if cp.pendingResult {
			c.Overlay.Write(cp.Target, cp.OnTrue)
		} else {
			c.Overlay.Write(cp.Target, cp.OnFalse)
		}
		cp.havePending = false
	}
}

// PostCycle samples every coupling's source against its threshold and
// enqueues a transition (effective at t+Delay) whenever the boolean result
// changed since the last sample.
func (c *Controller) PostCycle(t time.Duration) {
	for _, cp := range c.Couplings {
		val := c.Overlay.Read(cp.Source).Real()
		result := val >= cp.Threshold

		if !cp.haveLastBool {
			// first sample only establishes a baseline; there is nothing to
			// have "changed" from yet.
			cp.lastBool = result
			cp.haveLastBool = true
			continue
		}
		if result == cp.lastBool {
			continue
		}
		cp.lastBool = result

		cp.pendingAt = t + cp.Delay
		cp.pendingResult = result
		cp.havePending = true
	}
}
