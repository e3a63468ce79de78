// Package scheduler implements the cooperative cyclic resource runner of
// §4.7: a pluggable clock, a priority-ordered task table, a
// watchdog, and the {Stopped, Running, Paused, Faulted} state machine.
package scheduler

import (
	"sync"
	"time"
)

// Clock abstracts time so the scheduler can run against a wall clock, a
// manually-advanced test clock, or a scaled simulation clock (§4.7).
type Clock interface {
	Now() time.Time
	SleepUntil(t time.Time)
}

// RealClock is the production Clock, backed by the system wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) SleepUntil(t time.Time) {
	if d := time.Until(t); d > 0 {
		time.Sleep(d)
	}
}

// ManualClock is a test Clock that only advances when Advance is called,
// letting scheduler tests drive cycles deterministically without real time
// passing.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a ManualClock starting at t0.
func NewManualClock(t0 time.Time) *ManualClock {
	return &ManualClock{now: t0}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// SleepUntil on a ManualClock never blocks; it just advances to t if t is
// later than the current time, so driving tests forward is a single call to
// Advance (or a SleepUntil past the target) rather than a real sleep.
func (c *ManualClock) SleepUntil(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.now) {
		c.now = t
	}
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ScaledClock wraps a Clock and scales every duration computed against it by
// Factor, giving the simulation controller a clock that runs faster or
// slower than real time while reusing RealClock (or a ManualClock in tests)
// underneath.
type ScaledClock struct {
	Base   Clock
	Factor float64
	start  time.Time
	origin time.Time
}

// NewScaledClock anchors a ScaledClock to base's current time.
func NewScaledClock(base Clock, factor float64) *ScaledClock {
	now := base.Now()
	return &ScaledClock{Base: base, Factor: factor, start: now, origin: now}
}

func (c *ScaledClock) Now() time.Time {
	elapsed := c.Base.Now().Sub(c.start)
	return c.origin.Add(time.Duration(float64(elapsed) * c.Factor))
}

func (c *ScaledClock) SleepUntil(t time.Time) {
	elapsed := t.Sub(c.origin)
	baseElapsed := time.Duration(float64(elapsed) / c.Factor)
	c.Base.SleepUntil(c.start.Add(baseElapsed))
}
