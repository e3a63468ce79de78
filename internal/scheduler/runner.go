package scheduler

import (
	"sync"
	"time"
)

// Watchdog is the configurable cycle-overrun guard of §4.7.
type Watchdog struct {
	Enabled bool
	Timeout time.Duration
	Action  FaultPolicy
}

// Hooks lets a simulation controller (internal/simulation) observe and
// mutate cycle boundaries without the scheduler depending on it directly, a
// pluggable collaborator that is called only if present.
type Hooks struct {
	// PreCycle runs before any task executes this cycle, after the forced
	// overlay has been re-applied to the image.
	PreCycle func(t time.Time)
	// PostCycle runs after every task has executed this cycle.
	PostCycle func(t time.Time)
}

// Runner is one resource's cooperative, single-thread cyclic loop (§4.7,
// §5: "one cooperative thread running a fixed-period loop").
type Runner struct {
	mu sync.Mutex

	Clock           Clock
	CycleInterval   time.Duration
	Tasks           []*Task
	Watchdog        Watchdog
	Hooks           Hooks
	ApplyForced     func() // runtime.Overlay.ApplyToImage, called pre-cycle
	OnFault         func(err error)

	machine    *Machine
	cycleCount int
	pausedDur  time.Duration // not updated or read; the watchdog compares the raw cycle duration (DESIGN.md decision (c))
}

// NewRunner constructs a Runner in the Stopped state.
func NewRunner(clock Clock, interval time.Duration) *Runner {
	return &Runner{Clock: clock, CycleInterval: interval, machine: NewMachine()}
}

func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.machine.State()
}

func (r *Runner) CycleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cycleCount
}

func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.machine.Start()
}

func (r *Runner) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.machine.Pause()
}

func (r *Runner) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.machine.Resume()
}

func (r *Runner) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.machine.Shutdown()
}

// Restart re-enters Running from Faulted. Cold resets task metrics; warm
// leaves them as-is. Retained-variable handling itself is the caller's
// responsibility (internal/runtime.RetainedSnapshot), since the scheduler
// has no notion of bytecode locals.
func (r *Runner) Restart(mode RestartMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.machine.Restart(); err != nil {
		return err
	}
	if mode == RestartCold {
		for _, t := range r.Tasks {
			t.Metrics = Metrics{}
		}
	}
	return nil
}

// RunOneCycle executes a single cycle: pre-cycle hook, every task in
// priority order, post-cycle hook, then watchdog evaluation. It is exported
// separately from Loop so tests (and a ManualClock-driven harness) can step
// cycle-by-cycle instead of running a real wall-clock loop.
func (r *Runner) RunOneCycle() {
	r.mu.Lock()
	if r.machine.State() != Running {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	cycleStart := r.Clock.Now()

	if r.ApplyForced != nil {
		r.ApplyForced()
	}
	if r.Hooks.PreCycle != nil {
		r.Hooks.PreCycle(cycleStart)
	}

	ordered := append([]*Task{}, r.Tasks...)
	sortByPriority(ordered)

	for _, task := range ordered {
		taskStart := time.Now()
		err := task.Body()
		task.Metrics.record(time.Since(taskStart))
		if err != nil {
			r.handleFault(err)
			return
		}
	}

	cycleEnd := r.Clock.Now()
	if r.Hooks.PostCycle != nil {
		r.Hooks.PostCycle(cycleEnd)
	}

	r.mu.Lock()
	r.cycleCount++
	r.mu.Unlock()

	r.evaluateWatchdog(cycleEnd.Sub(cycleStart))
}

func sortByPriority(tasks []*Task) {
	for i := 1; i < len(tasks); i++ {
		for j := i; j > 0 && tasks[j].Priority < tasks[j-1].Priority; j-- {
			tasks[j], tasks[j-1] = tasks[j-1], tasks[j]
		}
	}
}

func (r *Runner) evaluateWatchdog(dur time.Duration) {
	if !r.Watchdog.Enabled || dur <= r.Watchdog.Timeout {
		return
	}
	for _, t := range r.Tasks {
		t.Metrics.Overruns++
	}
	switch r.Watchdog.Action {
	case PolicyHalt:
		r.mu.Lock()
		r.machine.Fault()
		r.mu.Unlock()
	case PolicyRestart:
		r.mu.Lock()
		r.machine.Fault()
		for _, t := range r.Tasks {
			t.Metrics = Metrics{}
		}
		r.machine.Restart()
		r.mu.Unlock()
	case PolicyWarn, PolicyNone:
		// counted above; no state transition
	}
}

func (r *Runner) handleFault(err error) {
	r.mu.Lock()
	r.machine.Fault()
	r.mu.Unlock()
	if r.OnFault != nil {
		r.OnFault(err)
	}
}

// Loop runs RunOneCycle forever at CycleInterval using r.Clock, until
// stopped reports true. Real deployments call this from a dedicated
// goroutine per resource (§5: "multiple resources may run in
// parallel threads").
func (r *Runner) Loop(stopped func() bool) {
	next := r.Clock.Now()
	for !stopped() {
		r.Clock.SleepUntil(next)
		if r.State() == Stopped {
			return
		}
		r.RunOneCycle()
		next = next.Add(r.CycleInterval)
	}
}
