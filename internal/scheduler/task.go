package scheduler

import "time"

// Task is one cyclic program bound to a resource, executed in priority
// order each cycle. Body is pluggable so the scheduler stays independent of
// the runtime's bytecode evaluator; a closure calling
// internal/runtime.Frame.Run satisfies it.
type Task struct {
	Name     string
	Priority int // lower value runs first within a cycle
	Body     func() error

	Metrics Metrics
}

// Metrics mirrors §3's per-task metrics: last_ms, avg_ms, max_ms,
// overruns.
type Metrics struct {
	LastMs   float64
	AvgMs    float64
	MaxMs    float64
	Overruns int
	samples  int
}

func (m *Metrics) record(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	m.LastMs = ms
	if ms > m.MaxMs {
		m.MaxMs = ms
	}
	m.samples++
	m.AvgMs += (ms - m.AvgMs) / float64(m.samples)
}
