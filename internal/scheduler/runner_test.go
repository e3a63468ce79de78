package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Machine_validTransitionSequence(t *testing.T) {
	m := NewMachine()

	require.NoError(t, m.Start())
	assert.Equal(t, Running, m.State())
	require.NoError(t, m.Pause())
	assert.Equal(t, Paused, m.State())
	require.NoError(t, m.Resume())
	assert.Equal(t, Running, m.State())
	require.NoError(t, m.Fault())
	assert.Equal(t, Faulted, m.State())
	require.NoError(t, m.Restart())
	assert.Equal(t, Running, m.State())
	m.Shutdown()
	assert.Equal(t, Stopped, m.State())
}

func Test_Machine_invalidTransitionReturnsError(t *testing.T) {
	m := NewMachine()

	err := m.Pause()

	assert.Error(t, err)
}

func Test_RunOneCycle_executesTasksInPriorityOrder(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	r := NewRunner(clock, 10*time.Millisecond)
	require.NoError(t, r.Start())

	var order []string
	r.Tasks = []*Task{
		{Name: "low", Priority: 2, Body: func() error { order = append(order, "low"); return nil }},
		{Name: "high", Priority: 1, Body: func() error { order = append(order, "high"); return nil }},
	}

	r.RunOneCycle()

	assert.Equal(t, []string{"high", "low"}, order)
	assert.Equal(t, 1, r.CycleCount())
}

func Test_RunOneCycle_taskFaultTransitionsToFaulted(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	r := NewRunner(clock, 10*time.Millisecond)
	require.NoError(t, r.Start())

	r.Tasks = []*Task{{Name: "bad", Body: func() error { return assertFailedErr{} }}}

	r.RunOneCycle()

	assert.Equal(t, Faulted, r.State())
}

type assertFailedErr struct{}

func (assertFailedErr) Error() string { return "boom" }

func Test_Watchdog_haltTransitionsToFaulted(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	r := NewRunner(clock, 10*time.Millisecond)
	require.NoError(t, r.Start())
	r.Watchdog = Watchdog{Enabled: true, Timeout: -1, Action: PolicyHalt}
	r.Tasks = []*Task{{Name: "ok", Body: func() error { return nil }}}

	r.RunOneCycle()

	assert.Equal(t, Faulted, r.State())
}

func Test_Restart_coldResetsMetrics(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	r := NewRunner(clock, 10*time.Millisecond)
	require.NoError(t, r.Start())
	task := &Task{Name: "t", Body: func() error { return nil }}
	task.Metrics.Overruns = 5
	r.Tasks = []*Task{task}
	require.NoError(t, r.machine.Fault())

	require.NoError(t, r.Restart(RestartCold))

	assert.Equal(t, 0, task.Metrics.Overruns)
}
