package controlplane

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Session_recordEventTrimsToRecentThousand(t *testing.T) {
	s := newTestSession()
	for i := 0; i < 1005; i++ {
		s.RecordEvent("tick", "cycle event")
	}
	assert.Len(t, s.events, 1000)
}

func Test_Session_recordFaultIsSeparateFromEvents(t *testing.T) {
	s := newTestSession()
	s.RecordEvent("tick", "ordinary")
	s.RecordFault("watchdog overrun")

	assert.Len(t, s.events, 1)
	assert.Len(t, s.faults, 1)
	assert.Equal(t, "fault", s.faults[0].Kind)
}
