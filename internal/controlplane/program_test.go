package controlplane

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/stlc/internal/runtime"
	"github.com/dekarrin/stlc/internal/scheduler"
)

func Test_HandleShutdown_stopsRunner(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.Runner.Start())

	_, err := handleShutdown(s, nil)
	require.NoError(t, err)
	assert.Equal(t, "Stopped", s.Runner.State().String())
}

func Test_HandleRestart_defaultsToWarm(t *testing.T) {
	s := newTestSession()
	s.Runner.Tasks = []*scheduler.Task{{Name: "faulty", Body: func() error { return errors.New("boom") }}}
	require.NoError(t, s.Runner.Start())
	s.Runner.RunOneCycle()
	require.Equal(t, "Faulted", s.Runner.State().String())

	_, err := handleRestart(s, nil)
	require.NoError(t, err)
	assert.Equal(t, "Running", s.Runner.State().String())
}

func Test_HandleBytecodeReload_replacesBundleAndClearsDebuggers(t *testing.T) {
	s := newTestSession()
	attachDebugger(s, "Main")
	require.NotEmpty(t, s.Debuggers)

	newBundle := &runtime.Bundle{Programs: []runtime.Program{{Name: "Other"}}}
	encoded := runtime.EncodeBundle(newBundle)

	result, err := handleBytecodeReload(s, mustParams(t, bytecodeReloadParams{Bundle: encoded}))
	require.NoError(t, err)
	assert.Equal(t, 1, result.(map[string]any)["programs"])
	assert.Empty(t, s.Debuggers)
	assert.NotNil(t, s.Bundle.ProgramByName("Other"))
}

func Test_PairStartClaimList_lifecycle(t *testing.T) {
	s := newTestSession()

	started, err := handlePairStart(s, nil)
	require.NoError(t, err)
	tok := started.(*PairingToken)

	claimed, err := handlePairClaim(s, mustParams(t, pairClaimParams{ID: tok.ID}))
	require.NoError(t, err)
	assert.True(t, claimed.(*PairingToken).Claimed)

	_, err = handlePairClaim(s, mustParams(t, pairClaimParams{ID: tok.ID}))
	assert.Error(t, err, "re-claiming an already-claimed token is rejected")

	listed, err := handlePairList(s, nil)
	require.NoError(t, err)
	assert.Len(t, listed.([]*PairingToken), 1)

	_, err = handlePairRevoke(s, mustParams(t, pairClaimParams{ID: tok.ID}))
	require.NoError(t, err)

	listed, err = handlePairList(s, nil)
	require.NoError(t, err)
	assert.Empty(t, listed.([]*PairingToken))
}
