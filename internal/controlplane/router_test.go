package controlplane

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Router_dispatchesKnownType(t *testing.T) {
	s := newTestSession()
	r := NewRouter(s)

	resp := r.Dispatch(Request{ID: "a", Type: "status"})
	assert.Equal(t, "a", resp.ID)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Result)
}

func Test_Router_unknownTypeReturnsError(t *testing.T) {
	s := newTestSession()
	r := NewRouter(s)

	resp := r.Dispatch(Request{ID: "b", Type: "not.a.real.type"})
	assert.Equal(t, "b", resp.ID)
	assert.Equal(t, "unknown type", resp.Error)
}

func Test_Router_recoversHandlerPanic(t *testing.T) {
	s := newTestSession()
	r := NewRouter(s)
	r.register("panics", func(s *Session, params json.RawMessage) (any, error) {
		panic("boom")
	})

	resp := r.Dispatch(Request{ID: "c", Type: "panics"})
	require.NotEmpty(t, resp.Error)
}

func Test_DecodeParams_rejectsEmpty(t *testing.T) {
	err := decodeParams(nil, &struct{}{})
	assert.Error(t, err)
}
