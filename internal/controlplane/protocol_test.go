package controlplane

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ResultResponse_setsResultNotError(t *testing.T) {
	resp := resultResponse("x", map[string]int{"a": 1})
	assert.Equal(t, "x", resp.ID)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Result)
}

func Test_ErrorResponse_setsErrorNotResult(t *testing.T) {
	resp := errorResponse("y", assert.AnError)
	assert.Equal(t, "y", resp.ID)
	assert.Equal(t, assert.AnError.Error(), resp.Error)
	assert.Nil(t, resp.Result)
}

func Test_UnknownTypeResponse_matchesSpecWording(t *testing.T) {
	resp := unknownTypeResponse("z")
	assert.Equal(t, "unknown type", resp.Error)
}
