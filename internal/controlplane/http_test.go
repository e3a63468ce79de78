package controlplane

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_HTTPSidecar_healthzReportsRunnerState(t *testing.T) {
	session := newTestSession()
	sidecar := NewHTTPSidecar(session)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	sidecar.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\"ok\":true")
}

func Test_HTTPSidecar_statusReportsCycleCount(t *testing.T) {
	session := newTestSession()
	sidecar := NewHTTPSidecar(session)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	sidecar.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cycle_count")
}
