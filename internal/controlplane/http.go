package controlplane

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewHTTPSidecar builds the optional read-only health/metrics surface that
// sits alongside the NDJSON control plane: the cyclic control protocol
// itself stays a persistent line-oriented connection, but a plain HTTP
// GET is the more convenient surface for a load balancer's health check or a
// metrics scraper, so it gets its own chi.Router rather than inventing a
// second protocol for the same information the NDJSON
// `status`/`health`/`tasks.stats` handlers already expose.
func NewHTTPSidecar(session *Session) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", httpHealth(session))
	r.Get("/status", httpStatus(session))
	r.Get("/metrics", httpMetrics(session))
	return r
}

func httpHealth(s *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		result, _ := handleHealth(s, nil)
		writeJSON(w, result)
	}
}

func httpStatus(s *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		result, _ := handleStatus(s, nil)
		writeJSON(w, result)
	}
}

func httpMetrics(s *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		result, _ := handleTasksStats(s, nil)
		writeJSON(w, result)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
