// Package controlplane implements the newline-delimited JSON request/
// response router of §4.8: every request is {id, type, params?},
// every response is {id, result|error}, dispatched by type across the
// status/io/variables/debug/program handler groups. Grounded on
// server/handlers.go's terminateWithJSON/terminateWithError pair
// (log-then-respond, panic recovered to an error response) and
// server/endpoints.go's type-keyed dispatch table.
package controlplane

import "encoding/json"

// Request is one NDJSON control-plane frame from the client.
type Request struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is one NDJSON control-plane frame back to the client. Exactly
// one of Result/Error is set, matching §4.8's "{id, result|error}".
type Response struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func resultResponse(id string, result any) Response {
	return Response{ID: id, Result: result}
}

func errorResponse(id string, err error) Response {
	return Response{ID: id, Error: err.Error()}
}

// unknownTypeResponse matches §4.8's exact contract: "unknown types
// yield {error: "unknown type"} with preserved id".
func unknownTypeResponse(id string) Response {
	return Response{ID: id, Error: "unknown type"}
}
