package controlplane

import (
	"encoding/json"
	"fmt"

	"github.com/dekarrin/stlc/internal/serr"
)

// HandlerFunc handles one decoded request's params and returns the value to
// place in the response's result field.
type HandlerFunc func(s *Session, params json.RawMessage) (any, error)

// Router dispatches a decoded Request to the HandlerFunc registered for its
// Type, grounded on server/endpoints.go's type-keyed dispatch table.
type Router struct {
	session  *Session
	handlers map[string]HandlerFunc
}

// NewRouter builds a Router with every handler group registered.
func NewRouter(session *Session) *Router {
	r := &Router{session: session, handlers: make(map[string]HandlerFunc)}
	registerStatusHandlers(r)
	registerIOHandlers(r)
	registerVariableHandlers(r)
	registerDebugHandlers(r)
	registerProgramHandlers(r)
	return r
}

func (r *Router) register(typ string, h HandlerFunc) {
	r.handlers[typ] = h
}

// Dispatch runs req against the registered handler for its Type, recovering
// panics into an error response (server/handlers.go's panicTo500 idiom).
func (r *Router) Dispatch(req Request) (resp Response) {
	defer func() {
		if p := recover(); p != nil {
			resp = errorResponse(req.ID, fmt.Errorf("panic: %v", p))
		}
	}()

	h, ok := r.handlers[req.Type]
	if !ok {
		return unknownTypeResponse(req.ID)
	}

	result, err := h(r.session, req.Params)
	if err != nil {
		return errorResponse(req.ID, err)
	}
	return resultResponse(req.ID, result)
}

// decodeParams unmarshals params into v, reporting missing params as
// serr.ErrBadArgument so handler callers can tell a malformed request apart
// from a handler-internal failure with errors.Is.
func decodeParams(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: params required", serr.ErrBadArgument)
	}
	return json.Unmarshal(params, v)
}
