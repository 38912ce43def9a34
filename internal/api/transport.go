package api

import (
	"context"
	"net/http"
)

// Call describes one request to the scoring service.
type Call struct {
	Method string
	Path   string

	// Token, when set, is sent as a bearer credential.
	Token string

	// Body is JSON-encoded when non-nil.
	Body any

	// Schema, when set, is the JSON Schema a 2xx body must conform to.
	Schema *Schema
}

// Idempotent reports whether the call may be safely repeated.
func (c Call) Idempotent() bool {
	return c.Method == http.MethodGet || c.Method == http.MethodHead
}

// Reply is a successful (2xx) response.
type Reply struct {
	Status int
	Body   []byte
}

// Transport is the core abstraction for talking to the service. Non-2xx
// responses are returned as typed errors (ErrUnauthorized, ErrAPI,
// ErrUnavailable); a 2xx body that fails its schema is ErrInvalidResponse.
type Transport interface {
	Do(ctx context.Context, call Call) (*Reply, error)
}
