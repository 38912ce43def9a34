package store

import (
	"context"
	"time"
)

// Credentials is the durable session record: the bearer token and the
// serialized user it was issued for. Both are written and cleared together.
type Credentials struct {
	Token string
	User  []byte // JSON-encoded user record
}

// CredentialStore persists the session across process restarts.
type CredentialStore interface {
	// Load returns the stored credentials, or nil if none are stored or
	// only one of the two halves is present.
	Load(ctx context.Context) (*Credentials, error)

	// Save atomically replaces the stored token and user.
	Save(ctx context.Context, c Credentials) error

	// Clear removes the stored token and user. Clearing an empty store
	// is not an error.
	Clear(ctx context.Context) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	Path  string    // exact path match (empty = any)
	From  time.Time // timestamp >= From
}

// APIRequestEventData captures one call to the remote service.
type APIRequestEventData struct {
	RequestID    string
	Method       string
	Path         string
	Status       int // 0 when no response was received
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// APIRequestRecord is a stored APIRequestEventData.
type APIRequestRecord struct {
	ID        int64
	Timestamp time.Time
	APIRequestEventData
}

// EventRepo provides append and query access to API request events.
type EventRepo interface {
	// AppendAPIRequest records a remote call.
	AppendAPIRequest(ctx context.Context, data APIRequestEventData) error

	// QueryAPIRequests returns events newest first.
	QueryAPIRequests(ctx context.Context, opts QueryOpts) ([]APIRequestRecord, error)
}
