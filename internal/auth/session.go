package auth

import (
	"context"

	"github.com/abhisek/hemoscan/internal/api"
)

// Phase is the lifecycle phase of the session manager.
type Phase int

const (
	// PhaseLoading lasts from startup until a restored session has been
	// verified (successfully or not).
	PhaseLoading Phase = iota
	// PhaseReady means the session snapshot can be trusted.
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	}
	return "unknown"
}

// Session is a point-in-time snapshot of the signed-in identity. User and
// Token are either both set or both empty.
type Session struct {
	User  *api.User
	Token string
}

// Authenticated reports whether the snapshot holds a session.
func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// IsAdmin reports whether the snapshot holds an admin session.
func (s Session) IsAdmin() bool {
	return s.Authenticated() && s.User.IsAdmin()
}

// Result is the outcome of Login or Signup. Error is a user-facing message.
type Result struct {
	OK    bool
	User  *api.User
	Error string
}

// Authenticator is the subset of the remote API the manager depends on.
// *api.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Signup(ctx context.Context, username, email, password string) (*api.AuthResponse, error)
	Me(ctx context.Context, token string) (*api.User, error)
}

// Source is the read-only view of the manager handed to other components.
type Source interface {
	Snapshot() Session
	Phase() Phase
}
