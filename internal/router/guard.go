package router

import (
	"github.com/abhisek/hemoscan/internal/auth"
	"github.com/abhisek/hemoscan/internal/screen"
)

// RouteID names a navigable screen.
type RouteID string

const (
	RouteHome    RouteID = "home"
	RouteLogin   RouteID = "login"
	RouteSignup  RouteID = "signup"
	RoutePredict RouteID = "predict"
	RouteResults RouteID = "results"
	RouteProfile RouteID = "profile"
	RouteAdmin   RouteID = "admin"
)

// Requirement is the capability a route demands of the session.
type Requirement int

const (
	RequireNone Requirement = iota
	RequireAuthenticated
	RequireAdmin
)

// Decision is the outcome of evaluating a route against the session.
type Decision int

const (
	Render Decision = iota
	Wait
	RedirectLogin
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case Wait:
		return "wait"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	}
	return "unknown"
}

// Decide is the guard policy. While the session is still being verified
// protected routes wait; they never render or redirect early.
func Decide(phase auth.Phase, s auth.Session, req Requirement) Decision {
	if req == RequireNone {
		return Render
	}
	if phase != auth.PhaseReady {
		return Wait
	}
	if !s.Authenticated() {
		return RedirectLogin
	}
	if req == RequireAdmin && !s.IsAdmin() {
		return RedirectHome
	}
	return Render
}

// Route binds a requirement to a screen constructor.
type Route struct {
	Requirement Requirement
	New         func() screen.Screen
}

// Guard resolves route ids to screens using the live session.
type Guard struct {
	source  auth.Source
	routes  map[RouteID]Route
	waiting func(RouteID) screen.Screen
}

// NewGuard creates a Guard. routes must contain RouteHome and RouteLogin.
// waiting builds the neutral placeholder shown while the session loads.
func NewGuard(source auth.Source, routes map[RouteID]Route, waiting func(RouteID) screen.Screen) *Guard {
	return &Guard{source: source, routes: routes, waiting: waiting}
}

// Evaluate returns the decision for id without building any screen.
func (g *Guard) Evaluate(id RouteID) Decision {
	route, ok := g.routes[id]
	if !ok {
		return RedirectHome
	}
	return Decide(g.source.Phase(), g.source.Snapshot(), route.Requirement)
}

// Resolve returns the screen to show for id along with the decision that
// picked it. Unknown ids resolve to home.
func (g *Guard) Resolve(id RouteID) (screen.Screen, RouteID, Decision) {
	d := g.Evaluate(id)
	switch d {
	case Wait:
		return g.waiting(id), id, d
	case RedirectLogin:
		return g.routes[RouteLogin].New(), RouteLogin, d
	case RedirectHome:
		return g.routes[RouteHome].New(), RouteHome, d
	}
	return g.routes[id].New(), id, d
}
