package router

import (
	"github.com/abhisek/hemoscan/internal/screen"

	tea "charm.land/bubbletea/v2"
)

// PushScreenMsg requests the router to push a new screen onto the stack.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg requests the router to pop the current screen off the stack.
type PopScreenMsg struct{}

// ReplaceScreenMsg requests the router to replace the current screen.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// NavigateMsg requests a guarded route. By default the resolved screen is
// pushed; Replace swaps it for the current screen and Reset makes it the
// only screen on the stack. Redirects always reset.
type NavigateMsg struct {
	Route   RouteID
	Replace bool
	Reset   bool
}

// RecheckMsg asks the router to re-evaluate the active route after the
// session or its phase changed.
type RecheckMsg struct{}

// Navigate returns a command emitting a NavigateMsg for id.
func Navigate(id RouteID) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: id} }
}

type entry struct {
	screen  screen.Screen
	route   RouteID // empty for screens pushed directly
	waiting bool    // screen is a placeholder for route
}

// Router manages a stack of screens.
type Router struct {
	stack []entry
	guard *Guard
}

// New creates a new Router with the given initial screen.
func New(initial screen.Screen) *Router {
	return &Router{
		stack: []entry{{screen: initial}},
	}
}

// NewGuarded creates a Router whose navigation goes through g, starting at
// the resolution of initial.
func NewGuarded(g *Guard, initial RouteID) *Router {
	r := &Router{guard: g}
	r.stack = []entry{r.resolve(initial)}
	return r
}

// NewGuardedFrom creates a guarded Router starting at a screen that is not
// a route, such as a splash.
func NewGuardedFrom(g *Guard, initial screen.Screen) *Router {
	return &Router{guard: g, stack: []entry{{screen: initial}}}
}

// Init runs the initial screen's Init.
func (r *Router) Init() tea.Cmd {
	if active := r.Active(); active != nil {
		return active.Init()
	}
	return nil
}

// Push adds a screen on top of the stack and calls its Init().
func (r *Router) Push(s screen.Screen) tea.Cmd {
	return r.push(entry{screen: s})
}

func (r *Router) push(e entry) tea.Cmd {
	r.stack = append(r.stack, e)
	return e.screen.Init()
}

// Pop removes the top screen. No-op if stack depth would become 0.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	closeScreen(r.stack[len(r.stack)-1].screen)
	r.stack = r.stack[:len(r.stack)-1]
	return nil
}

// Replace swaps the top screen for s and calls its Init().
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	return r.replace(entry{screen: s})
}

func (r *Router) replace(e entry) tea.Cmd {
	if len(r.stack) == 0 {
		return r.push(e)
	}
	closeScreen(r.stack[len(r.stack)-1].screen)
	r.stack[len(r.stack)-1] = e
	return e.screen.Init()
}

func (r *Router) reset(e entry) tea.Cmd {
	for _, old := range r.stack {
		closeScreen(old.screen)
	}
	r.stack = []entry{e}
	return e.screen.Init()
}

// Navigate resolves id through the guard and shows the result.
func (r *Router) Navigate(msg NavigateMsg) tea.Cmd {
	if r.guard == nil {
		return nil
	}
	e := r.resolve(msg.Route)
	switch {
	case e.route != msg.Route, msg.Reset:
		return r.reset(e)
	case msg.Replace:
		return r.replace(e)
	}
	return r.push(e)
}

func (r *Router) resolve(id RouteID) entry {
	s, resolved, d := r.guard.Resolve(id)
	return entry{screen: s, route: resolved, waiting: d == Wait}
}

// Recheck re-evaluates the active route. A waiting placeholder is swapped
// for its route's resolution once the session is ready; a rendered route
// the session no longer satisfies is redirected.
func (r *Router) Recheck() tea.Cmd {
	if r.guard == nil || len(r.stack) == 0 {
		return nil
	}
	top := r.stack[len(r.stack)-1]
	if top.route == "" {
		return nil
	}

	d := r.guard.Evaluate(top.route)
	if d == Wait || (d == Render && !top.waiting) {
		return nil
	}
	return r.Navigate(NavigateMsg{Route: top.route, Replace: true})
}

// Active returns the top screen on the stack.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1].screen
}

// ActiveRoute returns the route of the top screen, or "" if it was pushed
// directly.
func (r *Router) ActiveRoute() RouteID {
	if len(r.stack) == 0 {
		return ""
	}
	return r.stack[len(r.stack)-1].route
}

// Depth returns the number of screens on the stack.
func (r *Router) Depth() int {
	return len(r.stack)
}

// Update forwards a message to the active screen and handles navigation messages.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case NavigateMsg:
		return r.Navigate(msg)
	case RecheckMsg:
		cmd := r.Recheck()
		// The active screen may render session-dependent content.
		return tea.Batch(cmd, r.forward(msg))
	}
	return r.forward(msg)
}

func (r *Router) forward(msg tea.Msg) tea.Cmd {
	active := r.Active()
	if active == nil {
		return nil
	}

	updated, cmd := active.Update(msg)
	r.stack[len(r.stack)-1].screen = updated
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	active := r.Active()
	if active == nil {
		return ""
	}
	return active.View(width, height)
}

// Close closes every screen on the stack. The router is empty afterwards.
func (r *Router) Close() {
	for _, e := range r.stack {
		closeScreen(e.screen)
	}
	r.stack = nil
}

func closeScreen(s screen.Screen) {
	if c, ok := s.(screen.Closer); ok {
		c.Close()
	}
}
