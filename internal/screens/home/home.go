package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/auth"
	"github.com/abhisek/hemoscan/internal/router"
	"github.com/abhisek/hemoscan/internal/screen"
	"github.com/abhisek/hemoscan/internal/screens/activity"
	"github.com/abhisek/hemoscan/internal/store"
	"github.com/abhisek/hemoscan/internal/ui/components"
)

// Session is what the home screen needs from the session manager.
type Session interface {
	Snapshot() auth.Session
	Logout()
}

// HealthChecker reports service status. *api.Client satisfies it.
type HealthChecker interface {
	Health(ctx context.Context) (*api.Health, error)
}

type healthMsg struct {
	owner  *HomeScreen
	health *api.Health
	err    error
}

// HomeScreen is the main menu. Its entries follow the session.
type HomeScreen struct {
	session Session
	health  HealthChecker
	events  store.EventRepo
	menu    components.Menu

	status    *api.Health
	statusErr error
	checked   bool
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen. health may be nil to skip the status
// check and events nil to hide the activity log.
func New(session Session, health HealthChecker, events store.EventRepo) *HomeScreen {
	h := &HomeScreen{session: session, health: health, events: events}
	h.rebuildMenu()
	return h
}

func navigate(id router.RouteID) func() tea.Cmd {
	return func() tea.Cmd { return router.Navigate(id) }
}

func (h *HomeScreen) rebuildMenu() {
	sess := h.session.Snapshot()

	var items []components.MenuItem
	if sess.Authenticated() {
		items = append(items,
			components.MenuItem{Label: "NEW ASSESSMENT", Hint: "answer the questionnaire", Action: navigate(router.RoutePredict)},
			components.MenuItem{Label: "MY PROFILE", Hint: "details and past results", Action: navigate(router.RouteProfile)},
		)
		if sess.IsAdmin() {
			items = append(items, components.MenuItem{Label: "ADMIN DASHBOARD", Hint: "screening statistics", Action: navigate(router.RouteAdmin)})
		}
		items = append(items, components.MenuItem{Label: "SIGN OUT", Action: func() tea.Cmd {
			h.session.Logout()
			h.rebuildMenu()
			return nil
		}})
	} else {
		items = append(items,
			components.MenuItem{Label: "SIGN IN", Action: navigate(router.RouteLogin)},
			components.MenuItem{Label: "CREATE ACCOUNT", Action: navigate(router.RouteSignup)},
		)
	}
	if h.events != nil {
		events := h.events
		items = append(items, components.MenuItem{Label: "ACTIVITY LOG", Hint: "recent service calls", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: activity.New(events)} }
		}})
	}
	items = append(items, components.MenuItem{Label: "EXIT", Action: func() tea.Cmd { return tea.Quit }})

	h.menu = components.NewMenu(items)
}

func (h *HomeScreen) Init() tea.Cmd {
	if h.health == nil {
		return nil
	}
	hc := h.health
	return func() tea.Msg {
		res, err := hc.Health(context.Background())
		return healthMsg{owner: h, health: res, err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case healthMsg:
		if msg.owner == h {
			h.status, h.statusErr, h.checked = msg.health, msg.err, true
		}
		return h, nil
	case router.RecheckMsg:
		h.rebuildMenu()
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := termHeight < 30 || width < 100

	cw := components.ContentWidth(width)
	if cw > 60 {
		cw = 60
	}

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		sections = append(sections, components.Centered(RenderLogo(logoVariant(h.status, h.statusErr, h.checked)), cw))
	}
	if h.health != nil {
		sections = append(sections, renderStatusBar(h.status, h.statusErr, h.checked, cw))
	}
	sections = append(sections, components.Card("", h.menu.View(), cw))

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
