package app

import (
	"context"
	"fmt"
	"os"
	"sync"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/auth"
	"github.com/abhisek/hemoscan/internal/config"
	"github.com/abhisek/hemoscan/internal/handoff"
	"github.com/abhisek/hemoscan/internal/prediction"
	"github.com/abhisek/hemoscan/internal/router"
	"github.com/abhisek/hemoscan/internal/screen"
	"github.com/abhisek/hemoscan/internal/screens/admin"
	"github.com/abhisek/hemoscan/internal/screens/home"
	"github.com/abhisek/hemoscan/internal/screens/login"
	"github.com/abhisek/hemoscan/internal/screens/placeholder"
	"github.com/abhisek/hemoscan/internal/screens/predict"
	"github.com/abhisek/hemoscan/internal/screens/profile"
	"github.com/abhisek/hemoscan/internal/screens/results"
	"github.com/abhisek/hemoscan/internal/screens/signup"
	"github.com/abhisek/hemoscan/internal/screens/welcome"
	"github.com/abhisek/hemoscan/internal/store"
	"github.com/abhisek/hemoscan/internal/ui/layout"
)

// Options holds the dependencies the TUI is built from.
type Options struct {
	Config   config.Config
	Manager  *auth.Manager
	Client   *api.Client
	Slot     *handoff.Slot
	Events   store.EventRepo
	Logger   *zap.Logger

	// Splash opens on the welcome screen instead of home.
	Splash bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	session auth.Source
	width   int
	height  int
}

var routeTitles = map[router.RouteID]string{
	router.RouteHome:    "Home",
	router.RouteLogin:   "Sign in",
	router.RouteSignup:  "Create account",
	router.RoutePredict: "Risk Assessment",
	router.RouteResults: "Results",
	router.RouteProfile: "Profile",
	router.RouteAdmin:   "Admin Dashboard",
}

// routes builds the route table. Every constructor returns a fresh screen.
func routes(opts Options) map[router.RouteID]router.Route {
	return map[router.RouteID]router.Route{
		router.RouteHome: {Requirement: router.RequireNone, New: func() screen.Screen {
			if opts.Client == nil {
				return home.New(opts.Manager, nil, opts.Events)
			}
			return home.New(opts.Manager, opts.Client, opts.Events)
		}},
		router.RouteLogin: {Requirement: router.RequireNone, New: func() screen.Screen {
			return login.New(opts.Manager)
		}},
		router.RouteSignup: {Requirement: router.RequireNone, New: func() screen.Screen {
			return signup.New(opts.Manager)
		}},
		router.RoutePredict: {Requirement: router.RequireAuthenticated, New: func() screen.Screen {
			// Each questionnaire owns its workflow, so a submission left
			// pending by an earlier screen never blocks a new one.
			return predict.New(prediction.NewWorkflow(opts.Client, opts.Manager, opts.Slot, opts.Logger))
		}},
		router.RouteResults: {Requirement: router.RequireAuthenticated, New: func() screen.Screen {
			return results.New(opts.Slot, opts.Config.ReportDir)
		}},
		router.RouteProfile: {Requirement: router.RequireAuthenticated, New: func() screen.Screen {
			return profile.New(opts.Manager, opts.Client, opts.Config.ReportDir)
		}},
		router.RouteAdmin: {Requirement: router.RequireAdmin, New: func() screen.Screen {
			return admin.New(opts.Manager, opts.Client, opts.Config.StatsInterval)
		}},
	}
}

func waiting(id router.RouteID) screen.Screen {
	return placeholder.New(routeTitles[id])
}

// newAppModel creates an AppModel whose navigation is guarded by the
// session in source. With splash set it opens on the welcome screen,
// otherwise on home.
func newAppModel(source auth.Source, table map[router.RouteID]router.Route, splash bool) AppModel {
	guard := router.NewGuard(source, table, waiting)
	r := router.NewGuarded(guard, router.RouteHome)
	if splash {
		r = router.NewGuardedFrom(guard, welcome.New(source))
	}
	return AppModel{router: r, session: source}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			if m.router.ActiveRoute() != router.RouteHome {
				return m, func() tea.Msg {
					return router.NavigateMsg{Route: router.RouteHome, Reset: true}
				}
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	var username, role string
	if sess := m.session.Snapshot(); sess.Authenticated() {
		username, role = sess.User.Username, sess.User.Role
	}
	header := layout.RenderHeader(title, username, role, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run restores the session and starts the Bubble Tea program. Session
// changes re-evaluate the active route; signing out also drops any
// undisplayed result.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := newAppModel(opts.Manager, routes(opts), opts.Splash)
	p := tea.NewProgram(m)

	var (
		mu        sync.Mutex
		lastToken = opts.Manager.Snapshot().Token
	)
	unsubscribe := opts.Manager.Subscribe(func(s auth.Session, phase auth.Phase) {
		logger.Debug("session changed",
			zap.Bool("authenticated", s.Authenticated()),
			zap.Stringer("phase", phase))
		mu.Lock()
		if !s.Authenticated() || s.Token != lastToken {
			opts.Slot.Clear()
		}
		lastToken = s.Token
		mu.Unlock()
		// Send blocks until the event loop reads; never hold up the caller.
		go p.Send(router.RecheckMsg{})
	})
	defer unsubscribe()

	opts.Manager.Initialize(ctx)

	_, err := p.Run()
	m.router.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
