package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/hemoscan/internal/auth"
	"github.com/abhisek/hemoscan/internal/router"
	"github.com/abhisek/hemoscan/internal/screen"
	"github.com/abhisek/hemoscan/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	phase2End    = 1500 * time.Millisecond
	totalDur     = 3000 * time.Millisecond
)

const dropArt = `      ▲
     ▟█▙
    ▟███▙
   ▟█████▙
   ▜█████▛
    ▀▀▀▀▀`

// pulse frames cycle beside the drop
var pulseFrames = []string{"♥", "♡"}

type tickMsg time.Time

// WelcomeScreen shows a splash while the stored session is restored, then
// hands over to the home route on a keypress.
type WelcomeScreen struct {
	session      auth.Source
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen reporting on session.
func New(session auth.Source) *WelcomeScreen {
	return &WelcomeScreen{session: session}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tea.Tick(tickInterval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case tea.KeyPressMsg:
		// Verification is still running; home would show stale entries.
		if w.session.Phase() != auth.PhaseReady {
			return w, nil
		}
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	return func() tea.Msg {
		return router.NavigateMsg{Route: router.RouteHome, Reset: true}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	dropStyle := lipgloss.NewStyle().Foreground(theme.Error)
	rendered := dropStyle.Render(dropArt)

	// Phase 2+: pulse beside the drop
	if w.elapsed >= phase1End {
		pulse := lipgloss.NewStyle().Foreground(theme.Accent).
			Render(pulseFrames[w.tickCount%len(pulseFrames)])

		lines := strings.Split(rendered, "\n")
		if len(lines) > 3 {
			lines[3] = pulse + "  " + lines[3] + "  " + pulse
		}
		rendered = strings.Join(lines, "\n")
	}
	sections = append(sections, rendered)

	// Phase 3+: banner, tagline and session status
	if w.elapsed >= phase2End {
		sections = append(sections, "", RenderBanner(width), "")

		tagline := lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("Anemia risk assessment")
		sections = append(sections, tagline, "", w.status())
	}

	content := strings.Join(sections, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (w *WelcomeScreen) status() string {
	hint := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	if w.session.Phase() != auth.PhaseReady {
		return hint.Render("verifying your session…")
	}

	line := "press any key to continue"
	if sess := w.session.Snapshot(); sess.Authenticated() {
		line = "signed in as " + sess.User.Username + " · " + line
	}
	return hint.Render(line)
}
