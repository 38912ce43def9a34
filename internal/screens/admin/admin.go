package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/auth"
	"github.com/abhisek/hemoscan/internal/poll"
	"github.com/abhisek/hemoscan/internal/report"
	"github.com/abhisek/hemoscan/internal/screen"
	"github.com/abhisek/hemoscan/internal/ui/components"
	"github.com/abhisek/hemoscan/internal/ui/layout"
	"github.com/abhisek/hemoscan/internal/ui/theme"
)

// Session is what the dashboard needs from the session manager.
type Session interface {
	Snapshot() auth.Session
	Logout()
}

// StatsLoader fetches dashboard statistics. *api.Client satisfies it.
type StatsLoader interface {
	Stats(ctx context.Context, token string) (*api.Stats, error)
}

type statsMsg struct {
	owner *AdminScreen
	stats *api.Stats
	err   error
	at    time.Time
}

// AdminScreen is the screening statistics dashboard. It refreshes on an
// interval for as long as it is on the stack.
type AdminScreen struct {
	session  Session
	loader   StatsLoader
	interval time.Duration

	updates chan statsMsg
	handle  *poll.Handle

	stats   *api.Stats
	updated time.Time
	errMsg  string
}

var _ screen.Screen = (*AdminScreen)(nil)
var _ screen.KeyHintProvider = (*AdminScreen)(nil)
var _ screen.Closer = (*AdminScreen)(nil)

// New creates a new AdminScreen refreshing every interval.
func New(session Session, loader StatsLoader, interval time.Duration) *AdminScreen {
	return &AdminScreen{
		session:  session,
		loader:   loader,
		interval: interval,
		updates:  make(chan statsMsg),
	}
}

// Init starts the refresh loop.
func (s *AdminScreen) Init() tea.Cmd {
	if s.handle != nil {
		return nil
	}
	s.handle = poll.Every(context.Background(), s.interval, s.fetch)
	return s.listen()
}

func (s *AdminScreen) fetch(ctx context.Context) {
	st, err := s.loader.Stats(ctx, s.session.Snapshot().Token)
	if ctx.Err() != nil {
		return
	}
	select {
	case s.updates <- statsMsg{owner: s, stats: st, err: err, at: time.Now()}:
	case <-ctx.Done():
	}
}

// listen waits for the next refresh. It yields nil once the loop stops.
func (s *AdminScreen) listen() tea.Cmd {
	updates, done := s.updates, s.handle.Done()
	return func() tea.Msg {
		select {
		case m := <-updates:
			return m
		case <-done:
			return nil
		}
	}
}

// Close stops the refresh loop.
func (s *AdminScreen) Close() {
	if s.handle != nil {
		s.handle.Cancel()
	}
}

func (s *AdminScreen) Title() string {
	return "Admin Dashboard"
}

func (s *AdminScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *AdminScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	m, ok := msg.(statsMsg)
	if !ok || m.owner != s {
		return s, nil
	}

	if m.err != nil {
		if api.IsUnauthorized(m.err) {
			s.session.Logout()
			return s, nil
		}
		s.errMsg = api.Message(m.err, "Failed to load statistics")
	} else {
		s.stats = m.stats
		s.updated = m.at
		s.errMsg = ""
	}
	return s, s.listen()
}

func (s *AdminScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	if s.stats == nil {
		text := theme.Hint.Render("Loading statistics...")
		if s.errMsg != "" {
			text = theme.Banner.Render(s.errMsg)
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
	}

	st := s.stats
	total := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).
		Render(fmt.Sprintf("%d", st.TotalScreenings))
	sections := []string{
		components.Card("TOTAL SCREENINGS", total, cw),
		components.Card("RISK DISTRIBUTION", renderRisk(st, cw-4), cw),
		components.Card("AGE DISTRIBUTION", renderAges(st, cw-4), cw),
		components.Card("RECENT PREDICTIONS", renderRecent(st.RecentPredictions), cw),
	}

	status := fmt.Sprintf("Updated %s · refreshes every %s", s.updated.Format("15:04:05"), s.interval)
	if s.errMsg != "" {
		sections = append(sections, theme.Banner.Render("Refresh failed: "+s.errMsg))
	}
	sections = append(sections, theme.Hint.Render(status))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, strings.Join(sections, "\n"))
}

func renderRisk(st *api.Stats, width int) string {
	levels := []api.RiskLevel{api.RiskLow, api.RiskModerate, api.RiskHigh}
	sum := 0
	for _, l := range levels {
		sum += st.RiskDistribution[string(l)]
	}
	lines := make([]string, 0, len(levels))
	for _, l := range levels {
		lines = append(lines, components.Bar{
			Label:      string(l),
			LabelWidth: 8,
			Count:      st.RiskDistribution[string(l)],
			Total:      sum,
			Width:      width,
			Color:      theme.RiskColor(l),
		}.View())
	}
	return strings.Join(lines, "\n")
}

func renderAges(st *api.Stats, width int) string {
	sum := 0
	for _, bin := range api.AgeBins {
		sum += st.AgeDistribution[bin]
	}
	lines := make([]string, 0, len(api.AgeBins))
	for _, bin := range api.AgeBins {
		lines = append(lines, components.Bar{
			Label:      bin,
			LabelWidth: 8,
			Count:      st.AgeDistribution[bin],
			Total:      sum,
			Width:      width,
		}.View())
	}
	return strings.Join(lines, "\n")
}

func renderRecent(recent []api.RecentPrediction) string {
	if len(recent) == 0 {
		return theme.Hint.Render("No predictions yet.")
	}
	lines := []string{theme.Label.Render(fmt.Sprintf("%-22s %4s  %-7s %-9s %s", "Date", "Age", "Gender", "Risk", "Prob."))}
	for _, p := range recent {
		risk := lipgloss.NewStyle().Foreground(theme.RiskColor(p.RiskLevel)).
			Render(fmt.Sprintf("%-9s", p.RiskLevel))
		lines = append(lines,
			theme.Body.Render(fmt.Sprintf("%-22s %4d  %-7s ", report.FormatDate(p.Timestamp), p.Age, p.Gender))+
				risk+theme.Body.Render(fmt.Sprintf(" %.1f%%", p.Probability)))
	}
	return strings.Join(lines, "\n")
}
