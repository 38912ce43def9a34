package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/auth"
	"github.com/abhisek/hemoscan/internal/report"
	"github.com/abhisek/hemoscan/internal/screen"
	"github.com/abhisek/hemoscan/internal/ui/components"
	"github.com/abhisek/hemoscan/internal/ui/layout"
	"github.com/abhisek/hemoscan/internal/ui/theme"
)

// Session is what the profile needs from the session manager.
type Session interface {
	Snapshot() auth.Session
	Logout()
}

// Loader fetches the account and its history. *api.Client satisfies it.
type Loader interface {
	Me(ctx context.Context, token string) (*api.User, error)
	History(ctx context.Context, token string) ([]api.HistoricalRecord, error)
}

type profileLoadedMsg struct {
	owner   *ProfileScreen
	user    *api.User
	records []api.HistoricalRecord
	err     error
}

type reportSavedMsg struct {
	owner *ProfileScreen
	path  string
	err   error
}

// ProfileScreen shows the signed-in user's details and past results.
type ProfileScreen struct {
	session   Session
	loader    Loader
	reportDir string
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	user     *api.User
	records  []api.HistoricalRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
	notice   string
}

var _ screen.Screen = (*ProfileScreen)(nil)
var _ screen.KeyHintProvider = (*ProfileScreen)(nil)
var _ screen.Closer = (*ProfileScreen)(nil)

// New creates a new ProfileScreen that saves reports into reportDir.
func New(session Session, loader Loader, reportDir string) *ProfileScreen {
	ctx, cancel := context.WithCancel(context.Background())
	return &ProfileScreen{
		session:   session,
		loader:    loader,
		reportDir: reportDir,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		expanded:  make(map[int]bool),
	}
}

// Init loads the account details and history concurrently.
func (s *ProfileScreen) Init() tea.Cmd {
	sess := s.session.Snapshot()
	s.user = sess.User
	token := sess.Token
	loader, session, parent := s.loader, s.session, s.ctx

	return func() tea.Msg {
		msg := profileLoadedMsg{owner: s}
		g, ctx := errgroup.WithContext(parent)
		g.Go(func() error {
			u, err := loader.Me(ctx, token)
			if err != nil {
				return fmt.Errorf("load account: %w", err)
			}
			msg.user = u
			return nil
		})
		g.Go(func() error {
			recs, err := loader.History(ctx, token)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			msg.records = recs
			return nil
		})
		if err := g.Wait(); err != nil {
			if api.IsUnauthorized(err) {
				session.Logout()
			}
			msg.err = err
		}
		return msg
	}
}

// Close aborts a load still in flight.
func (s *ProfileScreen) Close() {
	s.cancel()
}

func (s *ProfileScreen) Title() string {
	return "Profile"
}

func (s *ProfileScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Details"},
		{Key: "D", Description: "Download report"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProfileScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		if msg.owner != s {
			return s, nil
		}
		s.loaded = true
		if msg.err != nil {
			s.errMsg = api.Message(msg.err, "Failed to load your profile")
			return s, nil
		}
		if msg.user != nil {
			s.user = msg.user
		}
		s.records = msg.records
		return s, nil

	case reportSavedMsg:
		if msg.owner != s {
			return s, nil
		}
		if msg.err != nil {
			s.notice = ""
			s.errMsg = fmt.Sprintf("Could not save report: %v", msg.err)
		} else {
			s.errMsg = ""
			s.notice = "Report saved to " + msg.path
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		case "d":
			if s.selected < len(s.records) {
				return s, s.download(s.records[s.selected])
			}
		}
	}
	return s, nil
}

func (s *ProfileScreen) download(rec api.HistoricalRecord) tea.Cmd {
	in := report.FromRecord(rec)
	dir, now := s.reportDir, s.now()
	return func() tea.Msg {
		path, err := report.Save(dir, in, now)
		return reportSavedMsg{owner: s, path: path, err: err}
	}
}

func (s *ProfileScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	sections := []string{components.Card("ACCOUNT", s.renderUser(), cw)}

	switch {
	case !s.loaded:
		sections = append(sections, theme.Hint.Render("Loading history..."))
	case s.errMsg != "" && len(s.records) == 0:
		sections = append(sections, theme.Banner.Render(s.errMsg))
	case len(s.records) == 0:
		sections = append(sections, theme.Hint.Render("No assessments yet. Run one from the home screen."))
	default:
		sections = append(sections, components.Card(
			fmt.Sprintf("HISTORY (%d)", len(s.records)), s.renderRecords(cw-4), cw))
		if s.notice != "" {
			sections = append(sections, theme.Notice.Render(s.notice))
		} else if s.errMsg != "" {
			sections = append(sections, theme.Banner.Render(s.errMsg))
		}
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, "\n"+strings.Join(sections, "\n\n"))
}

func (s *ProfileScreen) renderUser() string {
	if s.user == nil {
		return theme.Hint.Render("Not signed in")
	}
	row := func(label, value string) string {
		return theme.Label.Render(fmt.Sprintf("%-10s", label)) + theme.Body.Render(value)
	}
	return strings.Join([]string{
		row("Username", s.user.Username),
		row("Email", s.user.Email),
		row("Role", s.user.Role),
	}, "\n")
}

func (s *ProfileScreen) renderRecords(width int) string {
	var b strings.Builder
	for i, rec := range s.records {
		cursor := "  "
		style := theme.Unselected
		if i == s.selected {
			cursor = "▸ "
			style = theme.Selected
		}

		level := lipgloss.NewStyle().Foreground(theme.RiskColor(rec.RiskLevel)).Bold(true).
			Render(fmt.Sprintf("%-8s", rec.RiskLevel))
		b.WriteString(style.Render(cursor+fmt.Sprintf("%-22s", report.FormatDate(rec.Timestamp))))
		b.WriteString(level)
		b.WriteString(theme.Body.Render(fmt.Sprintf("  %.1f%%", rec.RiskScore)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(renderDetail(rec, width))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderDetail(rec api.HistoricalRecord, width int) string {
	hb := "Not provided"
	if rec.Hemoglobin != nil {
		hb = fmt.Sprintf("%g g/dL", *rec.Hemoglobin)
	}
	symptoms := "None reported"
	if len(rec.Symptoms) > 0 {
		names := make([]string, 0, len(rec.Symptoms))
		for _, sym := range rec.Symptoms {
			names = append(names, sym.Label())
		}
		symptoms = strings.Join(names, ", ")
	}

	lines := []string{
		fmt.Sprintf("Age %d · %s · Diet %s", rec.Age, rec.Gender, rec.Diet),
		"Hemoglobin " + hb,
		"Symptoms " + symptoms,
		fmt.Sprintf("Probability %.2f%%", rec.Probability*100),
	}
	for i, r := range rec.Recommendations {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, r))
	}

	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		PaddingLeft(4).
		Width(width).
		Render(strings.Join(lines, "\n")) + "\n"
}
