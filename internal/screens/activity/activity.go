package activity

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/hemoscan/internal/router"
	"github.com/abhisek/hemoscan/internal/screen"
	"github.com/abhisek/hemoscan/internal/store"
	"github.com/abhisek/hemoscan/internal/ui/layout"
	"github.com/abhisek/hemoscan/internal/ui/theme"
)

const pageSize = 50

type activityLoadedMsg struct {
	Requests []store.APIRequestRecord
	Err      error
}

// ActivityScreen lists recent calls to the scoring service from the local
// request log.
type ActivityScreen struct {
	eventRepo store.EventRepo
	requests  []store.APIRequestRecord
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*ActivityScreen)(nil)
var _ screen.KeyHintProvider = (*ActivityScreen)(nil)

// New creates a new ActivityScreen.
func New(eventRepo store.EventRepo) *ActivityScreen {
	return &ActivityScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *ActivityScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		reqs, err := repo.QueryAPIRequests(context.Background(), store.QueryOpts{Limit: pageSize})
		return activityLoadedMsg{Requests: reqs, Err: err}
	}
}

func (s *ActivityScreen) Title() string {
	return "Activity"
}

func (s *ActivityScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ActivityScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case activityLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.requests = msg.Requests
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.requests)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *ActivityScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading activity...")
	}
	if len(s.requests) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No requests recorded yet.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, req := range s.requests {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %-4s %-20s %s  %5dms",
			prefix, req.Timestamp.Local().Format("Jan 02 15:04:05"),
			req.Method, req.Path, statusText(req.Status), req.LatencyMs)

		style := lipgloss.NewStyle().Foreground(statusColor(req))
		if i == s.selected {
			style = style.Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := "    request " + req.RequestID
			if req.ErrorMessage != "" {
				detail += "\n    " + req.ErrorMessage
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func statusText(status int) string {
	if status == 0 {
		return "---"
	}
	return fmt.Sprintf("%3d", status)
}

func statusColor(r store.APIRequestRecord) color.Color {
	switch {
	case r.Success:
		return theme.Text
	case r.Status == 0 || r.Status >= 500:
		return theme.Error
	default:
		return theme.Accent
	}
}
