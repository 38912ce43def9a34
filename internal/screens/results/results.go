package results

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/handoff"
	"github.com/abhisek/hemoscan/internal/report"
	"github.com/abhisek/hemoscan/internal/router"
	"github.com/abhisek/hemoscan/internal/screen"
	"github.com/abhisek/hemoscan/internal/ui/components"
	"github.com/abhisek/hemoscan/internal/ui/layout"
	"github.com/abhisek/hemoscan/internal/ui/theme"
)

// Source yields the pending fresh result. *handoff.Slot satisfies it.
type Source interface {
	Take() (handoff.Result, bool)
}

type reportSavedMsg struct {
	owner *ResultsScreen
	path  string
	err   error
}

// ResultsScreen shows a fresh prediction. Without one it sends the user
// back to the questionnaire.
type ResultsScreen struct {
	source    Source
	reportDir string
	now       func() time.Time

	result handoff.Result
	ok     bool
	saved  string
	errMsg string
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a new ResultsScreen that saves reports into reportDir.
func New(source Source, reportDir string) *ResultsScreen {
	return &ResultsScreen{source: source, reportDir: reportDir, now: time.Now}
}

func (s *ResultsScreen) Init() tea.Cmd {
	s.result, s.ok = s.source.Take()
	if !s.ok {
		return func() tea.Msg {
			return router.NavigateMsg{Route: router.RoutePredict, Replace: true}
		}
	}
	return nil
}

func (s *ResultsScreen) Title() string {
	return "Results"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "D", Description: "Download report"},
		{Key: "N", Description: "New assessment"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case reportSavedMsg:
		if msg.owner != s {
			return s, nil
		}
		if msg.err != nil {
			s.errMsg = fmt.Sprintf("Could not save report: %v", msg.err)
			s.saved = ""
		} else {
			s.saved = msg.path
			s.errMsg = ""
		}
		return s, nil

	case tea.KeyMsg:
		if !s.ok {
			return s, nil
		}
		switch msg.String() {
		case "d":
			return s, s.download()
		case "n":
			return s, func() tea.Msg {
				return router.NavigateMsg{Route: router.RoutePredict, Replace: true}
			}
		}
	}
	return s, nil
}

func (s *ResultsScreen) download() tea.Cmd {
	in := report.FromHandoff(s.result)
	dir, now := s.reportDir, s.now()
	return func() tea.Msg {
		path, err := report.Save(dir, in, now)
		return reportSavedMsg{owner: s, path: path, err: err}
	}
}

func (s *ResultsScreen) View(width, height int) string {
	if !s.ok {
		return ""
	}
	cw := components.ContentWidth(width)
	res := s.result.Prediction

	riskStyle := lipgloss.NewStyle().Foreground(theme.RiskColor(res.RiskLevel)).Bold(true)
	headline := riskStyle.Render(strings.ToUpper(string(res.RiskLevel))+" RISK") + "\n" +
		theme.Body.Render(fmt.Sprintf("Risk score %s%%   Probability %.2f%%",
			formatScore(res.RiskScore), res.Probability*100))

	sections := []string{
		theme.Title.Width(cw).Render("Your Risk Assessment"),
		components.Card("", components.Centered(headline, cw-4), cw),
	}
	if len(res.TopFactors) > 0 {
		sections = append(sections, components.Card("TOP CONTRIBUTING FACTORS", renderFactors(res.TopFactors, cw-4), cw))
	}
	if len(res.Recommendations) > 0 {
		var b strings.Builder
		for i, r := range res.Recommendations {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(theme.Body.Render(fmt.Sprintf("%d. %s", i+1, r)))
		}
		sections = append(sections, components.Card("RECOMMENDATIONS", b.String(), cw))
	}

	switch {
	case s.saved != "":
		sections = append(sections, theme.Notice.Render("Report saved to "+s.saved))
	case s.errMsg != "":
		sections = append(sections, theme.Banner.Render(s.errMsg))
	default:
		sections = append(sections, theme.Hint.Render("This is a screening aid, not a diagnosis. Consult a healthcare provider."))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n\n"))
}

func renderFactors(factors []api.Factor, width int) string {
	labelWidth := 0
	for _, f := range factors {
		if w := lipgloss.Width(f.Factor); w > labelWidth {
			labelWidth = w
		}
	}
	barWidth := width - labelWidth - 10
	if barWidth < 4 {
		barWidth = 4
	}

	lines := make([]string, 0, len(factors))
	for _, f := range factors {
		filled := int(math.Round(f.Importance / 100 * float64(barWidth)))
		filled = max(0, min(filled, barWidth))
		line := theme.Body.Render(fmt.Sprintf("%-*s  ", labelWidth, f.Factor)) +
			lipgloss.NewStyle().Background(theme.Primary).Render(strings.Repeat(" ", filled)) +
			theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)) +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf(" %5.1f%%", f.Importance))
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
