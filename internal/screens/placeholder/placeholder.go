package placeholder

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/hemoscan/internal/screen"
	"github.com/abhisek/hemoscan/internal/ui/theme"
)

// PlaceholderScreen stands in for a protected route while the restored
// session is verified. It shows nothing of the route itself.
type PlaceholderScreen struct {
	title string
	spin  spinner.Model
}

var _ screen.Screen = (*PlaceholderScreen)(nil)

func New(title string) *PlaceholderScreen {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Primary)
	return &PlaceholderScreen{title: title, spin: sp}
}

func (p *PlaceholderScreen) Init() tea.Cmd {
	return p.spin.Tick
}

func (p *PlaceholderScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	p.spin, cmd = p.spin.Update(msg)
	return p, cmd
}

func (p *PlaceholderScreen) View(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.TextDim).
		Render(p.spin.View() + " Verifying session\n\nOne moment…")
}

func (p *PlaceholderScreen) Title() string {
	return p.title
}
