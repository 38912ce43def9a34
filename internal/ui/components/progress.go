package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/hemoscan/internal/ui/theme"
)

// Bar is one labelled horizontal bar of a distribution table.
type Bar struct {
	Label      string
	LabelWidth int // pad labels to this width so bars line up
	Count      int
	Total      int
	Width      int
	Color      color.Color // filled color; Secondary when nil
}

// View renders the bar followed by its count and share of the total.
func (b Bar) View() string {
	label := b.Label
	if pad := b.LabelWidth - lipgloss.Width(label); pad > 0 {
		label += strings.Repeat(" ", pad)
	}
	result := lipgloss.NewStyle().Foreground(theme.Text).Render(label) + "  "

	var share float64
	if b.Total > 0 {
		share = float64(b.Count) / float64(b.Total)
	}
	suffix := fmt.Sprintf("  %d (%.0f%%)", b.Count, share*100)

	barWidth := b.Width - lipgloss.Width(result) - len(suffix)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * share)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	fill := b.Color
	if fill == nil {
		fill = theme.Secondary
	}
	result += lipgloss.NewStyle().
		Background(fill).
		Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", empty))

	result += lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(suffix)

	return result
}
