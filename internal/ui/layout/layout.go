package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/hemoscan/internal/ui/theme"
)

// Smallest terminal the forms fit in without clipping.
const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall reports whether the terminal is below the minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf("HemoScan needs a %d×%d terminal.\n\nThis one is %d×%d.",
			MinWidth, MinHeight, width, height))
}

var barStyle = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

// RenderHeader renders the top bar: brand on the left, the screen title
// centered, and the signed-in user with their role on the right. username
// is empty when nobody is signed in.
func RenderHeader(title, username, role string, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  HemoScan")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	user := renderUser(username, role)

	inner := max(width-4, 0)
	bw, cw, uw := lipgloss.Width(brand), lipgloss.Width(center), lipgloss.Width(user)

	// Center the title on the whole bar, not on the space left over.
	leftGap := max((inner-cw)/2-bw, 1)
	rightGap := max(inner-bw-leftGap-cw-uw, 1)

	line := brand + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + user
	return barStyle.Width(width).Render(line)
}

func renderUser(username, role string) string {
	if username == "" {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("not signed in")
	}
	roleStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	if role == "admin" {
		roleStyle = lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(theme.Text).Render("● "+username) +
		roleStyle.Render("  "+role)
}

// RenderFooter renders the bottom bar of key hints.
func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = keyStyle.Render(h.Key) + " " + descStyle.Render(h.Description)
	}
	return barStyle.Width(width).Render("  " + strings.Join(parts, "   "))
}

// RenderFrame stacks header, content and footer, giving the content
// whatever height the bars leave.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return header + "\n" +
		lipgloss.NewStyle().Width(width).Height(body).Render(content) + "\n" +
		footer
}
