package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/ui/theme"
)

const titleFull = `█ █ █▀▀ █▀▄▀█ █▀█ █▀ █▀▀ ▄▀█ █▄ █
█▀█ ██▄ █ ▀ █ █▄█ ▄█ █▄▄ █▀█ █ ▀█`

const titleCompact = "H · E · M · O · S · C · A · N"

// renderTitle returns the styled title block or the compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	art := titleFull
	if compact {
		art = titleCompact
	}
	title := lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
	tagline := theme.Subtitle.Width(cw).Render("Anemia risk assessment")
	return title + "\n" + tagline
}

// renderStatusBar renders the service status line in a box matching the
// content width.
func renderStatusBar(h *api.Health, err error, checked bool, cw int) string {
	var text string
	switch {
	case !checked:
		text = lipgloss.NewStyle().Foreground(theme.TextDim).Render("○ checking service…")
	case err != nil:
		text = lipgloss.NewStyle().Foreground(theme.Error).Render("● service unreachable")
	case h == nil || !h.ModelLoaded:
		text = lipgloss.NewStyle().Foreground(theme.Accent).Render("● service up, model not loaded")
	default:
		text = lipgloss.NewStyle().Foreground(theme.Success).Render("● service " + h.Status)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw).
		Align(lipgloss.Center).
		Render(text)
}

func logoVariant(h *api.Health, err error, checked bool) LogoVariant {
	switch {
	case !checked:
		return LogoIdle
	case err != nil || h == nil || !h.ModelLoaded:
		return LogoDegraded
	}
	return LogoHealthy
}
