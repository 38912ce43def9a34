package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/hemoscan/internal/ui/theme"
)

const bannerArt = `
 ██╗  ██╗███████╗███╗   ███╗ ██████╗ ███████╗ ██████╗ █████╗ ███╗   ██╗
 ██║  ██║██╔════╝████╗ ████║██╔═══██╗██╔════╝██╔════╝██╔══██╗████╗  ██║
 ███████║█████╗  ██╔████╔██║██║   ██║███████╗██║     ███████║██╔██╗ ██║
 ██╔══██║██╔══╝  ██║╚██╔╝██║██║   ██║╚════██║██║     ██╔══██║██║╚██╗██║
 ██║  ██║███████╗██║ ╚═╝ ██║╚██████╔╝███████║╚██████╗██║  ██║██║ ╚████║
 ╚═╝  ╚═╝╚══════╝╚═╝     ╚═╝ ╚═════╝ ╚══════╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═══╝`

const bannerCompact = "H E M O S C A N"

// RenderBanner returns the HEMOSCAN banner styled in the primary color.
// Uses a compact fallback for terminals narrower than 74 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 74 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
