package home

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/hemoscan/internal/ui/theme"
)

// LogoVariant selects the drop art, which mirrors the service status.
type LogoVariant int

const (
	LogoIdle     LogoVariant = iota // status not known yet
	LogoHealthy                     // service up, model loaded
	LogoDegraded                    // unreachable or model missing
)

const logoDrop = `   ▲
  ▟█▙
 ▟███▙
 ▜███▛
  ▀▀▀`

const logoDropAlert = `   ▲
  ▟█▙  !
 ▟███▙
 ▜███▛
  ▀▀▀`

// RenderLogo returns the drop art for the given variant.
func RenderLogo(v LogoVariant) string {
	art := logoDrop
	var fg color.Color = theme.TextDim

	switch v {
	case LogoHealthy:
		fg = theme.Error
	case LogoDegraded:
		art = logoDropAlert
		fg = theme.Accent
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
