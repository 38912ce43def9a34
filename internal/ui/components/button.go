package components

import (
	"github.com/abhisek/hemoscan/internal/ui/theme"
)

// Button is a styled, focusable button. A busy button shows BusyLabel and
// ignores presses.
type Button struct {
	Label     string
	BusyLabel string
	Focused   bool
	Busy      bool
}

// NewButton creates a new button.
func NewButton(label, busyLabel string) Button {
	return Button{Label: label, BusyLabel: busyLabel}
}

// Pressable reports whether an Enter on the button should act.
func (b Button) Pressable() bool {
	return b.Focused && !b.Busy
}

// View renders the button.
func (b Button) View() string {
	if b.Busy {
		return theme.ButtonInactive.Foreground(theme.TextDim).Render(b.BusyLabel)
	}
	if b.Focused {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}
