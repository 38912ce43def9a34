package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/hemoscan/internal/ui/theme"
)

// Option is one selectable value.
type Option struct {
	Value string
	Label string
}

// Choice is a focusable option row. In single mode at most one option is
// chosen; in Multi mode any subset may be.
type Choice struct {
	Label   string
	Options []Option
	Multi   bool
	Cursor  int
	Chosen  map[string]bool
	Focused bool
	Err     string
}

// NewChoice creates an option row with nothing chosen.
func NewChoice(label string, options []Option, multi bool) Choice {
	return Choice{
		Label:   label,
		Options: options,
		Multi:   multi,
		Chosen:  make(map[string]bool),
	}
}

// Update moves the cursor with left/right and toggles with space.
// changed is true when the selection changed.
func (c Choice) Update(msg tea.Msg) (_ Choice, changed bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || !c.Focused || len(c.Options) == 0 {
		return c, false
	}

	switch kmsg.String() {
	case "left", "h":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "right", "l":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	case "space", " ", "x":
		c.toggle(c.Options[c.Cursor].Value)
		return c, true
	}
	return c, false
}

func (c *Choice) toggle(v string) {
	if c.Multi {
		c.Chosen[v] = !c.Chosen[v]
		return
	}
	c.Chosen = map[string]bool{v: true}
}

// Value returns the chosen option of a single-select row, or "".
func (c Choice) Value() string {
	for _, o := range c.Options {
		if c.Chosen[o.Value] {
			return o.Value
		}
	}
	return ""
}

// Values returns all chosen options in display order.
func (c Choice) Values() []string {
	var out []string
	for _, o := range c.Options {
		if c.Chosen[o.Value] {
			out = append(out, o.Value)
		}
	}
	return out
}

// View renders the label and the option row.
func (c Choice) View() string {
	labelStyle := theme.Label
	if c.Focused {
		labelStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	}

	parts := make([]string, 0, len(c.Options))
	for i, o := range c.Options {
		mark := "( )"
		if c.Multi {
			mark = "[ ]"
		}
		if c.Chosen[o.Value] {
			mark = "(•)"
			if c.Multi {
				mark = "[x]"
			}
		}
		style := theme.Unselected
		if c.Focused && i == c.Cursor {
			style = theme.Selected.Underline(true)
		}
		parts = append(parts, style.Render(mark+" "+o.Label))
	}

	view := labelStyle.Render(c.Label) + "\n  " + strings.Join(parts, "   ")
	if c.Err != "" {
		view += "\n" + theme.FieldError.Render("  "+c.Err)
	}
	return view
}
