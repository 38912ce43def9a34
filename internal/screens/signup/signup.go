package signup

import (
	"context"
	"regexp"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/hemoscan/internal/auth"
	"github.com/abhisek/hemoscan/internal/router"
	"github.com/abhisek/hemoscan/internal/screen"
	"github.com/abhisek/hemoscan/internal/ui/components"
	"github.com/abhisek/hemoscan/internal/ui/layout"
	"github.com/abhisek/hemoscan/internal/ui/theme"
)

// Registrar creates an account. *auth.Manager satisfies it.
type Registrar interface {
	Signup(ctx context.Context, username, email, password string) auth.Result
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Hints returns advisory messages for the signup fields, keyed by field
// name. They are shown to the user but never stop a submission; the
// server decides.
func Hints(username, email string) map[string]string {
	h := make(map[string]string)
	if u := strings.TrimSpace(username); u != "" && len([]rune(u)) < 3 {
		h["username"] = "Usernames are usually at least 3 characters"
	}
	if e := strings.TrimSpace(email); e != "" && !emailPattern.MatchString(e) {
		h["email"] = "That doesn't look like an email address"
	}
	return h
}

type signupDoneMsg struct {
	owner  *SignupScreen
	result auth.Result
}

const (
	focusUsername = iota
	focusEmail
	focusPassword
	focusButton
	focusCount
)

// SignupScreen registers a new account.
type SignupScreen struct {
	registrar Registrar
	inputs    [3]components.TextInput // username, email, password
	button    components.Button
	focus     int
	busy      bool
	errMsg    string
}

var _ screen.Screen = (*SignupScreen)(nil)
var _ screen.KeyHintProvider = (*SignupScreen)(nil)

// New creates a new SignupScreen.
func New(r Registrar) *SignupScreen {
	return &SignupScreen{
		registrar: r,
		inputs: [3]components.TextInput{
			components.NewTextInput("Username", "jane", components.KindText, 64),
			components.NewTextInput("Email", "you@example.com", components.KindText, 254),
			components.NewTextInput("Password", "", components.KindPassword, 128),
		},
		button: components.NewButton("Create account", "Creating account…"),
	}
}

func (s *SignupScreen) Init() tea.Cmd {
	return s.setFocus(focusUsername)
}

func (s *SignupScreen) Title() string {
	return "Create account"
}

func (s *SignupScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+L", Description: "Sign in instead"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SignupScreen) setFocus(i int) tea.Cmd {
	s.focus = (i + focusCount) % focusCount
	for j := range s.inputs {
		s.inputs[j].Blur()
	}
	s.button.Focused = s.focus == focusButton
	if s.focus < len(s.inputs) {
		return s.inputs[s.focus].Focus()
	}
	return nil
}

func (s *SignupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case signupDoneMsg:
		if msg.owner != s {
			return s, nil
		}
		s.busy = false
		s.button.Busy = false
		if !msg.result.OK {
			s.errMsg = msg.result.Error
			return s, nil
		}
		return s, func() tea.Msg {
			return router.NavigateMsg{Route: router.RouteHome, Reset: true}
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return s, s.setFocus(s.focus + 1)
		case "shift+tab", "up":
			return s, s.setFocus(s.focus - 1)
		case "ctrl+l":
			return s, func() tea.Msg {
				return router.NavigateMsg{Route: router.RouteLogin, Replace: true}
			}
		case "enter":
			if s.focus < focusPassword {
				return s, s.setFocus(s.focus + 1)
			}
			return s, s.submit()
		}
	}

	if s.focus >= len(s.inputs) {
		return s, nil
	}
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	s.refreshHints()
	return s, cmd
}

func (s *SignupScreen) refreshHints() {
	h := Hints(s.inputs[focusUsername].Value(), s.inputs[focusEmail].Value())
	s.inputs[focusUsername].Err = h["username"]
	s.inputs[focusEmail].Err = h["email"]
}

func (s *SignupScreen) submit() tea.Cmd {
	if s.busy {
		return nil
	}
	username := strings.TrimSpace(s.inputs[focusUsername].Value())
	email := strings.TrimSpace(s.inputs[focusEmail].Value())
	password := s.inputs[focusPassword].Value()
	if username == "" || email == "" || password == "" {
		s.errMsg = "Please fill in all fields"
		return nil
	}

	s.errMsg = ""
	s.busy = true
	s.button.Busy = true
	r := s.registrar
	return func() tea.Msg {
		return signupDoneMsg{owner: s, result: r.Signup(context.Background(), username, email, password)}
	}
}

func (s *SignupScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	if cw > 50 {
		cw = 50
	}

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render("Create your account"))
	b.WriteString("\n\n")
	for _, in := range s.inputs {
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	b.WriteString(s.button.View())

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Banner.Render(s.errMsg))
	}

	card := components.Card("", b.String(), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
