package login

import (
	"context"
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

// Authenticator signs a user in. *auth.Manager satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) auth.Result
}

type loginDoneMsg struct {
	owner  *LoginScreen
	result auth.Result
}

const (
	focusEmail = iota
	focusPassword
	focusButton
	focusCount
)

// LoginScreen collects email and password and signs the user in.
type LoginScreen struct {
	auth     Authenticator
	email    components.TextInput
	password components.TextInput
	button   components.Button
	focus    int
	busy     bool
	errMsg   string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a new LoginScreen.
func New(a Authenticator) *LoginScreen {
	s := &LoginScreen{
		auth:     a,
		email:    components.NewTextInput("Email", "you@example.com", components.KindText, 254),
		password: components.NewTextInput("Password", "", components.KindPassword, 128),
		button:   components.NewButton("Sign in", "Signing in…"),
	}
	return s
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.setFocus(focusEmail)
}

func (s *LoginScreen) Title() string {
	return "Sign in"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Sign in"},
		{Key: "Ctrl+N", Description: "Create account"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LoginScreen) setFocus(i int) tea.Cmd {
	s.focus = (i + focusCount) % focusCount
	s.email.Blur()
	s.password.Blur()
	s.button.Focused = s.focus == focusButton

	switch s.focus {
	case focusEmail:
		return s.email.Focus()
	case focusPassword:
		return s.password.Focus()
	}
	return nil
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
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
		case "ctrl+n":
			return s, func() tea.Msg {
				return router.NavigateMsg{Route: router.RouteSignup, Replace: true}
			}
		case "enter":
			if s.focus == focusEmail {
				return s, s.setFocus(focusPassword)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	switch s.focus {
	case focusEmail:
		s.email, cmd = s.email.Update(msg)
	case focusPassword:
		s.password, cmd = s.password.Update(msg)
	}
	return s, cmd
}

func (s *LoginScreen) submit() tea.Cmd {
	if s.busy {
		return nil
	}
	email := strings.TrimSpace(s.email.Value())
	password := s.password.Value()
	if email == "" || password == "" {
		s.errMsg = "Please enter your email and password"
		return nil
	}

	s.errMsg = ""
	s.busy = true
	s.button.Busy = true
	a := s.auth
	return func() tea.Msg {
		return loginDoneMsg{owner: s, result: a.Login(context.Background(), email, password)}
	}
}

func (s *LoginScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	if cw > 50 {
		cw = 50
	}

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render("Welcome back"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(cw).Render("Sign in to run a risk assessment"))
	b.WriteString("\n\n")
	b.WriteString(s.email.View())
	b.WriteString("\n\n")
	b.WriteString(s.password.View())
	b.WriteString("\n\n")
	b.WriteString(s.button.View())

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Banner.Render(s.errMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render("No account yet? Press Ctrl+N to sign up."))

	card := components.Card("", b.String(), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
