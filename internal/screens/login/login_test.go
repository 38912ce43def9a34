package login

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/hemoscan/internal/auth"
	"github.com/abhisek/hemoscan/internal/router"
)

type fakeAuth struct {
	result auth.Result
	calls  int
	email  string
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) auth.Result {
	f.calls++
	f.email = email
	return f.result
}

var enter = tea.KeyPressMsg{Code: tea.KeyEnter}

func filled(a Authenticator) *LoginScreen {
	s := New(a)
	s.Init()
	s.email.SetValue("  ann@example.com ")
	s.password.SetValue("secret")
	s.setFocus(focusPassword)
	return s
}

func TestSubmit_EmptyFieldsNeverCall(t *testing.T) {
	fa := &fakeAuth{}
	s := New(fa)
	s.Init()
	s.setFocus(focusButton)

	_, cmd := s.Update(enter)
	if cmd != nil {
		t.Fatal("expected no command for empty form")
	}
	if fa.calls != 0 {
		t.Errorf("Login called %d times", fa.calls)
	}
	if s.errMsg == "" {
		t.Error("expected an error message")
	}
}

func TestSubmit_SuccessNavigatesHome(t *testing.T) {
	fa := &fakeAuth{result: auth.Result{OK: true}}
	s := filled(fa)

	_, cmd := s.Update(enter)
	if cmd == nil {
		t.Fatal("expected login command")
	}
	if !s.button.Busy {
		t.Error("button should be busy while signing in")
	}

	_, next := s.Update(cmd())
	if fa.email != "ann@example.com" {
		t.Errorf("email = %q, want trimmed", fa.email)
	}
	if next == nil {
		t.Fatal("expected navigation command")
	}
	nav, ok := next().(router.NavigateMsg)
	if !ok || nav.Route != router.RouteHome || !nav.Reset {
		t.Errorf("navigation = %#v", nav)
	}
	if s.busy {
		t.Error("still busy after completion")
	}
}

func TestSubmit_FailureShowsMessage(t *testing.T) {
	fa := &fakeAuth{result: auth.Result{Error: "Invalid credentials"}}
	s := filled(fa)

	_, cmd := s.Update(enter)
	_, next := s.Update(cmd())

	if next != nil {
		t.Error("failed login must not navigate")
	}
	if s.errMsg != "Invalid credentials" {
		t.Errorf("errMsg = %q", s.errMsg)
	}
}

func TestSubmit_IgnoredWhileBusy(t *testing.T) {
	fa := &fakeAuth{result: auth.Result{OK: true}}
	s := filled(fa)

	s.Update(enter)
	if _, cmd := s.Update(enter); cmd != nil {
		t.Error("second submit while busy should be ignored")
	}
}

func TestDoneMsgFromOtherInstanceIgnored(t *testing.T) {
	s := New(&fakeAuth{})
	other := New(&fakeAuth{})

	_, cmd := s.Update(loginDoneMsg{owner: other, result: auth.Result{OK: true}})
	if cmd != nil {
		t.Error("message for another screen instance was applied")
	}
}

func TestFocusCycles(t *testing.T) {
	s := New(&fakeAuth{})
	s.Init()

	tab := tea.KeyPressMsg{Code: tea.KeyTab}
	for _, want := range []int{focusPassword, focusButton, focusEmail} {
		s.Update(tab)
		if s.focus != want {
			t.Fatalf("focus = %d, want %d", s.focus, want)
		}
	}
}
