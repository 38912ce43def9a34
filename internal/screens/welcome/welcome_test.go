package welcome

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/auth"
	"github.com/abhisek/hemoscan/internal/router"
	"github.com/abhisek/hemoscan/internal/screen"
)

type fakeSource struct {
	phase auth.Phase
	sess  auth.Session
}

func (f *fakeSource) Snapshot() auth.Session { return f.sess }
func (f *fakeSource) Phase() auth.Phase      { return f.phase }

func sendTicks(w *WelcomeScreen, n int) (screen.Screen, tea.Cmd) {
	var s screen.Screen = w
	var cmd tea.Cmd
	for i := 0; i < n; i++ {
		s, cmd = s.Update(tickMsg(time.Now()))
	}
	return s, cmd
}

func TestPhaseTransitions(t *testing.T) {
	w := New(&fakeSource{phase: auth.PhaseReady})

	// Initially at phase 0, no banner visible
	if strings.Contains(w.View(100, 30), "Anemia risk assessment") {
		t.Error("banner should not be visible at start")
	}

	sendTicks(w, 5)
	if w.elapsed != 500*time.Millisecond {
		t.Errorf("expected elapsed 500ms, got %v", w.elapsed)
	}

	sendTicks(w, 10)
	if !strings.Contains(w.View(100, 30), "Anemia risk assessment") {
		t.Error("banner should be visible after phase 2")
	}
}

func TestKeypressWhileVerifyingIsIgnored(t *testing.T) {
	src := &fakeSource{phase: auth.PhaseLoading}
	w := New(src)
	sendTicks(w, 20)

	if _, cmd := w.Update(tea.KeyPressMsg{Code: ' '}); cmd != nil {
		t.Fatal("keypress during verification should not transition")
	}
	if !strings.Contains(w.View(100, 30), "verifying your session") {
		t.Error("status should say the session is being verified")
	}

	src.phase = auth.PhaseReady
	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	if cmd == nil {
		t.Fatal("keypress after verification should transition")
	}
	nav, ok := cmd().(router.NavigateMsg)
	if !ok || nav.Route != router.RouteHome || !nav.Reset {
		t.Errorf("got %#v, want reset to home", nav)
	}
}

func TestKeypressMidAnimationTransitionsWhenReady(t *testing.T) {
	w := New(&fakeSource{phase: auth.PhaseReady})
	sendTicks(w, 3)

	if _, cmd := w.Update(tea.KeyPressMsg{Code: 'a'}); cmd == nil {
		t.Fatal("keypress should skip the animation once the session is ready")
	}
}

func TestTransitionOnlyOnce(t *testing.T) {
	w := New(&fakeSource{phase: auth.PhaseReady})
	sendTicks(w, 35)
	w.Update(tea.KeyPressMsg{Code: 'a'})

	if _, cmd := w.Update(tea.KeyPressMsg{Code: 'b'}); cmd != nil {
		t.Error("second keypress should not produce a command")
	}
	if _, cmd := w.Update(tickMsg(time.Now())); cmd != nil {
		t.Error("ticks should stop after the transition")
	}
}

func TestElapsedCapped(t *testing.T) {
	w := New(&fakeSource{phase: auth.PhaseReady})
	sendTicks(w, 45)
	if w.elapsed != totalDur {
		t.Errorf("expected elapsed capped at %v, got %v", totalDur, w.elapsed)
	}
}

func TestStatusShowsSignedInUser(t *testing.T) {
	w := New(&fakeSource{phase: auth.PhaseReady, sess: auth.Session{
		User:  &api.User{ID: "1", Username: "ann"},
		Token: "t",
	}})
	sendTicks(w, 20)

	if !strings.Contains(w.View(100, 30), "signed in as ann") {
		t.Error("status should name the restored user")
	}
}
