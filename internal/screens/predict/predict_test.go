package predict

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/auth"
	"github.com/abhisek/hemoscan/internal/handoff"
	"github.com/abhisek/hemoscan/internal/prediction"
	"github.com/abhisek/hemoscan/internal/router"
)

type fakeSubmitter struct {
	outcome prediction.Outcome
	forms   []prediction.Form
}

func (f *fakeSubmitter) Submit(_ context.Context, form prediction.Form) prediction.Outcome {
	f.forms = append(f.forms, form)
	return f.outcome
}

var (
	enter = tea.KeyPressMsg{Code: tea.KeyEnter}
	tab   = tea.KeyPressMsg{Code: tea.KeyTab}
	space = tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
)

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// fill completes a valid non-rural questionnaire.
func fill(s *PredictScreen) {
	s.age.SetValue("34")
	s.gender.Chosen = map[string]bool{"Female": true}
	s.hemoglobin.SetValue("11.5")
	s.diet.Chosen = map[string]bool{"poor": true}
	s.symptoms.Chosen = map[string]bool{"dizziness": true, "fatigue": true}
}

func TestSubmit_InvalidShowsFieldErrors(t *testing.T) {
	fs := &fakeSubmitter{}
	s := New(fs)
	s.Init()

	_, cmd := s.Update(enter)
	if cmd != nil {
		t.Fatal("invalid form must not submit")
	}
	if len(fs.forms) != 0 {
		t.Fatalf("Submit called %d times", len(fs.forms))
	}
	if s.age.Err != prediction.MsgAge || s.gender.Err != prediction.MsgGender ||
		s.hemoglobin.Err != prediction.MsgHemoglobin || s.diet.Err != prediction.MsgDiet {
		t.Errorf("errors = %q %q %q %q", s.age.Err, s.gender.Err, s.hemoglobin.Err, s.diet.Err)
	}
}

func TestEditingClearsOnlyThatField(t *testing.T) {
	s := New(&fakeSubmitter{})
	s.Init()
	s.Update(enter)

	s.Update(key('4'))

	if s.age.Err != "" {
		t.Errorf("age error not cleared: %q", s.age.Err)
	}
	if s.diet.Err != prediction.MsgDiet {
		t.Errorf("diet error = %q, want it kept", s.diet.Err)
	}
}

func TestNumericInputDropsLetters(t *testing.T) {
	s := New(&fakeSubmitter{})
	s.Init()

	s.Update(key('a'))
	s.Update(key('4'))

	if got := s.age.Value(); got != "4" {
		t.Errorf("age = %q, want 4", got)
	}
}

func TestSubmit_SuccessReplacesWithResults(t *testing.T) {
	fs := &fakeSubmitter{outcome: prediction.Outcome{Navigate: true}}
	s := New(fs)
	s.Init()
	fill(s)

	_, cmd := s.Update(enter)
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	if !s.button.Busy {
		t.Error("button should be busy while submitting")
	}

	_, next := s.Update(cmd())
	nav, ok := next().(router.NavigateMsg)
	if !ok || nav.Route != router.RouteResults || !nav.Replace {
		t.Errorf("navigation = %#v", nav)
	}

	got := fs.forms[0]
	if got.Age != "34" || got.Gender != "Female" || got.Diet != "poor" || got.RuralMode {
		t.Errorf("form = %+v", got)
	}
	if len(got.Symptoms) != 2 || got.Symptoms[0] != "fatigue" {
		t.Errorf("symptoms = %v, want display order", got.Symptoms)
	}
}

func TestSubmit_RuralModeSkipsHemoglobin(t *testing.T) {
	fs := &fakeSubmitter{outcome: prediction.Outcome{Navigate: true}}
	s := New(fs)
	s.Init()
	fill(s)
	s.hemoglobin.SetValue("")

	s.setFocus(focusRural)
	s.Update(space)
	if !s.ruralMode() {
		t.Fatal("rural mode not toggled")
	}

	s.Update(tab)
	if s.focus != focusDiet {
		t.Errorf("focus = %d, want diet (hemoglobin hidden)", s.focus)
	}

	_, cmd := s.Update(enter)
	if cmd == nil {
		t.Fatal("rural form without hemoglobin should submit")
	}
	s.Update(cmd())
	if !fs.forms[0].RuralMode {
		t.Error("form not in rural mode")
	}
}

func TestSubmit_AuthErrorRechecksRoute(t *testing.T) {
	fs := &fakeSubmitter{outcome: prediction.Outcome{Err: &prediction.AuthError{}}}
	s := New(fs)
	s.Init()
	fill(s)

	_, cmd := s.Update(enter)
	_, next := s.Update(cmd())

	if _, ok := next().(router.RecheckMsg); !ok {
		t.Error("expected a recheck so the guard can redirect to login")
	}
	if s.errMsg != "Your session has expired. Please log in again." {
		t.Errorf("errMsg = %q", s.errMsg)
	}
}

func TestSubmit_FailureKeepsFormAndShowsMessage(t *testing.T) {
	fs := &fakeSubmitter{outcome: prediction.Outcome{
		Err: &prediction.SubmissionError{Message: "Model not loaded", Err: errors.New("503")},
	}}
	s := New(fs)
	s.Init()
	fill(s)

	_, cmd := s.Update(enter)
	_, next := s.Update(cmd())

	if next != nil {
		t.Error("failure must not navigate")
	}
	if s.errMsg != "Model not loaded" {
		t.Errorf("errMsg = %q", s.errMsg)
	}
	if s.button.Busy {
		t.Error("button still busy after failure")
	}
	if s.age.Value() != "34" {
		t.Error("form was reset after failure")
	}
}

func TestSubmit_InFlightRejectionReleasesButton(t *testing.T) {
	fs := &fakeSubmitter{outcome: prediction.Outcome{Err: prediction.ErrSubmissionInFlight}}
	s := New(fs)
	s.Init()
	fill(s)

	_, cmd := s.Update(enter)
	s.Update(cmd())

	if s.button.Busy {
		t.Error("button stuck busy although nothing of this screen is pending")
	}
	if s.errMsg == "" {
		t.Error("rejection was not shown")
	}
}

func TestSubmit_EnterWhileBusyDoesNothing(t *testing.T) {
	fs := &fakeSubmitter{outcome: prediction.Outcome{Navigate: true}}
	s := New(fs)
	s.Init()
	fill(s)

	_, first := s.Update(enter)
	_, second := s.Update(enter)
	if first == nil || second != nil {
		t.Fatalf("first cmd nil=%v, second cmd nil=%v", first == nil, second == nil)
	}
}

type signedInSession struct{}

func (signedInSession) Snapshot() auth.Session {
	return auth.Session{User: &api.User{ID: "u1", Role: api.RoleUser}, Token: "tok"}
}
func (signedInSession) Logout() {}

var scored = api.PredictionResult{
	RiskLevel:       api.RiskHigh,
	RiskScore:       71,
	Probability:     0.71,
	TopFactors:      []api.Factor{{Factor: "Hemoglobin", Importance: 40}},
	Recommendations: []string{"See a clinician"},
}

// gatedWorkflow returns a workflow whose scoring call blocks until the
// returned channel is closed.
func gatedWorkflow() (*prediction.Workflow, *api.MockTransport, chan struct{}) {
	mock := api.NewMockTransport(api.MockReply{Body: scored})
	mock.Gate = make(chan struct{})
	wf := prediction.NewWorkflow(api.NewClient(mock), signedInSession{}, &handoff.Slot{}, nil)
	return wf, mock, mock.Gate
}

func waitCalls(t *testing.T, m *api.MockTransport, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for m.CallCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("only %d calls", m.CallCount())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSubmit_LeftScreenDoesNotBlockNewQuestionnaire(t *testing.T) {
	wfA, mockA, gateA := gatedWorkflow()
	a := New(wfA)
	fill(a)
	_, cmdA := a.Update(enter)
	pending := make(chan tea.Msg, 1)
	go func() { pending <- cmdA() }()
	waitCalls(t, mockA, 1)

	// The user backs out and opens a fresh questionnaire with its own workflow.
	wfB, _, gateB := gatedWorkflow()
	close(gateB)
	b := New(wfB)
	fill(b)
	_, cmdB := b.Update(enter)
	_, next := b.Update(cmdB())

	if next == nil {
		t.Fatalf("new questionnaire did not navigate; errMsg = %q", b.errMsg)
	}
	if nav, ok := next().(router.NavigateMsg); !ok || nav.Route != router.RouteResults {
		t.Errorf("navigation = %#v", nav)
	}

	close(gateA)
	if _, cmd := b.Update(<-pending); cmd != nil || b.button.Busy {
		t.Error("the earlier screen's outcome affected the new one")
	}
}

func TestSubmit_SharedWorkflowRejectionIsNotStuck(t *testing.T) {
	wf, mock, gate := gatedWorkflow()
	a, b := New(wf), New(wf)
	fill(a)
	fill(b)

	_, cmdA := a.Update(enter)
	pending := make(chan tea.Msg, 1)
	go func() { pending <- cmdA() }()
	waitCalls(t, mock, 1)

	_, cmdB := b.Update(enter)
	b.Update(cmdB())
	if b.button.Busy || b.errMsg == "" {
		t.Errorf("busy = %v, errMsg = %q; want released with a message", b.button.Busy, b.errMsg)
	}

	close(gate)
	b.Update(<-pending)
	if b.button.Busy {
		t.Error("other screen's outcome made this one busy")
	}
}

func TestStaleOutcomeIgnored(t *testing.T) {
	s := New(&fakeSubmitter{})
	other := New(&fakeSubmitter{})

	_, cmd := s.Update(submitDoneMsg{owner: other, outcome: prediction.Outcome{Navigate: true}})
	if cmd != nil {
		t.Error("outcome for another instance was applied")
	}
}
