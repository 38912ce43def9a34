package prediction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/auth"
	"github.com/abhisek/hemoscan/internal/handoff"
)

type fakeSession struct {
	mu      sync.Mutex
	sess    auth.Session
	logouts int
}

func signedIn() *fakeSession {
	return &fakeSession{sess: auth.Session{
		User:  &api.User{ID: "u1", Username: "ana", Role: api.RoleUser},
		Token: "tok",
	}}
}

func (f *fakeSession) Snapshot() auth.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sess
}

func (f *fakeSession) Logout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sess = auth.Session{}
	f.logouts++
}

var scored = api.PredictionResult{
	RiskLevel:       api.RiskModerate,
	RiskScore:       48.2,
	Probability:     0.482,
	TopFactors:      []api.Factor{{Factor: "Diet Quality", Importance: 31.5}},
	Recommendations: []string{"Eat more leafy greens"},
}

func newWorkflow(sess SessionSource, replies ...api.MockReply) (*Workflow, *api.MockTransport, *handoff.Slot) {
	mock := api.NewMockTransport(replies...)
	slot := &handoff.Slot{}
	return NewWorkflow(api.NewClient(mock), sess, slot, nil), mock, slot
}

func TestSubmit_ValidationBlocksCall(t *testing.T) {
	wf, mock, slot := newWorkflow(signedIn(), api.MockReply{Body: scored})

	f := Form{Age: "15", Gender: "Male", Hemoglobin: "13", Diet: "good"}
	out := wf.Submit(context.Background(), f)

	assert.Equal(t, Errors{FieldAge: "Age must be between 18 and 100"}, out.Fields)
	assert.Nil(t, out.Err)
	assert.False(t, out.Navigate)
	assert.Equal(t, 0, mock.CallCount())
	_, ok := slot.Take()
	assert.False(t, ok)
}

func TestSubmit_RuralModeSuccess(t *testing.T) {
	wf, mock, slot := newWorkflow(signedIn(), api.MockReply{Body: scored})

	f := Form{Age: "30", Gender: "Female", Diet: "poor", RuralMode: true, Symptoms: []string{"fatigue"}}
	out := wf.Submit(context.Background(), f)

	require.NoError(t, out.Err)
	require.NotNil(t, out.Result)
	assert.True(t, out.Navigate)
	assert.Equal(t, api.RiskModerate, out.Result.RiskLevel)

	call := mock.LastCall()
	assert.Equal(t, "/predict", call.Path)
	assert.Equal(t, "tok", call.Token)
	req, ok := call.Body.(api.PredictionRequest)
	require.True(t, ok)
	assert.Nil(t, req.Hemoglobin)
	assert.Equal(t, []api.Symptom{api.SymptomFatigue}, req.Symptoms)

	got, ok := slot.Take()
	require.True(t, ok)
	assert.Equal(t, scored, got.Prediction)
	assert.Equal(t, req, got.Request)
	assert.False(t, wf.InFlight())
}

func TestSubmit_NoSession(t *testing.T) {
	wf, mock, _ := newWorkflow(&fakeSession{})

	out := wf.Submit(context.Background(), validForm())

	var ae *AuthError
	require.ErrorAs(t, out.Err, &ae)
	assert.Equal(t, 0, mock.CallCount())
}

func TestSubmit_FailureLeavesStateUntouched(t *testing.T) {
	sess := signedIn()
	wf, _, slot := newWorkflow(sess,
		api.MockReply{Err: &api.ErrUnavailable{Status: 500, Message: "Model not loaded"}},
		api.MockReply{Err: &api.ErrUnavailable{Err: errors.New("connection refused")}},
	)

	out := wf.Submit(context.Background(), validForm())
	var se *SubmissionError
	require.ErrorAs(t, out.Err, &se)
	assert.Equal(t, "Model not loaded", se.Message)

	out = wf.Submit(context.Background(), validForm())
	require.ErrorAs(t, out.Err, &se)
	assert.Equal(t, SubmitFallback, se.Message)

	assert.True(t, sess.Snapshot().Authenticated())
	assert.Zero(t, sess.logouts)
	_, ok := slot.Take()
	assert.False(t, ok)
	assert.False(t, wf.InFlight())
}

func TestSubmit_FailureKeepsPreviousHandoff(t *testing.T) {
	wf, _, slot := newWorkflow(signedIn(),
		api.MockReply{Body: scored},
		api.MockReply{Err: &api.ErrAPI{Status: 400, Message: "Missing field: diet"}},
	)

	require.True(t, wf.Submit(context.Background(), validForm()).Navigate)
	out := wf.Submit(context.Background(), validForm())
	require.Error(t, out.Err)

	got, ok := slot.Take()
	require.True(t, ok)
	assert.Equal(t, scored, got.Prediction)
}

func TestSubmit_UnauthorizedForcesLogout(t *testing.T) {
	sess := signedIn()
	wf, _, _ := newWorkflow(sess, api.MockReply{Err: &api.ErrUnauthorized{Status: 401}})

	out := wf.Submit(context.Background(), validForm())

	var ae *AuthError
	require.ErrorAs(t, out.Err, &ae)
	assert.Equal(t, 1, sess.logouts)
	assert.False(t, sess.Snapshot().Authenticated())
}

func TestSubmit_SecondSubmitWhileInFlightRejected(t *testing.T) {
	wf, mock, _ := newWorkflow(signedIn(), api.MockReply{Body: scored})
	mock.Gate = make(chan struct{})

	first := make(chan Outcome, 1)
	go func() { first <- wf.Submit(context.Background(), validForm()) }()

	require.Eventually(t, func() bool { return mock.CallCount() == 1 }, time.Second, time.Millisecond)
	assert.True(t, wf.InFlight())

	second := wf.Submit(context.Background(), validForm())
	assert.ErrorIs(t, second.Err, ErrSubmissionInFlight)
	assert.Equal(t, 1, mock.CallCount())

	close(mock.Gate)
	out := <-first
	require.NoError(t, out.Err)
	assert.True(t, out.Navigate)
	assert.False(t, wf.InFlight())
}

func TestSubmit_InvalidResponseUsesFallback(t *testing.T) {
	wf, _, _ := newWorkflow(signedIn(), api.MockReply{Body: `{"risk_level":"Extreme"}`})

	out := wf.Submit(context.Background(), validForm())

	var se *SubmissionError
	require.ErrorAs(t, out.Err, &se)
	assert.Equal(t, SubmitFallback, se.Message)
}

func TestSubmit_ResultDroppedWhenAccountChangesWhilePending(t *testing.T) {
	sess := signedIn()
	wf, mock, slot := newWorkflow(sess, api.MockReply{Body: scored})
	mock.Gate = make(chan struct{})

	done := make(chan Outcome, 1)
	go func() { done <- wf.Submit(context.Background(), validForm()) }()
	require.Eventually(t, func() bool { return mock.CallCount() == 1 }, time.Second, time.Millisecond)

	// Sign out (which clears the slot) and sign in as someone else.
	sess.Logout()
	slot.Clear()
	sess.mu.Lock()
	sess.sess = auth.Session{User: &api.User{ID: "u9", Username: "ben"}, Token: "tok-ben"}
	sess.mu.Unlock()

	close(mock.Gate)
	out := <-done

	assert.ErrorIs(t, out.Err, ErrSessionChanged)
	assert.False(t, out.Navigate)
	_, ok := slot.Take()
	assert.False(t, ok, "previous account's result reached the slot")
}

func TestSubmit_ResultDroppedWhenSlotClearedWhilePending(t *testing.T) {
	wf, mock, slot := newWorkflow(signedIn(), api.MockReply{Body: scored})
	mock.Gate = make(chan struct{})

	done := make(chan Outcome, 1)
	go func() { done <- wf.Submit(context.Background(), validForm()) }()
	require.Eventually(t, func() bool { return mock.CallCount() == 1 }, time.Second, time.Millisecond)

	slot.Clear()
	close(mock.Gate)

	assert.ErrorIs(t, (<-done).Err, ErrSessionChanged)
	_, ok := slot.Take()
	assert.False(t, ok)
}
