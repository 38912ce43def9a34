package prediction

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/auth"
	"github.com/abhisek/hemoscan/internal/handoff"
)

// SubmitFallback is shown when the server gives no reason for a failure.
const SubmitFallback = "Failed to get prediction. Please try again."

// ErrSubmissionInFlight rejects a submit while another is pending.
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// ErrSessionChanged means the account signed out or changed while the
// scoring call was pending. The result is dropped.
var ErrSessionChanged = errors.New("Your session changed before the result arrived. Please submit again.")

// AuthError means the submission had no usable session. The session has
// been cleared; the next protected navigation goes to login.
type AuthError struct {
	Err error // nil when there was no session to begin with
}

func (e *AuthError) Error() string {
	return "Your session has expired. Please log in again."
}

func (e *AuthError) Unwrap() error { return e.Err }

// SubmissionError is a failed scoring call. Message is user-facing.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string { return e.Message }

func (e *SubmissionError) Unwrap() error { return e.Err }

// Predictor scores a request. *api.Client satisfies it.
type Predictor interface {
	Predict(ctx context.Context, token string, req api.PredictionRequest) (*api.PredictionResult, error)
}

// SessionSource is what the workflow needs from the session manager.
type SessionSource interface {
	Snapshot() auth.Session
	Logout()
}

// Outcome is the result of Submit. Exactly one of Fields, Err and Result
// is set.
type Outcome struct {
	Fields   Errors
	Err      error
	Result   *api.PredictionResult
	Navigate bool // true when the results view should be shown
}

// Workflow submits questionnaires, at most one at a time.
type Workflow struct {
	predictor Predictor
	session   SessionSource
	slot      *handoff.Slot
	logger    *zap.Logger

	inFlight atomic.Bool
}

// NewWorkflow creates a Workflow. logger may be nil.
func NewWorkflow(p Predictor, s SessionSource, slot *handoff.Slot, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{predictor: p, session: s, slot: slot, logger: logger}
}

// InFlight reports whether a submission is pending.
func (w *Workflow) InFlight() bool {
	return w.inFlight.Load()
}

// Submit validates f and, when valid, sends it for scoring. It blocks for
// the duration of the call; run it from a goroutine or tea.Cmd.
func (w *Workflow) Submit(ctx context.Context, f Form) Outcome {
	req, err := f.Request()
	if err != nil {
		var errs Errors
		errors.As(err, &errs)
		return Outcome{Fields: errs}
	}

	if !w.inFlight.CompareAndSwap(false, true) {
		return Outcome{Err: ErrSubmissionInFlight}
	}
	defer w.inFlight.Store(false)

	sess := w.session.Snapshot()
	if !sess.Authenticated() {
		return Outcome{Err: &AuthError{}}
	}

	gen := w.slot.Generation()
	res, err := w.predictor.Predict(ctx, sess.Token, req)
	if err != nil {
		if api.IsUnauthorized(err) {
			w.logger.Info("prediction rejected; session no longer valid", zap.Error(err))
			w.session.Logout()
			return Outcome{Err: &AuthError{Err: err}}
		}
		w.logger.Warn("prediction failed", zap.Error(err))
		return Outcome{Err: &SubmissionError{Message: api.Message(err, SubmitFallback), Err: err}}
	}

	if w.session.Snapshot().Token != sess.Token ||
		!w.slot.PutIf(gen, handoff.Result{Prediction: *res, Request: req}) {
		w.logger.Info("prediction dropped; session changed while pending")
		return Outcome{Err: ErrSessionChanged}
	}
	w.logger.Info("prediction received", zap.String("risk_level", string(res.RiskLevel)))
	return Outcome{Result: res, Navigate: true}
}
