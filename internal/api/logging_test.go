package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/hemoscan/internal/store"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []store.APIRequestEventData
	fail   error
}

func (r *recordingRepo) AppendAPIRequest(_ context.Context, d store.APIRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.events = append(r.events, d)
	return nil
}

func (r *recordingRepo) QueryAPIRequests(context.Context, store.QueryOpts) ([]store.APIRequestRecord, error) {
	return nil, nil
}

func TestLogging_RecordsSuccess(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockTransport(MockReply{Body: `{}`})
	tr := WithLogging(mock, repo, zap.NewNop())

	ctx := WithRequestID(context.Background(), "fixed-id")
	if _, err := tr.Do(ctx, Call{Method: http.MethodGet, Path: "/health"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	e := repo.events[0]
	if !e.Success || e.Status != 200 || e.Path != "/health" || e.RequestID != "fixed-id" {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestLogging_RecordsFailureStatus(t *testing.T) {
	repo := &recordingRepo{}
	core, logs := observer.New(zap.WarnLevel)
	mock := NewMockTransport(MockReply{Err: &ErrUnauthorized{Status: 401, Message: "expired"}})
	tr := WithLogging(mock, repo, zap.New(core))

	_, err := tr.Do(context.Background(), Call{Method: http.MethodGet, Path: "/auth/me", Token: "secret-token"})
	if !IsUnauthorized(err) {
		t.Fatalf("error must pass through unchanged, got %v", err)
	}

	e := repo.events[0]
	if e.Success || e.Status != 401 || e.ErrorMessage == "" {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.RequestID == "" {
		t.Error("expected a generated request id")
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one warning, got %d", logs.Len())
	}
	for _, f := range logs.All()[0].Context {
		if f.String == "secret-token" {
			t.Error("token must never be logged")
		}
	}
}

func TestLogging_RepoFailureDoesNotFailCall(t *testing.T) {
	repo := &recordingRepo{fail: errors.New("disk full")}
	mock := NewMockTransport(MockReply{Body: `{}`})
	tr := WithLogging(mock, repo, nil)

	if _, err := tr.Do(context.Background(), Call{Method: http.MethodGet, Path: "/health"}); err != nil {
		t.Fatalf("logging failure leaked into the call: %v", err)
	}
}

func TestMessage_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"api with message", &ErrAPI{Status: 400, Message: "Missing field: age"}, "Missing field: age"},
		{"api without message", &ErrAPI{Status: 400}, "fallback"},
		{"network", &ErrUnavailable{Err: errors.New("dial tcp")}, "fallback"},
		{"invalid", &ErrInvalidResponse{Err: errors.New("bad")}, "fallback"},
		{"plain", errors.New("boom"), "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.err, "fallback"); got != tt.want {
				t.Errorf("Message = %q, want %q", got, tt.want)
			}
		})
	}
}
