package api

import (
	"context"
	"encoding/json"
	"sync"
)

// MockReply is a canned reply for the MockTransport. Body may be a
// json.RawMessage, []byte, string, or any value to be JSON-encoded.
type MockReply struct {
	Status int
	Body   any
	Err    error
}

// MockTransport is a deterministic Transport for testing.
// It returns canned replies in FIFO order and records all calls.
type MockTransport struct {
	mu      sync.Mutex
	replies []MockReply
	Calls   []Call

	// Gate, when non-nil, blocks every Do until it receives or is closed,
	// or the context is done. Used to hold a call in flight.
	Gate chan struct{}
}

// NewMockTransport creates a MockTransport with the given canned replies.
func NewMockTransport(replies ...MockReply) *MockTransport {
	return &MockTransport{replies: replies}
}

// Do returns the next canned reply, or ErrUnavailable if the queue is empty.
// Bodies are validated against call.Schema like the HTTP transport does.
func (m *MockTransport) Do(ctx context.Context, call Call) (*Reply, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	gate := m.Gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.replies) == 0 {
		return nil, &ErrUnavailable{}
	}

	r := m.replies[0]
	m.replies = m.replies[1:]

	if r.Err != nil {
		return nil, r.Err
	}

	body, err := mockBody(r.Body)
	if err != nil {
		return nil, err
	}
	if err := call.Schema.Validate(body); err != nil {
		return nil, err
	}

	status := r.Status
	if status == 0 {
		status = 200
	}
	return &Reply{Status: status, Body: body}, nil
}

func mockBody(v any) ([]byte, error) {
	switch b := v.(type) {
	case nil:
		return []byte("{}"), nil
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return json.Marshal(b)
	}
}

// AddReply appends a canned reply to the queue.
func (m *MockTransport) AddReply(r MockReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, r)
}

// CallCount returns the number of Do calls made.
func (m *MockTransport) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent call, or a zero Call.
func (m *MockTransport) LastCall() Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Call{}
	}
	return m.Calls[len(m.Calls)-1]
}
