package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// HTTPTransport is the net/http implementation of Transport.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// Option configures an HTTPTransport.
type Option func(*HTTPTransport)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTransport) { t.client = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(t *HTTPTransport) { t.client.Timeout = d }
}

// NewHTTPTransport creates a transport rooted at baseURL.
func NewHTTPTransport(baseURL string, opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *HTTPTransport) Do(ctx context.Context, call Call) (*Reply, error) {
	var body io.Reader
	if call.Body != nil {
		b, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", call.Method, call.Path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, t.baseURL+call.Path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if call.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if call.Token != "" {
		req.Header.Set("Authorization", "Bearer "+call.Token)
	}
	if id := RequestIDFrom(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ErrUnavailable{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &ErrUnavailable{Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, call.Token != "", data)
	}

	if err := call.Schema.Validate(data); err != nil {
		return nil, err
	}

	return &Reply{Status: resp.StatusCode, Body: data}, nil
}

// statusError maps a non-2xx status to a typed error. 422 only counts as
// an auth failure on authenticated calls, where it signals a malformed JWT.
func statusError(status int, authenticated bool, body []byte) error {
	msg := serverMessage(body)
	switch {
	case status == http.StatusUnauthorized:
		return &ErrUnauthorized{Status: status, Message: msg}
	case status == http.StatusUnprocessableEntity && authenticated:
		return &ErrUnauthorized{Status: status, Message: msg}
	case status >= 500:
		return &ErrUnavailable{Status: status, Message: msg}
	default:
		return &ErrAPI{Status: status, Message: msg}
	}
}

// serverMessage extracts {"error": "..."} (or {"msg": "..."} as sent by the
// JWT layer) from an error body.
func serverMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
		Msg   string `json:"msg"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Msg
}
