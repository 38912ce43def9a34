package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client exposes the scoring service endpoints as typed calls.
type Client struct {
	t Transport
}

// NewClient creates a Client on top of a Transport.
func NewClient(t Transport) *Client {
	return &Client{t: t}
}

type signupBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates an account and returns the issued token and user.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.call(ctx, Call{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Body:   signupBody{Username: username, Email: email, Password: password},
		Schema: AuthSchema,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and returns the issued token and user.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.call(ctx, Call{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   loginBody{Email: email, Password: password},
		Schema: AuthSchema,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user the token was issued for.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var out User
	err := c.call(ctx, Call{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Token:  token,
		Schema: UserSchema,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Predict submits a questionnaire for scoring.
func (c *Client) Predict(ctx context.Context, token string, req PredictionRequest) (*PredictionResult, error) {
	var out PredictionResult
	err := c.call(ctx, Call{
		Method: http.MethodPost,
		Path:   "/predict",
		Token:  token,
		Body:   req,
		Schema: PredictionSchema,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// History returns the caller's past predictions, newest first.
func (c *Client) History(ctx context.Context, token string) ([]HistoricalRecord, error) {
	var out HistoryResponse
	err := c.call(ctx, Call{
		Method: http.MethodGet,
		Path:   "/user/predictions",
		Token:  token,
		Schema: HistorySchema,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Predictions, nil
}

// Stats returns the admin dashboard aggregates. Non-admin tokens get an
// ErrAPI with status 403.
func (c *Client) Stats(ctx context.Context, token string) (*Stats, error) {
	var out Stats
	err := c.call(ctx, Call{
		Method: http.MethodGet,
		Path:   "/stats",
		Token:  token,
		Schema: StatsSchema,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Health reports service liveness.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	err := c.call(ctx, Call{
		Method: http.MethodGet,
		Path:   "/health",
		Schema: HealthSchema,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, call Call, out any) error {
	reply, err := c.t.Do(ctx, call)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(reply.Body, out); err != nil {
		return &ErrInvalidResponse{
			Body: reply.Body,
			Err:  fmt.Errorf("decode %s %s: %w", call.Method, call.Path, err),
		}
	}
	return nil
}
