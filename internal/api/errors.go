package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized indicates the server rejected the bearer token (401, or
// 422 for a malformed token) or the credentials of a login attempt.
type ErrUnauthorized struct {
	Status  int
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unauthorized (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("unauthorized (HTTP %d)", e.Status)
}

// ErrAPI is any other 4xx rejection, carrying the server's error message
// when one was supplied.
type ErrAPI struct {
	Status  int
	Message string
}

func (e *ErrAPI) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (HTTP %d)", e.Status)
}

// ErrUnavailable indicates the service is down, unreachable, or failed
// with a 5xx. Message holds the server's error text when a body was sent.
type ErrUnavailable struct {
	Status  int // 0 when no response was received
	Message string
	Err     error
}

func (e *ErrUnavailable) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("scoring service unavailable: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("scoring service unavailable (HTTP %d): %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("scoring service unavailable (HTTP %d)", e.Status)
	}
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates a success status whose body does not decode
// or does not match the expected schema.
type ErrInvalidResponse struct {
	Body []byte
	Err  error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is an authentication rejection.
func IsUnauthorized(err error) bool {
	var ua *ErrUnauthorized
	return errors.As(err, &ua)
}

// Message returns the server-supplied error text carried by err, or
// fallback when the server sent none. Transport details never leak.
func Message(err error, fallback string) string {
	var (
		ua    *ErrUnauthorized
		ae    *ErrAPI
		unavl *ErrUnavailable
	)
	switch {
	case errors.As(err, &ua) && ua.Message != "":
		return ua.Message
	case errors.As(err, &ae) && ae.Message != "":
		return ae.Message
	case errors.As(err, &unavl) && unavl.Message != "":
		return unavl.Message
	}
	return fallback
}
