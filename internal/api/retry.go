package api

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/hemoscan/internal/config"
)

// RetryTransport is a decorator that retries transient failures of
// idempotent calls with exponential backoff and jitter. Non-idempotent
// calls (login, signup, predict) are attempted exactly once.
type RetryTransport struct {
	inner  Transport
	config config.RetryConfig
}

// WithRetry wraps a Transport with retry logic.
func WithRetry(t Transport, cfg config.RetryConfig) Transport {
	return &RetryTransport{inner: t, config: cfg}
}

func (r *RetryTransport) Do(ctx context.Context, call Call) (*Reply, error) {
	if !call.Idempotent() || r.config.MaxAttempts <= 1 {
		return r.inner.Do(ctx, call)
	}

	var lastErr error
	invalidRetried := false

	for attempt := range r.config.MaxAttempts {
		reply, err := r.inner.Do(ctx, call)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if !shouldRetry(err, &invalidRetried) {
			return nil, err
		}

		// Out of attempts; return without sleeping.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.backoff(attempt)):
		}
	}

	return nil, lastErr
}

// shouldRetry determines if an error is retryable.
func shouldRetry(err error, invalidRetried *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// The server answered; asking again gets the same answer.
	var ua *ErrUnauthorized
	if errors.As(err, &ua) {
		return false
	}
	var ae *ErrAPI
	if errors.As(err, &ae) {
		return false
	}

	// Invalid response gets one retry.
	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
		return true
	}

	var unavail *ErrUnavailable
	return errors.As(err, &unavail)
}

// backoff computes the wait duration for the given attempt.
func (r *RetryTransport) backoff(attempt int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
