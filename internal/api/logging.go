package api

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/hemoscan/internal/store"
)

// LoggingTransport is a decorator that records every call as an event and
// a structured log line. Bodies and tokens are never logged.
type LoggingTransport struct {
	inner     Transport
	eventRepo store.EventRepo
	logger    *zap.Logger
}

// WithLogging wraps a Transport with event logging. repo may be nil.
func WithLogging(t Transport, repo store.EventRepo, logger *zap.Logger) Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingTransport{inner: t, eventRepo: repo, logger: logger}
}

func (l *LoggingTransport) Do(ctx context.Context, call Call) (*Reply, error) {
	ctx, requestID := ensureRequestID(ctx)
	start := time.Now()

	reply, err := l.inner.Do(ctx, call)

	data := store.APIRequestEventData{
		RequestID: requestID,
		Method:    call.Method,
		Path:      call.Path,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		Status:    statusOf(reply, err),
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("method", call.Method),
		zap.String("path", call.Path),
		zap.Int("status", data.Status),
		zap.Int64("latency_ms", data.LatencyMs),
	}
	if err != nil {
		l.logger.Warn("api call failed", append(fields, zap.Error(err))...)
	} else {
		l.logger.Debug("api call", fields...)
	}

	if l.eventRepo != nil {
		// Log the event but don't fail the request if logging fails.
		if logErr := l.eventRepo.AppendAPIRequest(context.WithoutCancel(ctx), data); logErr != nil {
			l.logger.Warn("failed to record api request event", zap.Error(logErr))
		}
	}

	return reply, err
}

func statusOf(reply *Reply, err error) int {
	if reply != nil {
		return reply.Status
	}
	var (
		ua    *ErrUnauthorized
		ae    *ErrAPI
		unavl *ErrUnavailable
	)
	switch {
	case errors.As(err, &ua):
		return ua.Status
	case errors.As(err, &ae):
		return ae.Status
	case errors.As(err, &unavl):
		return unavl.Status
	}
	return 0
}
