package api

import (
	"go.uber.org/zap"

	"github.com/abhisek/hemoscan/internal/config"
	"github.com/abhisek/hemoscan/internal/store"
)

// New creates a Client from configuration, wrapped with retry and logging
// middleware: caller → retry → logging → HTTP.
func New(cfg config.Config, eventRepo store.EventRepo, logger *zap.Logger) *Client {
	base := NewHTTPTransport(cfg.API.BaseURL, WithTimeout(cfg.API.Timeout))
	logged := WithLogging(base, eventRepo, logger)
	retried := WithRetry(logged, cfg.Retry)
	return NewClient(retried)
}
