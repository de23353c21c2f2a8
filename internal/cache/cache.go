// Package cache stores finished fact-check responses keyed by claim
// fingerprint so repeated claims skip search and analysis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"truthbot/internal/config"
	"truthbot/internal/models"
)

// ErrUnknownBackend is returned for an unsupported cache.backend value.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Cache stores fact-check responses.
type Cache interface {
	Get(ctx context.Context, key string) (*models.FactCheckResponse, bool, error)
	Set(ctx context.Context, key string, resp *models.FactCheckResponse) error
}

// New returns the backend selected by cfg, or nil when caching is disabled.
func New(cfg config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	ttl := time.Duration(cfg.TTLSec) * time.Second

	switch cfg.Backend {
	case "", "memory":
		return NewMemory(ttl), nil
	case "redis":
		return NewRedis(cfg.Redis, ttl), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
