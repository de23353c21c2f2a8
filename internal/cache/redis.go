package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"truthbot/internal/config"
	"truthbot/internal/models"
)

// Redis stores responses as JSON values with a TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// Ensure Redis implements Cache.
var _ Cache = (*Redis)(nil)

// NewRedis connects to the redis server described by cfg.
func NewRedis(cfg config.RedisConfig, ttl time.Duration) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: ttl,
	}
}

// Get loads and decodes the response stored under key.
func (r *Redis) Get(ctx context.Context, key string) (*models.FactCheckResponse, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var resp models.FactCheckResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false, fmt.Errorf("decode cached response: %w", err)
	}

	return &resp, true, nil
}

// Set encodes resp and stores it under key.
func (r *Redis) Set(ctx context.Context, key string, resp *models.FactCheckResponse) error {
	if resp == nil {
		return nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
