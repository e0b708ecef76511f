package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ezz-ae/entrestate-engine/pkg/config"
)

// NewRedisClient creates a redis client for the Time Table cache.
// Returns nil when no cache endpoint is configured; the materializer
// runs uncached in that case.
func NewRedisClient(ctx context.Context, cfg *config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}
