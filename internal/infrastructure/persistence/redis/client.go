// Package redis implements the portal's Redis-backed infrastructure:
// a read-through cache for opportunity resolutions and the notification
// delivery queue drained by the worker process.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/collab-hub/collab-portal/config"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrCacheMiss is returned when the requested key is not found in cache.
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrQueueEmpty is returned when a blocking pop times out with no item.
	ErrQueueEmpty = errors.New("queue: no item available")

	// ErrSerialization is returned when encoding or decoding a value fails.
	ErrSerialization = errors.New("redis: serialization failed")
)

// Key prefixes for namespacing Redis keys.
const (
	// PrefixOpportunity namespaces cached opportunity resolutions.
	PrefixOpportunity = "opportunity:"

	// PrefixNotification namespaces notification queue keys.
	PrefixNotification = "notification:"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// NewClient creates a go-redis client from the portal's Redis config
// and verifies connectivity.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: failed to ping server: %w", err)
	}
	return client, nil
}
