// Package cache provides the read-through store for fetched resource text.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache stores fetched resource bytes by key. A miss is (nil, nil); cache
// failures never decide whether a fetch succeeds.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Config selects and sizes a cache backend
type Config struct {
	Type          string // "memory" (default) or "redis"
	MaxEntries    int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New creates a cache from configuration. The zero Config yields the
// in-memory LRU.
func New(cfg Config) (Cache, error) {
	switch cfg.Type {
	case "", "memory":
		return NewLRUCache(cfg.MaxEntries), nil

	case "redis":
		return NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}
