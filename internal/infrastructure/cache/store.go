// Package cache provides the TTL key/value store behind the dashboard cache.
package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented cache with expiring entries
type Store interface {
	// Get returns the value and whether it was found
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix removes every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}
