package cache

import (
	"context"
	"time"

	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewStore returns a Redis-backed store when Redis is enabled and reachable.
// Otherwise it falls back to process memory with a warning; entries are then
// not shared between API instances. The Redis client is returned so other
// components (token revocation) can share the connection; it is nil on fallback.
func NewStore(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (Store, *redis.Client) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-memory cache")
		return NewMemoryStore(time.Minute), nil
	}

	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory cache", zap.Error(err))
		return NewMemoryStore(time.Minute), nil
	}
	logger.Info("Using Redis cache", zap.String("addr", cfg.Addr()))
	return NewRedisStore(client), client
}
