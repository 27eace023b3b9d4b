package cache

import (
	"fmt"

	"github.com/edupay/backend/internal/domain/shared"
	"github.com/edupay/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore creates the callback deduplication store. Redis
// is preferred so multiple instances share state; when it is
// unreachable the store falls back to in-memory with a warning, since
// the database constraints remain the authoritative guard against
// duplicate processing.
func NewIdempotencyStore(cfg config.RedisConfig, log *zap.Logger) (shared.IdempotencyStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	store, err := NewRedisIdempotencyStore(cfg)
	if err == nil {
		log.Info("Using Redis idempotency store", zap.String("addr", cfg.Addr()))
		return store, nil
	}

	log.Warn("Redis unavailable, falling back to in-memory idempotency store",
		zap.Error(fmt.Errorf("redis connect: %w", err)))
	return NewInMemoryIdempotencyStore(), nil
}
