package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-booking/internal/config"
)

// NewRedis connects to Redis. It returns a nil client when Redis is disabled
// or unreachable so callers can run without the idempotency store.
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) *redis.Client {
	if !cfg.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, idempotency disabled",
			zap.String("addr", cfg.Addr()),
			zap.Error(fmt.Errorf("ping redis: %w", err)),
		)
		_ = client.Close()
		return nil
	}
	return client
}
