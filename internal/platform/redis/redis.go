package redis

import (
	"context"
	"fmt"
	"time"

	"lucky-draw-backend/internal/common/config"
	"lucky-draw-backend/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to the ledger redis described by cfg and pings it.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	return Open(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
}

// Open creates a new Redis client and pings it to validate the connection.
func Open(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty redis addr")
	}
	c := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	logger.Info().Str("addr", addr).Int("db", db).Msg("Redis client initialized")
	return c, nil
}
