package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewClient connects to addr and pings it. An empty addr disables redis and returns nil.
func NewClient(ctx context.Context, addr, password string, log *zap.Logger) (*redis.Client, error) {
	if addr == "" {
		log.Warn("REDIS_ADDR not set, distributed locks disabled")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	log.Info("connected to redis", zap.String("addr", addr))
	return client, nil
}
