package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrLockNotOwned = errors.New("lock not owned by this client")

// unlockScript deletes the key only when it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a best-effort mutual exclusion lock keyed by name with an expiry.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error)
	Unlock(ctx context.Context, key, token string) error
}

type RedisLocker struct {
	client *redis.Client
	log    *zap.Logger
}

func NewLocker(client *redis.Client, log *zap.Logger) Locker {
	if client == nil {
		return NoopLocker{}
	}
	return &RedisLocker{client: client, log: log}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	token := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		l.log.Error("redis lock failed", zap.String("key", key), zap.Error(err))
		return false, "", fmt.Errorf("lock %s: %w", key, err)
	}
	if !acquired {
		l.log.Debug("redis lock busy", zap.String("key", key))
		return false, "", nil
	}
	return true, token, nil
}

func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	deleted, err := unlockScript.Run(ctx, l.client, []string{key}, token).Int64()
	if err != nil {
		l.log.Error("redis unlock failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("unlock %s: %w", key, err)
	}
	if deleted == 0 {
		return ErrLockNotOwned
	}
	return nil
}

// NoopLocker always grants the lock. Used when redis is not configured.
type NoopLocker struct{}

func (NoopLocker) TryLock(context.Context, string, time.Duration) (bool, string, error) {
	return true, "", nil
}

func (NoopLocker) Unlock(context.Context, string, string) error { return nil }
