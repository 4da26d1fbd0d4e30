package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

const (
	defaultTTL           = 30 * time.Second
	defaultRetryInterval = 50 * time.Millisecond
	keyPrefix            = "shift-rules:lock:"
)

// Deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisClient is the subset of the go-redis client RedisLocker needs
type RedisClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisLocker is a Locker shared by every process using the same Redis.
// Each lock expires after TTL so a crashed holder cannot block forever.
type RedisLocker struct {
	client        RedisClient
	ttl           time.Duration
	retryInterval time.Duration
	logger        *zap.Logger
}

// RedisOption configures a RedisLocker
type RedisOption func(*RedisLocker)

// WithTTL sets how long a lock lives without being released
func WithTTL(ttl time.Duration) RedisOption {
	return func(l *RedisLocker) { l.ttl = ttl }
}

// WithRetryInterval sets how often a contended lock is retried
func WithRetryInterval(interval time.Duration) RedisOption {
	return func(l *RedisLocker) { l.retryInterval = interval }
}

// NewRedisLocker creates a Redis-backed Locker
func NewRedisLocker(client RedisClient, logger *zap.Logger, opts ...RedisOption) *RedisLocker {
	l := &RedisLocker{
		client:        client,
		ttl:           defaultTTL,
		retryInterval: defaultRetryInterval,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	redisKey := keyPrefix + key
	token := uuid.New().String()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		acquired, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("timed out waiting for lock %s: %w: %w", key, model.ErrConflict, ctx.Err())
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if acquired {
			return l.unlockFunc(redisKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for lock %s: %w: %w", key, model.ErrConflict, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) unlockFunc(redisKey, token string) Unlock {
	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be done; release must still happen
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
				l.logger.Warn("Failed to release lock",
					zap.String("key", redisKey),
					zap.Error(err))
			}
		})
	}
}
