package lock

import (
	"context"
	"fmt"
	"time"

	"retentionos/internal/ports"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a SET NX PX advisory lock shared by every API instance
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	retry  time.Duration
	logger zerolog.Logger
}

// NewRedisLocker creates a lock whose keys expire after ttl even if the holder dies
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, logger zerolog.Logger) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: "retentionos:lock:",
		ttl:    ttl,
		retry:  250 * time.Millisecond,
		logger: logger,
	}
}

var _ ports.SyncLocker = (*RedisLocker)(nil)

// Acquire polls until the lock is free or ctx is done
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s: %v", ports.ErrLockNotAcquired, key, ctx.Err())
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return func() { l.release(redisKey, token) }, nil
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %s: %v", ports.ErrLockNotAcquired, key, ctx.Err())
		case <-timer.C:
		}
	}
}

func (l *RedisLocker) release(redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
		l.logger.Warn().Err(err).Str("key", redisKey).Msg("Failed to release lock")
	}
}
