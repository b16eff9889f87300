package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// RedisLocker is a lock shared by every instance that talks to one Redis.
// A lock expires after ttl if its holder dies.
type RedisLocker struct {
	client   redis.Cmdable
	prefix   string
	ttl      time.Duration
	retry    time.Duration
	newToken func() string
	log      *zap.Logger
}

var _ Locker = (*RedisLocker)(nil)

// NewRedisLocker creates a new RedisLocker
func NewRedisLocker(client redis.Cmdable, ttl time.Duration, log *zap.Logger) *RedisLocker {
	return &RedisLocker{
		client:   client,
		prefix:   "campustrack:lock:",
		ttl:      ttl,
		retry:    25 * time.Millisecond,
		newToken: uuid.NewString,
		log:      log,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := l.newToken()
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.client.Eval(ctx, releaseScript, []string{redisKey}, token).Err(); err != nil {
			l.log.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
