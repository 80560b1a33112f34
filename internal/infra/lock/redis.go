package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	redisPrefix   = "clinic:lock:"
	retryInterval = 25 * time.Millisecond
	releaseBudget = time.Second
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker takes keys with SET NX PX, so locks expire after ttl even if
// the holder dies.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

var _ Locker = (*RedisLocker)(nil)

func NewRedisLocker(client *redis.Client, ttl, wait time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLocker{client: client, ttl: ttl, wait: wait}
}

func (l *RedisLocker) Lock(ctx context.Context, keys ...string) (Unlock, error) {
	keys = normalize(keys)
	token := uuid.NewString()

	wctx, cancel := waitContext(ctx, l.wait)
	defer cancel()

	var held []string
	releaseAll := func() {
		rctx, cancel := context.WithTimeout(context.Background(), releaseBudget)
		defer cancel()
		for _, k := range held {
			// expiry covers a failed release
			_ = releaseScript.Run(rctx, l.client, []string{k}, token).Err()
		}
	}

	for _, k := range keys {
		if err := l.acquire(wctx, redisPrefix+k, token); err != nil {
			releaseAll()
			return nil, waitErr(ctx, err)
		}
		held = append(held, redisPrefix+k)
	}

	return once(releaseAll), nil
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("lock: redis setnx %s: %w", key, err)
		}
		if ok {
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
