package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if this holder still owns it.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLease is a SET NX PX lock. Each held key remembers its token so a
// lease that expired and was taken by another replica is not released.
type RedisLease struct {
	client   redis.Cmdable
	newToken func() string

	mu     sync.Mutex
	tokens map[string]string
}

func NewRedisLease(client redis.Cmdable) *RedisLease {
	return &RedisLease{
		client:   client,
		newToken: uuid.NewString,
		tokens:   make(map[string]string),
	}
}

func (l *RedisLease) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := l.newToken()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	l.mu.Lock()
	l.tokens[key] = token
	l.mu.Unlock()
	return true, nil
}

func (l *RedisLease) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	token, ok := l.tokens[key]
	delete(l.tokens, key)
	l.mu.Unlock()

	if !ok {
		return nil
	}

	if err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	return nil
}
