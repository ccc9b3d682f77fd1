package mockapi

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist records revoked refresh tokens by jti until they would have expired anyway.
type Blacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	Revoked(ctx context.Context, jti string) (bool, error)
}

type memoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryBlacklist() Blacklist {
	return &memoryBlacklist{entries: map[string]time.Time{}, now: time.Now}
}

func (b *memoryBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[jti] = b.now().Add(ttl)
	return nil
}

func (b *memoryBlacklist) Revoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	until, ok := b.entries[jti]
	if !ok {
		return false, nil
	}
	if b.now().After(until) {
		delete(b.entries, jti)
		return false, nil
	}
	return true, nil
}

type redisBlacklist struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisBlacklist shares revocations between mock-server replicas.
func NewRedisBlacklist(rdb redis.Cmdable, prefix string) Blacklist {
	return &redisBlacklist{rdb: rdb, prefix: prefix}
}

func (b *redisBlacklist) key(jti string) string {
	return b.prefix + ":blacklist:" + jti
}

func (b *redisBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Second
	}
	return b.rdb.Set(ctx, b.key(jti), 1, ttl).Err()
}

func (b *redisBlacklist) Revoked(ctx context.Context, jti string) (bool, error) {
	err := b.rdb.Get(ctx, b.key(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
