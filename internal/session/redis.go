package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	fieldAccess  = "access"
	fieldRefresh = "refresh"
	fieldEmail   = "email"
)

// RedisStore keeps one session per profile in a hash, so several hosts or CI workers can
// share a signed-in identity.
type RedisStore struct {
	rdb redis.Cmdable
	key string
}

func NewRedisStore(rdb redis.Cmdable, prefix, profile string) *RedisStore {
	return &RedisStore{rdb: rdb, key: prefix + ":" + profile}
}

func (r *RedisStore) Key() string {
	return r.key
}

func (r *RedisStore) Load(ctx context.Context) (Record, error) {
	vals, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return Record{}, fmt.Errorf("hgetall %s: %w", r.key, err)
	}
	return Record{
		Access:  vals[fieldAccess],
		Refresh: vals[fieldRefresh],
		Email:   vals[fieldEmail],
	}, nil
}

func (r *RedisStore) Save(ctx context.Context, rec Record) error {
	fields := map[string]interface{}{}
	if rec.Access != "" {
		fields[fieldAccess] = rec.Access
	}
	if rec.Refresh != "" {
		fields[fieldRefresh] = rec.Refresh
	}
	if rec.Email != "" {
		fields[fieldEmail] = rec.Email
	}

	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, r.key)
		if len(fields) > 0 {
			p.HSet(ctx, r.key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", r.key, err)
	}
	return nil
}
