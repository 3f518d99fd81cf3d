package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps items in Redis so several processes on one machine (or
// one user's machines) can share a login.
//
// There is still no cross-process invalidation: a logout in one process is
// seen by another only the next time it loads the session, exactly like two
// browser tabs sharing localStorage.
type RedisStorage struct {
	client redis.Cmdable
	prefix string
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage namespaces every key under prefix (e.g. "gradlink:alice:").
func NewRedisStorage(client redis.Cmdable, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

func (r *RedisStorage) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis: getting %q: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisStorage) SetItem(ctx context.Context, key string, value []byte) error {
	// 0 = no expiry; the backend's tokens don't expire either
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis: setting %q: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis: removing %q: %w", key, err)
	}
	return nil
}
