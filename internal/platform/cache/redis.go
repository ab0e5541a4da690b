package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis is a Cache backed by a Redis instance, for deployments where several
// server processes must share the aggregate views. All keys carry a prefix so
// Clear does not touch other users of the database.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to redisURL (redis://...) and verifies the connection.
func NewRedis(ctx context.Context, redisURL, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &Redis{client: client, prefix: prefix + ":"}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	r.client.Set(ctx, r.prefix+key, value, ttl)
}

func (r *Redis) Delete(ctx context.Context, key string) {
	r.client.Del(ctx, r.prefix+key)
}

// Clear removes every key under the prefix, scanning in batches so large
// caches do not block the server.
func (r *Redis) Clear(ctx context.Context) {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			r.client.Del(ctx, keys...)
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}

func (r *Redis) Close() error { return r.client.Close() }
