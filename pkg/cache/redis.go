package cache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.trai.ch/zerr"
)

// DefaultRedisPrefix prefixes the Redis keys used by [RedisBackend].
const DefaultRedisPrefix = "catup:cache:"

// RedisBackend stores each namespace as one Redis hash named prefix+name.
// Several machines can share one cache this way; writes are last-writer-wins
// per namespace.
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisBackend wraps client. An empty prefix uses [DefaultRedisPrefix].
// The backend owns the client and closes it in Close.
func NewRedisBackend(client redis.UniversalClient, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisBackend{client: client, prefix: prefix}
}

// Load reads the namespace hash.
func (b *RedisBackend) Load(ctx context.Context, namespace string) (map[string]json.RawMessage, error) {
	fields, err := b.client.HGetAll(ctx, b.prefix+namespace).Result()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "read cache hash"), "namespace", namespace)
	}
	records := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		records[k] = json.RawMessage(v)
	}
	return records, nil
}

// Save replaces the namespace hash atomically.
func (b *RedisBackend) Save(ctx context.Context, namespace string, records map[string]json.RawMessage) error {
	key := b.prefix + namespace
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(records) == 0 {
			return nil
		}
		values := make(map[string]any, len(records))
		for k, v := range records {
			values[k] = string(v)
		}
		pipe.HSet(ctx, key, values)
		return nil
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "write cache hash"), "namespace", namespace)
	}
	return nil
}

// Clear deletes every hash under the prefix.
func (b *RedisBackend) Clear(ctx context.Context) error {
	iter := b.client.Scan(ctx, 0, b.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return zerr.Wrap(err, "scan cache keys")
	}
	if len(keys) == 0 {
		return nil
	}
	return b.client.Del(ctx, keys...).Err()
}

// Close closes the Redis client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

// Ensure RedisBackend implements Backend.
var _ Backend = (*RedisBackend)(nil)
