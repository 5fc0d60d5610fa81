package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/escolaweb/portal-core/internal/ports"
)

// Redis is a Redis-backed KeyValue store for shared-device deployments
// (school lab kiosks) where client state must outlive any one machine.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.KeyValue = (*Redis)(nil)

// NewRedis creates a Redis-backed store with the default key prefix.
func NewRedis(client redis.UniversalClient) *Redis {
	return NewRedisWithPrefix(client, "portal:")
}

// NewRedisWithPrefix creates a Redis-backed store with a custom key prefix.
func NewRedisWithPrefix(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrKeyNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
