package cache

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const recipeLocationPrefix = "recipe:location:"

func recipeLocationKey(id string) string {
	return recipeLocationPrefix + id
}

var _ LocationCache = (*RedisLocationCache)(nil)

type RedisLocationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocationCache connects to redis at addr. A zero ttl keeps entries
// until they are deleted.
func NewRedisLocationCache(addr, password string, db int, ttl time.Duration) *RedisLocationCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		Protocol: 2, // Connection protocol
	})

	return &RedisLocationCache{client: client, ttl: ttl}
}

// Ping checks that redis is reachable.
func (r *RedisLocationCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisLocationCache) GetLocation(ctx context.Context, id string) (string, error) {
	res := r.client.Get(ctx, recipeLocationKey(id))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return "", nil
		}
		return "", res.Err()
	}

	return res.Val(), nil
}

func (r *RedisLocationCache) SetLocation(ctx context.Context, id, partition string) error {
	return r.client.Set(ctx, recipeLocationKey(id), partition, r.ttl).Err()
}

func (r *RedisLocationCache) DeleteLocation(ctx context.Context, id string) error {
	return r.client.Del(ctx, recipeLocationKey(id)).Err()
}

func (r *RedisLocationCache) Close() error {
	return r.client.Close()
}
