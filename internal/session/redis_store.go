package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed refresh-session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "refresh:",
	}
}

func (r *RedisStore) key(userID string) string {
	return r.prefix + userID
}

func (r *RedisStore) Set(ctx context.Context, userID, token string, ttl time.Duration) error {
	if userID == "" || token == "" {
		return fmt.Errorf("session: missing user_id or token")
	}
	if ttl <= 0 {
		return fmt.Errorf("session: ttl must be positive")
	}

	return r.client.Set(ctx, r.key(userID), token, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, userID string) (string, error) {
	val, err := r.client.Get(ctx, r.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil // no active session
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}
