package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists the token under a single Redis key, optionally with a
// TTL so stale tokens age out on their own.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore creates a store writing to the given key through client.
// A zero ttl stores the token without expiry.
func NewRedisStore(client *redis.Client, key string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, key: key, ttl: ttl}
}

// Get returns the stored token, or ErrNoToken when the key is absent.
func (s *RedisStore) Get(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("token store: redis get %s failed: %w", s.key, err)
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Set stores the token, applying the configured TTL.
func (s *RedisStore) Set(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("token store: redis set %s failed: %w", s.key, err)
	}
	return nil
}
