package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewRedisStore(newTestRedis(t), "vk:token:user", 0)
	ctx := context.Background()

	if _, err := s.Get(ctx); !errors.Is(err, ErrNoToken) {
		t.Fatalf("Get() on empty key = %v, want ErrNoToken", err)
	}
	if err := s.Set(ctx, "abc123"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	token, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if token != "abc123" {
		t.Errorf("token = %q, want %q", token, "abc123")
	}
}

func TestRedisStoreKeysAreIndependent(t *testing.T) {
	t.Parallel()

	client := newTestRedis(t)
	first := NewRedisStore(client, "vk:token:alice", 0)
	second := NewRedisStore(client, "vk:token:bob", 0)
	ctx := context.Background()

	if err := first.Set(ctx, "aaa111"); err != nil {
		t.Fatal(err)
	}
	if err := second.Set(ctx, "bbb222"); err != nil {
		t.Fatal(err)
	}

	token, err := first.Get(ctx)
	if err != nil || token != "aaa111" {
		t.Fatalf("first Get() = %q, %v, want %q", token, err, "aaa111")
	}
}

func TestRedisStoreTTL(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisStore(client, "vk:token:user", time.Minute)
	ctx := context.Background()
	if err := s.Set(ctx, "abc123"); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := s.Get(ctx); !errors.Is(err, ErrNoToken) {
		t.Fatalf("Get() after expiry = %v, want ErrNoToken", err)
	}
}
