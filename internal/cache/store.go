package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps JSON documents under string keys with a TTL.
type Store interface {
	// Get decodes the document under key into dst. It reports false when the
	// key is missing or expired.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// NewStore returns a Redis backed store, or an in-memory one when rdb is nil.
func NewStore(rdb *redis.Client) Store {
	if rdb == nil {
		return NewMemoryStore()
	}
	return &redisStore{rdb: rdb}
}

type redisStore struct{ rdb *redis.Client }

func (s *redisStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return s.rdb.Set(ctx, key, b, ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// MemoryStore is the in-process Store.
type MemoryStore struct {
	items *TTLCache[string, []byte]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: NewTTLCache[string, []byte]()}
}

func (s *MemoryStore) Get(_ context.Context, key string, dst any) (bool, error) {
	b, ok := s.items.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	s.items.Set(key, b, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.items.Delete(key)
	return nil
}

// Sweep purges expired documents every interval until ctx is done.
func (s *MemoryStore) Sweep(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.items.PurgeExpired()
		}
	}
}
