package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyspace = "gerai:cache"

// Store is a TTL key-value cache scoped per module. It is a read-side
// convenience only: callers must produce correct results with a nil Store.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore wraps a Redis client with a default TTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Store{client: client, ttl: ttl}
}

func cacheKey(module, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyspace, module, key)
}

// Get unmarshals the cached value for (module, key) into target.
// The boolean result reports a cache hit.
func (s *Store) Get(ctx context.Context, module, key string, target any) (bool, error) {
	if s == nil || s.client == nil {
		return false, nil
	}
	raw, err := s.client.Get(ctx, cacheKey(module, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value under (module, key) with the default TTL.
func (s *Store) Set(ctx context.Context, module, key string, value any) error {
	if s == nil || s.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cacheKey(module, key), raw, s.ttl).Err()
}

// Invalidate drops every cached entry belonging to module. Write paths call
// this after committing a workflow that changes the module's source data.
func (s *Store) Invalidate(ctx context.Context, module string) error {
	if s == nil || s.client == nil {
		return nil
	}
	pattern := fmt.Sprintf("%s:%s:*", keyspace, module)
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
