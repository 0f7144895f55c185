package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheService caches API responses (player lists, run summaries) in
// Redis. It is optional: a nil *CacheService is safe to call and
// behaves as a permanent miss, so the pipeline works without Redis.
type CacheService struct {
	client *redis.Client
}

// ErrCacheMiss is returned when a key is absent or caching is disabled.
var ErrCacheMiss = fmt.Errorf("cache miss")

// NewCacheService wraps an existing Redis client. Pass nil to disable
// caching.
func NewCacheService(client *redis.Client) *CacheService {
	if client == nil {
		return nil
	}
	return &CacheService{client: client}
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	if err := s.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	if s == nil {
		return ErrCacheMiss
	}
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get cache: %w", err)
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if s == nil || len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// Cache keys shared between the refresh service and the API handlers.
const (
	CacheKeyPlayers = "players:all"
	CacheKeyLastRun = "runs:last"
)
