// Package ratelimit provides injectable counter stores for request
// throttling. A store tracks attempts per key within a fixed window;
// the in-memory store serves single-instance deployments and the Redis
// store shares counters across instances.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store checks whether another attempt is allowed for the given key
// within the window. Implementations must be safe for concurrent use.
type Store interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type memoryEntry struct {
	count       int
	windowStart time.Time
}

// MemoryStore is a per-process sliding-window counter. State does not
// survive restarts and is not shared across instances.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// Check increments the counter for key and reports whether the attempt
// is within limit. An absent entry or an elapsed window counts as zero
// prior attempts. Never returns an error.
func (s *MemoryStore) Check(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok || now.Sub(entry.windowStart) >= window {
		s.entries[key] = &memoryEntry{count: 1, windowStart: now}
		return true, nil
	}

	entry.count++
	return entry.count <= limit, nil
}

// RedisStore backs the counter with Redis INCR + EXPIRE so multiple
// instances behind a load balancer share one budget per key.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore returns a store backed by the given Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Check increments the Redis counter for key, setting the window expiry
// on first increment, and reports whether the attempt is within limit.
func (s *RedisStore) Check(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if s.rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	cnt, err := s.rdb.Incr(ctx, "rl:"+key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		s.rdb.Expire(ctx, "rl:"+key, window)
	}
	return cnt <= int64(limit), nil
}
