package cache

import (
	"context"
	"sync"
	"time"
)

// memoryItem stores a cached value with expiration.
type memoryItem struct {
	value    []byte
	expireAt time.Time
}

func (m *memoryItem) expired() bool {
	return !m.expireAt.IsZero() && time.Now().After(m.expireAt)
}

// MemoryCache implements Store using an in-process map. Mostly useful
// for tests and single-node setups without durability requirements.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]*memoryItem
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]*memoryItem)}
}

func (mc *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expireAt time.Time
	if ttl > 0 {
		expireAt = time.Now().Add(ttl)
	}

	// Copy so callers cannot mutate stored bytes afterwards.
	buf := make([]byte, len(value))
	copy(buf, value)

	mc.mu.Lock()
	mc.data[key] = &memoryItem{value: buf, expireAt: expireAt}
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	mc.mu.RLock()
	item, exists := mc.data[key]
	mc.mu.RUnlock()

	if !exists {
		return nil, ErrCacheMiss
	}
	if item.expired() {
		mc.mu.Lock()
		delete(mc.data, key)
		mc.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	for _, key := range keys {
		delete(mc.data, key)
	}
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Close() error {
	mc.mu.Lock()
	mc.data = make(map[string]*memoryItem)
	mc.mu.Unlock()
	return nil
}
