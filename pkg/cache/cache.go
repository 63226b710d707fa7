package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss signals an absent or expired key. It is the only
	// "expected" error a Store returns from Get; anything else is a
	// storage fault the caller may choose to tolerate.
	ErrCacheMiss = errors.New("cache: key not found")
)

// Store defines the byte-level cache backend contract. A Set fully
// replaces the previous value for the key; readers see either the old
// or the new value, never a partial write.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
