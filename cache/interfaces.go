// Package cache provides the cache stores, the read-through accessor and the
// hit/miss metrics reporter.
package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented key/value store with TTL expiry.
// Get returns ErrCacheMiss when the key is absent or expired; any other
// error means the store itself is unavailable.
type Store interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// StatsProvider exposes the cumulative lookup counters of a store
type StatsProvider interface {
	Stats(ctx context.Context) (Stats, error)
}

// StatsStore is a Store that can also report its counters
type StatsStore interface {
	Store
	StatsProvider
}

// Stats are cumulative counters since the store started
type Stats struct {
	Hits   int64
	Misses int64
}

// Serializer encodes cached values
type Serializer interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
	Name() string
}

// LoaderFunc reads a value from the origin on a cache miss
type LoaderFunc[T any] func(ctx context.Context) (T, error)
