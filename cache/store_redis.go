package cache

import (
	"bufio"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis under an optional key prefix.
// The client belongs to the redis manager and is not closed here.
type RedisStore struct {
	name      string
	client    redis.UniversalClient
	keyPrefix string
}

var _ StatsStore = (*RedisStore)(nil)

func NewRedisStore(name string, client redis.UniversalClient, keyPrefix string) *RedisStore {
	return &RedisStore{name: name, client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) Name() string {
	return s.name
}

func (s *RedisStore) buildKey(key string) string {
	return s.keyPrefix + key
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.buildKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, ErrStoreGet.Wrap(err)
	}
	return data, nil
}

// Set writes with SET EX; a ttl <= 0 stores without expiry
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.buildKey(key), value, ttl).Err(); err != nil {
		return ErrStoreSet.Wrap(err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.buildKey(key)).Err(); err != nil {
		return ErrStoreDelete.Wrap(err)
	}
	return nil
}

// Stats reads keyspace_hits / keyspace_misses from INFO stats.
// The counters are server-wide, not limited to this store's prefix.
func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	info, err := s.client.Info(ctx, "stats").Result()
	if err != nil {
		return Stats{}, ErrStoreStats.Wrap(err)
	}
	return ParseInfoStats(info)
}

func (s *RedisStore) Close() error {
	return nil
}

// ParseInfoStats extracts the keyspace counters from an INFO reply
func ParseInfoStats(info string) (Stats, error) {
	var stats Stats
	var foundHits, foundMisses bool

	scanner := bufio.NewScanner(strings.NewReader(info))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		switch name {
		case "keyspace_hits":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Stats{}, ErrStoreStats.Wrapf(err, "invalid keyspace_hits %q", value)
			}
			stats.Hits, foundHits = n, true
		case "keyspace_misses":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Stats{}, ErrStoreStats.Wrapf(err, "invalid keyspace_misses %q", value)
			}
			stats.Misses, foundMisses = n, true
		}
	}

	if !foundHits || !foundMisses {
		return Stats{}, ErrStoreStats.WithMsg("keyspace_hits/keyspace_misses missing from INFO stats")
	}
	return stats, nil
}
