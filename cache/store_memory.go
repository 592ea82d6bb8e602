package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	defaultMaxEntries      = 10000
	defaultJanitorInterval = time.Minute
)

// MemoryStore is an in-process Store with per-entry expiry.
// Expiry and the janitor both run on the injected clock, so tests can
// advance time instead of sleeping.
type MemoryStore struct {
	name            string
	clock           clockwork.Clock
	maxEntries      int
	janitorInterval time.Duration

	mu    sync.RWMutex
	items map[string]memoryItem

	hits   atomic.Int64
	misses atomic.Int64

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time // zero = no expiry
}

func (it memoryItem) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && !now.Before(it.expiresAt)
}

// MemoryOption customises a MemoryStore
type MemoryOption func(*MemoryStore)

// WithClock replaces the wall clock
func WithClock(c clockwork.Clock) MemoryOption {
	return func(s *MemoryStore) { s.clock = c }
}

// WithMaxEntries caps the entry count; the entry closest to expiry is evicted first
func WithMaxEntries(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithJanitorInterval sets how often expired entries are swept; <= 0 disables the sweep
func WithJanitorInterval(d time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.janitorInterval = d }
}

func NewMemoryStore(name string, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		name:            name,
		clock:           clockwork.NewRealClock(),
		maxEntries:      defaultMaxEntries,
		janitorInterval: defaultJanitorInterval,
		items:           make(map[string]memoryItem),
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.janitorInterval > 0 {
		go s.janitor()
	} else {
		close(s.done)
	}
	return s
}

func (s *MemoryStore) Name() string {
	return s.name
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrStoreGet.Wrap(err)
	}

	s.mu.RLock()
	item, ok := s.items[key]
	s.mu.RUnlock()

	if !ok || item.expired(s.clock.Now()) {
		s.misses.Add(1)
		return nil, ErrCacheMiss
	}
	s.hits.Add(1)
	return item.value, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return ErrStoreSet.Wrap(err)
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.clock.Now().Add(ttl)
	}
	// copy so callers can reuse their buffer
	buf := make([]byte, len(value))
	copy(buf, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[key]; !exists && len(s.items) >= s.maxEntries {
		s.evictLocked()
	}
	s.items[key] = memoryItem{value: buf, expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return ErrStoreDelete.Wrap(err)
	}
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Stats returns the hit/miss counters accumulated by Get
func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, ErrStoreStats.Wrap(err)
	}
	return Stats{Hits: s.hits.Load(), Misses: s.misses.Load()}, nil
}

// Len counts stored entries, expired ones not yet swept included
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Close stops the janitor and drops every entry. Safe to call twice.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
		s.mu.Lock()
		s.items = make(map[string]memoryItem)
		s.mu.Unlock()
	})
	return nil
}

// Shutdown lets the DI container close the store
func (s *MemoryStore) Shutdown() error {
	return s.Close()
}

// evictLocked drops expired entries, or failing that the one expiring soonest.
// Entries without expiry are evicted only when nothing else is left.
func (s *MemoryStore) evictLocked() {
	if s.sweepLocked(s.clock.Now()) > 0 {
		return
	}

	var victim string
	var victimAt time.Time
	for key, item := range s.items {
		if victim == "" {
			victim, victimAt = key, item.expiresAt
			continue
		}
		if item.expiresAt.IsZero() {
			continue
		}
		if victimAt.IsZero() || item.expiresAt.Before(victimAt) {
			victim, victimAt = key, item.expiresAt
		}
	}
	if victim != "" {
		delete(s.items, victim)
	}
}

func (s *MemoryStore) sweepLocked(now time.Time) int {
	removed := 0
	for key, item := range s.items {
		if item.expired(now) {
			delete(s.items, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) janitor() {
	defer close(s.done)
	ticker := s.clock.NewTicker(s.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.Chan():
			s.mu.Lock()
			s.sweepLocked(now)
			s.mu.Unlock()
		}
	}
}
