package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryStore(t *testing.T, opts ...MemoryOption) (*MemoryStore, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore("memory", append([]MemoryOption{WithClock(clock), WithJanitorInterval(0)}, opts...)...)
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

func TestMemoryStore_SetGet(t *testing.T) {
	store, _ := newTestMemoryStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	buf := []byte("value")
	require.NoError(t, store.Set(ctx, "k", buf, time.Minute))
	buf[0] = 'X'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
	assert.Equal(t, "memory", store.Name())
}

func TestMemoryStore_Expiry(t *testing.T) {
	store, clock := newTestMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Hour))

	clock.Advance(time.Hour - time.Second)
	_, err := store.Get(ctx, "k")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryStore_NoTTLNeverExpires(t *testing.T) {
	store, clock := newTestMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	clock.Advance(24 * 365 * time.Hour)
	_, err := store.Get(ctx, "k")
	assert.NoError(t, err)
}

func TestMemoryStore_Stats(t *testing.T) {
	store, clock := newTestMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	for i := 0; i < 4; i++ {
		_, _ = store.Get(ctx, "k")
	}
	_, _ = store.Get(ctx, "absent")
	clock.Advance(time.Minute)
	_, _ = store.Get(ctx, "k")

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Hits: 4, Misses: 2}, stats)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	store, _ := newTestMemoryStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrStoreGet)
	assert.True(t, errors.Is(err, context.Canceled))

	assert.ErrorIs(t, store.Set(ctx, "k", nil, time.Second), ErrStoreSet)
	assert.ErrorIs(t, store.Delete(ctx, "k"), ErrStoreDelete)

	_, err = store.Stats(ctx)
	assert.ErrorIs(t, err, ErrStoreStats)
}

func TestMemoryStore_EvictsSoonestExpiry(t *testing.T) {
	store, _ := newTestMemoryStore(t, WithMaxEntries(2))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "long", []byte("1"), time.Hour))
	require.NoError(t, store.Set(ctx, "short", []byte("2"), time.Minute))
	require.NoError(t, store.Set(ctx, "new", []byte("3"), time.Hour))

	assert.Equal(t, 2, store.Len())
	_, err := store.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = store.Get(ctx, "long")
	assert.NoError(t, err)

	// overwriting an existing key never evicts
	require.NoError(t, store.Set(ctx, "long", []byte("4"), time.Hour))
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStore_Delete(t *testing.T) {
	store, _ := newTestMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryStore_JanitorSweeps(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore("memory", WithClock(clock), WithJanitorInterval(time.Minute))
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 30*time.Second))
	require.NoError(t, store.Set(ctx, "keep", []byte("v"), time.Hour))

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	clock.Advance(time.Minute)
	assert.Eventually(t, func() bool { return store.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestMemoryStore_CloseIdempotent(t *testing.T) {
	store := NewMemoryStore("memory")
	require.NoError(t, store.Set(context.Background(), "k", []byte("v"), time.Minute))

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	assert.Equal(t, 0, store.Len())
}
