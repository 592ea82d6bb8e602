package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/KOMKZ/yogan-property/logger"
)

// ReadThrough serves one fixed key from a Store, falling back to a loader
// on a miss and writing the loaded value back with a fixed TTL.
//
// Values returned from a hit or a shared single-flight load may be shared
// between callers and must be treated as read-only.
type ReadThrough[T any] struct {
	store Store
	key   string
	ttl   time.Duration
	load  LoaderFunc[T]
	opts  options
	group singleflight.Group
}

type options struct {
	serializer   Serializer
	log          logger.CtxLogger
	singleFlight bool
	failOpen     bool
	loadTimeout  time.Duration
}

// DefaultSharedLoadTimeout bounds a coalesced load once it no longer
// follows any single caller's cancellation
const DefaultSharedLoadTimeout = 30 * time.Second

// Option configures a ReadThrough
type Option func(*options)

func WithSerializer(s Serializer) Option {
	return func(o *options) { o.serializer = s }
}

func WithLogger(l logger.CtxLogger) Option {
	return func(o *options) { o.log = l }
}

// WithSingleFlight coalesces concurrent misses into one origin read (default on)
func WithSingleFlight(enabled bool) Option {
	return func(o *options) { o.singleFlight = enabled }
}

// WithFailOpen reads the origin instead of failing when the store is
// unavailable (default off: store errors are returned)
func WithFailOpen(enabled bool) Option {
	return func(o *options) { o.failOpen = enabled }
}

// WithSharedLoadTimeout bounds a coalesced origin load; values <= 0 keep the default
func WithSharedLoadTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.loadTimeout = d
		}
	}
}

func NewReadThrough[T any](store Store, key string, ttl time.Duration, load LoaderFunc[T], opts ...Option) *ReadThrough[T] {
	o := options{singleFlight: true, loadTimeout: DefaultSharedLoadTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.serializer == nil {
		o.serializer = NewJSONSerializer()
	}
	if o.log == nil {
		o.log = logger.GetLogger("cache")
	}
	return &ReadThrough[T]{store: store, key: key, ttl: ttl, load: load, opts: o}
}

func (r *ReadThrough[T]) Key() string { return r.key }

func (r *ReadThrough[T]) TTL() time.Duration { return r.ttl }

// Get returns the cached value, or loads, stores and returns it on a miss.
// Loader errors are returned unchanged and nothing is cached.
func (r *ReadThrough[T]) Get(ctx context.Context) (T, error) {
	var zero T

	data, err := r.store.Get(ctx, r.key)
	switch {
	case err == nil:
		var v T
		derr := r.opts.serializer.Deserialize(data, &v)
		if derr == nil {
			r.opts.log.DebugCtx(ctx, "cache hit", zap.String("key", r.key))
			return v, nil
		}
		r.opts.log.WarnCtx(ctx, "cache entry undecodable, reloading",
			zap.String("key", r.key), zap.Error(derr))
	case errors.Is(err, ErrCacheMiss):
		r.opts.log.DebugCtx(ctx, "cache miss", zap.String("key", r.key))
	default:
		if !r.opts.failOpen {
			return zero, err
		}
		r.opts.log.WarnCtx(ctx, "cache store unavailable, reading origin",
			zap.String("store", r.store.Name()), zap.String("key", r.key), zap.Error(err))
		return r.load(ctx)
	}

	if !r.opts.singleFlight {
		return r.loadAndStore(ctx)
	}

	// the shared load keeps the leader's values but not its cancellation;
	// each caller still stops waiting on its own ctx below
	ch := r.group.DoChan(r.key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.loadTimeout)
		defer cancel()
		return r.loadAndStore(loadCtx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Invalidate removes the entry so the next Get reloads it
func (r *ReadThrough[T]) Invalidate(ctx context.Context) error {
	return r.store.Delete(ctx, r.key)
}

func (r *ReadThrough[T]) loadAndStore(ctx context.Context) (T, error) {
	var zero T

	v, err := r.load(ctx)
	if err != nil {
		return zero, err
	}

	data, err := r.opts.serializer.Serialize(v)
	if err != nil {
		return zero, err
	}
	if err := r.store.Set(ctx, r.key, data, r.ttl); err != nil {
		if !r.opts.failOpen {
			return zero, err
		}
		r.opts.log.WarnCtx(ctx, "cache set failed", zap.String("key", r.key), zap.Error(err))
		return v, nil
	}

	r.opts.log.DebugCtx(ctx, "cache filled", zap.String("key", r.key), zap.Duration("ttl", r.ttl))
	return v, nil
}
