package property

import (
	"context"

	"github.com/KOMKZ/yogan-property/cache"
	"github.com/KOMKZ/yogan-property/logger"
)

// Service is the listing behind the cache
type Service struct {
	accessor *cache.ReadThrough[[]Property]
	reporter *cache.MetricsReporter
}

// NewService binds records to store under cfg.CacheKey for cfg.CacheTTL.
// The same store answers the metrics queries.
func NewService(records Lister, store cache.StatsStore, cfg Config, log logger.CtxLogger, opts ...cache.Option) *Service {
	if log != nil {
		opts = append([]cache.Option{cache.WithLogger(log)}, opts...)
	}
	return &Service{
		accessor: cache.NewReadThrough[[]Property](store, cfg.CacheKey, cfg.CacheTTL, records.ListAll, opts...),
		reporter: cache.NewMetricsReporter(store, log),
	}
}

// GetAllProperties returns the full listing, from the cache when it is
// warm. Record store failures come back as ErrListProperties and are
// never cached.
func (s *Service) GetAllProperties(ctx context.Context) ([]Property, error) {
	return s.accessor.Get(ctx)
}

// GetCacheMetrics never fails; see cache.MetricsReporter
func (s *Service) GetCacheMetrics(ctx context.Context) cache.Metrics {
	return s.reporter.Report(ctx)
}

// InvalidateAll drops the cached listing so the next read reloads it
func (s *Service) InvalidateAll(ctx context.Context) error {
	return s.accessor.Invalidate(ctx)
}

// Reporter exposes the metrics reporter for instrument registration
func (s *Service) Reporter() *cache.MetricsReporter {
	return s.reporter
}
