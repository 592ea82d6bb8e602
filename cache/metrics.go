package cache

import (
	"context"
	"math"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/KOMKZ/yogan-property/component"
	"github.com/KOMKZ/yogan-property/logger"
)

// Metrics is a point-in-time view of the store's hit/miss counters.
// Error is set only when the counters could not be read, in which case
// every number is zero.
type Metrics struct {
	Hits               int64   `json:"hits"`
	Misses             int64   `json:"misses"`
	Total              int64   `json:"total"`
	HitRatio           float64 `json:"hit_ratio"`
	HitRatioPercentage float64 `json:"hit_ratio_percentage"`
	Error              string  `json:"error,omitempty"`
}

// ComputeMetrics derives totals and ratios; hit_ratio is rounded to 4
// places, the percentage (from the unrounded ratio) to 2.
func ComputeMetrics(s Stats) Metrics {
	total := s.Hits + s.Misses
	var ratio float64
	if total > 0 {
		ratio = float64(s.Hits) / float64(total)
	}
	return Metrics{
		Hits:               s.Hits,
		Misses:             s.Misses,
		Total:              total,
		HitRatio:           roundTo(ratio, 4),
		HitRatioPercentage: roundTo(ratio*100, 2),
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// MetricsReporter turns store counters into Metrics. Report never fails:
// a counter read error is logged and returned inside the snapshot.
type MetricsReporter struct {
	stats StatsProvider
	log   logger.CtxLogger
}

var _ component.MetricsProvider = (*MetricsReporter)(nil)

func NewMetricsReporter(stats StatsProvider, log logger.CtxLogger) *MetricsReporter {
	if log == nil {
		log = logger.GetLogger("cache")
	}
	return &MetricsReporter{stats: stats, log: log}
}

func (r *MetricsReporter) Report(ctx context.Context) Metrics {
	s, err := r.stats.Stats(ctx)
	if err != nil {
		r.log.ErrorCtx(ctx, "cache metrics unavailable", zap.Error(err))
		return Metrics{Error: err.Error()}
	}

	m := ComputeMetrics(s)
	r.log.InfoCtx(ctx, "cache metrics",
		zap.Int64("hits", m.Hits),
		zap.Int64("misses", m.Misses),
		zap.Int64("total", m.Total),
		zap.Float64("hit_ratio", m.HitRatio),
		zap.Float64("hit_ratio_percentage", m.HitRatioPercentage),
	)
	return m
}

func (r *MetricsReporter) MetricsName() string {
	return component.Cache
}

// RegisterMetrics exports the counters as observable instruments read at
// collection time. Collection never logs; failed reads are skipped.
func (r *MetricsReporter) RegisterMetrics(meter metric.Meter) error {
	hits, err := meter.Int64ObservableCounter("cache_hits",
		metric.WithDescription("Cumulative cache lookups served from the store"))
	if err != nil {
		return err
	}
	misses, err := meter.Int64ObservableCounter("cache_misses",
		metric.WithDescription("Cumulative cache lookups that missed"))
	if err != nil {
		return err
	}
	ratio, err := meter.Float64ObservableGauge("cache_hit_ratio",
		metric.WithDescription("Hits divided by total lookups"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		s, err := r.stats.Stats(ctx)
		if err != nil {
			return nil
		}
		m := ComputeMetrics(s)
		o.ObserveInt64(hits, m.Hits)
		o.ObserveInt64(misses, m.Misses)
		o.ObserveFloat64(ratio, m.HitRatio)
		return nil
	}, hits, misses, ratio)
	return err
}
