package application

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/KOMKZ/yogan-property/cache"
	"github.com/KOMKZ/yogan-property/logger"
)

const metricsJobName = "cache-metrics-log"

// MetricsSource yields a cache metrics snapshot; the snapshot call logs it
type MetricsSource interface {
	GetCacheMetrics(ctx context.Context) cache.Metrics
}

// MetricsJob logs the cache metrics on a fixed interval
type MetricsJob struct {
	scheduler gocron.Scheduler
	source    MetricsSource
	interval  time.Duration
	log       logger.CtxLogger
}

type MetricsJobOption func(*metricsJobOptions)

type metricsJobOptions struct {
	clock          clockwork.Clock
	startImmediate bool
}

// WithJobClock drives the scheduler from c
func WithJobClock(c clockwork.Clock) MetricsJobOption {
	return func(o *metricsJobOptions) { o.clock = c }
}

// WithImmediateRun makes the first run happen on Start
func WithImmediateRun() MetricsJobOption {
	return func(o *metricsJobOptions) { o.startImmediate = true }
}

func NewMetricsJob(interval time.Duration, source MetricsSource, log logger.CtxLogger, opts ...MetricsJobOption) (*MetricsJob, error) {
	if source == nil {
		return nil, fmt.Errorf("metrics source cannot be nil")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("metrics job interval must be positive, got %s", interval)
	}
	if log == nil {
		log = logger.GetLogger("scheduler")
	}

	var o metricsJobOptions
	for _, opt := range opts {
		opt(&o)
	}

	var schedOpts []gocron.SchedulerOption
	if o.clock != nil {
		schedOpts = append(schedOpts, gocron.WithClock(o.clock))
	}
	scheduler, err := gocron.NewScheduler(schedOpts...)
	if err != nil {
		return nil, fmt.Errorf("create scheduler failed: %w", err)
	}

	job := &MetricsJob{scheduler: scheduler, source: source, interval: interval, log: log}

	jobOpts := []gocron.JobOption{
		gocron.WithName(metricsJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if o.startImmediate {
		jobOpts = append(jobOpts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}
	if _, err := scheduler.NewJob(gocron.DurationJob(interval), gocron.NewTask(job.run), jobOpts...); err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("register %s failed: %w", metricsJobName, err)
	}
	return job, nil
}

func (j *MetricsJob) run() {
	ctx := logger.ContextWithTraceID(context.Background(), "job-"+metricsJobName)
	m := j.source.GetCacheMetrics(ctx)
	if m.Error != "" {
		j.log.WarnCtx(ctx, "metrics job run degraded", zap.String("error", m.Error))
	}
}

func (j *MetricsJob) Start() {
	j.scheduler.Start()
	j.log.DebugCtx(context.Background(), "metrics job started", zap.Duration("interval", j.interval))
}

// Shutdown waits for a running tick, bounded by ctx. When ctx ends first
// the scheduler keeps shutting down in the background and its result is
// discarded.
func (j *MetricsJob) Shutdown(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- j.scheduler.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("scheduler shutdown failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		j.log.WarnCtx(ctx, "metrics job shutdown timed out")
		return ctx.Err()
	}
}
