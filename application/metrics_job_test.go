package application

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/yogan-property/cache"
	"github.com/KOMKZ/yogan-property/logger"
)

type countingSource struct {
	calls   atomic.Int32
	metrics cache.Metrics
}

func (s *countingSource) GetCacheMetrics(ctx context.Context) cache.Metrics {
	s.calls.Add(1)
	return s.metrics
}

func TestNewMetricsJob_Errors(t *testing.T) {
	_, err := NewMetricsJob(time.Minute, nil, nil)
	assert.Error(t, err)

	_, err = NewMetricsJob(0, &countingSource{}, nil)
	assert.Error(t, err)
}

func TestMetricsJob_RunsAndStops(t *testing.T) {
	src := &countingSource{}
	log := logger.NewTestCtxLogger()
	job, err := NewMetricsJob(time.Hour, src, log, WithImmediateRun())
	require.NoError(t, err)

	job.Start()
	assert.Eventually(t, func() bool { return src.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, job.Shutdown(ctx))
	assert.True(t, log.HasLog("DEBUG", "metrics job started"))
	assert.False(t, log.HasLog("WARN", "metrics job run degraded"))
}

func TestMetricsJob_LogsDegradedSnapshot(t *testing.T) {
	src := &countingSource{metrics: cache.Metrics{Error: "store unavailable"}}
	log := logger.NewTestCtxLogger()
	job, err := NewMetricsJob(time.Hour, src, log, WithImmediateRun())
	require.NoError(t, err)

	job.Start()
	assert.Eventually(t, func() bool {
		return log.HasLogWithField("WARN", "metrics job run degraded", "error", "store unavailable")
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, job.Shutdown(context.Background()))
}

func TestMetricsJob_WaitsForInterval(t *testing.T) {
	src := &countingSource{}
	job, err := NewMetricsJob(time.Hour, src, logger.NewTestCtxLogger())
	require.NoError(t, err)

	job.Start()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), src.calls.Load())
	require.NoError(t, job.Shutdown(context.Background()))
}

type blockingSource struct {
	started chan struct{}
	release chan struct{}
	done    atomic.Bool
}

func (s *blockingSource) GetCacheMetrics(ctx context.Context) cache.Metrics {
	close(s.started)
	<-s.release
	s.done.Store(true)
	return cache.Metrics{}
}

func TestMetricsJob_ShutdownTimeoutLeavesSchedulerStopping(t *testing.T) {
	src := &blockingSource{started: make(chan struct{}), release: make(chan struct{})}
	log := logger.NewTestCtxLogger()
	job, err := NewMetricsJob(time.Hour, src, log, WithImmediateRun())
	require.NoError(t, err)

	job.Start()
	select {
	case <-src.started:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, job.Shutdown(ctx), context.DeadlineExceeded)
	assert.True(t, log.HasLog("WARN", "metrics job shutdown timed out"))

	// the running tick is not interrupted
	close(src.release)
	assert.Eventually(t, src.done.Load, 2*time.Second, 10*time.Millisecond)
}
