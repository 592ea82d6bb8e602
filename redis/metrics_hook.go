package redis

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type commandInstruments struct {
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

func newCommandInstruments(meter metric.Meter) (*commandInstruments, error) {
	duration, err := meter.Float64Histogram("redis_command_duration_seconds",
		metric.WithDescription("Redis command latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	errs, err := meter.Int64Counter("redis_command_errors_total",
		metric.WithDescription("Redis commands that failed, redis.Nil excluded"))
	if err != nil {
		return nil, err
	}
	return &commandInstruments{duration: duration, errors: errs}, nil
}

// metricsHook implements redis.Hook
type metricsHook struct {
	inst     *commandInstruments
	instance string
}

func newMetricsHook(inst *commandInstruments, instance string) *metricsHook {
	return &metricsHook{inst: inst, instance: instance}
}

func (h *metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.record(ctx, cmd.Name(), time.Since(start), err)
		return err
	}
}

func (h *metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.record(ctx, "pipeline", time.Since(start), err)
		return err
	}
}

func (h *metricsHook) record(ctx context.Context, command string, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("instance", h.instance),
		attribute.String("command", command),
	)
	h.inst.duration.Record(ctx, elapsed.Seconds(), attrs)
	if err != nil && !errors.Is(err, redis.Nil) {
		h.inst.errors.Add(ctx, 1, attrs)
	}
}
