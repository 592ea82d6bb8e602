package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/KOMKZ/yogan-property/component"
	"github.com/KOMKZ/yogan-property/logger"
)

// Manager builds the providers on Start and hands them out. Disabled
// telemetry yields noop providers, so callers never branch on it.
type Manager struct {
	cfg      Config
	log      logger.CtxLogger
	readers  []sdkmetric.Reader
	tp       *sdktrace.TracerProvider
	mp       *sdkmetric.MeterProvider
	registry *MetricsRegistry
}

// Option customises a Manager
type Option func(*Manager)

// WithReader adds a metric reader next to the exporter's
func WithReader(r sdkmetric.Reader) Option {
	return func(m *Manager) { m.readers = append(m.readers, r) }
}

func NewManager(cfg Config, log logger.CtxLogger, opts ...Option) *Manager {
	if log == nil {
		log = logger.GetLogger("telemetry")
	}
	m := &Manager{cfg: cfg, log: log}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start creates the providers and installs them as the otel globals
func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled {
		m.registry = NewMetricsRegistry(metricnoop.NewMeterProvider(), m.cfg.Metrics.Namespace, m.log)
		m.log.DebugCtx(ctx, "telemetry disabled")
		return nil
	}

	res, err := newResource(ctx, m.cfg)
	if err != nil {
		return fmt.Errorf("create resource failed: %w", err)
	}

	m.tp, err = newTracerProvider(m.cfg.Traces, res)
	if err != nil {
		return fmt.Errorf("create tracer provider failed: %w", err)
	}
	otel.SetTracerProvider(m.tp)

	var mp metric.MeterProvider = metricnoop.NewMeterProvider()
	if m.cfg.Metrics.Enabled {
		m.mp, err = newMeterProvider(ctx, m.cfg.Metrics, res, m.readers...)
		if err != nil {
			_ = shutdownTracer(ctx, m.tp)
			return fmt.Errorf("create meter provider failed: %w", err)
		}
		otel.SetMeterProvider(m.mp)
		mp = m.mp
	}
	m.registry = NewMetricsRegistry(mp, m.cfg.Metrics.Namespace, m.log)

	m.log.InfoCtx(ctx, "telemetry started",
		zap.String("service_name", m.cfg.ServiceName),
		zap.String("trace_exporter", m.cfg.Traces.Exporter),
		zap.String("metrics_exporter", m.cfg.Metrics.Exporter.Type),
		zap.Bool("metrics", m.cfg.Metrics.Enabled))
	return nil
}

// RegisterMetrics registers each provider on its own meter. Call after Start.
func (m *Manager) RegisterMetrics(providers ...component.MetricsProvider) error {
	if m.registry == nil {
		return fmt.Errorf("telemetry not started")
	}
	var errs []error
	for _, p := range providers {
		if err := m.registry.Register(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MetricsProvider looks up a registered provider by its MetricsName
func (m *Manager) MetricsProvider(name string) (component.MetricsProvider, bool) {
	if m.registry == nil {
		return nil, false
	}
	return m.registry.Provider(name)
}

// TracerProvider is a noop provider until Start runs with telemetry enabled
func (m *Manager) TracerProvider() trace.TracerProvider {
	if m.tp == nil {
		return tracenoop.NewTracerProvider()
	}
	return m.tp
}

// MeterProvider is a noop provider unless metrics are enabled and started
func (m *Manager) MeterProvider() metric.MeterProvider {
	if m.mp == nil {
		return metricnoop.NewMeterProvider()
	}
	return m.mp
}

func (m *Manager) ServiceName() string {
	return m.cfg.ServiceName
}

func (m *Manager) IsEnabled() bool {
	return m.cfg.Enabled
}

// Shutdown flushes and stops both providers
func (m *Manager) Shutdown(ctx context.Context) error {
	var errs []error
	if m.mp != nil {
		if err := m.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider failed: %w", err))
		}
	}
	if err := shutdownTracer(ctx, m.tp); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracer provider failed: %w", err))
	}
	return errors.Join(errs...)
}
