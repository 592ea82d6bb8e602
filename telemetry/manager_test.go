package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/KOMKZ/yogan-property/logger"
)

type counterProvider struct {
	name string
	err  error
}

func (p *counterProvider) MetricsName() string { return p.name }

func (p *counterProvider) RegisterMetrics(meter metric.Meter) error {
	if p.err != nil {
		return p.err
	}
	c, err := meter.Int64Counter(p.name + "_total")
	if err != nil {
		return err
	}
	c.Add(context.Background(), 3)
	return nil
}

func enabledConfig() Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Traces.Exporter = ExporterNoop
	cfg.Metrics.Exporter.Type = ExporterNoop
	cfg.ResourceAttrs = map[string]interface{}{
		"deployment": map[string]interface{}{"environment": "test"},
	}
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Enabled: true}
	cfg.ApplyDefaults()
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.Traces.Exporter = "jaeger"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Metrics.Exporter.Type = ExporterOTLP
	assert.Error(t, bad.Validate())

	bad.Metrics.Exporter.Endpoint = "localhost:4317"
	assert.NoError(t, bad.Validate())

	bad = cfg
	bad.Traces.Sampler = SamplerConfig{Type: "trace_id_ratio", Ratio: 2}
	assert.Error(t, bad.Validate())

	assert.NoError(t, Config{Traces: TracesConfig{Exporter: "jaeger"}}.Validate())
}

func TestFlattenMap(t *testing.T) {
	out := flattenMap(map[string]interface{}{
		"deployment": map[string]interface{}{"environment": "test"},
		"replicas":   3,
		"team":       "listings",
	}, "")
	assert.Equal(t, map[string]string{
		"deployment.environment": "test",
		"replicas":               "3",
		"team":                   "listings",
	}, out)
}

func TestManager_Disabled(t *testing.T) {
	log := logger.NewTestCtxLogger()
	m := NewManager(DefaultConfig(), log)
	ctx := context.Background()

	require.NoError(t, m.Start(ctx))
	assert.False(t, m.IsEnabled())
	assert.True(t, log.HasLog("DEBUG", "telemetry disabled"))
	assert.NotNil(t, m.TracerProvider())
	assert.NotNil(t, m.MeterProvider())

	// providers still register, on noop meters
	cacheProvider := &counterProvider{name: "cache"}
	require.NoError(t, m.RegisterMetrics(cacheProvider))
	got, ok := m.MetricsProvider("cache")
	require.True(t, ok)
	assert.Same(t, cacheProvider, got)
	_, ok = m.MetricsProvider("redis")
	assert.False(t, ok)
	assert.NoError(t, m.Shutdown(ctx))
}

func TestManager_RegisterBeforeStart(t *testing.T) {
	m := NewManager(DefaultConfig(), logger.NewTestCtxLogger())
	assert.Error(t, m.RegisterMetrics(&counterProvider{name: "cache"}))
	_, ok := m.MetricsProvider("cache")
	assert.False(t, ok)
}

func TestManager_EnabledCollectsProviderMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	log := logger.NewTestCtxLogger()
	m := NewManager(enabledConfig(), log, WithReader(reader))
	ctx := context.Background()

	require.NoError(t, m.Start(ctx))
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	assert.True(t, log.HasLog("INFO", "telemetry started"))

	require.NoError(t, m.RegisterMetrics(&counterProvider{name: "cache"}, &counterProvider{name: "redis"}))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	scopes := map[string]string{}
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			scopes[met.Name] = sm.Scope.Name
		}
	}
	assert.Equal(t, "property_cache", scopes["cache_total"])
	assert.Equal(t, "property_redis", scopes["redis_total"])

	_, span := m.TracerProvider().Tracer("test").Start(ctx, "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestManager_RegisterMetricsErrors(t *testing.T) {
	m := NewManager(enabledConfig(), logger.NewTestCtxLogger(), WithReader(sdkmetric.NewManualReader()))
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	require.NoError(t, m.RegisterMetrics(&counterProvider{name: "cache"}))

	err := m.RegisterMetrics(
		&counterProvider{name: "cache"},
		&counterProvider{name: "database", err: errors.New("boom")},
		&counterProvider{name: ""},
		nil,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, m.registry.Count())
}
