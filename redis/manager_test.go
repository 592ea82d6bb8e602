package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/KOMKZ/yogan-property/logger"
)

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	m, err := NewManager(context.Background(), map[string]Config{
		"main": {Addr: mr.Addr()},
	}, logger.NewTestCtxLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m, mr
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	cfg := Config{Addr: "127.0.0.1:6379"}
	cfg.ApplyDefaults()

	assert.Equal(t, ModeStandalone, cfg.Mode)
	assert.Equal(t, []string{"127.0.0.1:6379"}, cfg.Addrs)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.Mode = "sentinel"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.DB = 16
	assert.Error(t, bad.Validate())

	empty := Config{}
	empty.ApplyDefaults()
	assert.Error(t, empty.Validate())
}

func TestNewManager(t *testing.T) {
	m, mr := newTestManager(t)

	client := m.Client("main")
	require.NotNil(t, client)
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	assert.True(t, mr.Exists("k"))

	assert.Nil(t, m.Client("absent"))
	assert.Equal(t, []string{"main"}, m.Names())
	assert.NoError(t, m.Ping(context.Background()))
}

func TestNewManager_Errors(t *testing.T) {
	_, err := NewManager(context.Background(), map[string]Config{"main": {Addr: "x"}}, nil)
	assert.Error(t, err)

	_, err = NewManager(context.Background(), map[string]Config{"main": {}}, logger.NewTestCtxLogger())
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewManager(context.Background(), map[string]Config{
		"main": {Addr: addr, DialTimeout: 100 * time.Millisecond, MaxRetries: -1},
	}, logger.NewTestCtxLogger())
	assert.Error(t, err)
}

func TestHealthChecker(t *testing.T) {
	m, mr := newTestManager(t)
	hc := NewHealthChecker(m)

	assert.Equal(t, "redis", hc.Name())
	assert.NoError(t, hc.Check(context.Background()))

	mr.Close()
	assert.Error(t, hc.Check(context.Background()))

	assert.Error(t, NewHealthChecker(nil).Check(context.Background()))
}

func TestManager_RegisterMetrics(t *testing.T) {
	m, _ := newTestManager(t)
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	require.NoError(t, m.RegisterMetrics(provider.Meter("redis")))
	assert.Equal(t, "redis", m.MetricsName())

	ctx := context.Background()
	require.NoError(t, m.Client("main").Set(ctx, "k", "v", 0).Err())
	_, err := m.Client("main").Get(ctx, "absent").Result()
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			names[metric.Name] = true
		}
	}
	assert.True(t, names["redis_command_duration_seconds"])
	// a redis.Nil reply is not an error
	assert.False(t, names["redis_command_errors_total"])
}
