package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/yogan-property/cache"
	"github.com/KOMKZ/yogan-property/health"
	"github.com/KOMKZ/yogan-property/property"
	"github.com/KOMKZ/yogan-property/telemetry"
)

const baseConfig = `
logger:
  level: debug
  enable_console: false
  enable_file: false
database:
  connections:
    main:
      driver: sqlite
      dsn: ":memory:"
      max_open_conns: 1
      max_idle_conns: 1
      log_level: silent
property:
  cache_ttl: 10m
`

func newInjector(t *testing.T, body string) *do.RootScope {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))

	injector := New()
	RegisterProviders(injector, Options{ConfigPath: dir})
	t.Cleanup(func() { _ = injector.Shutdown() })
	return injector
}

func TestRegisterProviders_MemoryCache(t *testing.T) {
	injector := newInjector(t, baseConfig)
	ctx := context.Background()

	cfg := do.MustInvoke[property.Config](injector)
	assert.Equal(t, property.AllPropertiesKey, cfg.CacheKey)
	assert.Equal(t, "10m0s", cfg.CacheTTL.String())

	store := do.MustInvoke[cache.StatsStore](injector)
	assert.Equal(t, "memory", store.Name())

	repo := do.MustInvoke[*property.Repository](injector)
	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.Seed(ctx, property.SampleProperties(), 10))

	svc := do.MustInvoke[*property.Service](injector)
	first, err := svc.GetAllProperties(ctx)
	require.NoError(t, err)
	second, err := svc.GetAllProperties(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, len(property.SampleProperties()))

	metrics := svc.GetCacheMetrics(ctx)
	assert.Equal(t, int64(1), metrics.Hits)
	assert.Equal(t, int64(1), metrics.Misses)

	reporter := do.MustInvoke[*cache.MetricsReporter](injector)
	assert.Same(t, svc.Reporter(), reporter)

	agg := do.MustInvoke[*health.Aggregator](injector)
	assert.Equal(t, []string{"database"}, agg.Names())
	assert.True(t, agg.Check(ctx).IsHealthy())

	tm := do.MustInvoke[*telemetry.Manager](injector)
	assert.False(t, tm.IsEnabled())
}

func TestRegisterProviders_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	injector := newInjector(t, baseConfig+`
redis:
  instances:
    main:
      addr: `+mr.Addr()+`
cache:
  driver: redis
  key_prefix: "property:"
`)

	store := do.MustInvoke[cache.StatsStore](injector)
	assert.Equal(t, "redis:main", store.Name())

	require.NoError(t, store.Set(context.Background(), "k", []byte("v"), 0))
	assert.True(t, mr.Exists("property:k"))

	agg := do.MustInvoke[*health.Aggregator](injector)
	assert.Equal(t, []string{"database", "redis"}, agg.Names())
}

func TestRegisterProviders_RedisDriverWithoutInstances(t *testing.T) {
	injector := newInjector(t, baseConfig+`
cache:
  driver: redis
`)

	_, err := do.Invoke[cache.StatsStore](injector)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.instances")
}

func TestRegisterProviders_MissingDatabase(t *testing.T) {
	injector := newInjector(t, `
logger:
  enable_console: false
  enable_file: false
`)

	_, err := do.Invoke[*property.Repository](injector)
	require.Error(t, err)

	// health still comes up, without a database checker
	agg := do.MustInvoke[*health.Aggregator](injector)
	assert.Empty(t, agg.Names())
}

func TestRegisterProviders_InvalidCacheConfig(t *testing.T) {
	injector := newInjector(t, baseConfig+`
cache:
  driver: memcached
`)

	_, err := do.Invoke[cache.Config](injector)
	assert.Error(t, err)
}
