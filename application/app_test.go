package application

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/yogan-property/cache"
	"github.com/KOMKZ/yogan-property/component"
	"github.com/KOMKZ/yogan-property/di"
	"github.com/KOMKZ/yogan-property/middleware"
	"github.com/KOMKZ/yogan-property/property"
	"github.com/KOMKZ/yogan-property/telemetry"
)

const appConfig = `
api_server:
  host: 127.0.0.1
  port: 0
  mode: test
logger:
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
metrics_job:
  enabled: true
  interval: 1h
`

func writeAppConfig(t *testing.T) di.Options {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(appConfig), 0o644))
	return di.Options{ConfigPath: dir}
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestApplication_ServesListing(t *testing.T) {
	app, err := New(writeAppConfig(t))
	require.NoError(t, err)
	assert.Equal(t, StateInit, app.State())

	ctx := context.Background()
	repo := do.MustInvoke[*property.Repository](app.Injector())
	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.Seed(ctx, property.SampleProperties(), 10))

	require.NoError(t, app.RunNonBlocking())
	assert.Equal(t, StateRunning, app.State())
	base := "http://" + app.Server().Addr()

	tm := do.MustInvoke[*telemetry.Manager](app.Injector())
	exported, ok := tm.MetricsProvider(component.Cache)
	require.True(t, ok)
	assert.Same(t, do.MustInvoke[*cache.MetricsReporter](app.Injector()), exported)

	resp, body := get(t, base+"/properties/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get(middleware.CacheHeader))

	var list property.ListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, len(property.SampleProperties()), list.Count)

	resp, _ = get(t, base+"/properties/")
	assert.Equal(t, "HIT", resp.Header.Get(middleware.CacheHeader))

	resp, _ = get(t, base+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = get(t, base+"/properties/cache-metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var metrics map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &metrics))
	assert.Contains(t, metrics, "hit_ratio_percentage")

	require.NoError(t, app.Stop())
	assert.Equal(t, StateStopped, app.State())
}

func TestCLIApplication_MigrateSeedsOnce(t *testing.T) {
	cli, err := NewCLI(writeAppConfig(t))
	require.NoError(t, err)

	err = cli.Execute(context.Background(), func(ctx context.Context, app *CLIApplication) error {
		svc := do.MustInvoke[*property.Service](app.Injector())

		res, err := app.Migrate(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, MigrateResult{}, res)

		// warm the cache with the empty listing
		items, err := svc.GetAllProperties(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)

		res, err = app.Migrate(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, len(property.SampleProperties()), res.Seeded)
		assert.True(t, res.Invalidated)

		items, err = svc.GetAllProperties(ctx)
		require.NoError(t, err)
		assert.Len(t, items, len(property.SampleProperties()))

		res, err = app.Migrate(ctx, true)
		require.NoError(t, err)
		assert.Zero(t, res.Seeded)

		m, err := app.CacheMetrics(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), m.Misses)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateStopped, cli.State())
}

func TestNew_BadConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("logger:\n  level: loud\n"), 0o644))

	_, err := New(di.Options{ConfigPath: dir})
	assert.Error(t, err)
}
