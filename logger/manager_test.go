package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func newFileManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultManagerConfig()
	cfg.BaseLogDir = dir
	cfg.EnableConsole = false
	cfg.EnableDateInFilename = false
	cfg.AppName = "propertyd"
	m := NewManager(cfg)
	t.Cleanup(m.CloseAll)
	return m, dir
}

func TestManagerConfig_ApplyDefaults(t *testing.T) {
	var cfg ManagerConfig
	cfg.ApplyDefaults()

	assert.Equal(t, "logs", cfg.BaseLogDir)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, "trace_id", cfg.TraceIDFieldName)
	assert.NoError(t, cfg.Validate())
}

func TestManagerConfig_Validate(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultManagerConfig()
	cfg.Encoding = "xml"
	assert.Error(t, cfg.Validate())

	cfg = DefaultManagerConfig()
	cfg.MaxSize = 0
	assert.Error(t, cfg.Validate())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLevel("debug").String())
	assert.Equal(t, "info", ParseLevel("bogus").String())
	assert.Equal(t, "error", ParseLevel("error").String())
}

func TestManager_WritesModuleFiles(t *testing.T) {
	m, dir := newFileManager(t)

	log := m.GetLogger("cache")
	log.InfoCtx(ContextWithTraceID(context.Background(), "trace-123"), "cache metrics", zap.Int64("hits", 80))
	log.ErrorCtx(context.Background(), "stats failed", zap.Error(errors.New("boom")))
	m.CloseAll()

	info, err := os.ReadFile(filepath.Join(dir, "cache", "cache-info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), `"msg":"cache metrics"`)
	assert.Contains(t, string(info), `"module":"cache"`)
	assert.Contains(t, string(info), `"trace_id":"trace-123"`)
	assert.Contains(t, string(info), `"app_name":"propertyd"`)
	assert.NotContains(t, string(info), "stats failed")

	errLog, err := os.ReadFile(filepath.Join(dir, "cache", "cache-error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "stats failed")
	assert.Contains(t, string(errLog), `"stack"`)
}

func TestManager_GetLoggerIsCached(t *testing.T) {
	m, _ := newFileManager(t)
	assert.Same(t, m.GetLogger("property"), m.GetLogger("property"))
	assert.Equal(t, "property", m.GetLogger("property").Module())
}

func TestManager_LevelFiltersInfoFile(t *testing.T) {
	m, dir := newFileManager(t)

	m.GetLogger("http").DebugCtx(context.Background(), "hidden")
	m.GetLogger("http").WarnCtx(context.Background(), "visible")
	m.CloseAll()

	data, err := os.ReadFile(filepath.Join(dir, "http", "http-info.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "visible")
}

func TestTraceIDFromContext(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
	assert.Equal(t, "abc", TraceIDFromContext(ContextWithTraceID(context.Background(), "abc")))
}

func TestTestCtxLogger(t *testing.T) {
	log := NewTestCtxLogger()
	ctx := ContextWithTraceID(context.Background(), "t-1")

	log.InfoCtx(ctx, "cache metrics", zap.Int64("hits", 80), zap.Float64("hit_ratio", 0.8))
	log.With(zap.String("key", "all_properties")).WarnCtx(ctx, "cache set failed")

	assert.True(t, log.HasLog("INFO", "cache metrics"))
	assert.True(t, log.HasLogWithTraceID("INFO", "cache metrics", "t-1"))
	assert.True(t, log.HasLogWithField("INFO", "cache metrics", "hits", int64(80)))
	assert.True(t, log.HasLogWithField("INFO", "cache metrics", "hit_ratio", 0.8))
	assert.True(t, log.HasLogWithField("WARN", "cache set failed", "key", "all_properties"))
	assert.Equal(t, 1, log.CountLogs("WARN"))
	assert.Len(t, log.Logs(), 2)

	log.Clear()
	assert.Empty(t, log.Logs())
}

func TestGormLogger_Trace(t *testing.T) {
	rec := NewTestCtxLogger()
	gl := NewGormLogger(rec, GormLoggerConfig{SlowThreshold: 10 * time.Millisecond, LogLevel: gormlogger.Info, EnableAudit: true})
	ctx := context.Background()
	stmt := func() (string, int64) { return "SELECT * FROM properties", 2 }

	gl.Trace(ctx, time.Now(), stmt, nil)
	assert.True(t, rec.HasLogWithField("DEBUG", "sql executed", "rows", int64(2)))

	gl.Trace(ctx, time.Now(), stmt, errors.New("no such table"))
	assert.True(t, rec.HasLogWithField("ERROR", "sql error", "error", "no such table"))

	gl.Trace(ctx, time.Now(), stmt, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 1, rec.CountLogs("ERROR"))

	gl.Trace(ctx, time.Now().Add(-15*time.Millisecond), stmt, nil)
	assert.True(t, rec.HasLog("WARN", "slow query"))

	gl.Trace(ctx, time.Now().Add(-time.Second), stmt, nil)
	assert.True(t, rec.HasLog("ERROR", "severe slow query"))

	silent := gl.LogMode(gormlogger.Silent)
	rec.Clear()
	silent.Trace(ctx, time.Now(), stmt, errors.New("ignored"))
	assert.Empty(t, rec.Logs())
}

func TestGinLogWriter(t *testing.T) {
	rec := NewTestCtxLogger()
	w := NewGinLogWriter(rec)

	n, err := w.Write([]byte("[GIN-debug] GET /properties/ --> handler\n"))
	require.NoError(t, err)
	assert.Positive(t, n)
	_, _ = w.Write([]byte("[Recovery] panic recovered"))
	_, _ = w.Write([]byte("   "))

	assert.Equal(t, 1, rec.CountLogs("DEBUG"))
	assert.Equal(t, 1, rec.CountLogs("ERROR"))
	assert.Len(t, rec.Logs(), 2)
}
