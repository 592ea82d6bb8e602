package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestCtxLogger records entries in memory for assertions in unit tests:
//
//	log := logger.NewTestCtxLogger()
//	svc := property.NewService(repo, store, reporter, cfg, log)
//	assert.True(t, log.HasLog("INFO", "cache metrics"))
type TestCtxLogger struct {
	store  *logStore
	preset []zap.Field
}

// LogEntry is one recorded call
type LogEntry struct {
	Level   string
	Message string
	TraceID string
	Fields  map[string]interface{}
}

type logStore struct {
	mu   sync.RWMutex
	logs []LogEntry
}

var _ CtxLogger = (*TestCtxLogger)(nil)

func NewTestCtxLogger() *TestCtxLogger {
	return &TestCtxLogger{store: &logStore{}}
}

func (t *TestCtxLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "DEBUG", msg, fields)
}

func (t *TestCtxLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "INFO", msg, fields)
}

func (t *TestCtxLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "WARN", msg, fields)
}

func (t *TestCtxLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "ERROR", msg, fields)
}

// With returns a logger sharing the same recorded entries
func (t *TestCtxLogger) With(fields ...zap.Field) *TestCtxLogger {
	preset := append(append([]zap.Field{}, t.preset...), fields...)
	return &TestCtxLogger{store: t.store, preset: preset}
}

func (t *TestCtxLogger) record(ctx context.Context, level, msg string, fields []zap.Field) {
	all := append(append([]zap.Field{}, t.preset...), fields...)
	entry := LogEntry{
		Level:   level,
		Message: msg,
		TraceID: TraceIDFromContext(ctx),
		Fields:  fieldsToMap(all),
	}

	t.store.mu.Lock()
	t.store.logs = append(t.store.logs, entry)
	t.store.mu.Unlock()
}

// HasLog reports whether an entry with level and message exists
func (t *TestCtxLogger) HasLog(level, message string) bool {
	return t.find(func(e LogEntry) bool { return e.Level == level && e.Message == message })
}

// HasLogWithTraceID also matches the trace id
func (t *TestCtxLogger) HasLogWithTraceID(level, message, traceID string) bool {
	return t.find(func(e LogEntry) bool {
		return e.Level == level && e.Message == message && e.TraceID == traceID
	})
}

// HasLogWithField also matches one encoded field value
func (t *TestCtxLogger) HasLogWithField(level, message, key string, value interface{}) bool {
	return t.find(func(e LogEntry) bool {
		if e.Level != level || e.Message != message {
			return false
		}
		v, ok := e.Fields[key]
		return ok && v == value
	})
}

// CountLogs counts entries at level
func (t *TestCtxLogger) CountLogs(level string) int {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	n := 0
	for _, e := range t.store.logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Logs returns a copy of every entry
func (t *TestCtxLogger) Logs() []LogEntry {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	out := make([]LogEntry, len(t.store.logs))
	copy(out, t.store.logs)
	return out
}

func (t *TestCtxLogger) Clear() {
	t.store.mu.Lock()
	t.store.logs = nil
	t.store.mu.Unlock()
}

func (t *TestCtxLogger) find(match func(LogEntry) bool) bool {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	for _, e := range t.store.logs {
		if match(e) {
			return true
		}
	}
	return false
}

// fieldsToMap encodes fields the way zap would, so int64 stays int64 and
// float64 stays float64 in assertions.
func fieldsToMap(fields []zap.Field) map[string]interface{} {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return enc.Fields
}
