package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CtxLogger is what components depend on, so tests can swap in TestCtxLogger
type CtxLogger interface {
	DebugCtx(ctx context.Context, msg string, fields ...zap.Field)
	InfoCtx(ctx context.Context, msg string, fields ...zap.Field)
	WarnCtx(ctx context.Context, msg string, fields ...zap.Field)
	ErrorCtx(ctx context.Context, msg string, fields ...zap.Field)
}

type traceIDKey struct{}

// ContextWithTraceID stores a request trace id for loggers to pick up
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext prefers the active OpenTelemetry span, then the id
// stored by ContextWithTraceID.
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// CtxZapLogger is a zap logger bound to one module at creation time.
// Obtain one through Manager.GetLogger or the package-level GetLogger.
type CtxZapLogger struct {
	base   *zap.Logger
	module string
	config *ManagerConfig
}

var _ CtxLogger = (*CtxZapLogger)(nil)

func (l *CtxZapLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Debug(msg, l.enrichFields(ctx, fields)...)
}

func (l *CtxZapLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Info(msg, l.enrichFields(ctx, fields)...)
}

func (l *CtxZapLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Warn(msg, l.enrichFields(ctx, fields)...)
}

// ErrorCtx attaches a depth-limited stack when the config asks for one
func (l *CtxZapLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	enriched := l.enrichFields(ctx, fields)
	if l.config != nil && shouldCaptureStacktrace("error", *l.config) {
		// skip runtime.Callers, CaptureStacktrace and ErrorCtx
		if stack := CaptureStacktrace(3, l.config.StacktraceDepth); stack != "" {
			enriched = append(enriched, zap.String("stack", stack))
		}
	}
	l.base.Error(msg, enriched...)
}

func (l *CtxZapLogger) Debug(msg string, fields ...zap.Field) {
	l.DebugCtx(context.Background(), msg, fields...)
}

func (l *CtxZapLogger) Info(msg string, fields ...zap.Field) {
	l.InfoCtx(context.Background(), msg, fields...)
}

func (l *CtxZapLogger) Warn(msg string, fields ...zap.Field) {
	l.WarnCtx(context.Background(), msg, fields...)
}

func (l *CtxZapLogger) Error(msg string, fields ...zap.Field) {
	l.ErrorCtx(context.Background(), msg, fields...)
}

// With returns a child logger carrying preset fields
func (l *CtxZapLogger) With(fields ...zap.Field) *CtxZapLogger {
	return &CtxZapLogger{
		base:   l.base.With(fields...),
		module: l.module,
		config: l.config,
	}
}

// Module returns the bound module name
func (l *CtxZapLogger) Module() string {
	return l.module
}

// GetZapLogger exposes the underlying logger for third-party integration
func (l *CtxZapLogger) GetZapLogger() *zap.Logger {
	return l.base
}

func (l *CtxZapLogger) enrichFields(ctx context.Context, fields []zap.Field) []zap.Field {
	enriched := make([]zap.Field, 0, len(fields)+2)
	if l.config != nil {
		enriched = append(enriched, zap.String("app_name", l.config.AppName))
		if l.config.EnableTraceID {
			if id := TraceIDFromContext(ctx); id != "" {
				enriched = append(enriched, zap.String(l.config.TraceIDFieldName, id))
			}
		}
	}
	return append(enriched, fields...)
}
