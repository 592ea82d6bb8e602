package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/KOMKZ/yogan-property/logger"
)

const (
	// TraceIDKey is the gin.Context key holding the trace id
	TraceIDKey = "trace_id"

	TraceIDHeaderDefault = "X-Trace-ID"
)

type TraceConfig struct {
	Header               string
	EnableResponseHeader bool
	Generator            func() string
}

func DefaultTraceConfig() TraceConfig {
	return TraceConfig{
		Header:               TraceIDHeaderDefault,
		EnableResponseHeader: true,
		Generator:            func() string { return uuid.New().String() },
	}
}

// TraceID resolves the request's trace id and makes it visible to the
// ctx loggers. An active OpenTelemetry span wins over the header; without
// either a fresh UUID is generated.
func TraceID(cfg TraceConfig) gin.HandlerFunc {
	if cfg.Header == "" {
		cfg.Header = TraceIDHeaderDefault
	}
	if cfg.Generator == nil {
		cfg.Generator = func() string { return uuid.New().String() }
	}

	return func(c *gin.Context) {
		var traceID string
		if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.IsValid() {
			traceID = sc.TraceID().String()
		} else {
			traceID = c.GetHeader(cfg.Header)
			if traceID == "" {
				traceID = cfg.Generator()
			}
			c.Request = c.Request.WithContext(logger.ContextWithTraceID(c.Request.Context(), traceID))
		}

		c.Set(TraceIDKey, traceID)
		if cfg.EnableResponseHeader {
			c.Writer.Header().Set(cfg.Header, traceID)
		}
		c.Next()
	}
}

// GetTraceID returns the id TraceID stored, or ""
func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}
