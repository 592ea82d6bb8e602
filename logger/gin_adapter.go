package logger

import (
	"context"
	"strings"
)

// GinLogWriter adapts gin's text output (gin.DefaultWriter / DefaultErrorWriter)
// into structured entries.
type GinLogWriter struct {
	log CtxLogger
}

func NewGinLogWriter(log CtxLogger) *GinLogWriter {
	return &GinLogWriter{log: log}
}

func (w *GinLogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	ctx := context.Background()
	switch {
	case strings.Contains(msg, "[GIN-debug]"):
		w.log.DebugCtx(ctx, msg)
	case strings.Contains(msg, "[Recovery]"), strings.Contains(msg, "panic recovered"):
		w.log.ErrorCtx(ctx, msg)
	default:
		w.log.InfoCtx(ctx, msg)
	}
	return len(p), nil
}
