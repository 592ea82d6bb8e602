package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KOMKZ/yogan-property/logger"
)

type RequestLogConfig struct {
	SkipPaths []string `mapstructure:"skip_paths"`
}

func DefaultRequestLogConfig() RequestLogConfig {
	return RequestLogConfig{SkipPaths: []string{"/health"}}
}

// RequestLog writes one structured entry per request: 5xx at error, 4xx
// at warn, everything else at info. A nil log uses the "http" module.
func RequestLog(log logger.CtxLogger, cfg RequestLogConfig) gin.HandlerFunc {
	if log == nil {
		log = logger.GetLogger("http")
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skip[path] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("body_size", c.Writer.Size()),
		}
		if cacheStatus := c.Writer.Header().Get(CacheHeader); cacheStatus != "" {
			fields = append(fields, zap.String("page_cache", cacheStatus))
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			fields = append(fields, zap.String("error", msg))
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			log.ErrorCtx(ctx, "http request", fields...)
		case status >= 400:
			log.WarnCtx(ctx, "http request", fields...)
		default:
			log.InfoCtx(ctx, "http request", fields...)
		}
	}
}
