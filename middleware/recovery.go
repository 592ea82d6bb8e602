package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KOMKZ/yogan-property/httpx"
	"github.com/KOMKZ/yogan-property/logger"
)

// Recovery turns a handler panic into a logged 500. The panic value and
// stack stay in the log.
func Recovery(log logger.CtxLogger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetLogger("http")
	}
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.ErrorCtx(c.Request.Context(), "panic recovered",
					zap.String("panic", fmt.Sprint(rec)),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("stack", string(debug.Stack())),
				)
				c.Abort()
				httpx.InternalErrorJson(c, "internal server error")
			}
		}()
		c.Next()
	}
}
