// Package httpx holds the JSON error envelope and the error-to-status
// mapping shared by every handler.
package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KOMKZ/yogan-property/errcode"
	"github.com/KOMKZ/yogan-property/logger"
)

const logModule = "httpx"

// Response is the body of every non-2xx reply
type Response struct {
	Code int                    `json:"code"`
	Msg  string                 `json:"msg,omitempty"`
	Data map[string]interface{} `json:"data,omitempty"`
}

func NotFoundJson(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Msg: msg})
}

func InternalErrorJson(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Msg: msg})
}

// NoRouteHandler is registered with engine.NoRoute
func NoRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		NotFoundJson(c, "route not found: "+c.Request.Method+" "+c.Request.URL.Path)
	}
}

// NoMethodHandler is registered with engine.NoMethod
func NoMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, Response{
			Code: http.StatusMethodNotAllowed,
			Msg:  "method not allowed: " + c.Request.Method + " " + c.Request.URL.Path,
		})
	}
}

// HandleError writes the reply for err. A LayeredError keeps its code,
// message and HTTP status; a deadline becomes 504; anything else is a 500
// that does not leak the cause.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	ctx := c.Request.Context()
	cfg := getErrorLoggingConfig(c)

	var layered *errcode.LayeredError
	if errors.As(err, &layered) {
		if cfg.Enable && !cfg.IgnoreStatusMap[layered.HTTPStatus()] {
			fields := []zap.Field{
				zap.Int("error_code", layered.Code()),
				zap.String("error_msg", layered.Message()),
			}
			if cfg.FullErrorChain {
				fields = append(fields, zap.String("error_chain", layered.String()), zap.Error(err))
			}
			switch cfg.LogLevel {
			case "warn":
				logger.WarnCtx(ctx, logModule, "request failed", fields...)
			case "info":
				logger.InfoCtx(ctx, logModule, "request failed", fields...)
			default:
				logger.ErrorCtx(ctx, logModule, "request failed", fields...)
			}
		}
		c.JSON(layered.HTTPStatus(), Response{
			Code: layered.Code(),
			Msg:  layered.Message(),
			Data: layered.Data(),
		})
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		if cfg.Enable && !cfg.IgnoreStatusMap[http.StatusGatewayTimeout] {
			logger.WarnCtx(ctx, logModule, "request timed out", zap.Error(err))
		}
		c.JSON(http.StatusGatewayTimeout, Response{Code: http.StatusGatewayTimeout, Msg: "request timed out"})
		return
	}

	if cfg.Enable && !cfg.IgnoreStatusMap[http.StatusInternalServerError] {
		logger.ErrorCtx(ctx, logModule, "request failed", zap.Error(err))
	}
	InternalErrorJson(c, "internal server error")
}
