package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/yogan-property/errcode"
)

var errUnavailable = errcode.New(99, 1, "test", "error.test.unavailable", "Backend unavailable", http.StatusServiceUnavailable)

func serveError(t *testing.T, err error, mw ...gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(mw...)
	engine.GET("/fail", func(c *gin.Context) { HandleError(c, err) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHandleError_LayeredError(t *testing.T) {
	err := fmt.Errorf("list: %w", errUnavailable.Wrap(errors.New("dial tcp: refused")).WithData("store", "redis"))
	w, resp := serveError(t, err, ErrorLoggingMiddleware(DefaultErrorLoggingConfig()))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 990001, resp.Code)
	assert.Equal(t, "Backend unavailable", resp.Msg)
	assert.Equal(t, "redis", resp.Data["store"])
}

func TestHandleError_PlainErrorHidesCause(t *testing.T) {
	w, resp := serveError(t, errors.New("password=hunter2"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", resp.Msg)
	assert.NotContains(t, w.Body.String(), "hunter2")
}

func TestHandleError_Deadline(t *testing.T) {
	w, resp := serveError(t, fmt.Errorf("query: %w", context.DeadlineExceeded))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, http.StatusGatewayTimeout, resp.Code)
}

func TestHandleError_Nil(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/ok", func(c *gin.Context) {
		HandleError(c, nil)
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, "ok", w.Body.String())
}

func TestNoRouteAndNoMethod(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(NoRouteHandler())
	engine.NoMethod(NoMethodHandler())
	engine.GET("/only-get", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found: GET /missing")

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/only-get", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestWrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	type body struct {
		Count int `json:"count"`
	}

	engine := gin.New()
	engine.GET("/ok", Wrap(func(c *gin.Context) (*body, error) { return &body{Count: 2}, nil }))
	engine.GET("/fail", Wrap(func(c *gin.Context) (*body, error) { return nil, errUnavailable }))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":2}`, w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestErrorLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := ErrorLoggingConfig{Enable: true, IgnoreHTTPStatus: []int{404}, LogLevel: "warn"}

	engine := gin.New()
	engine.Use(ErrorLoggingMiddleware(cfg))
	engine.GET("/cfg", func(c *gin.Context) {
		internal := getErrorLoggingConfig(c)
		assert.True(t, internal.Enable)
		assert.True(t, internal.IgnoreStatusMap[404])
		assert.False(t, internal.IgnoreStatusMap[500])
		assert.Equal(t, "warn", internal.LogLevel)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cfg", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
