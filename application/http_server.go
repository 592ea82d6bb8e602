package application

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/KOMKZ/yogan-property/cache"
	"github.com/KOMKZ/yogan-property/health"
	"github.com/KOMKZ/yogan-property/httpx"
	"github.com/KOMKZ/yogan-property/logger"
	"github.com/KOMKZ/yogan-property/middleware"
	"github.com/KOMKZ/yogan-property/property"
	"github.com/KOMKZ/yogan-property/telemetry"
)

// ServerDeps are the components the router needs. Nil optional fields
// switch the matching feature off.
type ServerDeps struct {
	Properties property.Reader
	PageStore  cache.Store
	PageCache  middleware.PageCacheConfig
	Health     *health.Aggregator // optional
	Telemetry  *telemetry.Manager // optional
	Metrics    *middleware.HTTPMetrics
	Log        logger.CtxLogger
}

// HTTPServer wraps the gin engine and its http.Server
type HTTPServer struct {
	engine     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	cfg        ApiServerConfig
	log        logger.CtxLogger
}

// NewHTTPServer builds the engine: middleware in order, then routes
func NewHTTPServer(cfg ApiServerConfig, mwCfg middleware.Config, deps ServerDeps) *HTTPServer {
	log := deps.Log
	if log == nil {
		log = logger.GetLogger("http")
	}

	gin.DefaultWriter = logger.NewGinLogWriter(log)
	gin.DefaultErrorWriter = logger.NewGinLogWriter(log)
	gin.SetMode(cfg.Mode)

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	// the otel span must exist before TraceID reads it
	if deps.Telemetry != nil && deps.Telemetry.IsEnabled() {
		engine.Use(otelgin.Middleware(deps.Telemetry.ServiceName(),
			otelgin.WithTracerProvider(deps.Telemetry.TracerProvider())))
	}

	traceCfg := middleware.DefaultTraceConfig()
	traceCfg.Header = mwCfg.TraceIDHeader
	engine.Use(middleware.TraceID(traceCfg))

	if deps.Metrics != nil {
		engine.Use(deps.Metrics.Handler())
	}
	engine.Use(middleware.RequestLog(log, mwCfg.RequestLog))
	if mwCfg.ErrorLogging.Enable {
		engine.Use(httpx.ErrorLoggingMiddleware(mwCfg.ErrorLogging))
	}
	engine.Use(middleware.Recovery(log))

	engine.NoRoute(httpx.NoRouteHandler())
	engine.NoMethod(httpx.NoMethodHandler())

	if deps.Health != nil {
		health.RegisterRoutes(engine, deps.Health)
	}
	if deps.Properties != nil {
		var listMiddleware []gin.HandlerFunc
		if mwCfg.PageCache && deps.PageStore != nil {
			listMiddleware = append(listMiddleware, middleware.PageCache(deps.PageStore, deps.PageCache, log))
		}
		property.RegisterRoutes(engine, property.NewHandler(deps.Properties), listMiddleware...)
	}

	return &HTTPServer{engine: engine, cfg: cfg, log: log}
}

// Engine exposes the router, mostly for tests
func (s *HTTPServer) Engine() *gin.Engine {
	return s.engine
}

// Start binds the port and serves in the background. Bind errors are
// returned synchronously.
func (s *HTTPServer) Start() error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s failed: %w", addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.ErrorCtx(context.Background(), "http server stopped", zap.Error(err))
		}
	}()

	s.log.InfoCtx(context.Background(), "http server started",
		zap.String("addr", ln.Addr().String()),
		zap.String("mode", s.cfg.Mode))
	return nil
}

// Addr is the bound address, or "" before Start
func (s *HTTPServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting connections and drains in-flight requests
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	s.log.DebugCtx(ctx, "http server closed")
	return nil
}
