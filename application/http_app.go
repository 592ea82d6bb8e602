package application

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"github.com/KOMKZ/yogan-property/cache"
	"github.com/KOMKZ/yogan-property/component"
	"github.com/KOMKZ/yogan-property/database"
	"github.com/KOMKZ/yogan-property/di"
	"github.com/KOMKZ/yogan-property/health"
	"github.com/KOMKZ/yogan-property/logger"
	"github.com/KOMKZ/yogan-property/middleware"
	"github.com/KOMKZ/yogan-property/property"
	"github.com/KOMKZ/yogan-property/redis"
	"github.com/KOMKZ/yogan-property/telemetry"
)

// Application is the HTTP service
type Application struct {
	*BaseApplication

	cfg    AppConfig
	server *HTTPServer
	job    *MetricsJob
}

func New(opts di.Options) (*Application, error) {
	base, err := NewBase(opts)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadAppConfig(base.ConfigLoader())
	if err != nil {
		_ = base.Shutdown()
		return nil, err
	}
	return &Application{BaseApplication: base, cfg: cfg}, nil
}

func (a *Application) Config() AppConfig {
	return a.cfg
}

// Server is nil until RunNonBlocking succeeds
func (a *Application) Server() *HTTPServer {
	return a.server
}

// Run serves until a shutdown signal, then shuts down gracefully
func (a *Application) Run() error {
	if err := a.RunNonBlocking(); err != nil {
		_ = a.Stop()
		return err
	}
	a.WaitShutdown()
	return a.Stop()
}

// RunNonBlocking resolves the components, starts the HTTP server and the
// metrics job, and returns
func (a *Application) RunNonBlocking() error {
	a.setState(StateSetup)
	i := a.Injector()

	svc, err := do.Invoke[*property.Service](i)
	if err != nil {
		return fmt.Errorf("init property service failed: %w", err)
	}
	store, err := do.Invoke[cache.StatsStore](i)
	if err != nil {
		return err
	}
	cacheCfg, err := do.Invoke[cache.Config](i)
	if err != nil {
		return err
	}
	tm, err := do.Invoke[*telemetry.Manager](i)
	if err != nil {
		return fmt.Errorf("init telemetry failed: %w", err)
	}
	agg, err := do.Invoke[*health.Aggregator](i)
	if err != nil {
		return err
	}
	agg.SetMetadata("version", a.Version())

	httpMetrics := middleware.NewHTTPMetrics()
	reporter, err := do.Invoke[*cache.MetricsReporter](i)
	if err != nil {
		return fmt.Errorf("init cache reporter failed: %w", err)
	}
	a.registerMetrics(tm, reporter, httpMetrics)

	a.server = NewHTTPServer(a.cfg.ApiServer, a.cfg.Middleware, ServerDeps{
		Properties: svc,
		PageStore:  store,
		PageCache: middleware.PageCacheConfig{
			TTL:       cacheCfg.PageTTL,
			KeyPrefix: cacheCfg.PageKeyPrefix,
		},
		Health:    agg,
		Telemetry: tm,
		Metrics:   httpMetrics,
		Log:       logger.GetLogger(component.HTTP),
	})
	if err := a.server.Start(); err != nil {
		return err
	}

	if a.cfg.MetricsJob.Enabled {
		job, err := NewMetricsJob(a.cfg.MetricsJob.Interval, svc, logger.GetLogger(component.Scheduler))
		if err != nil {
			return err
		}
		job.Start()
		a.job = job
	}

	a.setState(StateRunning)
	a.Logger().InfoCtx(a.Context(), "http application started",
		zap.String("addr", a.server.Addr()),
		zap.String("version", a.Version()),
		zap.Duration("startup_time", a.startupDuration()))
	return nil
}

// registerMetrics hands every metrics provider to telemetry. A failing
// provider is logged and skipped.
func (a *Application) registerMetrics(tm *telemetry.Manager, providers ...component.MetricsProvider) {
	i := a.Injector()
	if dbMgr, err := do.Invoke[*database.Manager](i); err == nil {
		providers = append(providers, dbMgr)
	}
	if redisMgr, err := do.Invoke[*redis.Manager](i); err == nil && redisMgr != nil {
		providers = append(providers, redisMgr)
	}
	if err := tm.RegisterMetrics(providers...); err != nil {
		a.Logger().WarnCtx(a.Context(), "metrics registration incomplete", zap.Error(err))
	}
}

// Stop shuts down the server, then the job, then the container
func (a *Application) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ApiServer.ShutdownTimeout)
	defer cancel()

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.Logger().ErrorCtx(ctx, "http server shutdown failed", zap.Error(err))
		}
	}
	if a.job != nil {
		if err := a.job.Shutdown(ctx); err != nil {
			a.Logger().ErrorCtx(ctx, "metrics job shutdown failed", zap.Error(err))
		}
	}
	return a.BaseApplication.Shutdown()
}
