// Package application runs the service: it owns the DI container, the
// HTTP server, the metrics job and the shutdown sequence.
package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"github.com/KOMKZ/yogan-property/config"
	"github.com/KOMKZ/yogan-property/di"
	"github.com/KOMKZ/yogan-property/logger"
)

type AppState int

const (
	StateInit AppState = iota
	StateSetup
	StateRunning
	StateStopping
	StateStopped
)

func (s AppState) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateSetup:
		return "Setup"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// BaseApplication is the part shared by the server and the one-shot
// commands: container, config, logger and lifecycle state
type BaseApplication struct {
	injector *do.RootScope
	loader   *config.Loader
	log      *logger.CtxZapLogger

	ctx       context.Context
	cancel    context.CancelFunc
	state     AppState
	mu        sync.RWMutex
	startTime time.Time

	version string
}

// NewBase registers every provider and resolves config and logger up
// front, so a broken config fails here rather than on first use
func NewBase(opts di.Options) (*BaseApplication, error) {
	injector := di.New()
	di.RegisterProviders(injector, opts)

	loader, err := do.Invoke[*config.Loader](injector)
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	if _, err := do.Invoke[*logger.Manager](injector); err != nil {
		return nil, fmt.Errorf("init logger failed: %w", err)
	}
	log, err := do.Invoke[*logger.CtxZapLogger](injector)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &BaseApplication{
		injector:  injector,
		loader:    loader,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		state:     StateInit,
		startTime: time.Now(),
	}, nil
}

func (b *BaseApplication) Injector() *do.RootScope {
	return b.injector
}

func (b *BaseApplication) ConfigLoader() *config.Loader {
	return b.loader
}

func (b *BaseApplication) Logger() *logger.CtxZapLogger {
	return b.log
}

// Context is cancelled when a shutdown signal arrives
func (b *BaseApplication) Context() context.Context {
	return b.ctx
}

func (b *BaseApplication) WithVersion(version string) *BaseApplication {
	b.version = version
	return b
}

func (b *BaseApplication) Version() string {
	return b.version
}

func (b *BaseApplication) State() AppState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *BaseApplication) setState(s AppState) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

func (b *BaseApplication) startupDuration() time.Duration {
	return time.Since(b.startTime)
}

// WaitShutdown blocks until SIGINT/SIGTERM or Cancel. A second signal
// exits immediately.
func (b *BaseApplication) WaitShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		b.log.InfoCtx(b.ctx, "shutdown signal received", zap.String("signal", sig.String()))
		b.cancel()
		go func() {
			sig := <-quit
			b.log.WarnCtx(context.Background(), "second signal received, forcing exit", zap.String("signal", sig.String()))
			os.Exit(1)
		}()
	case <-b.ctx.Done():
		b.log.DebugCtx(context.Background(), "context cancelled, shutting down")
	}
}

// Cancel triggers the same path as a shutdown signal
func (b *BaseApplication) Cancel() {
	b.cancel()
}

// Shutdown closes the container; every component implementing a do
// shutdowner (database, redis, cache store, telemetry, logger) is
// closed in reverse dependency order
func (b *BaseApplication) Shutdown() error {
	b.setState(StateStopping)
	defer b.setState(StateStopped)
	defer b.cancel()

	ctx := context.Background()
	b.log.DebugCtx(ctx, "shutting down components")
	var err error = b.injector.Shutdown()
	var report *do.ShutdownReport
	if err == nil || (errors.As(err, &report) && (report == nil || report.Succeed)) {
		return nil
	}
	b.log.ErrorCtx(ctx, "container shutdown failed", zap.Error(err))
	return fmt.Errorf("container shutdown failed: %w", err)
}
