package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/KOMKZ/yogan-property/component"
	"github.com/KOMKZ/yogan-property/logger"
)

// Manager owns every configured client, standalone or cluster, by name
type Manager struct {
	mu      sync.RWMutex
	clients map[string]redis.UniversalClient
	configs map[string]Config
	log     logger.CtxLogger
}

var (
	_ component.MetricsProvider = (*Manager)(nil)
)

// NewManager connects every instance and pings it. On any failure the
// clients opened so far are closed.
func NewManager(ctx context.Context, configs map[string]Config, log logger.CtxLogger) (*Manager, error) {
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	m := &Manager{
		clients: make(map[string]redis.UniversalClient, len(configs)),
		configs: make(map[string]Config, len(configs)),
		log:     log,
	}

	for name, cfg := range configs {
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("invalid redis config %s: %w", name, err)
		}

		client := newClient(cfg)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			_ = m.Close()
			return nil, fmt.Errorf("ping redis %s failed: %w", name, err)
		}

		m.clients[name] = client
		m.configs[name] = cfg
		log.DebugCtx(ctx, "redis connected",
			zap.String("name", name),
			zap.String("mode", cfg.Mode),
			zap.Strings("addrs", cfg.Addrs))
	}
	return m, nil
}

func newClient(cfg Config) redis.UniversalClient {
	if cfg.Mode == ModeCluster {
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        cfg.Addrs,
			Password:     cfg.Password,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			MaxRetries:   cfg.MaxRetries,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
	}
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addrs[0],
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// Client returns the named client, or nil when it is not configured
func (m *Manager) Client(name string) redis.UniversalClient {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[name]
	if !ok {
		return nil
	}
	return c
}

// Names lists configured instances in sorted order
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ping checks every instance and reports the first failure
func (m *Manager) Ping(ctx context.Context) error {
	for _, name := range m.Names() {
		if err := m.Client(name).Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis %s failed: %w", name, err)
		}
	}
	return nil
}

func (m *Manager) MetricsName() string {
	return component.Redis
}

// RegisterMetrics attaches a command metrics hook to every client
func (m *Manager) RegisterMetrics(meter metric.Meter) error {
	inst, err := newCommandInstruments(meter)
	if err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, client := range m.clients {
		client.AddHook(newMetricsHook(inst, name))
	}
	return nil
}

// Close closes every client; the manager is unusable afterwards
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, client := range m.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis %s: %w", name, err))
		}
	}
	m.clients = make(map[string]redis.UniversalClient)
	return errors.Join(errs...)
}

// Shutdown implements do.ShutdownerWithError
func (m *Manager) Shutdown() error {
	return m.Close()
}
