package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/KOMKZ/yogan-property/component"
	"github.com/KOMKZ/yogan-property/logger"
)

// GormLoggerFactory builds the SQL logger for one instance
type GormLoggerFactory func(cfg Config) gormlogger.Interface

// DefaultGormLoggerFactory writes SQL logs to the logger.SQLModule module
func DefaultGormLoggerFactory(cfg Config) gormlogger.Interface {
	return logger.NewGormLogger(nil, cfg.GormLoggerConfig())
}

// Manager owns every configured GORM instance by name
type Manager struct {
	mu            sync.RWMutex
	instances     map[string]*gorm.DB
	configs       map[string]Config
	loggerFactory GormLoggerFactory
	log           logger.CtxLogger
}

var _ component.MetricsProvider = (*Manager)(nil)

// NewManager opens every instance. A nil loggerFactory silences GORM.
func NewManager(configs map[string]Config, loggerFactory GormLoggerFactory, log logger.CtxLogger) (*Manager, error) {
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	m := &Manager{
		instances:     make(map[string]*gorm.DB, len(configs)),
		configs:       make(map[string]Config, len(configs)),
		loggerFactory: loggerFactory,
		log:           log,
	}

	for name, cfg := range configs {
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("invalid config for %s: %w", name, err)
		}

		db, err := m.openDB(cfg)
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("failed to open database %s: %w", name, err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("failed to get sql.DB for %s: %w", name, err)
		}
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

		m.instances[name] = db
		m.configs[name] = cfg

		log.DebugCtx(context.Background(), "database connected",
			zap.String("name", name),
			zap.String("driver", cfg.Driver))
	}
	return m, nil
}

func (m *Manager) openDB(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	var gormLogger gormlogger.Interface
	if m.loggerFactory != nil {
		gormLogger = m.loggerFactory(cfg)
	} else {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	return gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
}

// DB returns the named instance, or nil when it is not configured
func (m *Manager) DB(name string) *gorm.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[name]
}

// Names lists configured instances in sorted order
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.instances))
	for name := range m.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ping checks every instance and reports the first failure
func (m *Manager) Ping(ctx context.Context) error {
	for _, name := range m.Names() {
		db := m.DB(name)
		if db == nil {
			continue
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB for %s: %w", name, err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database %s failed: %w", name, err)
		}
	}
	return nil
}

// Stats returns the connection pool statistics of one instance
func (m *Manager) Stats(name string) (sql.DBStats, error) {
	db := m.DB(name)
	if db == nil {
		return sql.DBStats{}, fmt.Errorf("%w: %s", ErrInstanceNotFound, name)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return sql.DBStats{}, err
	}
	return sqlDB.Stats(), nil
}

// UseTracing installs a span-per-statement plugin on every instance
func (m *Manager) UseTracing(tp trace.TracerProvider) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, db := range m.instances {
		cfg := m.configs[name]
		plugin := NewTracingPlugin(tp).WithTraceSQL(cfg.TraceSQL).WithSQLMaxLen(cfg.TraceSQLMaxLen)
		if err := db.Use(plugin); err != nil {
			return fmt.Errorf("failed to register tracing plugin for %s: %w", name, err)
		}
		m.log.DebugCtx(context.Background(), "database tracing enabled", zap.String("name", name))
	}
	return nil
}

func (m *Manager) MetricsName() string {
	return component.Database
}

// RegisterMetrics installs query instruments on every instance and
// observes the connection pools
func (m *Manager) RegisterMetrics(meter metric.Meter) error {
	inst, err := newQueryInstruments(meter)
	if err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, db := range m.instances {
		slow := m.configs[name].SlowThreshold.Seconds()
		if err := db.Use(newMetricsPlugin(inst, name, slow)); err != nil {
			return fmt.Errorf("failed to register metrics plugin for %s: %w", name, err)
		}
	}
	return registerPoolGauges(meter, m)
}

// Close closes every instance; the manager is unusable afterwards
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, db := range m.instances {
		sqlDB, err := db.DB()
		if err != nil {
			errs = append(errs, fmt.Errorf("get sql.DB %s: %w", name, err))
			continue
		}
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database %s: %w", name, err))
			continue
		}
		m.log.DebugCtx(context.Background(), "database closed", zap.String("name", name))
	}
	m.instances = make(map[string]*gorm.DB)
	return errors.Join(errs...)
}

// Shutdown implements do.ShutdownerWithError
func (m *Manager) Shutdown() error {
	return m.Close()
}
