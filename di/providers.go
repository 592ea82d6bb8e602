package di

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"github.com/KOMKZ/yogan-property/cache"
	"github.com/KOMKZ/yogan-property/component"
	"github.com/KOMKZ/yogan-property/config"
	"github.com/KOMKZ/yogan-property/database"
	"github.com/KOMKZ/yogan-property/health"
	"github.com/KOMKZ/yogan-property/logger"
	"github.com/KOMKZ/yogan-property/property"
	"github.com/KOMKZ/yogan-property/redis"
	"github.com/KOMKZ/yogan-property/telemetry"
)

// AppModule names the application logger
const AppModule = "propertyd"

// ProvideLoggerManager reads the `logger` section and installs the
// manager as the global one
func ProvideLoggerManager(i do.Injector) (*logger.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}

	cfg := logger.DefaultManagerConfig()
	if err := loader.UnmarshalKey("logger", &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	mgr := logger.NewManager(cfg)
	logger.SetGlobal(mgr)
	return mgr, nil
}

// ProvideCtxLogger returns a provider for the named module logger
func ProvideCtxLogger(module string) func(do.Injector) (*logger.CtxZapLogger, error) {
	return func(i do.Injector) (*logger.CtxZapLogger, error) {
		mgr, err := do.Invoke[*logger.Manager](i)
		if err != nil {
			return logger.GetLogger(module), nil
		}
		return mgr.GetLogger(module), nil
	}
}

func moduleLogger(i do.Injector, module string) *logger.CtxZapLogger {
	if mgr, err := do.Invoke[*logger.Manager](i); err == nil {
		return mgr.GetLogger(module)
	}
	return logger.GetLogger(module)
}

// ProvideTelemetryManager starts telemetry. Disabled telemetry still
// yields a manager backed by noop providers.
func ProvideTelemetryManager(i do.Injector) (*telemetry.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}

	cfg := telemetry.DefaultConfig()
	if err := loader.UnmarshalKey("telemetry", &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	mgr := telemetry.NewManager(cfg, moduleLogger(i, component.Telemetry))
	if err := mgr.Start(context.Background()); err != nil {
		return nil, err
	}
	return mgr, nil
}

// ProvideDatabaseManager opens every instance under `database.connections`
// and, when telemetry is on, traces their queries
func ProvideDatabaseManager(i do.Injector) (*database.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}

	var configs map[string]database.Config
	if err := loader.UnmarshalKey("database.connections", &configs); err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, ErrComponentNotFound("database.connections")
	}

	mgr, err := database.NewManager(configs, database.DefaultGormLoggerFactory, moduleLogger(i, component.Database))
	if err != nil {
		return nil, err
	}

	tm, err := do.Invoke[*telemetry.Manager](i)
	if err != nil {
		_ = mgr.Close()
		return nil, err
	}
	if tm.IsEnabled() {
		if err := mgr.UseTracing(tm.TracerProvider()); err != nil {
			_ = mgr.Close()
			return nil, err
		}
	}
	return mgr, nil
}

// ProvideRedisManager connects every instance under `redis.instances`.
// Without instances it returns a nil manager: Redis is optional when the
// cache runs in memory.
func ProvideRedisManager(i do.Injector) (*redis.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}

	var configs map[string]redis.Config
	if err := loader.UnmarshalKey("redis.instances", &configs); err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, nil
	}
	return redis.NewManager(context.Background(), configs, moduleLogger(i, component.Redis))
}

func ProvideCacheConfig(i do.Injector) (cache.Config, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return cache.Config{}, err
	}

	var cfg cache.Config
	if err := loader.UnmarshalKey("cache", &cfg); err != nil {
		return cache.Config{}, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cache.Config{}, err
	}
	return cfg, nil
}

// ProvideCacheStore builds the store shared by the listing accessor and
// the page cache
func ProvideCacheStore(i do.Injector) (cache.StatsStore, error) {
	cfg, err := do.Invoke[cache.Config](i)
	if err != nil {
		return nil, err
	}

	var clients cache.ClientProvider
	if cfg.Driver == cache.DriverRedis {
		mgr, err := do.Invoke[*redis.Manager](i)
		if err != nil {
			return nil, err
		}
		if mgr == nil {
			return nil, ErrComponentNotFound("redis.instances")
		}
		clients = mgr
	}

	store, err := cache.NewStore(cfg, clients)
	if err != nil {
		return nil, err
	}
	moduleLogger(i, component.Cache).DebugCtx(context.Background(), "cache store ready",
		zap.String("store", store.Name()))
	return store, nil
}

func ProvidePropertyConfig(i do.Injector) (property.Config, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return property.Config{}, err
	}

	cfg := property.DefaultConfig()
	if err := loader.UnmarshalKey("property", &cfg); err != nil {
		return property.Config{}, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return property.Config{}, err
	}
	return cfg, nil
}

func ProvidePropertyRepository(i do.Injector) (*property.Repository, error) {
	cfg, err := do.Invoke[property.Config](i)
	if err != nil {
		return nil, err
	}
	mgr, err := do.Invoke[*database.Manager](i)
	if err != nil {
		return nil, err
	}
	db := mgr.DB(cfg.Database)
	if db == nil {
		return nil, ErrComponentNotFound("database connection: " + cfg.Database)
	}
	return property.NewRepository(db), nil
}

func ProvidePropertyService(i do.Injector) (*property.Service, error) {
	cfg, err := do.Invoke[property.Config](i)
	if err != nil {
		return nil, err
	}
	repo, err := do.Invoke[*property.Repository](i)
	if err != nil {
		return nil, err
	}
	store, err := do.Invoke[cache.StatsStore](i)
	if err != nil {
		return nil, err
	}
	cacheCfg, err := do.Invoke[cache.Config](i)
	if err != nil {
		return nil, err
	}
	return property.NewService(repo, store, cfg, moduleLogger(i, component.Property), cacheCfg.ReadThroughOptions()...), nil
}

// ProvideCacheReporter exposes the service's reporter so telemetry can
// export it
func ProvideCacheReporter(i do.Injector) (*cache.MetricsReporter, error) {
	svc, err := do.Invoke[*property.Service](i)
	if err != nil {
		return nil, err
	}
	return svc.Reporter(), nil
}

// ProvideHealthAggregator registers a checker for each configured backend
func ProvideHealthAggregator(i do.Injector) (*health.Aggregator, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}

	cfg := health.DefaultConfig()
	if err := loader.UnmarshalKey("health", &cfg); err != nil {
		return nil, err
	}

	agg := health.NewAggregator(cfg.Timeout)
	if dbMgr, err := do.Invoke[*database.Manager](i); err == nil {
		agg.Register(database.NewHealthChecker(dbMgr))
	}
	if redisMgr, err := do.Invoke[*redis.Manager](i); err == nil && redisMgr != nil {
		agg.Register(redis.NewHealthChecker(redisMgr))
	}
	return agg, nil
}
