package di

import (
	"github.com/samber/do/v2"
	"github.com/spf13/pflag"

	"github.com/KOMKZ/yogan-property/config"
)

// Options selects where configuration comes from
type Options struct {
	ConfigPath   string
	EnvPrefix    string
	Flags        *pflag.FlagSet
	FlagBindings map[string]string
}

// RegisterProviders registers all providers by dependency layer
func RegisterProviders(injector *do.RootScope, opts Options) {
	// layer 0: config
	do.Provide(injector, config.ProvideLoader(config.ProvideLoaderOptions{
		ConfigPath:   opts.ConfigPath,
		EnvPrefix:    opts.EnvPrefix,
		Flags:        opts.Flags,
		FlagBindings: opts.FlagBindings,
	}))

	// layer 1: logging
	do.Provide(injector, ProvideLoggerManager)
	do.Provide(injector, ProvideCtxLogger(AppModule))

	// layer 2: infrastructure
	do.Provide(injector, ProvideTelemetryManager)
	do.Provide(injector, ProvideDatabaseManager)
	do.Provide(injector, ProvideRedisManager)
	do.Provide(injector, ProvideCacheConfig)
	do.Provide(injector, ProvideCacheStore)

	// layer 3: business
	do.Provide(injector, ProvidePropertyConfig)
	do.Provide(injector, ProvidePropertyRepository)
	do.Provide(injector, ProvidePropertyService)
	do.Provide(injector, ProvideCacheReporter)

	// layer 4: health
	do.Provide(injector, ProvideHealthAggregator)
}
