package config

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/pflag"
)

// ProvideLoaderOptions configures ProvideLoader
type ProvideLoaderOptions struct {
	ConfigPath   string
	EnvPrefix    string
	Flags        *pflag.FlagSet
	FlagBindings map[string]string
}

// ProvideLoader returns a do provider for *Loader. The loader has no
// dependencies and sits at the bottom of the graph.
//
//	do.Provide(injector, config.ProvideLoader(config.ProvideLoaderOptions{
//	    ConfigPath: "configs/propertyd",
//	    EnvPrefix:  "APP",
//	}))
func ProvideLoader(opts ProvideLoaderOptions) func(do.Injector) (*Loader, error) {
	return func(do.Injector) (*Loader, error) {
		if opts.ConfigPath == "" {
			opts.ConfigPath = "configs/propertyd"
		}
		loader, err := NewLoaderBuilder().
			WithConfigPath(opts.ConfigPath).
			WithEnvPrefix(opts.EnvPrefix).
			WithFlags(opts.Flags, opts.FlagBindings).
			Build()
		if err != nil {
			return nil, fmt.Errorf("config loader build failed: %w", err)
		}
		return loader, nil
	}
}
