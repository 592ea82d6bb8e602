package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
)

// LoaderBuilder wires the standard source stack:
// config.yaml < <env>.yaml < PREFIX_* env vars < changed flags
type LoaderBuilder struct {
	configPath   string
	envPrefix    string
	flags        *pflag.FlagSet
	flagBindings map[string]string
}

func NewLoaderBuilder() *LoaderBuilder {
	return &LoaderBuilder{}
}

func (b *LoaderBuilder) WithConfigPath(path string) *LoaderBuilder {
	b.configPath = path
	return b
}

func (b *LoaderBuilder) WithEnvPrefix(prefix string) *LoaderBuilder {
	b.envPrefix = prefix
	return b
}

// WithFlags binds flag names to config keys
func (b *LoaderBuilder) WithFlags(flags *pflag.FlagSet, bindings map[string]string) *LoaderBuilder {
	b.flags = flags
	b.flagBindings = bindings
	return b
}

func (b *LoaderBuilder) Build() (*Loader, error) {
	loader := NewLoader()

	if b.configPath != "" {
		loader.AddSource(NewFileSource(filepath.Join(b.configPath, "config.yaml"), PriorityFile))
		if env := GetEnv(); env != "" {
			loader.AddSource(NewFileSource(filepath.Join(b.configPath, env+".yaml"), PriorityEnvFile))
		}
	}
	if b.envPrefix != "" {
		loader.AddSource(NewEnvSource(b.envPrefix, PriorityEnv))
	}
	if b.flags != nil {
		loader.AddSource(NewFlagSource(b.flags, b.flagBindings, PriorityFlag))
	}

	if err := loader.Load(); err != nil {
		return nil, err
	}
	return loader, nil
}

// GetEnv returns APP_ENV, then ENV, then "dev"
func GetEnv() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "dev"
}
