package application

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/KOMKZ/yogan-property/di"
)

// EnvPrefix prefixes every environment override, e.g. APP_API_SERVER__PORT
const EnvPrefix = "APP"

// AppFlags are the flags every command accepts
type AppFlags struct {
	ConfigDir string
	Env       string
}

// Register adds --config-dir and --env to fs
func (f *AppFlags) Register(fs *pflag.FlagSet, defaultConfigDir string) {
	fs.StringVar(&f.ConfigDir, "config-dir", defaultConfigDir, "configuration directory")
	fs.StringVar(&f.Env, "env", "", "environment overlay to load, <env>.yaml (defaults to APP_ENV)")
}

// RegisterServeFlags adds the server overrides and returns their config bindings
func RegisterServeFlags(fs *pflag.FlagSet) map[string]string {
	fs.Int("port", 0, "listen port (overrides api_server.port)")
	fs.String("host", "", "listen host (overrides api_server.host)")
	fs.String("mode", "", "gin mode: debug, release or test")
	return map[string]string{
		"port": "api_server.port",
		"host": "api_server.host",
		"mode": "api_server.mode",
	}
}

// Options turns the flags into container options. --env is exported as
// APP_ENV so the loader picks the overlay up.
func (f *AppFlags) Options(fs *pflag.FlagSet, bindings map[string]string) di.Options {
	if f.Env != "" {
		_ = os.Setenv("APP_ENV", f.Env)
	}
	return di.Options{
		ConfigPath:   f.ConfigDir,
		EnvPrefix:    EnvPrefix,
		Flags:        fs,
		FlagBindings: bindings,
	}
}
