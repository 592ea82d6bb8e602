package application

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KOMKZ/yogan-property/config"
	"github.com/KOMKZ/yogan-property/middleware"
)

// AppConfig holds the sections the application itself reads. Component
// sections (database, redis, cache, property, telemetry) are read by
// their providers.
type AppConfig struct {
	ApiServer  ApiServerConfig   `mapstructure:"api_server"`
	Middleware middleware.Config `mapstructure:"middleware"`
	MetricsJob MetricsJobConfig  `mapstructure:"metrics_job"`
}

type ApiServerConfig struct {
	Host string `mapstructure:"host"`
	// 0 picks a free port
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MetricsJobConfig drives the periodic cache metrics log
type MetricsJobConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		ApiServer: ApiServerConfig{
			Port:            8080,
			Mode:            gin.ReleaseMode,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Middleware: middleware.DefaultConfig(),
		MetricsJob: MetricsJobConfig{Enabled: false, Interval: time.Minute},
	}
}

func (c *AppConfig) ApplyDefaults() {
	def := DefaultAppConfig()
	if c.ApiServer.Mode == "" {
		c.ApiServer.Mode = def.ApiServer.Mode
	}
	if c.ApiServer.ReadTimeout <= 0 {
		c.ApiServer.ReadTimeout = def.ApiServer.ReadTimeout
	}
	if c.ApiServer.WriteTimeout <= 0 {
		c.ApiServer.WriteTimeout = def.ApiServer.WriteTimeout
	}
	if c.ApiServer.ShutdownTimeout <= 0 {
		c.ApiServer.ShutdownTimeout = def.ApiServer.ShutdownTimeout
	}
	if c.MetricsJob.Interval <= 0 {
		c.MetricsJob.Interval = def.MetricsJob.Interval
	}
	c.Middleware.ApplyDefaults()
}

func (c AppConfig) Validate() error {
	if c.ApiServer.Port < 0 || c.ApiServer.Port > 65535 {
		return fmt.Errorf("api_server.port out of range: %d", c.ApiServer.Port)
	}
	switch c.ApiServer.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("invalid api_server.mode: %s", c.ApiServer.Mode)
	}
	if c.MetricsJob.Enabled && c.MetricsJob.Interval < time.Second {
		return fmt.Errorf("metrics_job.interval must be at least 1s, got %s", c.MetricsJob.Interval)
	}
	return nil
}

// LoadAppConfig reads the application sections on top of the defaults
func LoadAppConfig(loader *config.Loader) (AppConfig, error) {
	cfg := DefaultAppConfig()
	for key, out := range map[string]interface{}{
		"api_server":  &cfg.ApiServer,
		"middleware":  &cfg.Middleware,
		"metrics_job": &cfg.MetricsJob,
	} {
		if err := loader.UnmarshalKey(key, out); err != nil {
			return AppConfig{}, err
		}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
