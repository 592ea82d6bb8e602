// Package telemetry owns the OpenTelemetry tracer and meter providers and
// registers every component's instruments on them.
package telemetry

import (
	"fmt"
	"time"
)

const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
	ExporterNoop   = "noop"
)

// Config is the `telemetry` section
type Config struct {
	Enabled        bool                   `mapstructure:"enabled"`
	ServiceName    string                 `mapstructure:"service_name"`
	ServiceVersion string                 `mapstructure:"service_version"`
	ResourceAttrs  map[string]interface{} `mapstructure:"resource_attributes"`
	Traces         TracesConfig           `mapstructure:"traces"`
	Metrics        MetricsConfig          `mapstructure:"metrics"`
}

type TracesConfig struct {
	// stdout or noop
	Exporter string        `mapstructure:"exporter"`
	Sampler  SamplerConfig `mapstructure:"sampler"`
	Batch    bool          `mapstructure:"batch"`
}

type SamplerConfig struct {
	// always_on, always_off, trace_id_ratio or parent_based_always_on
	Type  string  `mapstructure:"type"`
	Ratio float64 `mapstructure:"ratio"`
}

type MetricsConfig struct {
	Enabled        bool           `mapstructure:"enabled"`
	Exporter       ExporterConfig `mapstructure:"exporter"`
	ExportInterval time.Duration  `mapstructure:"export_interval"`
	ExportTimeout  time.Duration  `mapstructure:"export_timeout"`
	Namespace      string         `mapstructure:"namespace"`
}

type ExporterConfig struct {
	// otlp, stdout or noop
	Type     string            `mapstructure:"type"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Timeout  time.Duration     `mapstructure:"timeout"`
	Headers  map[string]string `mapstructure:"headers"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "propertyd",
		ServiceVersion: "dev",
		Traces: TracesConfig{
			Exporter: ExporterStdout,
			Sampler:  SamplerConfig{Type: "parent_based_always_on", Ratio: 1},
			Batch:    true,
		},
		Metrics: MetricsConfig{
			Enabled:        true,
			Exporter:       ExporterConfig{Type: ExporterStdout, Timeout: 10 * time.Second},
			ExportInterval: time.Minute,
			ExportTimeout:  30 * time.Second,
			Namespace:      "property",
		},
	}
}

func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.ServiceName == "" {
		c.ServiceName = def.ServiceName
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = def.ServiceVersion
	}
	if c.Traces.Exporter == "" {
		c.Traces.Exporter = def.Traces.Exporter
	}
	if c.Traces.Sampler.Type == "" {
		c.Traces.Sampler = def.Traces.Sampler
	}
	if c.Metrics.Exporter.Type == "" {
		c.Metrics.Exporter.Type = def.Metrics.Exporter.Type
	}
	if c.Metrics.Exporter.Timeout <= 0 {
		c.Metrics.Exporter.Timeout = def.Metrics.Exporter.Timeout
	}
	if c.Metrics.ExportInterval <= 0 {
		c.Metrics.ExportInterval = def.Metrics.ExportInterval
	}
	if c.Metrics.ExportTimeout <= 0 {
		c.Metrics.ExportTimeout = def.Metrics.ExportTimeout
	}
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ServiceName == "" {
		return fmt.Errorf("service_name cannot be empty")
	}
	switch c.Traces.Exporter {
	case ExporterStdout, ExporterNoop:
	default:
		return fmt.Errorf("unsupported trace exporter: %s", c.Traces.Exporter)
	}
	switch c.Metrics.Exporter.Type {
	case ExporterStdout, ExporterNoop:
	case ExporterOTLP:
		if c.Metrics.Exporter.Endpoint == "" {
			return fmt.Errorf("metrics exporter endpoint is required for otlp")
		}
	default:
		return fmt.Errorf("unsupported metrics exporter: %s", c.Metrics.Exporter.Type)
	}
	if c.Traces.Sampler.Type == "trace_id_ratio" && (c.Traces.Sampler.Ratio < 0 || c.Traces.Sampler.Ratio > 1) {
		return fmt.Errorf("sampler ratio must be within [0, 1], got %v", c.Traces.Sampler.Ratio)
	}
	return nil
}
