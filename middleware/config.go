// Package middleware holds the gin middleware every route runs through,
// plus the page cache that fronts the list endpoint.
package middleware

import (
	"github.com/KOMKZ/yogan-property/httpx"
)

// Config is the `middleware` section
type Config struct {
	TraceIDHeader string                   `mapstructure:"trace_id_header"`
	RequestLog    RequestLogConfig         `mapstructure:"request_log"`
	ErrorLogging  httpx.ErrorLoggingConfig `mapstructure:"error_logging"`

	// false serves every list request from the data cache or origin
	PageCache bool `mapstructure:"page_cache"`
}

func DefaultConfig() Config {
	return Config{
		TraceIDHeader: TraceIDHeaderDefault,
		RequestLog:    DefaultRequestLogConfig(),
		ErrorLogging:  httpx.DefaultErrorLoggingConfig(),
		PageCache:     true,
	}
}

func (c *Config) ApplyDefaults() {
	if c.TraceIDHeader == "" {
		c.TraceIDHeader = TraceIDHeaderDefault
	}
	if c.ErrorLogging.LogLevel == "" {
		c.ErrorLogging.LogLevel = "error"
	}
}
