// Package database opens the named GORM connections the record store reads from.
package database

import (
	"fmt"
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/KOMKZ/yogan-property/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config describes one instance under `database.<name>`
type Config struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	// silent, error, warn or info
	LogLevel      string        `mapstructure:"log_level"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
	EnableAudit   bool          `mapstructure:"enable_audit"`

	// statement text on spans is off unless asked for
	TraceSQL       bool `mapstructure:"trace_sql"`
	TraceSQLMaxLen int  `mapstructure:"trace_sql_max_len"`
}

func DefaultConfig() Config {
	return Config{
		Driver:          DriverMySQL,
		MaxOpenConns:    100,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		LogLevel:        "warn",
		SlowThreshold:   200 * time.Millisecond,
		TraceSQLMaxLen:  1000,
	}
}

func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.Driver == "" {
		c.Driver = def.Driver
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = def.MaxOpenConns
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = def.MaxIdleConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = def.ConnMaxLifetime
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.SlowThreshold <= 0 {
		c.SlowThreshold = def.SlowThreshold
	}
	if c.TraceSQLMaxLen <= 0 {
		c.TraceSQLMaxLen = def.TraceSQLMaxLen
	}
}

func (c Config) Validate() error {
	switch c.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: unsupported driver %q", ErrInvalidConfig, c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("%w: dsn cannot be empty", ErrInvalidConfig)
	}
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("%w: invalid log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("%w: max_idle_conns (%d) exceeds max_open_conns (%d)",
			ErrInvalidConfig, c.MaxIdleConns, c.MaxOpenConns)
	}
	return nil
}

var logLevels = map[string]gormlogger.LogLevel{
	"silent": gormlogger.Silent,
	"error":  gormlogger.Error,
	"warn":   gormlogger.Warn,
	"info":   gormlogger.Info,
}

// GormLoggerConfig maps the section onto the SQL logger settings
func (c Config) GormLoggerConfig() logger.GormLoggerConfig {
	return logger.GormLoggerConfig{
		SlowThreshold: c.SlowThreshold,
		LogLevel:      logLevels[strings.ToLower(c.LogLevel)],
		EnableAudit:   c.EnableAudit,
	}
}
