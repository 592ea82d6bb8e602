package logger

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

var (
	validLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validEncodings = []string{"json", "console"}
)

// ManagerConfig is the `logger` section shared by every module logger
type ManagerConfig struct {
	BaseLogDir string `mapstructure:"base_log_dir"`
	Level      string `mapstructure:"level"`
	// AppName is injected into every entry, even when empty
	AppName         string `mapstructure:"app_name"`
	Encoding        string `mapstructure:"encoding"`
	ConsoleEncoding string `mapstructure:"console_encoding"`
	EnableConsole   bool   `mapstructure:"enable_console"`
	EnableFile      bool   `mapstructure:"enable_file"`

	EnableLevelInFilename bool   `mapstructure:"enable_level_in_filename"`
	EnableDateInFilename  bool   `mapstructure:"enable_date_in_filename"`
	DateFormat            string `mapstructure:"date_format"`

	// lumberjack rotation: size in MB, age in days
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`

	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
	StacktraceLevel  string `mapstructure:"stacktrace_level"`
	StacktraceDepth  int    `mapstructure:"stacktrace_depth"` // 0 = unlimited

	EnableTraceID    bool   `mapstructure:"enable_trace_id"`
	TraceIDFieldName string `mapstructure:"trace_id_field_name"`
}

// DefaultManagerConfig returns the configuration used when the section is absent
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		BaseLogDir:            "logs",
		Level:                 "info",
		Encoding:              "json",
		EnableConsole:         true,
		EnableFile:            true,
		EnableLevelInFilename: true,
		EnableDateInFilename:  true,
		DateFormat:            "2006-01-02",
		MaxSize:               100,
		MaxBackups:            3,
		MaxAge:                28,
		Compress:              true,
		EnableCaller:          true,
		EnableStacktrace:      true,
		StacktraceLevel:       "error",
		StacktraceDepth:       5,
		EnableTraceID:         true,
		TraceIDFieldName:      "trace_id",
	}
}

// ApplyDefaults fills zero-valued fields in place.
// Booleans are left alone: false cannot be told apart from unset.
func (c *ManagerConfig) ApplyDefaults() {
	d := DefaultManagerConfig()
	if c.BaseLogDir == "" {
		c.BaseLogDir = d.BaseLogDir
	}
	if c.Level == "" {
		c.Level = d.Level
	}
	if c.Encoding == "" {
		c.Encoding = d.Encoding
	}
	if c.DateFormat == "" {
		c.DateFormat = d.DateFormat
	}
	if c.StacktraceLevel == "" {
		c.StacktraceLevel = d.StacktraceLevel
	}
	if c.TraceIDFieldName == "" {
		c.TraceIDFieldName = d.TraceIDFieldName
	}
	if c.MaxSize == 0 {
		c.MaxSize = d.MaxSize
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = d.MaxBackups
	}
	if c.MaxAge == 0 {
		c.MaxAge = d.MaxAge
	}
}

// Validate checks enum and range fields
func (c ManagerConfig) Validate() error {
	if !slices.Contains(validLevels, c.Level) {
		return fmt.Errorf("invalid log level: %s (valid values: %v)", c.Level, validLevels)
	}
	if !slices.Contains(validEncodings, c.Encoding) {
		return fmt.Errorf("invalid log encoding: %s (valid values: %v)", c.Encoding, validEncodings)
	}
	if c.ConsoleEncoding != "" && !slices.Contains(validEncodings, c.ConsoleEncoding) {
		return fmt.Errorf("invalid console encoding: %s (valid values: %v)", c.ConsoleEncoding, validEncodings)
	}
	if c.MaxSize < 1 || c.MaxSize > 10000 {
		return fmt.Errorf("max_size must be between 1-10000 MB, current: %d", c.MaxSize)
	}
	if c.MaxBackups < 0 || c.MaxBackups > 1000 {
		return fmt.Errorf("max_backups must be between 0-1000, current: %d", c.MaxBackups)
	}
	if c.MaxAge < 0 || c.MaxAge > 3650 {
		return fmt.Errorf("max_age must be between 0-3650 days, current: %d", c.MaxAge)
	}
	if !slices.Contains(validLevels, c.StacktraceLevel) {
		return fmt.Errorf("invalid stacktrace level: %s (valid values: %v)", c.StacktraceLevel, validLevels)
	}
	return nil
}

// ParseLevel maps a level name to zap, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// filePath builds logs/<module>/<module>[-level][-date].log
func (c ManagerConfig) filePath(module, level string, now time.Time) string {
	parts := []string{module}
	if c.EnableLevelInFilename {
		parts = append(parts, level)
	}
	if c.EnableDateInFilename {
		parts = append(parts, now.Format(c.DateFormat))
	}
	return filepath.Join(c.BaseLogDir, module, strings.Join(parts, "-")+".log")
}
