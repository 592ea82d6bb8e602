package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// SQLModule is the logger module every SQL statement is written to
const SQLModule = "property_sql"

// GormLogger routes GORM logging into a CtxLogger (implements gorm logger.Interface)
type GormLogger struct {
	log           CtxLogger
	slowThreshold time.Duration
	level         gormlogger.LogLevel
	audit         bool
}

// GormLoggerConfig tunes slow-query detection and audit logging
type GormLoggerConfig struct {
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
	EnableAudit   bool
}

func DefaultGormLoggerConfig() GormLoggerConfig {
	return GormLoggerConfig{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormlogger.Warn,
		EnableAudit:   false,
	}
}

// NewGormLogger creates a GORM logger; a nil log falls back to SQLModule
func NewGormLogger(log CtxLogger, cfg GormLoggerConfig) *GormLogger {
	if log == nil {
		log = GetLogger(SQLModule)
	}
	return &GormLogger{
		log:           log,
		slowThreshold: cfg.SlowThreshold,
		level:         cfg.LogLevel,
		audit:         cfg.EnableAudit,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.DebugCtx(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.WarnCtx(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.ErrorCtx(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace logs each executed statement: errors, slow queries, then audit
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	}

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		l.log.ErrorCtx(ctx, "sql error", append(fields, zap.Error(err))...)
	case l.slowThreshold != 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		fields = append(fields, zap.Duration("threshold", l.slowThreshold))
		if elapsed > l.slowThreshold*2 {
			l.log.ErrorCtx(ctx, "severe slow query", fields...)
		} else {
			l.log.WarnCtx(ctx, "slow query", fields...)
		}
	case l.audit && l.level >= gormlogger.Info:
		l.log.DebugCtx(ctx, "sql executed", fields...)
	}
}
