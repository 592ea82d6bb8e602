package logger

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager owns one zap logger per module. Each module writes its own
// info and error files under BaseLogDir/<module>/.
type Manager struct {
	cfg     ManagerConfig
	mu      sync.RWMutex
	loggers map[string]*CtxZapLogger
	writers []*lumberjack.Logger
	syncers []*zap.Logger
}

var (
	globalManager *Manager
	globalMu      sync.RWMutex
)

// NewManager creates a manager; zero-valued fields take defaults
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		cfg:     cfg,
		loggers: make(map[string]*CtxZapLogger),
	}
}

// SetGlobal makes m the manager behind the package-level helpers
func SetGlobal(m *Manager) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalManager = m
}

func global() *Manager {
	globalMu.RLock()
	m := globalManager
	globalMu.RUnlock()
	if m != nil {
		return m
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalManager == nil {
		cfg := DefaultManagerConfig()
		cfg.EnableFile = false
		globalManager = NewManager(cfg)
	}
	return globalManager
}

// Config returns the effective configuration
func (m *Manager) Config() ManagerConfig {
	return m.cfg
}

// GetLogger returns the module logger, creating it on first use
func (m *Manager) GetLogger(module string) *CtxZapLogger {
	m.mu.RLock()
	l, ok := m.loggers[module]
	m.mu.RUnlock()
	if ok {
		return l
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[module]; ok {
		return l
	}

	base := m.buildLogger(module).With(zap.String("module", module))
	m.syncers = append(m.syncers, base)
	l = &CtxZapLogger{
		base:   base.WithOptions(zap.AddCallerSkip(1)),
		module: module,
		config: &m.cfg,
	}
	m.loggers[module] = l
	return l
}

// buildLogger must be called with m.mu held
func (m *Manager) buildLogger(module string) *zap.Logger {
	level := ParseLevel(m.cfg.Level)
	encoder := newEncoder(m.cfg.Encoding)
	var cores []zapcore.Core

	if m.cfg.EnableConsole {
		consoleEnc := encoder
		if m.cfg.ConsoleEncoding != "" && m.cfg.ConsoleEncoding != m.cfg.Encoding {
			consoleEnc = newEncoder(m.cfg.ConsoleEncoding)
		}
		cores = append(cores, zapcore.NewCore(consoleEnc, zapcore.AddSync(os.Stdout), level))
	}

	if m.cfg.EnableFile {
		now := time.Now()
		info := m.newFileWriter(m.cfg.filePath(module, "info", now))
		errw := m.newFileWriter(m.cfg.filePath(module, "error", now))
		cores = append(cores,
			zapcore.NewCore(encoder, info, zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= level && lvl < zapcore.ErrorLevel
			})),
			zapcore.NewCore(encoder, errw, zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= zapcore.ErrorLevel
			})),
		)
	}

	var opts []zap.Option
	if m.cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...)
}

func (m *Manager) newFileWriter(filename string) zapcore.WriteSyncer {
	_ = os.MkdirAll(filepath.Dir(filename), 0o755)
	lj := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    m.cfg.MaxSize,
		MaxBackups: m.cfg.MaxBackups,
		MaxAge:     m.cfg.MaxAge,
		Compress:   m.cfg.Compress,
		LocalTime:  true,
	}
	m.writers = append(m.writers, lj)
	return zapcore.AddSync(lj)
}

// CloseAll flushes buffers and closes every file handle
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.syncers {
		_ = l.Sync()
	}
	for _, w := range m.writers {
		_ = w.Close()
	}
	m.loggers = make(map[string]*CtxZapLogger)
	m.writers = nil
	m.syncers = nil
}

// Shutdown implements do.Shutdowner
func (m *Manager) Shutdown() {
	m.CloseAll()
}

func newEncoder(encoding string) zapcore.Encoder {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		CallerKey:      "caller",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if encoding == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewJSONEncoder(encCfg)
}

// GetLogger returns a module logger from the global manager
func GetLogger(module string) *CtxZapLogger {
	return global().GetLogger(module)
}

// CloseAll closes the global manager
func CloseAll() {
	globalMu.RLock()
	m := globalManager
	globalMu.RUnlock()
	if m != nil {
		m.CloseAll()
	}
}

func DebugCtx(ctx context.Context, module, msg string, fields ...zap.Field) {
	GetLogger(module).DebugCtx(ctx, msg, fields...)
}

func InfoCtx(ctx context.Context, module, msg string, fields ...zap.Field) {
	GetLogger(module).InfoCtx(ctx, msg, fields...)
}

func WarnCtx(ctx context.Context, module, msg string, fields ...zap.Field) {
	GetLogger(module).WarnCtx(ctx, msg, fields...)
}

func ErrorCtx(ctx context.Context, module, msg string, fields ...zap.Field) {
	GetLogger(module).ErrorCtx(ctx, msg, fields...)
}
