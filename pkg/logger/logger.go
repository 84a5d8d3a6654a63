package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package-level leveled logger used by the whole service, backed by zap.
// Init can be called early during startup to set the level (LOG_LEVEL env:
// debug|info|warn|error|fatal); the default is Info.

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar = build()
)

func build() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// zap only fails on invalid config
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "warn", "warning":
		level.SetLevel(zapcore.WarnLevel)
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	case "fatal":
		level.SetLevel(zapcore.FatalLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

func Debugf(format string, v ...interface{}) { sugar.Debugf(format, v...) }
func Infof(format string, v ...interface{})  { sugar.Infof(format, v...) }
func Warnf(format string, v ...interface{})  { sugar.Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { sugar.Errorf(format, v...) }
func Fatalf(format string, v ...interface{}) { sugar.Fatalf(format, v...) }

// Single-string helpers kept for brief messages.
func Debug(v string) { sugar.Debug(v) }
func Info(v string)  { sugar.Info(v) }
func Warn(v string)  { sugar.Warn(v) }
func Error(v string) { sugar.Error(v) }

// Sync flushes buffered entries; call on shutdown.
func Sync() { _ = sugar.Sync() }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	return level.Level().String()
}
