// Package logger provides the process-wide structured logger for the jobs server.
// It wraps a zap SugaredLogger and exposes printf-style and key/value helpers.
package logger

import (
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global atomic.Pointer[zap.SugaredLogger]

func init() {
	global.Store(newSugared(zapcore.InfoLevel, os.Stderr))
}

// ParseLevel converts a textual level into a zap level.
// Unknown values fall back to info and report ok=false.
func ParseLevel(level string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info", "":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// Initialize replaces the global logger with one writing JSON to stderr at the given level.
func Initialize(level string) {
	lvl, ok := ParseLevel(level)
	global.Store(newSugared(lvl, os.Stderr))
	if !ok {
		Warnf("Invalid log level %q, using info", level)
	}
}

// Set replaces the global logger. Mostly useful in tests.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	global.Store(l.Sugar())
}

// Get returns the current global logger.
func Get() *zap.SugaredLogger {
	return global.Load()
}

// With returns a child logger carrying the given key/value pairs.
func With(keysAndValues ...any) *zap.SugaredLogger {
	return Get().With(keysAndValues...)
}

func newSugared(level zapcore.Level, out zapcore.WriteSyncer) *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.Lock(out), level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

// Debug logs a message at debug level
func Debug(msg string) { Get().Debug(msg) }

// Debugf logs a formatted message at debug level
func Debugf(msg string, args ...any) { Get().Debugf(msg, args...) }

// Debugw logs a message with key/value pairs at debug level
func Debugw(msg string, keysAndValues ...any) { Get().Debugw(msg, keysAndValues...) }

// Info logs a message at info level
func Info(msg string) { Get().Info(msg) }

// Infof logs a formatted message at info level
func Infof(msg string, args ...any) { Get().Infof(msg, args...) }

// Infow logs a message with key/value pairs at info level
func Infow(msg string, keysAndValues ...any) { Get().Infow(msg, keysAndValues...) }

// Warn logs a message at warn level
func Warn(msg string) { Get().Warn(msg) }

// Warnf logs a formatted message at warn level
func Warnf(msg string, args ...any) { Get().Warnf(msg, args...) }

// Warnw logs a message with key/value pairs at warn level
func Warnw(msg string, keysAndValues ...any) { Get().Warnw(msg, keysAndValues...) }

// Error logs a message at error level
func Error(msg string) { Get().Error(msg) }

// Errorf logs a formatted message at error level
func Errorf(msg string, args ...any) { Get().Errorf(msg, args...) }

// Errorw logs a message with key/value pairs at error level
func Errorw(msg string, keysAndValues ...any) { Get().Errorw(msg, keysAndValues...) }

// Fatalf logs a formatted message and exits the process
func Fatalf(msg string, args ...any) { Get().Fatalf(msg, args...) }

// Sync flushes buffered log entries.
func Sync() {
	_ = Get().Sync()
}
