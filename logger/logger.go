package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	level zap.AtomicLevel
	base  *zap.SugaredLogger
)

func init() {
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base = newLogger(os.Stdout)
}

func newLogger(w io.Writer) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core).Sugar()
}

// SetOutput redirects all subsequent log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	base = newLogger(w)
}

// SetLevel accepts debug/info/warn/error; anything else falls back to info.
func SetLevel(s string) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "warn", "warning":
		level.SetLevel(zapcore.WarnLevel)
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

func active() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func Debugf(format string, args ...any) { active().Debugf(format, args...) }
func Infof(format string, args ...any)  { active().Infof(format, args...) }
func Warnf(format string, args ...any)  { active().Warnf(format, args...) }
func Errorf(format string, args ...any) { active().Errorf(format, args...) }

// Sync flushes buffered entries; safe to call at process exit.
func Sync() {
	_ = active().Sync()
}
