package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger *zap.Logger
	root   *zap.SugaredLogger
	atom   = zap.NewAtomicLevel()
)

// InitLogger builds the process wide root logger. format is "json" or
// "console"; level is any zap level name.
func InitLogger(level, format string) error {
	if err := atom.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(format) {
	case "console", "text":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	mu.Lock()
	defer mu.Unlock()
	logger = zap.New(zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), atom))
	root = logger.Sugar()
	return nil
}

// SetLevel changes the level of every logger derived from the root.
func SetLevel(level string) error {
	return atom.UnmarshalText([]byte(strings.ToLower(level)))
}

// NewLogger returns a named child of the root logger, or a no-op logger when
// InitLogger has not been called.
func NewLogger(name string) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	if root == nil {
		return zap.NewNop().Sugar()
	}
	return root.Named(name)
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if logger != nil {
		_ = logger.Sync()
	}
}
