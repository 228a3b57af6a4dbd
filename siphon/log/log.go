package log

import (
	"fmt"
	"os"

	"github.com/on-the-ground/siphon_go/shared/helper"
	"github.com/on-the-ground/siphon_go/siphon"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel defines the severity level for log messages.
type LogLevel string

const (
	// LogInfo is used for general informational messages.
	LogInfo LogLevel = "info"

	// LogWarn is used for potentially harmful situations.
	LogWarn LogLevel = "warn"

	// LogError is used for error events that might still allow the application to continue running.
	LogError LogLevel = "error"

	// LogDebug is used for debugging messages with detailed internal information.
	LogDebug LogLevel = "debug"
)

// New builds a production zap logger at the given level.
func New(level LogLevel) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(string(level))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// NewTestLogger returns a console logger writing debug output to stdout.
func NewTestLogger() *zap.Logger {
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		zap.DebugLevel,
	)
	return zap.New(consoleCore)
}

// Changes logs every change passing the change seam at debug level.
func Changes[C any](logger *zap.Logger) siphon.Interceptor[C] {
	return watch[C](logger, "change")
}

// Actions logs every action passing the action seam at debug level.
func Actions[A any](logger *zap.Logger) siphon.Interceptor[A] {
	return watch[A](logger, "action")
}

// States logs every committed state at debug level.
func States[S any](logger *zap.Logger) siphon.Interceptor[S] {
	return watch[S](logger, "state")
}

func watch[T any](logger *zap.Logger, seam string) siphon.Interceptor[T] {
	return siphon.Watching(func(v T) {
		logger.Debug("siphon: "+seam,
			zap.String("tag", helper.TypeName(v)),
			zap.Any("value", v),
		)
	})
}
