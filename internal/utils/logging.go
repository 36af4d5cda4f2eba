// internal/utils/logging.go
package utils

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LogFileName = "batch-composer.log"
	LogFileMode = 0644
)

var Logger *zap.Logger = zap.NewNop()

// Init configures zap to write to both console and a log file.
// This should be called once at application startup.
func Init() error {
	logFile, err := os.OpenFile(LogFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, LogFileMode)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", LogFileName, err)
	}

	level := levelFromEnv(os.Getenv("LOG_LEVEL"))
	Logger = newLogger(os.Stdout, logFile, level)

	Logger.Info("logging initialized", zap.String("log_level", level.String()))
	return nil
}

// newLogger tees a human-readable console core and a JSON file core at the same level.
func newLogger(console, file io.Writer, level zapcore.Level) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(console), level)
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), level)

	return zap.New(zapcore.NewTee(consoleCore, fileCore), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// levelFromEnv parses a LOG_LEVEL value, defaulting to info.
func levelFromEnv(envLevel string) zapcore.Level {
	if envLevel == "" {
		return zapcore.InfoLevel
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(envLevel)); err != nil {
		fmt.Printf("unknown LOG_LEVEL '%s', defaulting to 'info'\n", envLevel)
		return zapcore.InfoLevel
	}
	return level
}

// Sync flushes any buffered log entries.
func Sync() error {
	if Logger != nil {
		return Logger.Sync()
	}
	return nil
}

// WithComponent returns a logger pre-bound with a `component` field so callers
// don't have to repeat the same field across messages in a component.
func WithComponent(component string) *zap.Logger {
	if Logger == nil {
		return zap.NewNop()
	}
	return Logger.With(zap.String(FieldComponent, component))
}

// WithSession binds both the component and the wizard session id.
func WithSession(component, sessionID string) *zap.Logger {
	return WithComponent(component).With(zap.String(FieldSessionID, sessionID))
}
