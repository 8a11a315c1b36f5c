// Package logging provides structured logging helpers on top of logrus.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// loggerKey is used to store the logger in context
type loggerKey struct{}

// New creates a JSON logger writing to w at the given level name.
// Unknown level names fall back to info.
func New(w io.Writer, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.JSONFormatter{})
	SetLevel(logger, level)
	return logger
}

// NewFile creates a logger appending to path, creating parent directories
// as needed. The returned closer closes the file.
func NewFile(path, level string) (*logrus.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return New(f, level), f, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	return New(io.Discard, "panic")
}

// SetLevel parses level and applies it to logger. It reports whether the
// name was recognized.
func SetLevel(logger *logrus.Logger, level string) bool {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
		return false
	}
	logger.SetLevel(lvl)
	return true
}

// LogError logs an error with structured context
func LogError(logger logrus.FieldLogger, message string, err error, fields logrus.Fields) {
	if logger == nil {
		return
	}
	logger.WithFields(fields).WithError(err).Error(message)
}

// LogOperation logs an operation with structured context
func LogOperation(logger logrus.FieldLogger, operation string, fields logrus.Fields) {
	if logger == nil {
		return
	}
	logger.WithFields(fields).Info(operation)
}

// SafeClose closes c and logs any error.
func SafeClose(c io.Closer, logger logrus.FieldLogger, operation string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		LogError(logger, "failed to close resource", err, logrus.Fields{
			"operation": operation,
			"component": "resource_management",
		})
	}
}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves a logger from the context, or returns the standard
// logrus logger.
func FromContext(ctx context.Context) logrus.FieldLogger {
	if logger, ok := ctx.Value(loggerKey{}).(logrus.FieldLogger); ok && logger != nil {
		return logger
	}
	return logrus.StandardLogger()
}
