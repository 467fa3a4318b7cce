// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type loggerKey struct{}

// DefaultLogger is a pretty console logger writing to stderr. It is used if
// no logger is provided. Diagnostics never go to stdout so that action and
// child-process output stays machine-consumable.
var DefaultLogger = slog.New(NewPrettyHandler(&slog.HandlerOptions{
	Level: LevelVar,
},
	WithAutoColour(),
	WithDestinationWriter(os.Stderr),
))

// JSONLogger is a structured logger writing JSON lines to stderr.
var JSONLogger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
	Level: LevelVar,
}))

// LevelVar holds the process-wide log level. It is initialized from the
// environment and may be raised at runtime (e.g. by the --debug flag).
var LevelVar = &slog.LevelVar{}

func init() {
	// Set the default log level based on the environment variable
	LevelVar.Set(logLevelFromEnv())
}

// New creates a new context with the given logger.
// If logger is nil, it uses the default logger.
// The log level is set based on the environment variable.
// The variable name for the log level is derived from the executable name.
// For example, if the executable is named "gatekit", the environment variable
// for the log level would be "GATEKIT_LOG_LEVEL". The log level can be set to
// "DEBUG", "INFO", "WARN", "ERROR", or any other value will default to "WARN".
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger from the context, or the default logger if not found.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return DefaultLogger
	}

	return logger
}

// EnableDebug lowers the process-wide log level to DEBUG. Used by the
// --debug global flag; it affects the diagnostic stream only.
func EnableDebug() {
	LevelVar.Set(slog.LevelDebug)
}

// Info logs an info message with the given context.
func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Info(msg, args...)
}

// Debug logs a debug message with the given context.
func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Debug(msg, args...)
}

// Warn logs a warning message with the given context.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Warn(msg, args...)
}

// Error logs an error message with the given context.
func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Error(msg, args...)
}

func logLevelFromEnv() slog.Level {
	exec, _ := os.Executable()
	exec = filepath.Base(exec)
	ext := filepath.Ext(exec)

	if ext == ".exe" {
		exec = exec[:len(exec)-len(ext)]
	}

	exec = strings.ToUpper(exec)
	envName := strings.ToUpper(exec + "_LOG_LEVEL")

	// Check the environment variable for the log level
	return parseLevel(os.Getenv(envName))
}

func parseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
