// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("with custom logger", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		ctx := New(context.Background(), logger)

		got := Logger(ctx)
		assert.NotNil(t, got)
		assert.NotSame(t, DefaultLogger, got, "New() should carry the provided logger")
	})

	t.Run("with nil logger should use default", func(t *testing.T) {
		ctx := New(context.Background(), nil)
		assert.Same(t, DefaultLogger, Logger(ctx))
	})
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name          string
		setupContext  func() context.Context
		expectDefault bool
	}{
		{
			name: "context with logger",
			setupContext: func() context.Context {
				logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
				return New(context.Background(), logger)
			},
			expectDefault: false,
		},
		{
			name: "context without logger",
			setupContext: func() context.Context {
				return context.Background()
			},
			expectDefault: true,
		},
		{
			name: "context with nil logger value",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), loggerKey{}, nil)
			},
			expectDefault: true,
		},
		{
			name: "context with wrong type value",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), loggerKey{}, "not a logger")
			},
			expectDefault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := Logger(tt.setupContext())

			if tt.expectDefault {
				assert.Same(t, DefaultLogger, logger)
				return
			}

			assert.NotNil(t, logger)
			assert.NotSame(t, DefaultLogger, logger)
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx := New(context.Background(), logger)

	tests := []struct {
		name     string
		logFunc  func(context.Context, string, ...any)
		message  string
		expected string
	}{
		{
			name:     "Info logging",
			logFunc:  Info,
			message:  "test info message",
			expected: "INFO",
		},
		{
			name:     "Debug logging",
			logFunc:  Debug,
			message:  "test debug message",
			expected: "DEBUG",
		},
		{
			name:     "Warn logging",
			logFunc:  Warn,
			message:  "test warning message",
			expected: "WARN",
		},
		{
			name:     "Error logging",
			logFunc:  Error,
			message:  "test error message",
			expected: "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc(ctx, tt.message, "key", "value")

			output := buf.String()
			assert.Contains(t, output, tt.expected)
			assert.Contains(t, output, tt.message)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name          string
		value         string
		expectedLevel slog.Level
	}{
		{name: "DEBUG level", value: "DEBUG", expectedLevel: slog.LevelDebug},
		{name: "INFO level", value: "INFO", expectedLevel: slog.LevelInfo},
		{name: "WARN level", value: "WARN", expectedLevel: slog.LevelWarn},
		{name: "ERROR level", value: "ERROR", expectedLevel: slog.LevelError},
		{name: "invalid level defaults to WARN", value: "INVALID", expectedLevel: slog.LevelWarn},
		{name: "empty level defaults to WARN", value: "", expectedLevel: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedLevel, parseLevel(tt.value))
		})
	}
}

func TestEnableDebug(t *testing.T) {
	originalLevel := LevelVar.Level()
	defer LevelVar.Set(originalLevel)

	LevelVar.Set(slog.LevelWarn)
	EnableDebug()

	assert.Equal(t, slog.LevelDebug, LevelVar.Level())
	assert.True(t, DefaultLogger.Enabled(context.Background(), slog.LevelDebug))
}

func TestDefaultLoggerWritesToStderrOnly(t *testing.T) {
	// The handler's writer must not be stdout; primary output stays clean.
	h, ok := DefaultLogger.Handler().(*PrettyHandler)
	if !ok {
		t.Fatal("DefaultLogger should use PrettyHandler")
	}

	assert.Equal(t, os.Stderr, h.writer)
}

func TestPrettyHandlerOutput(t *testing.T) {
	var buf bytes.Buffer

	handler := NewPrettyHandler(
		&slog.HandlerOptions{Level: slog.LevelDebug},
		WithDestinationWriter(&buf),
	)
	logger := slog.New(handler)

	logger.Info("fetching artifact", "name", "kubectl")

	out := buf.String()
	assert.Contains(t, out, "fetching artifact")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "kubectl")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestLoggingWithDefaultLogger(t *testing.T) {
	// These should not panic and should use DefaultLogger.
	ctx := context.Background()

	Info(ctx, "test info")
	Debug(ctx, "test debug")
	Warn(ctx, "test warn")
	Error(ctx, "test error")
}
