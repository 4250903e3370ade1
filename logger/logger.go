// Package logger wraps log/slog with console and rotating file outputs.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled bool   `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
}

// DefaultConfig logs INFO and above as text on the console
func DefaultConfig() Config {
	return Config{
		Level:          "INFO",
		ConsoleEnabled: true,
		ConsoleFormat:  "text",
		FilePath:       "logs/server.log",
		FileFormat:     "text",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

var logger *slog.Logger

// Initialize installs the package logger. Console output goes to stderr so
// that stdout stays free for the MCP stdio transport.
func Initialize(config Config) error {
	l, err := New(config, os.Stderr)
	if err != nil {
		return err
	}
	logger = l
	slog.SetDefault(l)
	return nil
}

// New builds a logger writing to console (when enabled) and to the rotating log file
func New(config Config, console io.Writer) (*slog.Logger, error) {
	level := ParseLevel(config.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	if config.ConsoleEnabled && console != nil {
		handlers = append(handlers, newHandler(console, config.ConsoleFormat, opts))
	}

	if config.FileEnabled {
		if config.FilePath == "" {
			return nil, fmt.Errorf("logger: file logging enabled without a file path")
		}
		logFile := &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.FileMaxSizeMB,
			MaxBackups: config.FileMaxBackups,
			MaxAge:     config.FileMaxAgeDays,
		}
		handlers = append(handlers, newHandler(logFile, config.FileFormat, opts))
	}

	switch len(handlers) {
	case 0:
		return slog.New(slog.NewTextHandler(io.Discard, opts)), nil
	case 1:
		return slog.New(handlers[0]), nil
	default:
		return slog.New(&multiHandler{handlers: handlers}), nil
	}
}

func newHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel converts DEBUG, INFO, WARN(ING) or ERROR to a slog.Level, defaulting to INFO
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger returns the package logger, or slog's default before Initialize
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Debugf logs a formatted debug message
func Debugf(format string, args ...any) {
	Debug(fmt.Sprintf(format, args...))
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Infof logs a formatted info message
func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// Warning logs a warning message
func Warning(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Warningf logs a formatted warning message
func Warningf(format string, args ...any) {
	Warning(fmt.Sprintf(format, args...))
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...any) {
	Error(fmt.Sprintf(format, args...))
}

// multiHandler fans records out to several handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
