// Package debug provides the process-wide diagnostic logger used by the
// engine and the CLI.
package debug

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	logger  *slog.Logger
	enabled bool
	mu      sync.RWMutex
)

func init() {
	Init(false)
}

// Options configures the logger
type Options struct {
	Enabled bool
	// Level defaults to debug when Enabled is set.
	Level slog.Level
	// Output defaults to os.Stderr.
	Output io.Writer
	JSON   bool
}

// Init enables or disables debug logging to stderr.
func Init(enable bool) {
	Configure(Options{Enabled: enable, Level: slog.LevelDebug})
}

// Configure replaces the global logger
func Configure(opts Options) {
	mu.Lock()
	defer mu.Unlock()

	enabled = opts.Enabled

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := opts.Level
	if !opts.Enabled {
		// above every real level, nothing gets through
		level = slog.LevelError + 1
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}
	logger = slog.New(handler).With("component", "sqlecho")
}

// ParseLevel maps a level name to a slog.Level, defaulting to debug.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// Enabled returns whether debug logging is enabled
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// With returns a logger with the given attributes
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// Logger returns the underlying slog.Logger instance
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
