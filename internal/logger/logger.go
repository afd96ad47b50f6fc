// Package logger provides the process-wide structured logger for habitsync.
// Output is JSON lines on stderr; the --verbose flag lowers the level to
// debug. Fields are passed as alternating key/value pairs.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	verbose bool
	console bool
	output  io.Writer = os.Stderr
	log               = build()
)

// build creates a logger from the current settings. Callers hold mu.
func build() zerolog.Logger {
	w := output
	if console {
		w = zerolog.ConsoleWriter{Out: output, TimeFormat: time.Kitchen, NoColor: true}
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// SetVerbose enables or disables debug logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	log = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = build()
}

// SetConsole switches between JSON lines and human-readable output.
func SetConsole(c bool) {
	mu.Lock()
	defer mu.Unlock()
	console = c
	log = build()
}

// Logger returns the current underlying logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug logs a message at debug level. Only written in verbose mode.
func Debug(msg string, kv ...any) {
	emit(zerolog.DebugLevel, msg, kv)
}

// Info logs a message at info level.
func Info(msg string, kv ...any) {
	emit(zerolog.InfoLevel, msg, kv)
}

// Warn logs a message at warn level.
func Warn(msg string, kv ...any) {
	emit(zerolog.WarnLevel, msg, kv)
}

// Error logs a message at error level.
func Error(msg string, kv ...any) {
	emit(zerolog.ErrorLevel, msg, kv)
}

func emit(level zerolog.Level, msg string, kv []any) {
	mu.RLock()
	l := log
	mu.RUnlock()

	ev := l.WithLevel(level)
	if ev == nil {
		return
	}
	if len(kv) > 0 {
		ev = ev.Fields(kv)
	}
	ev.Msg(msg)
}
