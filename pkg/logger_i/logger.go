package logger_i

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
)

type Logger struct {
	inner *slog.Logger
}

// Init installs the process-wide handler. Prod gets JSON lines, everything
// else gets the readable text handler.
func Init(level slog.Level, isProd bool) {
	InitWithWriter(os.Stdout, level, isProd)
}

// InitWithWriter is Init with an explicit destination, for binaries whose
// stdout is a protocol stream.
func InitWithWriter(w io.Writer, level slog.Level, isProd bool) {
	options := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if isProd {
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}
	newLogger := slog.New(handler)
	slog.SetDefault(newLogger)
}

func NewLogger(section string) *Logger {
	return &Logger{
		inner: slog.Default().With("component", section),
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner.Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.logWithSource(slog.LevelError, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.logWithSource(slog.LevelWarn, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.logWithSource(slog.LevelDebug, msg, args...)
}

func (l *Logger) logWithSource(level slog.Level, msg string, args ...any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	// Skip 3 levels: runtime.Callers, logWithSource, and the level wrapper
	runtime.Callers(3, pcs[:])
	l.inner.Log(context.Background(), level, msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		inner: l.inner.With(args...),
	}
}
