// Package report carries training progress messages to a structured logger.
package report

import (
	"log/slog"
)

// Reporter receives progress messages. args are slog-style key/value pairs.
type Reporter interface {
	// Report emits a user-facing status line.
	Report(msg string, args ...any)

	// Debug emits diagnostic detail.
	Debug(msg string, args ...any)
}

// Logger adapts a *slog.Logger to Reporter.
type Logger struct {
	log *slog.Logger
}

// New returns a Reporter writing to l. A nil l uses slog.Default().
func New(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{log: l}
}

// Discard returns a Reporter that drops everything.
func Discard() *Logger {
	return &Logger{log: slog.New(slog.DiscardHandler)}
}

// Report logs msg at Info level.
func (r *Logger) Report(msg string, args ...any) {
	r.log.Info(msg, args...)
}

// Debug logs msg at Debug level.
func (r *Logger) Debug(msg string, args ...any) {
	r.log.Debug(msg, args...)
}

// With returns a Reporter that adds args to every message.
func (r *Logger) With(args ...any) *Logger {
	return &Logger{log: r.log.With(args...)}
}
