package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Logger provides structured JSON logging with persistent attributes.
// It is safe for concurrent use.
type Logger struct {
	logger *slog.Logger
	closer io.Closer
	mu     *sync.Mutex // Protects closer
	attrs  []slog.Attr // Persistent attributes (category, component)
}

// NewLogger creates a Logger that writes JSON lines to w.
//
// The level parameter controls which messages are logged:
//   - TRACE: All messages
//   - DEBUG: Debug, Info, Warn, and Error messages
//   - INFO: Info, Warn, and Error messages
//   - WARN: Warn and Error messages
//   - ERROR: Only Error messages
//
// If w is nil, logs are written to stderr.
func NewLogger(w io.Writer, level Level) *Logger {
	if w == nil {
		w = os.Stderr
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level.slog(),
		ReplaceAttr: replaceLevelName,
	})

	l := &Logger{
		logger: slog.New(handler),
		mu:     &sync.Mutex{},
		attrs:  make([]slog.Attr, 0),
	}
	if c, ok := w.(io.Closer); ok && w != os.Stderr && w != os.Stdout {
		l.closer = c
	}
	return l
}

// NewFileLogger creates a Logger that writes to path through a
// RotatingWriter configured by rotation.
func NewFileLogger(path string, level Level, rotation RotationConfig) (*Logger, error) {
	rw, err := NewRotatingWriter(path, rotation)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewLogger(rw, level), nil
}

// replaceLevelName renders the trace level by name instead of "DEBUG-4".
func replaceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == slogTrace {
		a.Value = slog.StringValue(LevelTrace.String())
	}
	return a
}

// WithCategory returns a new Logger with the category added to all log entries.
func (l *Logger) WithCategory(c Category) *Logger {
	return l.withAttr(slog.String("category", c.String()))
}

// WithComponent returns a new Logger with the component name added to all log entries.
func (l *Logger) WithComponent(component string) *Logger {
	return l.withAttr(slog.String("component", component))
}

// With returns a new Logger with arbitrary key-value attributes.
// Keys and values are provided as alternating arguments.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}

	newAttrs := make([]slog.Attr, 0, len(l.attrs)+len(args)/2)
	newAttrs = append(newAttrs, l.attrs...)
	for i := 0; i < len(args)-1; i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		newAttrs = append(newAttrs, slog.Any(key, args[i+1]))
	}

	return l.derive(newAttrs)
}

func (l *Logger) withAttr(attr slog.Attr) *Logger {
	newAttrs := make([]slog.Attr, len(l.attrs)+1)
	copy(newAttrs, l.attrs)
	newAttrs[len(l.attrs)] = attr
	return l.derive(newAttrs)
}

func (l *Logger) derive(attrs []slog.Attr) *Logger {
	return &Logger{
		logger: l.logger,
		closer: l.closer,
		mu:     l.mu,
		attrs:  attrs,
	}
}

// Enabled reports whether the logger emits records at level.
func (l *Logger) Enabled(level Level) bool {
	return l.logger.Enabled(context.Background(), level.slog())
}

// Trace logs a message at TRACE level with optional key-value pairs.
func (l *Logger) Trace(msg string, args ...any) {
	l.logAt(time.Now(), LevelTrace, msg, args...)
}

// Debug logs a message at DEBUG level with optional key-value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.logAt(time.Now(), LevelDebug, msg, args...)
}

// Info logs a message at INFO level with optional key-value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.logAt(time.Now(), LevelInfo, msg, args...)
}

// Warn logs a message at WARN level with optional key-value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.logAt(time.Now(), LevelWarn, msg, args...)
}

// Error logs a message at ERROR level with optional key-value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.logAt(time.Now(), LevelError, msg, args...)
}

// logAt combines persistent attributes with per-call arguments and keeps
// the caller's timestamp, so replayed records carry their original time.
func (l *Logger) logAt(t time.Time, level Level, msg string, args ...any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level.slog()) {
		return
	}

	rec := slog.NewRecord(t, level.slog(), msg, 0)
	rec.AddAttrs(l.attrs...)
	rec.Add(args...)
	_ = l.logger.Handler().Handle(ctx, rec)
}

// Close flushes and closes the underlying writer when the logger owns one.
// Loggers writing to stderr or stdout close as a no-op.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer == nil {
		return nil
	}
	if s, ok := l.closer.(interface{ Sync() error }); ok {
		if err := s.Sync(); err != nil {
			return fmt.Errorf("failed to sync log file: %w", err)
		}
	}
	if err := l.closer.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	l.closer = nil
	return nil
}

// NopLogger returns a Logger that discards all log output.
func NopLogger() *Logger {
	return &Logger{
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		mu:     &sync.Mutex{},
		attrs:  make([]slog.Attr, 0),
	}
}
