// Package logging provides the service's structured logging: a
// slog-based dispatcher supporting a plain text mode and a Logstash
// JSON mode, selected the way the original service selects it -
// LOG_LEVEL and LOG_TYPE environment variables - plus a small audit-log
// helper for security-relevant events.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"ignition/internal/tracectx"
)

// Level mirrors the four severities the original logger recognizes.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func levelFromEnv(value string) Level {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

var defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Init configures the default logger from LOG_LEVEL and LOG_TYPE,
// falling back to INFO/flat text output when either is unset. LOG_TYPE
// "logstash" (case-insensitive) selects the Logstash JSON handler;
// anything else keeps the plain slog text handler, matching the
// original service's "flat" default.
func Init(output io.Writer) {
	level := levelFromEnv(os.Getenv("LOG_LEVEL"))
	logType := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_TYPE")))

	opts := &slog.HandlerOptions{Level: level.slogLevel()}

	var handler slog.Handler
	if logType == "logstash" {
		handler = newLogstashHandler(output, opts, "logstash", nil)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func logInternal(ctx context.Context, level Level, subsystem string, err error, messageFmt string, args ...interface{}) {
	if !defaultLogger.Enabled(ctx, level.slogLevel()) {
		return
	}

	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	for k, v := range tracectx.GetAll(ctx) {
		attrs = append(attrs, slog.String(k, v))
	}

	defaultLogger.LogAttrs(ctx, level.slogLevel(), msg, attrs...)
}

// Debug logs a debug-level message for subsystem, with any trace
// context carried on ctx folded in as extra fields.
func Debug(ctx context.Context, subsystem, messageFmt string, args ...interface{}) {
	logInternal(ctx, LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an info-level message for subsystem.
func Info(ctx context.Context, subsystem, messageFmt string, args ...interface{}) {
	logInternal(ctx, LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warn-level message for subsystem.
func Warn(ctx context.Context, subsystem, messageFmt string, args ...interface{}) {
	logInternal(ctx, LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error-level message for subsystem, attaching err.
func Error(ctx context.Context, subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(ctx, LevelError, subsystem, err, messageFmt, args...)
}

// AuditEvent is a structured record of a security- or
// operationally-sensitive action, logged at INFO level with an [AUDIT]
// prefix so log aggregation can filter on it independent of LOG_TYPE.
type AuditEvent struct {
	Action    string
	Outcome   string
	RequestID string
	Target    string
	Details   string
	Error     string
}

// Audit logs event at INFO level.
func Audit(ctx context.Context, event AuditEvent) {
	parts := make([]string, 0, 6)
	parts = append(parts, "action="+event.Action)
	parts = append(parts, "outcome="+event.Outcome)
	if event.RequestID != "" {
		parts = append(parts, "request="+event.RequestID)
	}
	if event.Target != "" {
		parts = append(parts, "target="+event.Target)
	}
	if event.Details != "" {
		parts = append(parts, "details="+event.Details)
	}
	if event.Error != "" {
		parts = append(parts, "error="+event.Error)
	}

	logInternal(ctx, LevelInfo, "AUDIT", nil, "[AUDIT] %s", strings.Join(parts, " "))
}
