package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

type implLogger struct {
	logger *slog.Logger
	level  string
}

type fieldsKey struct{}

// New creates a Logger writing colourised text to stderr.
func New(level string) Logger {
	return NewWithWriter(os.Stderr, level, "text")
}

// NewWithWriter creates a Logger for the given writer. format is "text" or "json".
func NewWithWriter(w io.Writer, level, format string) Logger {
	level = strings.ToLower(level)
	opts := parseLevel(level)

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts})
	} else {
		h = tint.NewHandler(w, &tint.Options{
			Level:      opts,
			TimeFormat: "15:04:05",
			NoColor:    w != os.Stderr && w != os.Stdout,
		})
	}

	return &implLogger{
		logger: slog.New(h),
		level:  level,
	}
}

// WithFields returns a context carrying extra attributes for every log line written with it.
// Keys and values alternate: WithFields(ctx, "video", id, "chunk", 3).
func WithFields(ctx context.Context, kv ...interface{}) context.Context {
	prev, _ := ctx.Value(fieldsKey{}).([]interface{})
	fields := make([]interface{}, 0, len(prev)+len(kv))
	fields = append(fields, prev...)
	fields = append(fields, kv...)
	return context.WithValue(ctx, fieldsKey{}, fields)
}

// Fields returns the attributes attached to ctx by WithFields.
func Fields(ctx context.Context) []interface{} {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]interface{})
	return fields
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *implLogger) shouldLog(level string) bool {
	return parseLevel(level) >= parseLevel(l.level)
}

func (l *implLogger) log(ctx context.Context, level slog.Level, msg string, args ...interface{}) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.logger.Log(ctx, level, msg, Fields(ctx)...)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelDebug, msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelInfo, msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelWarn, msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, slog.LevelError, msg, args...)
}

// Helper to format error messages
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%v", err)
}
