// Package observability provides logging and metrics.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the process-wide structured logger.
var Logger = NewLogger(os.Stdout, "info")

type contextKey string

// RequestIDKey carries the request id in a context.
const RequestIDKey contextKey = "request_id"

// WithRequestID returns ctx tagged with a request id for log records.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// ctxHandler is a slog.Handler that adds context values to the log record.
type ctxHandler struct {
	slog.Handler
}

// Handle adds context values to the record before passing it to the underlying handler.
func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if rid := RequestID(ctx); rid != "" {
		r.AddAttrs(slog.String("request_id", rid))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

// NewLogger builds a context-aware JSON logger writing to w at level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(&ctxHandler{slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})})
}

// SetupLogger replaces Logger with a JSON logger writing to w at level.
func SetupLogger(w io.Writer, level string) *slog.Logger {
	Logger = NewLogger(w, level)
	slog.SetDefault(Logger)
	return Logger
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	table string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(table string) *RepoLogger {
	return &RepoLogger{table: table}
}

// LogCreate logs a repository create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, id int) {
	Logger.DebugContext(ctx, "repository create",
		slog.String("table", l.table),
		slog.Int("id", id),
	)
}

// LogDelete logs a repository delete operation.
func (l *RepoLogger) LogDelete(ctx context.Context, id int, cascaded int) {
	Logger.InfoContext(ctx, "repository delete",
		slog.String("table", l.table),
		slog.Int("id", id),
		slog.Int("cascaded", cascaded),
	)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	Logger.ErrorContext(ctx, "repository error",
		slog.String("table", l.table),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// BadgerLogger routes badger's printf-style logging into slog.
type BadgerLogger struct {
	Logger *slog.Logger
}

func (b BadgerLogger) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return Logger
}

// Errorf implements badger.Logger.
func (b BadgerLogger) Errorf(format string, args ...interface{}) {
	b.logger().Error(strings.TrimSpace(fmt.Sprintf(format, args...)), slog.String("component", "badger"))
}

// Warningf implements badger.Logger.
func (b BadgerLogger) Warningf(format string, args ...interface{}) {
	b.logger().Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), slog.String("component", "badger"))
}

// Infof implements badger.Logger.
func (b BadgerLogger) Infof(format string, args ...interface{}) {
	b.logger().Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), slog.String("component", "badger"))
}

// Debugf implements badger.Logger.
func (b BadgerLogger) Debugf(format string, args ...interface{}) {
	b.logger().Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), slog.String("component", "badger"))
}
