package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	sessionIDKey     contextKey = "session_id"
	actorKey         contextKey = "actor"
	loggerKey        contextKey = "logger"
)

// New returns a JSON logger on stdout tagged with service.
func New(service, level string) *slog.Logger {
	return NewWithWriter(service, level, os.Stdout)
}

// NewWithWriter is New writing to w. Debug level also records the source
// position of each call.
func NewWithWriter(service, level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{Level: lvl, AddSource: lvl <= slog.LevelDebug}
	return slog.New(slog.NewJSONHandler(w, opts)).With(slog.String("service", service))
}

// ParseLevel maps a level name to a slog level. Unknown names map to info.
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

func stringValue(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// WithCorrelationID tags ctx with the request's correlation id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the correlation id, or "" when unset.
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDKey)
}

// WithSessionID tags ctx with the shopper's session id.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

func SessionIDFromContext(ctx context.Context) string {
	return stringValue(ctx, sessionIDKey)
}

// WithActor tags ctx with the signed-in back-office subject.
func WithActor(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, actorKey, subject)
}

func ActorFromContext(ctx context.Context) string {
	return stringValue(ctx, actorKey)
}

// NewContext stores l in ctx for FromContext.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the request logger, falling back to slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithContext adds the request identifiers and the active trace and span ids
// found in ctx to l. Empty values are left out.
func WithContext(ctx context.Context, l *slog.Logger) *slog.Logger {
	var attrs []any
	for _, f := range [...]struct {
		name string
		key  contextKey
	}{
		{"correlation_id", correlationIDKey},
		{"session_id", sessionIDKey},
		{"actor", actorKey},
	} {
		if v := stringValue(ctx, f.key); v != "" {
			attrs = append(attrs, slog.String(f.name, v))
		}
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}
