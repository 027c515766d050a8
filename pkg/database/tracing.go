package database

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/utafrali/apparelstore/pkg/database"

type slowQueryLog struct {
	threshold time.Duration
	logger    *slog.Logger
}

var slowQueries atomic.Pointer[slowQueryLog]

// SetSlowQueryLogging makes TraceQuery warn about queries that take at
// least threshold. A zero threshold or nil logger turns it off.
func SetSlowQueryLogging(threshold time.Duration, logger *slog.Logger) {
	if threshold <= 0 || logger == nil {
		slowQueries.Store(nil)
		return
	}
	slowQueries.Store(&slowQueryLog{threshold: threshold, logger: logger})
}

func (s *slowQueryLog) observe(ctx context.Context, operation, statement string, elapsed time.Duration, err error) {
	if s == nil || elapsed < s.threshold {
		return
	}
	attrs := []any{
		slog.String("operation", operation),
		slog.String("statement", statement),
		slog.Duration("duration", elapsed),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.WarnContext(ctx, "slow query detected", attrs...)
}

// TraceQuery opens a client span for one repository call. The returned
// func ends the span and must be given the call's error:
//
//	ctx, end := database.TraceQuery(ctx, "CreateOrder", insertOrderSQL)
//	defer func() { end(err) }()
func TraceQuery(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", statement),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		slowQueries.Load().observe(ctx, operation, statement, time.Since(start), err)
	}
}
