package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/apparelstore/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, enriched with
// whatever correlation, session, actor and trace ids are present. Handlers
// and services retrieve it with logger.FromContext.
//
// Mount it after RequestLogging and Tracing. Session and Auth add their own
// fields to the stored logger further down the chain.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
