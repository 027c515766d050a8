package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/utafrali/apparelstore/pkg/httputil"
	"github.com/utafrali/apparelstore/pkg/logger"
)

// SessionHeader carries the anonymous shopper session id.
const SessionHeader = "X-Session-ID"

const sessionKey contextKeyType = "session_id"

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// Session requires a well-formed shopper session id in the X-Session-ID header
// and stores it in the request context. Cart and wishlist state is keyed by it.
func Session() func(http.Handler) http.Handler {
	return session(true)
}

// OptionalSession is Session for routes that also serve shoppers without a
// session. A missing header passes through with no id; a malformed one is
// still rejected.
func OptionalSession() func(http.Handler) http.Handler {
	return session(false)
}

func session(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			switch {
			case id == "" && !required:
				next.ServeHTTP(w, r)
				return
			case id == "":
				httputil.WriteFailure(w, http.StatusBadRequest, "MISSING_SESSION", "X-Session-ID header is required")
				return
			case !sessionIDPattern.MatchString(id):
				httputil.WriteFailure(w, http.StatusBadRequest, "INVALID_SESSION", "X-Session-ID header is malformed")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, id)
			ctx = logger.WithSessionID(ctx, id)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("session_id", id)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the shopper session id set by Session.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}
