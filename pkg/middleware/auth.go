package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/apparelstore/pkg/httputil"
	"github.com/utafrali/apparelstore/pkg/logger"
)

type contextKeyType string

const claimsKey contextKeyType = "claims"

// Claims is the authenticated principal extracted by the auth middleware.
type Claims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// Auth rejects requests without a valid bearer token and stores the claims in
// the request context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httputil.WriteFailure(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or malformed authorization header")
				return
			}

			claims, err := validate(token)
			if err != nil {
				httputil.WriteFailure(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = logger.WithActor(ctx, claims.Subject)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("actor", claims.Subject)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows the request through only when the authenticated role is
// one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				httputil.WriteFailure(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			if _, ok := roleSet[claims.Role]; !ok {
				httputil.WriteFailure(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the authenticated claims, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey).(*Claims)
	return c
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
