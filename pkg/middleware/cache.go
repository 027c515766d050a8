package middleware

import (
	"net/http"
	"strconv"
)

// CacheControl sets a public Cache-Control header on GET and HEAD responses.
// A non-positive maxAge marks responses as not cacheable.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	value := "no-store"
	if maxAge > 0 {
		value = "public, max-age=" + strconv.Itoa(maxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore marks every response as private and not cacheable. Cart, wishlist
// and admin responses are per-session and must never be shared.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "private, no-store")
		next.ServeHTTP(w, r)
	})
}
