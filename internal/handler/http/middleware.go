package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/utafrali/apparelstore/pkg/httputil"
)

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
// Excludes multipart/form-data requests (used for image uploads).
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") && !strings.HasPrefix(ct, "multipart/form-data") {
				httputil.WriteFailure(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE",
					"Content-Type must be application/json or multipart/form-data")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// decodeJSON reads a JSON body into dst and writes a 400 when it cannot.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst); err != nil {
		httputil.WriteFailure(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return false
	}
	return true
}
