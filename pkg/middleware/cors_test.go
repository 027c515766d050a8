package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func corsRequest(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/cart", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCORS_DevWildcard(t *testing.T) {
	h := CORS(DefaultCORSConfig())(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, corsRequest(http.MethodGet, "https://shop.local"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, CorrelationHeader, rr.Header().Get("Access-Control-Expose-Headers"))
}

func TestCORS_NoOrigin_NoHeaders(t *testing.T) {
	h := CORS(DefaultCORSConfig())(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, corsRequest(http.MethodGet, ""))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ProductionIgnoresWildcard(t *testing.T) {
	h := CORS(CORSConfig{
		AllowedOrigins: []string{"*", "https://shop.example.com"},
		Environment:    "production",
	})(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, corsRequest(http.MethodGet, "https://evil.example.com"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, corsRequest(http.MethodGet, "https://shop.example.com"))
	assert.Equal(t, "https://shop.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rr.Header().Get("Vary"))
}

func TestCORS_TrailingSlashInConfig(t *testing.T) {
	h := CORS(CORSConfig{
		AllowedOrigins: []string{"https://shop.example.com/"},
		Environment:    "production",
	})(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, corsRequest(http.MethodGet, "https://shop.example.com"))
	assert.Equal(t, "https://shop.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	h := CORS(CORSConfig{
		AllowedOrigins: []string{"https://shop.example.com"},
		Environment:    "production",
		MaxAge:         600,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := corsRequest(http.MethodOptions, "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), SessionHeader)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	assert.Equal(t, "600", rr.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_PreflightFromUnknownOrigin(t *testing.T) {
	h := CORS(CORSConfig{
		AllowedOrigins: []string{"https://shop.example.com"},
		Environment:    "production",
	})(okHandler())

	req := corsRequest(http.MethodOptions, "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORS_CredentialsEchoOrigin(t *testing.T) {
	h := CORS(CORSConfig{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
	})(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, corsRequest(http.MethodGet, "https://admin.example.com"))

	assert.Equal(t, "https://admin.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}
