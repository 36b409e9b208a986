package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddlewareDisabledPassesThrough(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{Enabled: false})
	h := RateLimitMiddleware(limiter)(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitMiddlewarePerIPBlocksBurst(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		Enabled:        true,
		RequestsPerSec: 1,
		Burst:          1,
		PerIP:          true,
	})
	h := RateLimitMiddleware(limiter)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	first := httptest.NewRecorder()
	h.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRateLimitMiddlewareDistinctIPsHaveSeparateBudgets(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		Enabled:        true,
		RequestsPerSec: 1,
		Burst:          1,
		PerIP:          true,
	})
	h := RateLimitMiddleware(limiter)(okHandler())

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitMiddlewareGlobalLimit(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		Enabled:        true,
		RequestsPerSec: 1,
		Burst:          1,
		GlobalLimit:    true,
	})
	h := RateLimitMiddleware(limiter)(okHandler())

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestGetClientIPPrefersForwardedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.5")

	require.Equal(t, "203.0.113.5", getClientIP(req))
}

func TestGetClientIPFallsBackToRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	require.Equal(t, "10.0.0.1:1234", getClientIP(req))
}
