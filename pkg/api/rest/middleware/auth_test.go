package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthMiddlewareDisabledPassesThrough(t *testing.T) {
	h := AuthMiddleware(AuthConfig{Enabled: false})(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/v1/collections/default/search", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareAllowsPublicPath(t *testing.T) {
	h := AuthMiddleware(AuthConfig{Enabled: true, PublicPaths: []string{"/v1/health"}})(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	h := AuthMiddleware(AuthConfig{Enabled: true})(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/v1/collections/default/search", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	h := AuthMiddleware(AuthConfig{Enabled: true})(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/v1/collections/default/search", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateToken("u1", "alice", []string{"user"}, "default", secret)
	require.NoError(t, err)

	var gotCollection string
	captureHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaimsFromContext(r.Context())
		require.True(t, ok)
		gotCollection = claims.Collection
		w.WriteHeader(http.StatusOK)
	})

	h := AuthMiddleware(AuthConfig{Enabled: true, JWTSecret: secret})(captureHandler)
	req := httptest.NewRequest(http.MethodGet, "/v1/collections/default/search", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "default", gotCollection)
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("u1", "alice", []string{"user"}, "default", "real-secret")
	require.NoError(t, err)

	h := AuthMiddleware(AuthConfig{Enabled: true, JWTSecret: "other-secret"})(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/v1/collections/default/search", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRequiresAdminRoleOnAdminPaths(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateToken("u1", "alice", []string{"user"}, "default", secret)
	require.NoError(t, err)

	h := AuthMiddleware(AuthConfig{
		Enabled:    true,
		JWTSecret:  secret,
		AdminPaths: []string{"/v1/admin"},
	})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/reset", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthMiddlewareAdminRoleAllowed(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateToken("u1", "alice", []string{"admin"}, "default", secret)
	require.NoError(t, err)

	h := AuthMiddleware(AuthConfig{
		Enabled:    true,
		JWTSecret:  secret,
		AdminPaths: []string{"/v1/admin"},
	})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/reset", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
