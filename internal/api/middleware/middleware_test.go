package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldtechnologies/lostfound/internal/crypto"
	"github.com/eldtechnologies/lostfound/internal/models"
)

const testSecret = "middleware-test-secret"

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func bearer(t *testing.T, user models.User) string {
	t.Helper()
	tok, err := crypto.IssueToken([]byte(testSecret), user, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRequireUser(t *testing.T) {
	auth := NewAuthMiddleware(testSecret, zerolog.Nop())

	var seen *models.User
	h := auth.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserFromContext(r.Context())
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/claims/my", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing bearer token")
	})

	t.Run("bad signature", func(t *testing.T) {
		tok, err := crypto.IssueToken([]byte("other"), models.User{ID: "u1"}, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/claims/my", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/claims/my", nil)
		req.Header.Set("Authorization", bearer(t, models.User{ID: "u1", Name: "Ada"}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "u1", seen.ID)
		assert.Equal(t, models.RoleUser, seen.Role)
	})
}

func TestRequireAdmin(t *testing.T) {
	auth := NewAuthMiddleware(testSecret, zerolog.Nop())
	h := auth.RequireUser(auth.RequireAdmin(http.HandlerFunc(okHandler)))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/claims/pending", nil)
	req.Header.Set("Authorization", bearer(t, models.User{ID: "u1"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/claims/pending", nil)
	req.Header.Set("Authorization", bearer(t, models.User{ID: "a1", Role: models.RoleAdmin}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_ChatPostBudget(t *testing.T) {
	rl := NewRateLimiter(zerolog.Nop(), RateLimiterConfig{})
	h := rl.Middleware(http.HandlerFunc(okHandler))

	post := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/claims/c1/chat", strings.NewReader(`{}`))
		req = req.WithContext(WithUser(req.Context(), &models.User{ID: userID}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	// Burst of 10 for chat posts.
	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, post("u1").Code, "request %d", i)
	}
	rec := post("u1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Buckets are per user.
	assert.Equal(t, http.StatusOK, post("u2").Code)
}

func TestRateLimiter_WhitelistAndUnmatched(t *testing.T) {
	rl := NewRateLimiter(zerolog.Nop(), RateLimiterConfig{Whitelist: []string{"10.0.0.0/8"}})
	h := rl.Middleware(http.HandlerFunc(okHandler))

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/claims/c1/chat", nil)
		req.RemoteAddr = "10.1.2.3:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(zerolog.Nop(), RateLimiterConfig{})
	h := rl.Middleware(http.HandlerFunc(okHandler))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users/profile", nil))

	assert.Equal(t, 0, rl.Sweep(time.Hour))
	assert.Equal(t, 1, rl.Sweep(-time.Second))
}

func TestMatchPath(t *testing.T) {
	assert.True(t, matchPath("/api/claims/*/chat", "/api/claims/abc/chat"))
	assert.True(t, matchPath("/api/claims", "/api/claims/"))
	assert.False(t, matchPath("/api/claims/*/chat", "/api/claims//chat"))
	assert.False(t, matchPath("/api/claims/*/chat", "/api/claims/abc"))
	assert.False(t, matchPath("/api/claims", "/api/claims/my"))
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/api/claims/:id/chat", normalizePath("/api/claims/123/chat"))
	assert.Equal(t, "/api/claims/my", normalizePath("/api/claims/my"))
	assert.Equal(t, "/api/admin/claims/pending", normalizePath("/api/admin/claims/pending"))
	assert.Equal(t, "/api/admin/claims/x/approve", normalizePath("/api/admin/claims/x/approve"))
}

func TestSecurityAndValidation(t *testing.T) {
	h := SecurityHeaders(ValidateRequest(http.HandlerFunc(okHandler)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/claims/my", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	req := httptest.NewRequest(http.MethodPost, "/api/claims", strings.NewReader("itemId=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items?q=<script>", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
