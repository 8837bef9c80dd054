package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/lostfound/internal/crypto"
	"github.com/eldtechnologies/lostfound/internal/models"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
	userHolderKey  contextKey = "user_holder"
)

// userHolder lets the request logger see the user id set further down the chain.
type userHolder struct {
	id string
}

func withUserHolder(ctx context.Context, h *userHolder) context.Context {
	return context.WithValue(ctx, userHolderKey, h)
}

func userHolderFrom(ctx context.Context) *userHolder {
	h, _ := ctx.Value(userHolderKey).(*userHolder)
	return h
}

// AuthMiddleware verifies bearer tokens on authenticated endpoints.
type AuthMiddleware struct {
	secret []byte
	logger zerolog.Logger
}

// NewAuthMiddleware creates a new auth middleware for HS256 tokens signed
// with secret.
func NewAuthMiddleware(secret string, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), logger: logger}
}

// RequireUser middleware rejects requests without a valid bearer token and
// stores the caller identity in the request context.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			jsonError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		user, err := crypto.VerifyToken(m.secret, token)
		if err != nil {
			m.logger.Warn().
				Str("type", "security").
				Str("event", "invalid_token").
				Str("ip", RealIP(r)).
				Err(err).
				Msg("token rejected")

			msg := "invalid token"
			if errors.Is(err, crypto.ErrTokenExpired) {
				msg = "token expired"
			}
			jsonError(w, http.StatusUnauthorized, msg)
			return
		}

		if h := userHolderFrom(r.Context()); h != nil {
			h.id = user.ID
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireAdmin must run after RequireUser. It rejects non-admin callers.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil {
			jsonError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !user.IsAdmin() {
			jsonError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetUserFromContext retrieves the authenticated user from the request context.
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}
