package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sparkos/pkg/jwt"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const UserIDKey contextKey = "userID"

// AuthMiddleware validates bearer tokens minted by the identity provider
type AuthMiddleware struct {
	tokens *jwt.TokenManager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens *jwt.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
	}
}

// Auth validates an access (or service) token from the Authorization header
func (m *AuthMiddleware) Auth(next http.HandlerFunc) http.HandlerFunc {
	return m.authenticate(m.tokens.ValidateAccessToken, next)
}

// Service only admits service tokens, for internal endpoints
func (m *AuthMiddleware) Service(next http.HandlerFunc) http.HandlerFunc {
	return m.authenticate(m.tokens.ValidateServiceToken, next)
}

func (m *AuthMiddleware) authenticate(validate func(string) (*jwt.Claims, error), next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			unauthorized(w, "invalid authorization header format")
			return
		}

		claims, err := validate(parts[1])
		if err != nil {
			unauthorized(w, "invalid token")
			return
		}

		if claims.UserID == uuid.Nil {
			unauthorized(w, "missing user ID in token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUserID extracts user ID from request context
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
