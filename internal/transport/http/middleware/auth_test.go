package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkos/pkg/jwt"
)

func TestAuth_StoresOnlyUserID(t *testing.T) {
	tokens := jwt.NewTokenManager("test-secret", "sparkos")
	userID := uuid.New()
	token, _, err := tokens.GenerateToken(userID, jwt.AccessToken, time.Hour)
	require.NoError(t, err)

	var got uuid.UUID
	var ok bool
	handler := NewAuthMiddleware(tokens).Auth(func(w http.ResponseWriter, r *http.Request) {
		got, ok = GetUserID(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ok)
	assert.Equal(t, userID, got)
}

func TestService_RejectsAccessToken(t *testing.T) {
	tokens := jwt.NewTokenManager("test-secret", "sparkos")
	token, _, err := tokens.GenerateToken(uuid.New(), jwt.AccessToken, time.Hour)
	require.NoError(t, err)

	called := false
	handler := NewAuthMiddleware(tokens).Service(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/internal/rollover", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}
