package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sparkos/internal/domain/gamification"
	"sparkos/internal/infrastructure/memory"
	appservice "sparkos/internal/service"
	"sparkos/internal/transport/http/middleware"
	"sparkos/pkg/clock"
	"sparkos/pkg/jwt"
)

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type testServer struct {
	handler http.Handler
	tokens  *jwt.TokenManager
	clock   *clock.Fixed
	userID  uuid.UUID
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	policy := gamification.DefaultPolicy()
	store := memory.NewStore()
	repos := store.Repositories()
	clk := clock.NewFixed(now)

	habits := appservice.NewHabitService(repos.Habits, repos.Completions, store, policy, clk, logger)
	progress := appservice.NewProgressService(repos.Progress, repos.Habits, repos.Completions, policy, clk)
	notifications := appservice.NewNotificationService(memory.NewNotificationRepository(50), clk, logger)
	bus := memory.NewEventBus(notifications.HandleEvent)

	tokens := jwt.NewTokenManager("test-secret", "sparkos")
	router := NewRouter(
		NewHabitHandler(habits, bus, logger),
		NewProgressHandler(progress, notifications, logger),
		middleware.NewAuthMiddleware(tokens),
		middleware.NewRateLimiter(1000, 1000, logger),
		middleware.Logging(logger),
		false,
	)

	userID := uuid.New()
	token, _, err := tokens.GenerateToken(userID, jwt.AccessToken, time.Hour)
	require.NoError(t, err)

	return &testServer{
		handler: router.Setup(),
		tokens:  tokens,
		clock:   clk,
		userID:  userID,
		token:   token,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return s.doWithToken(t, method, path, body, s.token)
}

func (s *testServer) doWithToken(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *testServer) createHabit(t *testing.T, cadence string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/habits", map[string]interface{}{
		"title":    "Meditate",
		"cadence":  cadence,
		"timezone": "UTC",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)["id"].(string)
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.doWithToken(t, http.MethodGet, "/api/v1/habits", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.doWithToken(t, http.MethodGet, "/api/v1/habits", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := jwt.NewTokenManager("other-secret", "sparkos")
	forged, _, err := other.GenerateToken(s.userID, jwt.AccessToken, time.Hour)
	require.NoError(t, err)
	rec = s.doWithToken(t, http.MethodGet, "/api/v1/habits", nil, forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/habits", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.doWithToken(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestCreateHabit_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"empty title", map[string]interface{}{"title": "", "cadence": "daily", "timezone": "UTC"}},
		{"bad cadence", map[string]interface{}{"title": "x", "cadence": "hourly", "timezone": "UTC"}},
		{"bad timezone", map[string]interface{}{"title": "x", "cadence": "daily", "timezone": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/v1/habits", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode(t, rec), "error")
		})
	}
}

func TestHabitCRUD(t *testing.T) {
	s := newTestServer(t)
	id := s.createHabit(t, "daily")

	rec := s.do(t, http.MethodGet, "/api/v1/habits/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Meditate", decode(t, rec)["title"])

	rec = s.do(t, http.MethodPatch, "/api/v1/habits/"+id, map[string]interface{}{"title": "Meditate 10 min"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Meditate 10 min", decode(t, rec)["title"])

	rec = s.do(t, http.MethodGet, "/api/v1/habits/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/habits/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/habits/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/habits?active_only=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["total"])

	rec = s.do(t, http.MethodGet, "/api/v1/habits", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["total"])

	// inactive habits cannot be completed
	rec = s.do(t, http.MethodPost, "/api/v1/habits/"+id+"/completions", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHabitsAreScopedToOwner(t *testing.T) {
	s := newTestServer(t)
	id := s.createHabit(t, "daily")

	stranger, _, err := s.tokens.GenerateToken(uuid.New(), jwt.AccessToken, time.Hour)
	require.NoError(t, err)

	rec := s.doWithToken(t, http.MethodGet, "/api/v1/habits/"+id, nil, stranger)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.doWithToken(t, http.MethodPost, "/api/v1/habits/"+id+"/completions", nil, stranger)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordCompletion(t *testing.T) {
	s := newTestServer(t)
	id := s.createHabit(t, "daily")

	rec := s.do(t, http.MethodPost, "/api/v1/habits/"+id+"/completions", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	completion := body["completion"].(map[string]interface{})
	assert.Equal(t, "2024-03-01", completion["date"])
	assert.Equal(t, float64(10), completion["xp_awarded"])
	assert.Equal(t, float64(1), body["streak"].(map[string]interface{})["current"])
	assert.Equal(t, float64(10), body["progress"].(map[string]interface{})["total_xp"])

	events := body["events"].([]interface{})
	require.Len(t, events, 2)
	assert.Equal(t, "streak_extended", events[0].(map[string]interface{})["type"])
	assert.Equal(t, "xp_awarded", events[1].(map[string]interface{})["type"])

	// same period again
	rec = s.do(t, http.MethodPost, "/api/v1/habits/"+id+"/completions", map[string]string{"date": "2024-03-01"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/habits/"+id+"/completions", map[string]string{"date": "2024-03-02"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/habits/"+id+"/completions", map[string]string{"date": "03/01/2024"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	s.clock.Advance(24 * time.Hour)
	rec = s.do(t, http.MethodPost, "/api/v1/habits/"+id+"/completions", map[string]string{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body = decode(t, rec)
	assert.Equal(t, float64(2), body["streak"].(map[string]interface{})["current"])
	assert.Equal(t, float64(21), body["progress"].(map[string]interface{})["total_xp"])

	rec = s.do(t, http.MethodGet, "/api/v1/habits/"+id+"/completions?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, float64(2), body["total"])
	history := body["completions"].([]interface{})
	require.Len(t, history, 1)
	assert.Equal(t, "2024-03-02", history[0].(map[string]interface{})["date"])

	rec = s.do(t, http.MethodGet, "/api/v1/habits/"+id+"/completions?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/habits/"+id+"/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, float64(2), body["total_completions"])
	assert.Equal(t, float64(100), body["completion_rate"])
}

func TestProgressDashboardAndNotifications(t *testing.T) {
	s := newTestServer(t)
	id := s.createHabit(t, "daily")

	rec := s.do(t, http.MethodGet, "/api/v1/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(0), body["total_xp"])
	assert.Equal(t, float64(1), body["level"])

	rec = s.do(t, http.MethodPost, "/api/v1/habits/"+id+"/completions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, float64(1), body["active_habits"])
	assert.Equal(t, float64(1), body["completed_today"])
	assert.Len(t, body["completions_last_week"], 7)

	rec = s.do(t, http.MethodGet, "/api/v1/dashboard?tz=Nowhere/Special", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notifications := decode(t, rec)["notifications"].([]interface{})
	require.Len(t, notifications, 2)
	assert.Equal(t, "New streak started", notifications[0].(map[string]interface{})["title"])

	rec = s.do(t, http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["notifications"])
}

func TestInternalRollover(t *testing.T) {
	s := newTestServer(t)
	id := s.createHabit(t, "daily")

	rec := s.do(t, http.MethodPost, "/api/v1/habits/"+id+"/completions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	req := map[string]string{"habit_id": id, "as_of": "2024-03-03"}
	s.clock.Set(now.Add(48 * time.Hour))

	// access tokens are not enough
	rec = s.do(t, http.MethodPost, "/api/v1/internal/rollover", req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	serviceToken, _, err := s.tokens.GenerateToken(uuid.New(), jwt.ServiceToken, time.Hour)
	require.NoError(t, err)

	rec = s.doWithToken(t, http.MethodPost, "/api/v1/internal/rollover", req, serviceToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["applied"])
	assert.Equal(t, float64(0), body["streak"].(map[string]interface{})["current"])
	require.Len(t, body["events"], 1)

	// redelivery of the same boundary
	rec = s.doWithToken(t, http.MethodPost, "/api/v1/internal/rollover", req, serviceToken)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, false, body["applied"])
	assert.Empty(t, body["events"])

	rec = s.doWithToken(t, http.MethodPost, "/api/v1/internal/rollover",
		map[string]string{"habit_id": "x", "as_of": "2024-03-03"}, serviceToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.doWithToken(t, http.MethodPost, "/api/v1/internal/rollover",
		map[string]string{"habit_id": id, "as_of": "2024-03-10"}, serviceToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRateLimit(t *testing.T) {
	logger := zap.NewNop()
	limiter := middleware.NewRateLimiter(1, 2, logger)
	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
