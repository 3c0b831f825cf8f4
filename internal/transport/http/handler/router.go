package handler

import (
	"net/http"
	"sparkos/internal/transport/http/middleware"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Router sets up HTTP routes
type Router struct {
	habitHandler    *HabitHandler
	progressHandler *ProgressHandler
	authMiddleware  *middleware.AuthMiddleware
	rateLimiter     *middleware.RateLimiter
	logging         func(http.Handler) http.Handler
	swaggerEnabled  bool
	mux             *http.ServeMux
}

// NewRouter creates a new router
func NewRouter(
	habitHandler *HabitHandler,
	progressHandler *ProgressHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	logging func(http.Handler) http.Handler,
	swaggerEnabled bool,
) *Router {
	return &Router{
		habitHandler:    habitHandler,
		progressHandler: progressHandler,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
		logging:         logging,
		swaggerEnabled:  swaggerEnabled,
		mux:             http.NewServeMux(),
	}
}

// Setup configures all routes
func (r *Router) Setup() http.Handler {
	auth := r.authMiddleware.Auth

	// Habit routes (all require authentication)
	r.mux.HandleFunc("POST /api/v1/habits", auth(r.habitHandler.CreateHabit))
	r.mux.HandleFunc("GET /api/v1/habits", auth(r.habitHandler.ListHabits))
	r.mux.HandleFunc("GET /api/v1/habits/{id}", auth(r.habitHandler.GetHabit))
	r.mux.HandleFunc("PATCH /api/v1/habits/{id}", auth(r.habitHandler.UpdateHabit))
	r.mux.HandleFunc("DELETE /api/v1/habits/{id}", auth(r.habitHandler.DeactivateHabit))
	r.mux.HandleFunc("POST /api/v1/habits/{id}/completions", auth(r.habitHandler.RecordCompletion))
	r.mux.HandleFunc("GET /api/v1/habits/{id}/completions", auth(r.habitHandler.GetHabitHistory))
	r.mux.HandleFunc("GET /api/v1/habits/{id}/stats", auth(r.habitHandler.GetHabitStats))

	r.mux.HandleFunc("GET /api/v1/progress", auth(r.progressHandler.GetProgress))
	r.mux.HandleFunc("GET /api/v1/dashboard", auth(r.progressHandler.GetDashboard))
	r.mux.HandleFunc("GET /api/v1/notifications", auth(r.progressHandler.GetNotifications))

	r.mux.HandleFunc("POST /api/v1/internal/rollover", r.authMiddleware.Service(r.habitHandler.EvaluateRollover))

	if r.swaggerEnabled {
		r.mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)
	}

	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	var handler http.Handler = r.mux

	handler = r.logging(handler)

	handler = r.rateLimiter.Handler(handler)

	return handler
}
