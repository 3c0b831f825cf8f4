package handler

import (
	"encoding/json"
	"net/http"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/event"
	"sparkos/internal/domain/service"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HabitHandler handles habit-related HTTP requests
type HabitHandler struct {
	habitService service.HabitService
	publisher    service.EventPublisher
	logger       *zap.Logger
}

// NewHabitHandler creates a new habit handler
func NewHabitHandler(habitService service.HabitService, publisher service.EventPublisher, logger *zap.Logger) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
		publisher:    publisher,
		logger:       logger,
	}
}

// CreateHabit handles habit creation
// @Summary Create a new habit
// @Description Create a habit with a daily, weekly or monthly cadence
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,description=string,cadence=string,timezone=string} true "Create habit request"
// @Success 201 {object} habitResponse
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /api/v1/habits [post]
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
		Cadence     string  `json:"cadence"`
		Timezone    string  `json:"timezone"` // IANA timezone string
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cadence, err := entity.ParseCadence(req.Cadence)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	habit, err := h.habitService.CreateHabit(r.Context(), userID, req.Title, req.Description, cadence, req.Timezone)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, habitToResponse(habit))
}

// ListHabits lists the caller's habits
// @Summary List habits
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param active_only query bool false "Only active habits"
// @Success 200 {object} object{habits=[]habitResponse,total=int}
// @Failure 401 {object} object{error=string}
// @Router /api/v1/habits [get]
func (h *HabitHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	activeOnly := false
	if v := r.URL.Query().Get("active_only"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid active_only")
			return
		}
		activeOnly = parsed
	}

	habits, total, err := h.habitService.ListHabits(r.Context(), userID, activeOnly)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"habits": habitsToResponse(habits),
		"total":  total,
	})
}

// GetHabit retrieves a single habit by ID
// @Summary Get habit by ID
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Success 200 {object} habitResponse
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /api/v1/habits/{id} [get]
func (h *HabitHandler) GetHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	habitID, ok := pathHabitID(w, r)
	if !ok {
		return
	}

	habit, err := h.habitService.GetHabit(r.Context(), habitID, userID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, habitToResponse(habit))
}

// UpdateHabit updates title and description
// @Summary Update habit
// @Description Cadence and timezone cannot be changed after creation
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param request body object{title=string,description=string} true "Update habit request"
// @Success 200 {object} habitResponse
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /api/v1/habits/{id} [patch]
func (h *HabitHandler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	habitID, ok := pathHabitID(w, r)
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	habit, err := h.habitService.UpdateHabit(r.Context(), habitID, userID, req.Title, req.Description)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, habitToResponse(habit))
}

// DeactivateHabit deactivates a habit, keeping its history
// @Summary Deactivate habit
// @Tags habits
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Success 204
// @Failure 404 {object} object{error=string}
// @Router /api/v1/habits/{id} [delete]
func (h *HabitHandler) DeactivateHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	habitID, ok := pathHabitID(w, r)
	if !ok {
		return
	}

	if err := h.habitService.DeactivateHabit(r.Context(), habitID, userID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecordCompletion records a completion for a calendar day
// @Summary Complete habit
// @Description Records a completion for date (YYYY-MM-DD, default today in the habit's timezone)
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param request body object{date=string} false "Completion request"
// @Success 201 {object} object{completion=completionResponse,streak=streakResponse,progress=entity.ProgressView,events=[]eventResponse}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Failure 422 {object} object{error=string}
// @Router /api/v1/habits/{id}/completions [post]
func (h *HabitHandler) RecordCompletion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	habitID, ok := pathHabitID(w, r)
	if !ok {
		return
	}

	var req struct {
		Date *string `json:"date"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	var date *time.Time
	if req.Date != nil && *req.Date != "" {
		d, err := entity.ParseDate(*req.Date)
		if err != nil {
			handleServiceError(w, h.logger, err)
			return
		}
		date = &d
	}

	result, err := h.habitService.RecordCompletion(r.Context(), habitID, userID, date)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.publish(r, result.Events)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"completion": completionToResponse(result.Completion),
		"streak":     streakToResponse(result.Habit.Streak()),
		"progress":   result.Progress,
		"events":     eventsToResponse(result.Events),
	})
}

// GetHabitHistory lists completions, newest first
// @Summary Get habit history
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param limit query int false "Page size (default 30, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} object{completions=[]completionResponse,total=int}
// @Failure 404 {object} object{error=string}
// @Router /api/v1/habits/{id}/completions [get]
func (h *HabitHandler) GetHabitHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	habitID, ok := pathHabitID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt32(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, err := queryInt32(r, "offset")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	completions, total, err := h.habitService.GetHabitHistory(r.Context(), habitID, userID, limit, offset)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"completions": completionsToResponse(completions),
		"total":       total,
	})
}

// GetHabitStats returns streak and completion statistics
// @Summary Get habit statistics
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Success 200 {object} statsResponse
// @Failure 404 {object} object{error=string}
// @Router /api/v1/habits/{id}/stats [get]
func (h *HabitHandler) GetHabitStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	habitID, ok := pathHabitID(w, r)
	if !ok {
		return
	}

	stats, err := h.habitService.GetHabitStats(r.Context(), habitID, userID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, statsToResponse(stats))
}

// EvaluateRollover evaluates one habit's period boundary for an external scheduler
// @Summary Evaluate rollover
// @Description Breaks the streak if the period before as_of's period was missed. Requires a service token.
// @Tags internal
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{habit_id=string,as_of=string} true "Rollover request"
// @Success 200 {object} object{applied=bool,streak=streakResponse,events=[]eventResponse}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /api/v1/internal/rollover [post]
func (h *HabitHandler) EvaluateRollover(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HabitID string `json:"habit_id"`
		AsOf    string `json:"as_of"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	habitID, err := uuid.Parse(req.HabitID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid habit ID")
		return
	}
	asOf, err := entity.ParseDate(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.habitService.EvaluateRollover(r.Context(), habitID, asOf)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.publish(r, result.Events)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"applied": result.Applied,
		"streak":  streakToResponse(result.Streak),
		"events":  eventsToResponse(result.Events),
	})
}

// publish hands events to the publisher, logging delivery failures
func (h *HabitHandler) publish(r *http.Request, events []event.Event) {
	if len(events) == 0 {
		return
	}
	if err := h.publisher.Publish(r.Context(), events...); err != nil {
		h.logger.Warn("failed to publish events", zap.Int("count", len(events)), zap.Error(err))
	}
}

func queryInt32(r *http.Request, key string) (int32, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}
