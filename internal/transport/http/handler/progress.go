package handler

import (
	"net/http"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/service"
	"sparkos/pkg/validation"
	"time"

	"go.uber.org/zap"
)

// ProgressHandler handles XP, dashboard and notification requests
type ProgressHandler struct {
	progressService     service.ProgressService
	notificationService service.NotificationService
	logger              *zap.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(
	progressService service.ProgressService,
	notificationService service.NotificationService,
	logger *zap.Logger,
) *ProgressHandler {
	return &ProgressHandler{
		progressService:     progressService,
		notificationService: notificationService,
		logger:              logger,
	}
}

// GetProgress returns XP, level and the level bar
// @Summary Get progress
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} entity.ProgressView
// @Failure 401 {object} object{error=string}
// @Router /api/v1/progress [get]
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	progress, err := h.progressService.GetProgress(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

// GetDashboard returns dashboard aggregates
// @Summary Get dashboard
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param tz query string false "IANA timezone for the weekly chart (default UTC)"
// @Success 200 {object} entity.Dashboard
// @Failure 400 {object} object{error=string}
// @Router /api/v1/dashboard [get]
func (h *ProgressHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	loc := time.UTC
	if tz := r.URL.Query().Get("tz"); tz != "" {
		if err := validation.ValidateTimezone(tz); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		loc, _ = time.LoadLocation(tz)
	}

	dashboard, err := h.progressService.GetDashboard(r.Context(), userID, loc)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

// GetNotifications drains the caller's pending toasts
// @Summary Get notifications
// @Description Returns and removes pending toasts, oldest first
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{notifications=[]entity.Notification}
// @Router /api/v1/notifications [get]
func (h *ProgressHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	notifications, err := h.notificationService.Drain(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	if notifications == nil {
		notifications = []*entity.Notification{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
	})
}
