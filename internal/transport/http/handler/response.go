package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sparkos/internal/domain/entity"
	"sparkos/internal/transport/http/middleware"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// writeJSON writes v as a JSON response
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": msg}
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleServiceError maps domain errors to HTTP status codes
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entity.ErrAlreadyRecorded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, entity.ErrInvalidDate):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, entity.ErrInvalidHabit):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireUser returns the authenticated user or writes 401
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// pathHabitID parses the {id} path segment or writes 400
func pathHabitID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid habit ID")
		return uuid.Nil, false
	}
	return id, true
}
