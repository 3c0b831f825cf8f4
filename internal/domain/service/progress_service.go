package service

import (
	"context"
	"sparkos/internal/domain/entity"
	"time"

	"github.com/google/uuid"
)

// ProgressService defines the interface for XP, level and dashboard reads
type ProgressService interface {
	// GetProgress returns the user's XP, level and level bar
	GetProgress(ctx context.Context, userID uuid.UUID) (*entity.ProgressView, error)

	// GetDashboard aggregates habit and progress data. Chart days are
	// calendar days in loc.
	GetDashboard(ctx context.Context, userID uuid.UUID, loc *time.Location) (*entity.Dashboard, error)

	// ComputeLevel returns the level reached with totalXP
	ComputeLevel(totalXP int64) int32
}
