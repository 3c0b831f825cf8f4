package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind represents the kind of toast shown to the user
type NotificationKind string

const (
	NotificationKindSuccess NotificationKind = "success"
	NotificationKindInfo    NotificationKind = "info"
	NotificationKindWarning NotificationKind = "warning"
)

// Notification is a toast rendered by the presentation layer
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	EventType string           `json:"event_type"`
	CreatedAt time.Time        `json:"created_at"`
}
