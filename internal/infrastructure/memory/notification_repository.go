package memory

import (
	"context"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/repository"
	"sync"

	"github.com/google/uuid"
)

// NotificationRepository keeps the newest toasts of every user in memory
type NotificationRepository struct {
	mu      sync.Mutex
	limit   int
	pending map[uuid.UUID][]*entity.Notification
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)

// NewNotificationRepository creates a store keeping at most limit toasts per user
func NewNotificationRepository(limit int) *NotificationRepository {
	return &NotificationRepository{
		limit:   limit,
		pending: make(map[uuid.UUID][]*entity.Notification),
	}
}

func (r *NotificationRepository) Push(_ context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *n
	list := append(r.pending[n.UserID], &c)
	if r.limit > 0 && len(list) > r.limit {
		list = list[len(list)-r.limit:]
	}
	r.pending[n.UserID] = list
	return nil
}

func (r *NotificationRepository) Drain(_ context.Context, userID uuid.UUID) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.pending[userID]
	delete(r.pending, userID)
	return list, nil
}
