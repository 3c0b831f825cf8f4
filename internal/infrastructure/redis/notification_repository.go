package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/repository"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// notificationTTL bounds how long undelivered toasts are kept
const notificationTTL = 7 * 24 * time.Hour

// NotificationRepository keeps each user's pending toasts in a capped Redis list
type NotificationRepository struct {
	client *redis.Client
	limit  int64
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)

// NewNotificationRepository creates a store keeping at most limit toasts per user
func NewNotificationRepository(client *redis.Client, limit int) *NotificationRepository {
	return &NotificationRepository{
		client: client,
		limit:  int64(limit),
	}
}

// notificationsKey generates Redis key for a user's toast list
func (r *NotificationRepository) notificationsKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:notifications", userID.String())
}

// Push appends a toast and trims the list to the newest limit entries
func (r *NotificationRepository) Push(ctx context.Context, n *entity.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	key := r.notificationsKey(n.UserID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		if r.limit > 0 {
			pipe.LTrim(ctx, key, -r.limit, -1)
		}
		pipe.Expire(ctx, key, notificationTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}

	return nil
}

// Drain returns and removes all pending toasts of a user, oldest first
func (r *NotificationRepository) Drain(ctx context.Context, userID uuid.UUID) ([]*entity.Notification, error) {
	key := r.notificationsKey(userID)

	var items *redis.StringSliceCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		items = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to drain notifications: %w", err)
	}

	raw, err := items.Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}

	notifications := make([]*entity.Notification, 0, len(raw))
	for _, item := range raw {
		n := &entity.Notification{}
		if err := json.Unmarshal([]byte(item), n); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, nil
}
