package service

import (
	"context"
	"sparkos/internal/domain/event"
	"time"
)

// EventPublisher delivers engine events to the presentation side
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.Event) error
	Close() error
}

// Locker provides mutual exclusion across scheduler instances
type Locker interface {
	// TryLock acquires key for ttl. ok is false when someone else holds it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}
