package memory

import (
	"context"
	"errors"
	"sparkos/internal/domain/event"
	"sparkos/internal/domain/service"
	"sparkos/pkg/metrics"
)

// EventBus delivers events synchronously to a handler in the same process.
// It stands in for the Kafka producer/consumer pair in memory mode.
type EventBus struct {
	handle func(ctx context.Context, e event.Event) error
}

var _ service.EventPublisher = (*EventBus)(nil)

// NewEventBus creates a bus dispatching to handle
func NewEventBus(handle func(ctx context.Context, e event.Event) error) *EventBus {
	return &EventBus{handle: handle}
}

func (b *EventBus) Publish(ctx context.Context, events ...event.Event) error {
	var errs []error
	for _, e := range events {
		if err := b.handle(ctx, e); err != nil {
			metrics.IncrementEventPublished(string(e.Type()), "failed")
			errs = append(errs, err)
			continue
		}
		metrics.IncrementEventPublished(string(e.Type()), "success")
	}
	return errors.Join(errs...)
}

func (b *EventBus) Close() error {
	return nil
}
