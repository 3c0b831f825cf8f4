package kafka

import (
	"context"
	"errors"
	"fmt"
	"sparkos/internal/config"
	"sparkos/internal/domain/event"
	"sparkos/internal/domain/service"
	"sparkos/pkg/metrics"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes engine events to Kafka
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

var _ service.EventPublisher = (*Producer)(nil)

// NewProducer creates a new Kafka producer
func NewProducer(cfg *config.KafkaConfig, logger *zap.Logger) *Producer {
	// Messages are keyed by user, so a user's events share a partition
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    10,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

// Publish writes events in order. Each event is one message keyed by its owner.
func (p *Producer) Publish(ctx context.Context, events ...event.Event) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(events))
	encoded := make([]event.Event, 0, len(events))
	var errs []error
	for _, e := range events {
		msg, err := newMessage(e)
		if err != nil {
			metrics.IncrementEventPublished(string(e.Type()), "failed")
			errs = append(errs, err)
			continue
		}
		messages = append(messages, msg)
		encoded = append(encoded, e)
	}

	if len(messages) > 0 {
		if err := p.writer.WriteMessages(ctx, messages...); err != nil {
			for _, e := range encoded {
				metrics.IncrementEventPublished(string(e.Type()), "failed")
			}
			return fmt.Errorf("failed to publish events: %w", err)
		}
	}

	for _, e := range encoded {
		metrics.IncrementEventPublished(string(e.Type()), "success")
		p.logger.Debug("published event",
			zap.String("type", string(e.Type())),
			zap.String("user_id", e.Owner().String()),
		)
	}

	return errors.Join(errs...)
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// newMessage encodes e into a Kafka message keyed by the owning user
func newMessage(e event.Event) (kafka.Message, error) {
	data, err := event.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(e.Owner().String()),
		Value: data,
		Time:  e.At(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type())},
		},
	}, nil
}
