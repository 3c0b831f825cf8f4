package kafka

import (
	"context"
	"errors"
	"fmt"
	"sparkos/internal/config"
	"sparkos/internal/domain/event"
	"sparkos/internal/domain/service"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Consumer feeds engine events from Kafka into the notification service
type Consumer struct {
	reader              *kafka.Reader
	notificationService service.NotificationService
	logger              *zap.Logger
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(
	cfg *config.KafkaConfig,
	notificationService service.NotificationService,
	logger *zap.Logger,
) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	return &Consumer{
		reader:              reader,
		notificationService: notificationService,
		logger:              logger,
	}
}

// Start consumes messages until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("starting kafka consumer", zap.String("topic", c.reader.Config().Topic))

	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("stopping kafka consumer")
				return nil
			}
			c.logger.Error("failed to read message", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		// A bad message is logged and skipped so it cannot block the partition
		if err := c.processMessage(ctx, message); err != nil {
			c.logger.Error("failed to process message",
				zap.Int("partition", message.Partition),
				zap.Int64("offset", message.Offset),
				zap.Error(err),
			)
		}
	}
}

// processMessage decodes one message and hands the event to the notification service
func (c *Consumer) processMessage(ctx context.Context, message kafka.Message) error {
	e, err := event.Unmarshal(message.Value)
	if err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	c.logger.Debug("received event",
		zap.String("type", string(e.Type())),
		zap.String("user_id", e.Owner().String()),
	)

	if err := c.notificationService.HandleEvent(ctx, e); err != nil {
		return fmt.Errorf("failed to handle %s event: %w", e.Type(), err)
	}
	return nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
