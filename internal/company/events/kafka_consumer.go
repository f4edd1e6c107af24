package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes a single decoded event. A returned error leaves the
// message uncommitted.
type Handler func(context.Context, Event) error

type Consumer struct {
	reader  KafkaReader
	logger  *zap.Logger
	handler Handler
}

// NewConsumer reads company events from topic as part of groupID.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
			Dialer:  kafka.DefaultDialer,
		}),
		logger: logger.Named("kafka_consumer"),
	}
}

func (c *Consumer) RegisterHandler(fn Handler) {
	c.handler = fn
}

// Start runs the consume loop in the background until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		if err := c.Run(ctx); err != nil {
			c.logger.Error("Consumer stopped", zap.Error(err))
		}
	}()
}

// Run consumes until ctx is cancelled, then returns nil. Any other reader
// failure is logged and retried on the next fetch.
func (c *Consumer) Run(ctx context.Context) error {
	if c.handler == nil {
		return errors.New("no event handler registered")
	}
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to fetch message", zap.Error(err))
			continue
		}

		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Error("Failed to parse event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			// An unreadable message will never parse; skip past it.
			c.commit(ctx, msg, "")
			continue
		}

		if err := c.handler(ctx, event); err != nil {
			c.logger.Error("Failed to handle event",
				zap.Error(err),
				zap.String("event_type", string(event.Type)),
			)
			continue
		}

		c.commit(ctx, msg, event.Type)
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message, eventType EventType) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message",
			zap.Error(err),
			zap.String("event_type", string(eventType)),
		)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", zap.Error(err))
	}
}
