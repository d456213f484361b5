package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"
)

const defaultMaxBytes = 10 << 20

// Handler processes a consumed Kafka message.
type Handler func(ctx context.Context, msg Message) error

// HandlerError is returned by Consumer.Start when the handler rejects a
// message. The message's offset is left uncommitted so the group redelivers
// it to the next reader.
type HandlerError struct {
	Topic     string
	Partition int
	Offset    int64
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("kafka: handler failed at %s/%d@%d: %v", e.Topic, e.Partition, e.Offset, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// ConsumerOption tunes the underlying reader.
type ConsumerOption func(*kafkago.ReaderConfig)

// WithLatestOffset makes a new consumer group start at the end of the topic
// instead of replaying it.
func WithLatestOffset() ConsumerOption {
	return func(rc *kafkago.ReaderConfig) { rc.StartOffset = kafkago.LastOffset }
}

// WithMaxBytes caps the size of a fetch batch.
func WithMaxBytes(n int) ConsumerOption {
	return func(rc *kafkago.ReaderConfig) { rc.MaxBytes = n }
}

// Consumer reads one topic as part of cfg.ConsumerGroup, e.g. a downstream
// service reading settlement events.
type Consumer struct {
	reader  *kafkago.Reader
	handler Handler
	logger  *slog.Logger
}

func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger, opts ...ConsumerOption) (*Consumer, error) {
	if handler == nil {
		return nil, errors.New("kafka consumer: nil handler")
	}
	if cfg.ConsumerGroup == "" {
		return nil, errors.New("kafka consumer: consumer group is required")
	}
	dialer, err := cfg.dialer()
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	rc := readerConfig(cfg, topic, dialer, opts...)
	return &Consumer{
		reader:  kafkago.NewReader(rc),
		handler: handler,
		logger:  logger.With("topic", topic, "group", cfg.ConsumerGroup),
	}, nil
}

func readerConfig(cfg Config, topic string, dialer *kafkago.Dialer, opts ...ConsumerOption) kafkago.ReaderConfig {
	rc := kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    defaultMaxBytes,
		StartOffset: kafkago.FirstOffset,
		Dialer:      dialer,
	}
	for _, opt := range opts {
		opt(&rc)
	}
	return rc
}

// Start fetches and handles messages until ctx is done, which returns nil.
// A handler failure stops the loop with a *HandlerError.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer starting")

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopped")
				return nil
			}
			return fmt.Errorf("kafka: fetch: %w", err)
		}

		if err := c.handler(ctx, fromKafkaMessage(m)); err != nil {
			return &HandlerError{Topic: m.Topic, Partition: m.Partition, Offset: m.Offset, Err: err}
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("commit failed", "partition", m.Partition, "offset", m.Offset, "error", err)
		}
	}
}

func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("kafka: close reader: %w", err)
	}
	return nil
}
