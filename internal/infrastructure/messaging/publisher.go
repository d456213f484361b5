package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Accordous/bb-client/internal/domain/port"
	"github.com/Accordous/bb-client/pkg/events"
	pkgkafka "github.com/Accordous/bb-client/pkg/kafka"
)

var _ port.EventPublisher = (*Publisher)(nil)

// messageWriter is the part of *pkgkafka.Producer the publisher needs.
type messageWriter interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// Publisher implements EventPublisher using Kafka. Each event travels as an
// events.Envelope keyed by its aggregate ID, so notifications for one boleto
// stay ordered within a partition.
type Publisher struct {
	producer messageWriter
}

func NewPublisher(producer messageWriter) *Publisher {
	return &Publisher{producer: producer}
}

func (p *Publisher) Publish(ctx context.Context, topic string, domainEvents ...events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}
	messages := make([]pkgkafka.Message, 0, len(domainEvents))
	for _, evt := range domainEvents {
		payload, err := json.Marshal(events.NewEnvelope(evt))
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
		}
		messages = append(messages, pkgkafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type":     evt.EventType(),
				"aggregate_type": evt.AggregateType(),
				"event_id":       evt.EventID(),
			},
		})
	}
	if err := p.producer.Publish(ctx, topic, messages...); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}
