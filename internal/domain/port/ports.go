package port

import (
	"context"

	"github.com/Accordous/bb-client/pkg/bbapi"
	"github.com/Accordous/bb-client/pkg/events"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, events ...events.DomainEvent) error
}

// BoletoReader looks up the current state of a registered boleto.
// *bbapi.Client satisfies it.
type BoletoReader interface {
	GetBoleto(ctx context.Context, id string, agreement int64) (*bbapi.BoletoDetail, error)
}
