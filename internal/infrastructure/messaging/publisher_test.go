package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Accordous/bb-client/internal/domain/event"
	"github.com/Accordous/bb-client/pkg/events"
	pkgkafka "github.com/Accordous/bb-client/pkg/kafka"
)

type fakeWriter struct {
	topic    string
	messages []pkgkafka.Message
	err      error
}

func (f *fakeWriter) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	f.topic = topic
	f.messages = append(f.messages, messages...)
	return f.err
}

func TestPublisher_Envelope(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w)

	evt := event.NewBoletoPaid(event.Settlement{BoletoID: "42", State: 1, AmountPaid: "10.00", Currency: "BRL"})
	require.NoError(t, p.Publish(context.Background(), "bb.cobranca.settlements", evt))

	assert.Equal(t, "bb.cobranca.settlements", w.topic)
	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, []byte("42"), msg.Key)
	assert.Equal(t, event.TypeBoletoPaid, msg.Headers["event_type"])
	assert.Equal(t, event.AggregateTypeBoleto, msg.Headers["aggregate_type"])
	assert.Equal(t, evt.EventID(), msg.Headers["event_id"])

	var env events.Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, evt.EventID(), env.ID)
	assert.Equal(t, "42", env.AggregateID)
	assert.JSONEq(t, string(evt.Payload()), string(env.Payload))
}

func TestPublisher_NoEvents(t *testing.T) {
	w := &fakeWriter{err: errors.New("should not be called")}
	assert.NoError(t, NewPublisher(w).Publish(context.Background(), "t"))
	assert.Empty(t, w.topic)
}

func TestPublisher_ProducerError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	err := NewPublisher(w).Publish(context.Background(), "t", event.NewBoletoWriteOffCancelled(event.Settlement{BoletoID: "1"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka publish")
}
