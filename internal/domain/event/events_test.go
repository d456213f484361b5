package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoletoPaid(t *testing.T) {
	evt := NewBoletoPaid(Settlement{
		BoletoID:        "00031285570000000042",
		AgreementNumber: 3128557,
		State:           1,
		AmountPaid:      "500.00",
		OriginalAmount:  "500.00",
		Currency:        "BRL",
	})

	assert.Equal(t, TypeBoletoPaid, evt.EventType())
	assert.Equal(t, "00031285570000000042", evt.AggregateID())
	assert.Equal(t, AggregateTypeBoleto, evt.AggregateType())
	assert.NotEmpty(t, evt.EventID())
	assert.False(t, evt.OccurredAt().IsZero())

	var payload Settlement
	require.NoError(t, json.Unmarshal(evt.Payload(), &payload))
	assert.Equal(t, evt.Settlement, payload)
}

func TestNewBoletoWriteOffCancelled(t *testing.T) {
	evt := NewBoletoWriteOffCancelled(Settlement{BoletoID: "1", State: 10})

	assert.Equal(t, TypeBoletoWriteOffCancelled, evt.EventType())
	assert.Contains(t, string(evt.Payload()), `"state":10`)
	assert.NotContains(t, string(evt.Payload()), "settled_at")
}
