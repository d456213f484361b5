package event

import (
	"encoding/json"
	"time"

	"github.com/Accordous/bb-client/pkg/events"
)

const AggregateTypeBoleto = "Boleto"

const (
	TypeBoletoPaid              = "cobranca.boleto.paid"
	TypeBoletoWriteOffCancelled = "cobranca.boleto.write_off_cancelled"
)

// Settlement is the payload shared by settlement events. Amounts are decimal
// strings.
type Settlement struct {
	BoletoID          string     `json:"boleto_id"`
	AgreementNumber   int64      `json:"agreement_number"`
	OperationNumber   int64      `json:"operation_number,omitempty"`
	State             int        `json:"state"`
	StateDescription  string     `json:"state_description"`
	AmountPaid        string     `json:"amount_paid"`
	OriginalAmount    string     `json:"original_amount"`
	Currency          string     `json:"currency"`
	SettledAt         *time.Time `json:"settled_at,omitempty"`
	Channel           int        `json:"channel,omitempty"`
	PaymentMethod     int        `json:"payment_method,omitempty"`
	CurrentTitleState string     `json:"current_title_state,omitempty"`
}

// BoletoPaid is emitted when the bank reports an operational write-off, at
// BB or at another bank.
type BoletoPaid struct {
	events.BaseEvent
	Settlement
}

func NewBoletoPaid(s Settlement) BoletoPaid {
	payload, _ := json.Marshal(s)
	return BoletoPaid{
		BaseEvent:  events.NewBaseEvent(TypeBoletoPaid, s.BoletoID, AggregateTypeBoleto, payload),
		Settlement: s,
	}
}

// BoletoWriteOffCancelled is emitted when a previous operational write-off
// is reversed.
type BoletoWriteOffCancelled struct {
	events.BaseEvent
	Settlement
}

func NewBoletoWriteOffCancelled(s Settlement) BoletoWriteOffCancelled {
	payload, _ := json.Marshal(s)
	return BoletoWriteOffCancelled{
		BaseEvent:  events.NewBaseEvent(TypeBoletoWriteOffCancelled, s.BoletoID, AggregateTypeBoleto, payload),
		Settlement: s,
	}
}
