package dto

import "github.com/Accordous/bb-client/pkg/webhook"

// Settlement outcomes.
const (
	OutcomePaid      = "paid"
	OutcomeCancelled = "cancelled"
	OutcomeRejected  = "rejected"
)

// ProcessSettlementRequest is the input DTO for one webhook delivery.
type ProcessSettlementRequest struct {
	Notifications []webhook.Notification
}

// SettlementResult reports what happened to one notification.
type SettlementResult struct {
	BoletoID string `json:"boleto_id"`
	Outcome  string `json:"outcome"`
	EventID  string `json:"event_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ProcessSettlementResponse is the output DTO for one webhook delivery.
type ProcessSettlementResponse struct {
	Results   []SettlementResult `json:"results"`
	Published int                `json:"published"`
	Rejected  int                `json:"rejected"`
}
