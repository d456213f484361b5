package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Accordous/bb-client/internal/application/dto"
	"github.com/Accordous/bb-client/internal/domain/event"
	"github.com/Accordous/bb-client/internal/domain/port"
	"github.com/Accordous/bb-client/pkg/events"
	"github.com/Accordous/bb-client/pkg/observability"
	"github.com/Accordous/bb-client/pkg/webhook"
)

const TopicSettlements = "bb.cobranca.settlements"

// ProcessSettlement turns settlement notifications into BoletoPaid and
// BoletoWriteOffCancelled events. When a BoletoReader is configured each
// event also carries the title state the API reports at processing time.
type ProcessSettlement struct {
	reader    port.BoletoReader
	publisher port.EventPublisher
	metrics   *observability.SettlementMetrics
	logger    *slog.Logger
}

// NewProcessSettlement creates the use case. reader and metrics may be nil.
func NewProcessSettlement(
	reader port.BoletoReader,
	publisher port.EventPublisher,
	metrics *observability.SettlementMetrics,
	logger *slog.Logger,
) *ProcessSettlement {
	return &ProcessSettlement{
		reader:    reader,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute validates every notification and publishes one event per valid
// notification in a single batch. Invalid notifications are reported in the
// response, not as an error; the error is reserved for publish failures so
// the caller can ask the bank to redeliver.
func (uc *ProcessSettlement) Execute(ctx context.Context, req dto.ProcessSettlementRequest) (dto.ProcessSettlementResponse, error) {
	var (
		resp      dto.ProcessSettlementResponse
		collector events.EventCollector
	)

	for _, n := range req.Notifications {
		result := dto.SettlementResult{BoletoID: n.ID}

		evt, outcome, err := uc.toEvent(ctx, n)
		if err != nil {
			result.Outcome = dto.OutcomeRejected
			result.Error = err.Error()
			resp.Rejected++
			uc.logger.Warn("settlement notification rejected", "boleto_id", n.ID, "error", err)
		} else {
			result.Outcome = outcome
			result.EventID = evt.EventID()
			collector.Record(evt)
		}
		resp.Results = append(resp.Results, result)
	}

	if collector.Len() > 0 {
		pending := collector.ClearEvents()
		if err := uc.publisher.Publish(ctx, TopicSettlements, pending...); err != nil {
			return resp, fmt.Errorf("publish settlement events: %w", err)
		}
		resp.Published = len(pending)
	}

	for _, r := range resp.Results {
		uc.metrics.Record(ctx, r.Outcome)
	}
	return resp, nil
}

func (uc *ProcessSettlement) toEvent(ctx context.Context, n webhook.Notification) (events.DomainEvent, string, error) {
	if err := n.Validate(); err != nil {
		return nil, "", err
	}
	state, err := n.State()
	if err != nil {
		return nil, "", err
	}

	s := event.Settlement{
		BoletoID:         n.ID,
		AgreementNumber:  n.Agreement(),
		State:            int(state),
		StateDescription: state.Description(),
		AmountPaid:       n.AmountPaid().Amount().StringFixed(2),
		OriginalAmount:   n.Original().Amount().StringFixed(2),
		Currency:         n.AmountPaid().Currency().Code(),
	}
	if n.OperationNumber != nil {
		s.OperationNumber = *n.OperationNumber
	}
	if at, ok := n.SettledAt(); ok {
		at = at.UTC()
		s.SettledAt = &at
	}
	if ch, ok := n.Channel(); ok {
		s.Channel = int(ch)
	}
	if m, ok := n.Method(); ok {
		s.PaymentMethod = int(m)
	}
	s.CurrentTitleState = uc.currentTitleState(ctx, n)

	if state.IsCancellation() {
		return event.NewBoletoWriteOffCancelled(s), dto.OutcomeCancelled, nil
	}
	return event.NewBoletoPaid(s), dto.OutcomePaid, nil
}

// currentTitleState is best effort: a failed lookup must not block the
// settlement event.
func (uc *ProcessSettlement) currentTitleState(ctx context.Context, n webhook.Notification) string {
	if uc.reader == nil {
		return ""
	}
	detail, err := uc.reader.GetBoleto(ctx, n.ID, n.Agreement())
	if err != nil {
		uc.logger.Warn("boleto lookup failed", "boleto_id", n.ID, "error", err)
		return ""
	}
	ts, err := detail.TitleState()
	if err != nil {
		uc.logger.Debug("unmapped title state", "boleto_id", n.ID, "code", detail.StateCode)
		return ""
	}
	return string(ts)
}
