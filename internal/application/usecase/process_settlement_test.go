package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Accordous/bb-client/internal/application/dto"
	"github.com/Accordous/bb-client/internal/application/usecase"
	"github.com/Accordous/bb-client/internal/domain/event"
	"github.com/Accordous/bb-client/pkg/bbapi"
	"github.com/Accordous/bb-client/pkg/events"
	"github.com/Accordous/bb-client/pkg/observability"
	"github.com/Accordous/bb-client/pkg/testutil"
	"github.com/Accordous/bb-client/pkg/webhook"
)

// --- Mock implementations ---

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, topic string, events ...events.DomainEvent) error
	topics          []string
	publishedEvents []events.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, topic string, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, topic, evts...)
	}
	m.topics = append(m.topics, topic)
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type mockBoletoReader struct {
	getFunc func(ctx context.Context, id string, agreement int64) (*bbapi.BoletoDetail, error)
	calls   int
}

func (m *mockBoletoReader) GetBoleto(ctx context.Context, id string, agreement int64) (*bbapi.BoletoDetail, error) {
	m.calls++
	return m.getFunc(ctx, id, agreement)
}

func notifications(t *testing.T, body string) []webhook.Notification {
	t.Helper()
	ns, err := webhook.Decode(strings.NewReader(body))
	require.NoError(t, err)
	return ns
}

const cancellationJSON = `{
	"id": "00031285570000000043", "dataRegistro": "01.03.2026", "dataVencimento": "31.03.2026",
	"valorOriginal": 120.50, "valorPagoSacado": 0, "numeroConvenio": 3128557,
	"numeroOperacao": 2, "carteiraConvenio": 17, "variacaoCarteiraConvenio": 35,
	"codigoEstadoBaixaOperacional": 10, "codigoModalidadeBoleto": 1
}`

// --- Tests ---

func TestProcessSettlement_Paid(t *testing.T) {
	publisher := &mockEventPublisher{}
	uc := usecase.NewProcessSettlement(nil, publisher, nil, observability.NopLogger())

	resp, err := uc.Execute(context.Background(), dto.ProcessSettlementRequest{
		Notifications: notifications(t, testutil.SettlementNotificationJSON),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Published)
	assert.Zero(t, resp.Rejected)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, dto.OutcomePaid, resp.Results[0].Outcome)

	require.Len(t, publisher.publishedEvents, 1)
	assert.Equal(t, []string{usecase.TopicSettlements}, publisher.topics)
	paid, ok := publisher.publishedEvents[0].(event.BoletoPaid)
	require.True(t, ok)
	assert.Equal(t, resp.Results[0].EventID, paid.EventID())
	assert.Equal(t, testutil.TestBoletoID, paid.BoletoID)
	assert.Equal(t, "500.00", paid.AmountPaid)
	assert.Equal(t, "BRL", paid.Currency)
	assert.Equal(t, int64(10045678), paid.OperationNumber)
	assert.Equal(t, 4, paid.Channel)
	assert.Equal(t, 5, paid.PaymentMethod)
	require.NotNil(t, paid.SettledAt)
	assert.Equal(t, "2026-03-15T17:32:10Z", paid.SettledAt.Format("2006-01-02T15:04:05Z07:00"))
	assert.Empty(t, paid.CurrentTitleState)
}

func TestProcessSettlement_MixedBatch(t *testing.T) {
	publisher := &mockEventPublisher{}
	uc := usecase.NewProcessSettlement(nil, publisher, nil, observability.NopLogger())

	batch := append(notifications(t, testutil.SettlementNotificationJSON), notifications(t, cancellationJSON)...)
	batch = append(batch, webhook.Notification{ID: "broken"})

	resp, err := uc.Execute(context.Background(), dto.ProcessSettlementRequest{Notifications: batch})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Published)
	assert.Equal(t, 1, resp.Rejected)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, dto.OutcomePaid, resp.Results[0].Outcome)
	assert.Equal(t, dto.OutcomeCancelled, resp.Results[1].Outcome)
	assert.Equal(t, dto.OutcomeRejected, resp.Results[2].Outcome)
	assert.Contains(t, resp.Results[2].Error, "dataRegistro is required")

	cancelled, ok := publisher.publishedEvents[1].(event.BoletoWriteOffCancelled)
	require.True(t, ok)
	assert.Equal(t, "0.00", cancelled.AmountPaid)
	assert.Equal(t, "120.50", cancelled.OriginalAmount)
	assert.Nil(t, cancelled.SettledAt)
}

func TestProcessSettlement_AllRejectedPublishesNothing(t *testing.T) {
	publisher := &mockEventPublisher{}
	uc := usecase.NewProcessSettlement(nil, publisher, nil, observability.NopLogger())

	resp, err := uc.Execute(context.Background(), dto.ProcessSettlementRequest{
		Notifications: []webhook.Notification{{}, {ID: "x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Rejected)
	assert.Zero(t, resp.Published)
	assert.Empty(t, publisher.publishedEvents)
}

func TestProcessSettlement_PublishFailure(t *testing.T) {
	publisher := &mockEventPublisher{
		publishFunc: func(context.Context, string, ...events.DomainEvent) error {
			return errors.New("broker down")
		},
	}
	uc := usecase.NewProcessSettlement(nil, publisher, nil, observability.NopLogger())

	resp, err := uc.Execute(context.Background(), dto.ProcessSettlementRequest{
		Notifications: notifications(t, testutil.SettlementNotificationJSON),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Zero(t, resp.Published)
}

func TestProcessSettlement_EnrichesWithTitleState(t *testing.T) {
	reader := &mockBoletoReader{
		getFunc: func(_ context.Context, id string, agreement int64) (*bbapi.BoletoDetail, error) {
			assert.Equal(t, testutil.TestBoletoID, id)
			assert.Equal(t, testutil.TestAgreementNumber, agreement)
			return &bbapi.BoletoDetail{StateCode: 2}, nil
		},
	}
	publisher := &mockEventPublisher{}
	uc := usecase.NewProcessSettlement(reader, publisher, nil, observability.NopLogger())

	_, err := uc.Execute(context.Background(), dto.ProcessSettlementRequest{
		Notifications: notifications(t, testutil.SettlementNotificationJSON),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, reader.calls)
	paid := publisher.publishedEvents[0].(event.BoletoPaid)
	assert.Equal(t, "02", paid.CurrentTitleState)
}

func TestProcessSettlement_LookupFailureDoesNotBlock(t *testing.T) {
	reader := &mockBoletoReader{
		getFunc: func(context.Context, string, int64) (*bbapi.BoletoDetail, error) {
			return nil, &bbapi.APIError{StatusCode: 503}
		},
	}
	publisher := &mockEventPublisher{}
	uc := usecase.NewProcessSettlement(reader, publisher, nil, observability.NopLogger())

	resp, err := uc.Execute(context.Background(), dto.ProcessSettlementRequest{
		Notifications: notifications(t, testutil.SettlementNotificationJSON),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Published)
	assert.Empty(t, publisher.publishedEvents[0].(event.BoletoPaid).CurrentTitleState)
}

func TestProcessSettlement_RecordsOutcomeMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observability.NewSettlementMetrics(provider.Meter("test"))
	require.NoError(t, err)

	uc := usecase.NewProcessSettlement(nil, &mockEventPublisher{}, metrics, observability.NopLogger())
	batch := append(notifications(t, testutil.SettlementNotificationJSON), webhook.Notification{})
	_, err = uc.Execute(context.Background(), dto.ProcessSettlementRequest{Notifications: batch})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, sum.DataPoints, 2)
}
