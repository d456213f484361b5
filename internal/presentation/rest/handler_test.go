package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Accordous/bb-client/internal/application/dto"
	"github.com/Accordous/bb-client/internal/presentation/rest"
	"github.com/Accordous/bb-client/pkg/observability"
	"github.com/Accordous/bb-client/pkg/testutil"
)

type mockProcessor struct {
	executeFunc func(ctx context.Context, req dto.ProcessSettlementRequest) (dto.ProcessSettlementResponse, error)
	received    []dto.ProcessSettlementRequest
}

func (m *mockProcessor) Execute(ctx context.Context, req dto.ProcessSettlementRequest) (dto.ProcessSettlementResponse, error) {
	m.received = append(m.received, req)
	if m.executeFunc != nil {
		return m.executeFunc(ctx, req)
	}
	resp := dto.ProcessSettlementResponse{Published: len(req.Notifications)}
	for _, n := range req.Notifications {
		resp.Results = append(resp.Results, dto.SettlementResult{BoletoID: n.ID, Outcome: dto.OutcomePaid})
	}
	return resp, nil
}

func newRouter(p rest.SettlementProcessor, checks map[string]rest.Check) http.Handler {
	logger := observability.NopLogger()
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	})
	return rest.NewHandler(p, rest.NewHealthHandler(checks, logger), metrics, logger).InitRouter()
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/baixa-operacional", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestReceiveSettlement_Accepted(t *testing.T) {
	p := &mockProcessor{}
	rec := post(t, newRouter(p, nil), testutil.SettlementNotificationJSON)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, p.received, 1)
	require.Len(t, p.received[0].Notifications, 1)
	assert.Equal(t, testutil.TestBoletoID, p.received[0].Notifications[0].ID)

	var resp dto.ProcessSettlementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Published)
}

func TestReceiveSettlement_Malformed(t *testing.T) {
	p := &mockProcessor{}
	rec := post(t, newRouter(p, nil), "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid notification")
	assert.Empty(t, p.received)
}

func TestReceiveSettlement_TooLarge(t *testing.T) {
	p := &mockProcessor{}
	rec := post(t, newRouter(p, nil), `"`+strings.Repeat("x", 2<<20)+`"`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, p.received)
}

func TestReceiveSettlement_AllRejected(t *testing.T) {
	p := &mockProcessor{
		executeFunc: func(_ context.Context, req dto.ProcessSettlementRequest) (dto.ProcessSettlementResponse, error) {
			return dto.ProcessSettlementResponse{
				Results:  []dto.SettlementResult{{Outcome: dto.OutcomeRejected, Error: "id is required"}},
				Rejected: 1,
			}, nil
		},
	}
	rec := post(t, newRouter(p, nil), `{"valorOriginal": 1}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "id is required")
}

func TestReceiveSettlement_PublishFailure(t *testing.T) {
	p := &mockProcessor{
		executeFunc: func(context.Context, dto.ProcessSettlementRequest) (dto.ProcessSettlementResponse, error) {
			return dto.ProcessSettlementResponse{}, errors.New("kafka publish: broker down")
		},
	}
	rec := post(t, newRouter(p, nil), testutil.SettlementNotificationJSON)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "broker down")
}

func TestHealthEndpoints(t *testing.T) {
	healthy := map[string]rest.Check{
		"kafka": func(context.Context) error { return nil },
	}
	h := newRouter(&mockProcessor{}, healthy)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"status":"UP"`, path)
	}
}

func TestReadiness_Down(t *testing.T) {
	checks := map[string]rest.Check{
		"kafka": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}
	rec := httptest.NewRecorder()
	newRouter(&mockProcessor{}, checks).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "DOWN", body.Status)
	assert.Equal(t, "UP", body.Checks["kafka"])
	assert.Equal(t, "DOWN: connection refused", body.Checks["redis"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&mockProcessor{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# metrics")
}

func TestUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&mockProcessor{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhooks/baixa-operacional", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
