package observability

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
}

// InitMetrics initializes an OpenTelemetry meter provider exported through a
// dedicated Prometheus registry. The returned handler serves /metrics.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("prometheus exporter for %s: %w", cfg.ServiceName, err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return provider, handler, nil
}

// ClientMetrics instruments calls made to the billing API.
type ClientMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewClientMetrics registers the client instruments on meter.
func NewClientMetrics(meter metric.Meter) (*ClientMetrics, error) {
	requests, err := meter.Int64Counter("bbapi.client.requests",
		metric.WithDescription("Requests sent to the billing API"),
	)
	if err != nil {
		return nil, fmt.Errorf("requests counter: %w", err)
	}

	duration, err := meter.Float64Histogram("bbapi.client.duration",
		metric.WithDescription("Billing API request latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("duration histogram: %w", err)
	}

	return &ClientMetrics{requests: requests, duration: duration}, nil
}

// Record counts one request. A status of 0 means the request never got a
// response.
func (m *ClientMetrics) Record(ctx context.Context, operation string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", statusLabel(status)),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// SettlementMetrics counts webhook notifications handled by the daemon.
type SettlementMetrics struct {
	notifications metric.Int64Counter
}

func NewSettlementMetrics(meter metric.Meter) (*SettlementMetrics, error) {
	notifications, err := meter.Int64Counter("cobranca.settlement.notifications",
		metric.WithDescription("Settlement notifications received, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("notifications counter: %w", err)
	}
	return &SettlementMetrics{notifications: notifications}, nil
}

// Record counts one notification with its outcome, e.g. "paid" or "rejected".
func (m *SettlementMetrics) Record(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.notifications.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
