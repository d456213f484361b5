package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Accordous/bb-client/internal/application/dto"
	"github.com/Accordous/bb-client/pkg/webhook"
)

const (
	// maxWebhookBody bounds a single delivery.
	maxWebhookBody = 1 << 20
	// maxConcurrentDeliveries caps in-flight webhook requests; the rest get 429.
	maxConcurrentDeliveries = 64
)

// SettlementProcessor is implemented by usecase.ProcessSettlement.
type SettlementProcessor interface {
	Execute(ctx context.Context, req dto.ProcessSettlementRequest) (dto.ProcessSettlementResponse, error)
}

type Handler struct {
	settlements SettlementProcessor
	health      *HealthHandler
	metrics     http.Handler
	logger      *slog.Logger
}

// NewHandler wires the HTTP surface. metrics may be nil, in which case
// /metrics is not served.
func NewHandler(settlements SettlementProcessor, health *HealthHandler, metrics http.Handler, logger *slog.Logger) *Handler {
	return &Handler{
		settlements: settlements,
		health:      health,
		metrics:     metrics,
		logger:      logger,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(h.logger),
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	r.Get("/healthz", h.health.LivenessHandler())
	r.Get("/readyz", h.health.ReadinessHandler())
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics)
	}

	r.Route("/webhooks", func(r chi.Router) {
		r.Use(middleware.Throttle(maxConcurrentDeliveries))
		r.Post("/baixa-operacional", h.receiveSettlement)
	})

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

// receiveSettlement answers 200 when at least one notification was accepted,
// 422 when every notification was invalid and 503 when events could not be
// published, which makes the bank redeliver.
func (h *Handler) receiveSettlement(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxWebhookBody)
	notifications, err := webhook.Decode(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "payload too large"})
			return
		}
		h.logger.Warn("settlement payload rejected", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	resp, err := h.settlements.Execute(r.Context(), dto.ProcessSettlementRequest{Notifications: notifications})
	if err != nil {
		h.logger.Error("settlement processing failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "settlement could not be recorded"})
		return
	}

	status := http.StatusOK
	if resp.Rejected == len(resp.Results) {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
