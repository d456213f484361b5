package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/Accordous/bb-client/internal/application/usecase"
	"github.com/Accordous/bb-client/internal/domain/port"
	"github.com/Accordous/bb-client/internal/infrastructure/cache"
	"github.com/Accordous/bb-client/internal/infrastructure/config"
	"github.com/Accordous/bb-client/internal/infrastructure/messaging"
	"github.com/Accordous/bb-client/internal/presentation/rest"
	"github.com/Accordous/bb-client/pkg/bbapi"
	kafkapkg "github.com/Accordous/bb-client/pkg/kafka"
	"github.com/Accordous/bb-client/pkg/observability"
	"github.com/Accordous/bb-client/pkg/tlsutil"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env or defaults")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	// Initialize logger.
	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting cobrancad",
		"http_port", cfg.HTTPPort,
		"bb_environment", cfg.BB.Environment,
		"bb_lookup", cfg.BB.Enabled(),
	)

	// Initialize tracing.
	tracerProvider, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    true,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = tracerProvider.Shutdown(context.Background()) }()
	}

	// Initialize metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()
	meter := meterProvider.Meter("github.com/Accordous/bb-client/cmd/cobrancad")

	settlementMetrics, err := observability.NewSettlementMetrics(meter)
	if err != nil {
		logger.Error("failed to create settlement metrics", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer.
	producer, err := kafkapkg.NewProducer(cfg.Kafka)
	if err != nil {
		logger.Error("failed to create kafka producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	checks := map[string]rest.Check{
		"kafka": func(ctx context.Context) error { return kafkapkg.Ping(ctx, cfg.Kafka) },
	}

	// Billing API client, used to enrich notifications with the title state.
	var reader port.BoletoReader
	if cfg.BB.Enabled() {
		client, cleanup, err := newBillingClient(ctx, cfg, meter, logger, checks)
		if err != nil {
			logger.Error("failed to initialize billing api client", "error", err)
			os.Exit(1)
		}
		defer cleanup()
		reader = client
	}

	// Wire dependencies (DI via constructors).
	publisher := messaging.NewPublisher(producer)
	processSettlementUC := usecase.NewProcessSettlement(reader, publisher, settlementMetrics, logger)

	handler := rest.NewHandler(
		processSettlementUC,
		rest.NewHealthHandler(checks, logger),
		metricsHandler,
		logger,
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler.InitRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.TLS.Enabled() {
		tlsCfg, err := tlsutil.ServerTLSConfig(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.ClientCAFile)
		if err != nil {
			logger.Error("failed to load server TLS material", "error", err)
			os.Exit(1)
		}
		httpServer.TLSConfig = tlsCfg
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort, "tls", cfg.TLS.Enabled())
		var err error
		if cfg.TLS.Enabled() {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	logger.Info("cobrancad stopped")
}

// newBillingClient builds the API client with its token source. Tokens are
// shared through Redis when REDIS_ADDR is set.
func newBillingClient(
	ctx context.Context,
	cfg config.Config,
	meter metric.Meter,
	logger *slog.Logger,
	checks map[string]rest.Check,
) (*bbapi.Client, func(), error) {
	httpClient := &http.Client{Timeout: cfg.BB.Timeout}
	if cfg.BB.TLS.Enabled() {
		tlsCfg, err := tlsutil.ClientTLSConfig(cfg.BB.TLS)
		if err != nil {
			return nil, nil, fmt.Errorf("billing api tls: %w", err)
		}
		httpClient.Transport = &http.Transport{TLSClientConfig: tlsCfg}
	}

	cleanup := func() {}
	var tokenCache bbapi.TokenCache
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisConnection(ctx, cache.ConnectionInfo{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { _ = redisClient.Close() }
		tokenCache = bbapi.NewRedisTokenCache(redisClient, cfg.Redis.KeyPrefix)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		logger.Info("sharing billing api tokens through redis", "addr", cfg.Redis.Addr)
	}

	tokens, err := bbapi.NewCachedTokenSource(cfg.BB.Credentials(), tokenCache,
		bbapi.WithTokenHTTPClient(httpClient),
		bbapi.WithTokenLogger(logger),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	clientMetrics, err := observability.NewClientMetrics(meter)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	client, err := bbapi.NewClient(cfg.BB.BaseURL, cfg.BB.AppKey, tokens,
		bbapi.WithHTTPClient(httpClient),
		bbapi.WithLogger(logger),
		bbapi.WithMetrics(clientMetrics),
		bbapi.WithTracerProvider(otel.GetTracerProvider()),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return client, cleanup, nil
}
