// Package bbapi is a client for the Banco do Brasil cobrança v2 REST API:
// boleto registration, queries, amendments, write-offs, PIX on boletos and
// agreement-level operational write-off settings.
package bbapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Accordous/bb-client/pkg/observability"
)

// Provider environments.
const (
	ProductionBaseURL  = "https://api.bb.com.br"
	SandboxBaseURL     = "https://api.hm.bb.com.br"
	ProductionTokenURL = "https://oauth.bb.com.br/oauth/token"
	SandboxTokenURL    = "https://oauth.hm.bb.com.br/oauth/token"
)

const (
	appKeyParam    = "gw-dev-app-key"
	boletosPath    = "/cobrancas/v2/boletos"
	conveniosPath  = "/cobrancas/v2/convenios"
	writeOffsPath  = "/cobrancas/v2/boletos-baixa-operacional"
	maxErrorBody   = 64 << 10
	defaultTimeout = 30 * time.Second
)

// Client calls the billing API. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	appKey     string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.ClientMetrics
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. to present a client
// certificate.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithMetrics(m *observability.ClientMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(instrumentationName) }
}

const instrumentationName = "github.com/Accordous/bb-client/pkg/bbapi"

// NewClient creates a client for baseURL. appKey is the developer
// application key sent as gw-dev-app-key on every request.
func NewClient(baseURL, appKey string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("bbapi: invalid base URL %q", baseURL)
	}
	if tokens == nil {
		return nil, errors.New("bbapi: token source is required")
	}

	c := &Client{
		baseURL:    u,
		appKey:     appKey,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     observability.NopLogger(),
		tracer:     otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// call is one API request. body, when non-nil, is JSON encoded; out, when
// non-nil, receives the decoded 2xx response.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	out    any
}

func (c *Client) do(ctx context.Context, cl call) (err error) {
	ctx, span := c.tracer.Start(ctx, "bbapi."+cl.op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	status := 0
	defer func() {
		c.metrics.Record(ctx, cl.op, status, time.Since(start))
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("billing api request failed", "operation", cl.op, "error", err)
		return fmt.Errorf("bbapi %s: %w", cl.op, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	c.logger.Debug("billing api response",
		"operation", cl.op,
		"method", cl.method,
		"path", cl.path,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if status < 200 || status > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := newAPIError(status, raw)
		if status == http.StatusUnauthorized {
			c.invalidateToken(ctx)
		}
		c.logger.Warn("billing api error", "operation", cl.op, "status", status, "error", apiErr.Error())
		return apiErr
	}

	if cl.out == nil || status == http.StatusNoContent {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("bbapi %s: read response: %w", cl.op, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, cl.out); err != nil {
		return fmt.Errorf("bbapi %s: decode response: %w", cl.op, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + cl.path

	q := url.Values{}
	for k, vs := range cl.query {
		q[k] = vs
	}
	if c.appKey != "" {
		q.Set(appKeyParam, c.appKey)
	}
	u.RawQuery = q.Encode()

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("bbapi %s: encode request: %w", cl.op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("bbapi %s: build request: %w", cl.op, err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("bbapi %s: obtain token: %w", cl.op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// invalidator is implemented by token sources that cache.
type invalidator interface {
	Invalidate(ctx context.Context) error
}

func (c *Client) invalidateToken(ctx context.Context) {
	inv, ok := c.tokens.(invalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(ctx); err != nil {
		c.logger.Warn("token invalidation failed", "error", err)
	}
}
