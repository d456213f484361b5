package bbapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/Accordous/bb-client/pkg/observability"
)

// DefaultScopes are the scopes the billing operations need.
var DefaultScopes = []string{
	"cobrancas.boletos-info",
	"cobrancas.boletos-requisicao",
	"cobrancas.convenio-requisicao",
}

// expiryMargin is subtracted from expires_in so a cached token is never
// presented in its last minute.
const expiryMargin = 60 * time.Second

// TokenSource yields a bearer token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource for callers that manage tokens themselves.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", errors.New("bbapi: static token is empty")
	}
	return string(s), nil
}

// Credentials identify the application on the OAuth server.
type Credentials struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

func (c Credentials) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "client id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client secret")
	}
	if c.TokenURL == "" {
		missing = append(missing, "token url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("bbapi: credentials missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// CachedTokenSource runs the client-credentials grant and keeps the token in
// a TokenCache until shortly before it expires. Concurrent callers that miss
// the cache share a single fetch.
type CachedTokenSource struct {
	cfg        clientcredentials.Config
	cache      TokenCache
	key        string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time

	mu sync.Mutex
}

// TokenOption configures a CachedTokenSource.
type TokenOption func(*CachedTokenSource)

// WithTokenHTTPClient sets the client used against the OAuth server.
func WithTokenHTTPClient(hc *http.Client) TokenOption {
	return func(s *CachedTokenSource) { s.httpClient = hc }
}

func WithTokenLogger(logger *slog.Logger) TokenOption {
	return func(s *CachedTokenSource) { s.logger = logger }
}

func withClock(now func() time.Time) TokenOption {
	return func(s *CachedTokenSource) { s.now = now }
}

// NewCachedTokenSource creates a token source for creds. A nil cache means a
// fresh MemoryTokenCache.
func NewCachedTokenSource(creds Credentials, cache TokenCache, opts ...TokenOption) (*CachedTokenSource, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	scopes := creds.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	if cache == nil {
		cache = NewMemoryTokenCache()
	}

	s := &CachedTokenSource{
		cfg: clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     creds.TokenURL,
			Scopes:       scopes,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		cache:  cache,
		key:    "token:" + creds.ClientID,
		logger: observability.NopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Token returns the cached token or fetches a new one.
func (s *CachedTokenSource) Token(ctx context.Context) (string, error) {
	if tok, ok := s.cached(ctx); ok {
		return tok, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tok, ok := s.cached(ctx); ok {
		return tok, nil
	}
	return s.fetch(ctx)
}

// Invalidate drops the cached token, e.g. after the API rejected it.
func (s *CachedTokenSource) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, s.key)
}

func (s *CachedTokenSource) cached(ctx context.Context) (string, bool) {
	tok, ok, err := s.cache.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("token cache read failed", "error", err)
		return "", false
	}
	return tok, ok
}

func (s *CachedTokenSource) fetch(ctx context.Context) (string, error) {
	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	tok, err := s.cfg.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("bbapi: fetch access token: %w", err)
	}

	if !tok.Expiry.IsZero() {
		ttl := tok.Expiry.Sub(s.now()) - expiryMargin
		if ttl > 0 {
			if err := s.cache.Set(ctx, s.key, tok.AccessToken, ttl); err != nil {
				s.logger.Warn("token cache write failed", "error", err)
			}
		}
	}
	s.logger.Debug("access token fetched", "expiry", tok.Expiry)
	return tok.AccessToken, nil
}
