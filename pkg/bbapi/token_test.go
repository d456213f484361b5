package bbapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, expiresIn int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		id, secret, ok := r.BasicAuth()
		if !ok || id != "client-id" || secret != "client-secret" {
			http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			http.Error(w, `{"error":"unsupported_grant_type"}`, http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("scope") != "cobrancas.boletos-info cobrancas.boletos-requisicao cobrancas.convenio-requisicao" {
			http.Error(w, `{"error":"invalid_scope"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"Bearer","expires_in":%d}`, n, expiresIn)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func testCredentials(tokenURL string) Credentials {
	return Credentials{ClientID: "client-id", ClientSecret: "client-secret", TokenURL: tokenURL}
}

func TestCredentials_Validate(t *testing.T) {
	err := Credentials{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client id, client secret, token url")

	assert.NoError(t, testCredentials("https://oauth.example").Validate())
}

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = StaticToken("").Token(context.Background())
	assert.Error(t, err)
}

func TestCachedTokenSource_CachesUntilMargin(t *testing.T) {
	srv, hits := newTokenServer(t, 600)
	src, err := NewCachedTokenSource(testCredentials(srv.URL), nil)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := src.Token(ctx)
	require.NoError(t, err)
	second, err := src.Token(ctx)
	require.NoError(t, err)

	assert.Equal(t, "tok-1", first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCachedTokenSource_ShortLivedTokenNotCached(t *testing.T) {
	srv, hits := newTokenServer(t, 30)
	src, err := NewCachedTokenSource(testCredentials(srv.URL), nil)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = src.Token(ctx)
	require.NoError(t, err)
	tok, err := src.Token(ctx)
	require.NoError(t, err)

	assert.Equal(t, "tok-2", tok)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCachedTokenSource_Invalidate(t *testing.T) {
	srv, hits := newTokenServer(t, 600)
	src, err := NewCachedTokenSource(testCredentials(srv.URL), nil)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = src.Token(ctx)
	require.NoError(t, err)
	require.NoError(t, src.Invalidate(ctx))

	tok, err := src.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCachedTokenSource_ConcurrentMissesShareFetch(t *testing.T) {
	srv, hits := newTokenServer(t, 600)
	src, err := NewCachedTokenSource(testCredentials(srv.URL), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := src.Token(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
}

func TestCachedTokenSource_BadCredentials(t *testing.T) {
	srv, _ := newTokenServer(t, 600)
	creds := testCredentials(srv.URL)
	creds.ClientSecret = "wrong"
	src, err := NewCachedTokenSource(creds, nil)
	require.NoError(t, err)

	_, err = src.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch access token")
}

func TestCachedTokenSource_ClockDrivesTTL(t *testing.T) {
	srv, _ := newTokenServer(t, 600)
	cache := &recordingCache{MemoryTokenCache: NewMemoryTokenCache()}
	// A clock running 5 minutes ahead leaves 600s - 300s - 60s.
	ahead := func() time.Time { return time.Now().Add(5 * time.Minute) }
	src, err := NewCachedTokenSource(testCredentials(srv.URL), cache, withClock(ahead))
	require.NoError(t, err)

	_, err = src.Token(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, (240 * time.Second).Seconds(), cache.lastTTL.Seconds(), 5)
}

type recordingCache struct {
	*MemoryTokenCache
	lastTTL time.Duration
}

func (c *recordingCache) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	c.lastTTL = ttl
	return c.MemoryTokenCache.Set(ctx, key, token, ttl)
}

func TestMemoryTokenCache_Expiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryTokenCache()
	cache.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))

	got, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	now = now.Add(time.Minute)
	_, ok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "k", "v2", time.Hour))
	require.NoError(t, cache.Delete(ctx, "k"))
	_, ok, _ = cache.Get(ctx, "k")
	assert.False(t, ok)
}

func TestClient_UnauthorizedInvalidatesToken(t *testing.T) {
	tokenSrv, hits := newTokenServer(t, 600)
	src, err := NewCachedTokenSource(testCredentials(tokenSrv.URL), nil)
	require.NoError(t, err)

	var seen []string
	var mu sync.Mutex
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer api.Close()

	c, err := NewClient(api.URL, "key", src)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.GetPix(ctx, "1", 1)
	require.True(t, IsUnauthorized(err))
	_, err = c.GetPix(ctx, "1", 1)
	require.True(t, IsUnauthorized(err))

	assert.Equal(t, []string{"Bearer tok-1", "Bearer tok-2"}, seen)
	assert.Equal(t, int32(2), hits.Load())
}
