package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(ok), mark("first"), mark("second"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"first", "second"}, order)
}

func allowed(rl *RateLimiter, client string) bool {
	ok, _ := rl.Allow(client)
	return ok
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	t.Cleanup(rl.Stop)

	assert.True(t, allowed(rl, "1.1.1.1"))
	assert.True(t, allowed(rl, "1.1.1.1"))
	assert.False(t, allowed(rl, "1.1.1.1"))
	assert.True(t, allowed(rl, "2.2.2.2"), "limits are per IP")
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	t.Cleanup(rl.Stop)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("a")
	require.True(t, ok)

	now = now.Add(20 * time.Second)
	ok, wait := rl.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, wait)

	now = now.Add(40 * time.Second)
	ok, _ = rl.Allow("a")
	assert.True(t, ok, "a new window starts once the old one has passed")

	rl.evict(now.Add(time.Minute))
	assert.Empty(t, rl.clients)
}

func TestRateLimiterStop(t *testing.T) {
	base := runtime.NumGoroutine()

	limiters := make([]*RateLimiter, 50)
	for i := range limiters {
		limiters[i] = NewRateLimiter(1, time.Minute)
	}
	assert.GreaterOrEqual(t, runtime.NumGoroutine(), base+50)

	for _, rl := range limiters {
		rl.Stop()
		rl.Stop()
	}
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= base
	}, time.Second, 10*time.Millisecond)

	assert.True(t, allowed(limiters[0], "after-stop"))
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	t.Cleanup(rl.Stop)
	h := RateLimit(rl)(http.HandlerFunc(ok))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Real-IP", "10.0.0.1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		provided string
		want     int
	}{
		{"valid", "secret", "secret", http.StatusOK},
		{"wrong", "secret", "guess", http.StatusUnauthorized},
		{"missing", "secret", "", http.StatusUnauthorized},
		{"not configured", "", "anything", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := APIKeyAuth(tt.key)(http.HandlerFunc(ok))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.provided != "" {
				req.Header.Set("X-API-Key", tt.provided)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/archives", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Headers"), "X-API-Key"))
	assert.False(t, called)
}

func TestCORSOrigin(t *testing.T) {
	h := CORS("https://olchiki.example")(http.HandlerFunc(ok))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/archives", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://olchiki.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-Batch-ID")
}

func TestRequestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusBadGateway} {
		h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte("body"))
		}), PrometheusMetrics(), RequestLogger(log))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	for i, want := range []string{"INFO", "WARN", "ERROR"} {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[i]), &entry))
		assert.Equal(t, want, entry["level"])
		assert.EqualValues(t, 4, entry["bytes"])
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", ClientIP(req))

	req.Header.Set("X-Real-IP", " 203.0.113.9 ")
	assert.Equal(t, "203.0.113.9", ClientIP(req))

	req.Header.Del("X-Real-IP")
	req.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", ClientIP(req))
}

func TestCacheControl(t *testing.T) {
	rec := httptest.NewRecorder()
	CacheControl("no-store")(http.HandlerFunc(ok)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
