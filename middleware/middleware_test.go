package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recorder struct {
	mu       sync.Mutex
	rejected []string
	routes   []string
	statuses []int
}

func (r *recorder) RecordRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, reason)
}

func (r *recorder) RecordRequest(_ string, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
	r.statuses = append(r.statuses, status)
}

type memoryUsage struct {
	used map[string]int
}

func (m *memoryUsage) Consume(client string, limit int) (int, bool) {
	if limit > 0 && m.used[client] >= limit {
		return m.used[client], false
	}
	m.used[client]++
	return m.used[client], true
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

func TestErrorHandler_RecoversPanics(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(zap.New(core)))
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })
	r.GET("/soft", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusBadGateway)
	})

	w := serve(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"An unexpected error occurred"}`, w.Body.String())

	entries := logs.FilterMessage("Panic recovered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, w.Header().Get(RequestIDHeader), entries[0].ContextMap()["request_id"])

	serve(r, http.MethodGet, "/soft", nil)
	assert.Equal(t, 1, logs.FilterMessage("Request error").Len())
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := serve(r, http.MethodGet, "/", nil)
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = serve(r, http.MethodGet, "/", http.Header{RequestIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	long := make([]byte, 100)
	for i := range long {
		long[i] = 'x'
	}
	w = serve(r, http.MethodGet, "/", http.Header{RequestIDHeader: {string(long)}})
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	rl := NewRateLimiter(1, 2, rec)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", ok)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	w := serve(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, []string{"rate"}, rec.rejected)

	// another client has its own bucket
	assert.True(t, rl.Allow("10.0.0.9"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 1, nil)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	now = now.Add(limiterIdleTTL + 2*time.Minute)
	assert.True(t, rl.Allow("b"))
	rl.mu.Lock()
	_, kept := rl.clients["a"]
	rl.mu.Unlock()
	assert.False(t, kept)
}

func TestQuota(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	store := &memoryUsage{used: map[string]int{}}
	r := gin.New()
	r.Use(Quota(store, 2, rec))
	r.GET("/", ok)

	for i := 1; i <= 2; i++ {
		w := serve(r, http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-Quota-Limit"))
	}
	w := serve(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-Quota-Used"))
	assert.Equal(t, []string{"quota"}, rec.rejected)
}

func TestQuota_UnlimitedOnlyCounts(t *testing.T) {
	t.Parallel()

	store := &memoryUsage{used: map[string]int{}}
	r := gin.New()
	r.Use(Quota(store, 0, nil))
	r.GET("/", ok)

	for i := 0; i < 5; i++ {
		w := serve(r, http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-Quota-Limit"))
	}
	assert.Equal(t, 5, store.used["192.0.2.1"])
}

func TestCORS(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.Use(CORS([]string{"acme.com"}))
	r.GET("/", ok)

	w := serve(r, http.MethodGet, "/", http.Header{"Origin": {"https://app.acme.com"}})
	assert.Equal(t, "https://app.acme.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodGet, "/", http.Header{"Origin": {"https://evil.test"}})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodOptions, "/", http.Header{"Origin": {"https://app.acme.com"}})
	assert.Equal(t, http.StatusNoContent, w.Code)

	open := gin.New()
	open.Use(CORS([]string{"*"}))
	open.GET("/", ok)
	w = serve(open, http.MethodGet, "/", http.Header{"Origin": {"https://evil.test"}})
	assert.Equal(t, "https://evil.test", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatsMiddleware(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	r := gin.New()
	r.Use(StatsMiddleware(rec, zap.NewNop()))
	r.GET("/api/items/:id", ok)

	serve(r, http.MethodGet, "/api/items/42", nil)
	serve(r, http.MethodGet, "/missing", nil)

	assert.Equal(t, []string{"/api/items/:id", ""}, rec.routes)
	assert.Equal(t, []int{http.StatusOK, http.StatusNotFound}, rec.statuses)
}
