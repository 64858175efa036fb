package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resume-ledger-backend/internal/domain"
	"resume-ledger-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())

	var fromContext interface{}
	r.GET("/", func(c *gin.Context) {
		fromContext = c.Request.Context().Value(domain.KeyRequestID)
		c.Status(http.StatusOK)
	})

	t.Run("minted when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		id := w.Header().Get(requestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, fromContext)
	})

	t.Run("propagated when present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, "abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc", w.Header().Get(requestIDHeader))
	})

	t.Run("oversized ids are replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, strings.Repeat("x", 65))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Len(t, w.Header().Get(requestIDHeader), 36)
	})
}

func TestErrorHandlerMapsAppErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(nil))
	r.GET("/teapot", func(c *gin.Context) {
		c.Error(apperror.New(http.StatusTeapot, "short and stout", nil))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"short and stout"`)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestInMemoryWindowResets(t *testing.T) {
	rl := NewRateLimiter(nil, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	cfg := RateLimitConfig{Limit: 2, Window: time.Minute}

	count, _ := rl.checkInMemory("k", cfg, now)
	require.Equal(t, 1, count)
	count, resetAt := rl.checkInMemory("k", cfg, now)
	require.Equal(t, 2, count)
	assert.Equal(t, now.Add(time.Minute), resetAt)

	count, _ = rl.checkInMemory("k", cfg, now.Add(61*time.Second))
	assert.Equal(t, 1, count, "expired window starts over")

	count, _ = rl.checkInMemory("other", cfg, now)
	assert.Equal(t, 1, count, "keys are independent")
}

// unreachableRedis points at a port nothing listens on.
func unreachableRedis(t *testing.T) *goredis.Client {
	t.Helper()
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRateLimitRedisOutage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("overlay writes fail closed", func(t *testing.T) {
		rl := NewRateLimiter(unreachableRedis(t), nil)
		r := gin.New()
		r.PUT("/social", rl.Middleware(OverlayWriteRateLimitConfig(5)), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/social", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "temporarily unavailable")
	})

	t.Run("refreshes fall back to memory", func(t *testing.T) {
		rl := NewRateLimiter(unreachableRedis(t), nil)
		r := gin.New()
		r.GET("/resumes", rl.Middleware(RefreshRateLimitConfig(1)), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		first := httptest.NewRecorder()
		r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/resumes", nil))
		assert.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/resumes", nil))
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
	})
}

func TestOverlayWriteRateLimitConfigDefaults(t *testing.T) {
	cfg := OverlayWriteRateLimitConfig(0)
	assert.Equal(t, 20, cfg.Limit)
	assert.True(t, cfg.FailClosed)
	assert.Equal(t, "rl:overlay:", cfg.KeyPrefix)
}
