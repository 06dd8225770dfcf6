package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	t.Run("generates an id when none is provided", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestID())
		var seen string
		r.GET("/", func(c *gin.Context) {
			seen = RequestIDFrom(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps the incoming id", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestID())
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	})
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("kitchen fire") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRateLimiter(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()

	t.Run("counts requests within one window", func(t *testing.T) {
		rl := NewRateLimiter(client, RateLimitConfig{
			Window:    time.Minute,
			Limit:     2,
			KeyPrefix: fmt.Sprintf("rate_limit:test:%d", time.Now().UnixNano()),
		})

		for i := 0; i < 2; i++ {
			allowed, _, _, err := rl.IsAllowed(ctx, "10.0.0.1")
			require.NoError(t, err)
			assert.True(t, allowed)
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, 0, remaining)
		assert.True(t, resetTime.After(time.Now()))

		// Another client keeps its own budget.
		allowed, _, _, err = rl.IsAllowed(ctx, "10.0.0.2")
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("reports remaining requests without consuming them", func(t *testing.T) {
		rl := NewRateLimiter(client, RateLimitConfig{
			Window:    time.Minute,
			Limit:     5,
			KeyPrefix: fmt.Sprintf("rate_limit:test:%d", time.Now().UnixNano()),
		})

		remaining, _, err := rl.GetRemainingRequests(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, 5, remaining)

		_, _, _, err = rl.IsAllowed(ctx, "10.0.0.1")
		require.NoError(t, err)

		remaining, _, err = rl.GetRemainingRequests(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, 4, remaining)
	})

	t.Run("middleware returns 429 with headers once exhausted", func(t *testing.T) {
		rl := NewRateLimiter(client, RateLimitConfig{
			Window:    time.Minute,
			Limit:     1,
			KeyPrefix: fmt.Sprintf("rate_limit:test:%d", time.Now().UnixNano()),
		})

		r := gin.New()
		r.Use(rl.RateLimitMiddleware())
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	})
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allows a configured origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("rejects an unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
