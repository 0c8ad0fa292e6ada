package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func okHandler(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	return *resp.Error
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://app.example.com"}
	r := gin.New()
	r.Use(CORSWithConfig(cfg))
	r.GET("/x", okHandler)

	t.Run("allowed origin", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/x", map[string]string{"Origin": "https://app.example.com"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/x", map[string]string{"Origin": "https://evil.example.com"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		w := perform(r, http.MethodOptions, "/x", map[string]string{"Origin": "https://app.example.com"})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	})

	t.Run("wildcard never sends credentials", func(t *testing.T) {
		wild := DefaultCORSConfig()
		wild.AllowOrigins = []string{"*"}
		r := gin.New()
		r.Use(CORSWithConfig(wild))
		r.GET("/x", okHandler)

		w := perform(r, http.MethodGet, "/x", map[string]string{"Origin": "https://any.example.com"})
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := perform(r, http.MethodGet, "/x", nil)
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 32)
	assert.Equal(t, generated, w.Body.String())

	w = perform(r, http.MethodGet, "/x", map[string]string{RequestIDHeader: "client-id"})
	assert.Equal(t, "client-id", w.Header().Get(RequestIDHeader))

	long := make([]byte, maxRequestIDLength+1)
	for i := range long {
		long[i] = 'a'
	}
	w = perform(r, http.MethodGet, "/x", map[string]string{RequestIDHeader: string(long)})
	assert.Len(t, w.Header().Get(RequestIDHeader), 32)
}

func TestSecureHeaders(t *testing.T) {
	cfg := DefaultSecurityConfig()
	r := gin.New()
	r.Use(SecureWithConfig(cfg))
	r.GET("/x", okHandler)

	w := perform(r, http.MethodGet, "/x", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	cfg.HSTSEnabled = true
	r = gin.New()
	r.Use(SecureWithConfig(cfg))
	r.GET("/x", okHandler)
	w = perform(r, http.MethodGet, "/x", nil)
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), BodyLimit(16))
	r.POST("/x", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/x", http.NoBody)
	req.ContentLength = 1024
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	info := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, info.Code)
	assert.NotEmpty(t, info.RequestID)
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Stop)

	r := gin.New()
	r.Use(RateLimit(limiter))
	r.GET("/x", okHandler)

	for i := 0; i < 2; i++ {
		w := perform(r, http.MethodGet, "/x", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}
	w := perform(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, dto.ErrCodeRateLimited, decodeError(t, w).Code)

	// another address has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "198.51.100.7:4321"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_IgnoresTenantHeader(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Stop)

	r := gin.New()
	r.Use(RateLimit(limiter))
	r.GET("/x", okHandler)

	limited := 0
	for i := 0; i < 50; i++ {
		w := perform(r, http.MethodGet, "/x", map[string]string{TenantHeader: uuid.NewString()})
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 48, limited)
	assert.Equal(t, 1, limiter.Len())
}

func TestRateLimiter_Refill(t *testing.T) {
	limiter := NewRateLimiter(1, time.Hour)
	t.Cleanup(limiter.Stop)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	ok, _ := limiter.Allow("k")
	assert.True(t, ok)
	ok, _ = limiter.Allow("k")
	assert.False(t, ok)

	now = now.Add(time.Hour)
	ok, _ = limiter.Allow("k")
	assert.True(t, ok)
}
