package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(handler)
	router.GET("/slips", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.POST("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func limitedRequest(router *gin.Engine, method, path string, setup ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, fn := range setup {
		fn(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func fromIP(addr string) func(*http.Request) {
	return func(req *http.Request) { req.RemoteAddr = addr }
}

func withTenant(id string) func(*http.Request) {
	return func(req *http.Request) { req.Header.Set("X-Tenant-ID", id) }
}

func TestRateLimiter_Allow(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("acme"), "request %d should be allowed", i+1)
	}
	assert.False(t, limiter.Allow("acme"))
}

func TestRateLimiter_SeparateBucketsPerKey(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)

	assert.True(t, limiter.Allow("acme"))
	assert.True(t, limiter.Allow("acme"))
	assert.False(t, limiter.Allow("acme"))

	assert.True(t, limiter.Allow("globex"))
	assert.True(t, limiter.Allow("globex"))
}

func TestRateLimiter_WindowReset(t *testing.T) {
	limiter := NewRateLimiter(2, 50*time.Millisecond)

	assert.True(t, limiter.Allow("acme"))
	assert.True(t, limiter.Allow("acme"))
	assert.False(t, limiter.Allow("acme"))

	time.Sleep(60 * time.Millisecond)

	assert.True(t, limiter.Allow("acme"))
}

func TestRateLimiter_Remaining(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)

	assert.Equal(t, 5, limiter.Remaining("acme"))

	limiter.Allow("acme")
	limiter.Allow("acme")

	assert.Equal(t, 3, limiter.Remaining("acme"))
}

func TestRateLimiter_Concurrent(t *testing.T) {
	limiter := NewRateLimiter(100, time.Minute)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 150; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 100, allowed)
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	router := newLimitedRouter(RateLimit(NewRateLimiter(2, time.Minute)))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, limitedRequest(router, "GET", "/slips").Code)
	}

	w := limitedRequest(router, "GET", "/slips")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestRateLimit_SetsHeaders(t *testing.T) {
	router := newLimitedRouter(RateLimit(NewRateLimiter(5, time.Minute)))

	w := limitedRequest(router, "GET", "/slips")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_KeyedByTenant(t *testing.T) {
	router := newLimitedRouter(RateLimit(NewRateLimiter(1, time.Minute)))

	assert.Equal(t, http.StatusOK, limitedRequest(router, "GET", "/slips", withTenant("acme")).Code)
	assert.Equal(t, http.StatusTooManyRequests, limitedRequest(router, "GET", "/slips", withTenant("acme")).Code)

	// Another tenant behind the same IP is unaffected
	assert.Equal(t, http.StatusOK, limitedRequest(router, "GET", "/slips", withTenant("globex")).Code)
}

func TestRateLimitByKey(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	router := newLimitedRouter(RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.GetHeader("X-User-ID")
	}))

	withUser := func(id string) func(*http.Request) {
		return func(req *http.Request) { req.Header.Set("X-User-ID", id) }
	}

	assert.Equal(t, http.StatusOK, limitedRequest(router, "GET", "/slips", withUser("u1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, limitedRequest(router, "GET", "/slips", withUser("u1")).Code)
	assert.Equal(t, http.StatusOK, limitedRequest(router, "GET", "/slips", withUser("u2")).Code)
}

func TestAuthRateLimit_BlocksWithRetryAfter(t *testing.T) {
	router := newLimitedRouter(AuthRateLimit(NewRateLimiter(1, time.Minute)))

	assert.Equal(t, http.StatusOK, limitedRequest(router, "POST", "/login", fromIP("10.1.2.3:4000")).Code)

	w := limitedRequest(router, "POST", "/login", fromIP("10.1.2.3:4000"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_RATE_LIMIT_EXCEEDED")
	assert.Contains(t, w.Body.String(), "Too many authentication attempts")
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestAuthRateLimit_SetsHeaders(t *testing.T) {
	router := newLimitedRouter(AuthRateLimit(NewRateLimiter(5, time.Minute)))

	w := limitedRequest(router, "POST", "/login", fromIP("10.1.2.3:4000"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestAuthRateLimit_PerIP(t *testing.T) {
	router := newLimitedRouter(AuthRateLimit(NewRateLimiter(2, time.Minute)))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, limitedRequest(router, "POST", "/login", fromIP("10.0.0.1:9000")).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, limitedRequest(router, "POST", "/login", fromIP("10.0.0.1:9000")).Code)

	assert.Equal(t, http.StatusOK, limitedRequest(router, "POST", "/login", fromIP("10.0.0.2:9000")).Code)
}

func TestAuthRateLimit_IsolatedFromGlobalLimiter(t *testing.T) {
	// Same underlying limiter: the auth key prefix must keep login buckets
	// separate from the general ones.
	limiter := NewRateLimiter(1, time.Minute)
	router := gin.New()

	authGroup := router.Group("/auth")
	authGroup.Use(AuthRateLimit(limiter))
	authGroup.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	apiGroup := router.Group("/api")
	apiGroup.Use(RateLimit(limiter))
	apiGroup.GET("/slips", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, limitedRequest(router, "POST", "/auth/login", fromIP("10.9.9.9:1000")).Code)
	assert.Equal(t, http.StatusTooManyRequests, limitedRequest(router, "POST", "/auth/login", fromIP("10.9.9.9:1000")).Code)

	// General bucket for the same IP still has its token
	assert.Equal(t, http.StatusOK, limitedRequest(router, "GET", "/api/slips", fromIP("10.9.9.9:1000")).Code)
}
