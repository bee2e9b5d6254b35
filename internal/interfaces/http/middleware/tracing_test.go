package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func endedSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()

	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.Failf(t, "span not found", "no ended span named %q", name)
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, attr := range span.Attributes() {
		if string(attr.Key) == key {
			return attr.Value.AsString(), true
		}
	}
	return "", false
}

// tracedRouter mounts the middleware plus a /slips route responding with
// the given status.
func tracedRouter(status int, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "payops-test"}))
	for _, mw := range extra {
		router.Use(mw)
	}
	router.GET("/slips", func(c *gin.Context) {
		c.JSON(status, gin.H{"status": http.StatusText(status)})
	})
	return router
}

func tracedRequest(router *gin.Engine, setup ...func(*http.Request)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/slips", nil)
	for _, fn := range setup {
		fn(req)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestTracing_Disabled(t *testing.T) {
	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/slips", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/slips", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracing_CreatesSpanPerRoute(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter(http.StatusOK)

	w := tracedRequest(router)

	assert.Equal(t, http.StatusOK, w.Code)
	span := endedSpan(t, sr, "GET /slips")
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestTracing_RequestIDAttribute(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(RequestID())
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "payops-test"}))
	router.GET("/slips", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := tracedRequest(router, func(req *http.Request) {
		req.Header.Set("X-Request-ID", "req-payroll-2026-08")
	})
	assert.Equal(t, http.StatusOK, w.Code)

	span := endedSpan(t, sr, "GET /slips")
	requestID, found := spanAttr(span, "request_id")
	require.True(t, found, "request_id attribute not recorded")
	assert.Equal(t, "req-payroll-2026-08", requestID)
}

func TestTracing_JWTClaimAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	claims := func(c *gin.Context) {
		c.Set(JWTUserIDKey, "user-123")
		c.Set(JWTTenantIDKey, "tenant-456")
		c.Next()
	}
	router := tracedRouter(http.StatusOK, claims)

	w := tracedRequest(router)
	assert.Equal(t, http.StatusOK, w.Code)

	span := endedSpan(t, sr, "GET /slips")

	userID, found := spanAttr(span, "user_id")
	require.True(t, found, "user_id attribute not recorded")
	assert.Equal(t, "user-123", userID)

	tenantID, found := spanAttr(span, "tenant_id")
	require.True(t, found, "tenant_id attribute not recorded")
	assert.Equal(t, "tenant-456", tenantID)
}

func TestTracing_TenantHeaderAttribute(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter(http.StatusOK)

	w := tracedRequest(router, func(req *http.Request) {
		req.Header.Set(TenantHeaderKey, "12345678-1234-1234-1234-123456789abc")
	})
	assert.Equal(t, http.StatusOK, w.Code)

	span := endedSpan(t, sr, "GET /slips")
	tenantID, found := spanAttr(span, "tenant_id")
	require.True(t, found, "tenant_id attribute not recorded")
	assert.Equal(t, "12345678-1234-1234-1234-123456789abc", tenantID)
}

func TestTracing_RejectsMalformedTenantHeader(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter(http.StatusOK)

	w := tracedRequest(router, func(req *http.Request) {
		req.Header.Set(TenantHeaderKey, "<script>alert(1)</script>")
	})
	assert.Equal(t, http.StatusOK, w.Code)

	span := endedSpan(t, sr, "GET /slips")
	_, found := spanAttr(span, "tenant_id")
	assert.False(t, found, "malformed tenant header must not reach the trace")
}

func TestTracing_ErrorStatus(t *testing.T) {
	tests := []struct {
		status      int
		description string
	}{
		{http.StatusBadRequest, "Client Error"},
		{http.StatusUnauthorized, "Unauthorized"},
		{http.StatusForbidden, "Forbidden"},
		{http.StatusNotFound, "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			sr := setupTestTracer(t)
			router := tracedRouter(tt.status)

			w := tracedRequest(router)
			assert.Equal(t, tt.status, w.Code)

			span := endedSpan(t, sr, "GET /slips")
			assert.Equal(t, codes.Error, span.Status().Code)
			assert.Equal(t, tt.description, span.Status().Description)
		})
	}

	t.Run("server error", func(t *testing.T) {
		sr := setupTestTracer(t)
		router := tracedRouter(http.StatusInternalServerError)

		w := tracedRequest(router)
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		// otelgin may set the status first; the code is what matters.
		span := endedSpan(t, sr, "GET /slips")
		assert.Equal(t, codes.Error, span.Status().Code)
	})
}

func TestTracing_DefaultConfig(t *testing.T) {
	cfg := DefaultTracingConfig()
	assert.Equal(t, "payops-backend", cfg.ServiceName)
	assert.True(t, cfg.Enabled)

	sr := setupTestTracer(t)
	router := gin.New()
	router.Use(Tracing())
	router.GET("/slips", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := tracedRequest(router)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, sr.Ended())
}

func TestTraceRequestID(t *testing.T) {
	t.Run("prefers context over header", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/slips", nil)
		c.Request.Header.Set("X-Request-ID", "from-header")
		c.Set("request_id", "from-context")

		assert.Equal(t, "from-context", traceRequestID(c))
	})

	t.Run("falls back to header", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/slips", nil)
		c.Request.Header.Set("X-Request-ID", "from-header")

		assert.Equal(t, "from-header", traceRequestID(c))
	})

	t.Run("truncates oversized header", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/slips", nil)
		c.Request.Header.Set("X-Request-ID", strings.Repeat("a", 300))

		assert.Len(t, traceRequestID(c), MaxRequestIDLength)
	})
}

func TestTraceTenantID_HeaderValidation(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid lowercase UUID", "12345678-1234-1234-1234-123456789abc", "12345678-1234-1234-1234-123456789abc"},
		{"valid uppercase UUID", "12345678-1234-1234-1234-123456789ABC", "12345678-1234-1234-1234-123456789ABC"},
		{"too short", "12345678-1234-1234", ""},
		{"no dashes", "12345678123412341234123456789abc", ""},
		{"script injection attempt", "<script>alert(1)</script>", ""},
		{"contains spaces", "12345678-1234 -1234-1234-123456789abc", ""},
		{"oversized", "12345678-1234-1234-1234-123456789abc" + strings.Repeat("x", 100), ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/slips", nil)
			if tt.header != "" {
				c.Request.Header.Set(TenantHeaderKey, tt.header)
			}

			assert.Equal(t, tt.want, traceTenantID(c))
		})
	}

	t.Run("JWT claim wins over header", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/slips", nil)
		c.Request.Header.Set(TenantHeaderKey, "12345678-1234-1234-1234-123456789abc")
		c.Set(JWTTenantIDKey, "acme")

		assert.Equal(t, "acme", traceTenantID(c))
	})
}

func TestTraceUserID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	assert.Empty(t, traceUserID(c))

	c.Set(JWTUserIDKey, "asha.nair")
	assert.Equal(t, "asha.nair", traceUserID(c))
}
