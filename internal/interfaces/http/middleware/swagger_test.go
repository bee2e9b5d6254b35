package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newDocsRouter(cfg SwaggerConfig, jwtMiddleware gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, jwtMiddleware), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "docs"})
	})
	return router
}

func docsRequest(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection_Disabled(t *testing.T) {
	router := newDocsRouter(SwaggerConfig{Enabled: false}, nil)

	w := docsRequest(router, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestSwaggerProtection_OpenAccess(t *testing.T) {
	router := newDocsRouter(SwaggerConfig{Enabled: true}, nil)

	w := docsRequest(router, "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSwaggerProtection_IPAllowlist(t *testing.T) {
	router := newDocsRouter(SwaggerConfig{
		Enabled:    true,
		AllowedIPs: []string{"127.0.0.1"},
	}, nil)

	assert.Equal(t, http.StatusOK, docsRequest(router, "127.0.0.1:12345").Code)

	w := docsRequest(router, "192.168.1.1:12345")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "forbidden")
}

func TestSwaggerProtection_CIDRAllowlist(t *testing.T) {
	router := newDocsRouter(SwaggerConfig{
		Enabled:    true,
		AllowedIPs: []string{"10.0.0.0/8"},
	}, nil)

	assert.Equal(t, http.StatusOK, docsRequest(router, "10.50.100.200:12345").Code)
	assert.Equal(t, http.StatusForbidden, docsRequest(router, "192.168.1.1:12345").Code)
}

func TestSwaggerProtection_RequireAuth(t *testing.T) {
	deny := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	allow := func(c *gin.Context) {
		c.Set("user_id", "asha.nair")
		c.Next()
	}

	cfg := SwaggerConfig{Enabled: true, RequireAuth: true}

	assert.Equal(t, http.StatusUnauthorized, docsRequest(newDocsRouter(cfg, deny), "").Code)
	assert.Equal(t, http.StatusOK, docsRequest(newDocsRouter(cfg, allow), "").Code)
}

func TestSwaggerProtection_AllowlistBeforeAuth(t *testing.T) {
	allow := func(c *gin.Context) {
		c.Set("user_id", "asha.nair")
		c.Next()
	}

	router := newDocsRouter(SwaggerConfig{
		Enabled:     true,
		RequireAuth: true,
		AllowedIPs:  []string{"127.0.0.1"},
	}, allow)

	assert.Equal(t, http.StatusOK, docsRequest(router, "127.0.0.1:12345").Code)

	// A foreign IP is rejected before the auth middleware ever runs.
	assert.Equal(t, http.StatusForbidden, docsRequest(router, "192.168.1.1:12345").Code)
}

func TestIPAllowlist_Contains(t *testing.T) {
	tests := []struct {
		name    string
		ip      string
		entries []string
		want    bool
	}{
		{"exact IP match", "192.168.1.1", []string{"192.168.1.1"}, true},
		{"no match", "192.168.1.2", []string{"192.168.1.1"}, false},
		{"CIDR match", "10.0.0.5", []string{"10.0.0.0/8"}, true},
		{"CIDR no match", "11.0.0.5", []string{"10.0.0.0/8"}, false},
		{"IPv6 localhost", "::1", []string{"::1"}, true},
		{"mixed entries", "172.16.3.9", []string{"127.0.0.1", "172.16.0.0/12"}, true},
		{"malformed entries are dropped", "10.0.0.5", []string{"not-an-ip", "300.0.0.0/8"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := parseAllowlist(tt.entries)
			assert.Equal(t, tt.want, list.contains(net.ParseIP(tt.ip)))
		})
	}
}

func TestIPAllowlist_NilIP(t *testing.T) {
	list := parseAllowlist([]string{"10.0.0.0/8"})
	assert.False(t, list.contains(nil))
}
