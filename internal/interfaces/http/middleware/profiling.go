package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/payops/backend/internal/infrastructure/telemetry"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	// Enabled controls whether profiling labels are attached at all.
	Enabled bool
	// SkipPaths are exact paths that get no labels (health checks).
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that get no labels.
	SkipPathPrefixes []string
}

// DefaultProfilingConfig returns the default profiling configuration.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled: true,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/api-docs",
		},
	}
}

// Profiling returns profiling middleware with the default configuration.
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig tags each request's profile samples with Pyroscope
// labels: controller, route, method and tenant_id. The Pyroscope UI can
// then answer questions like "which tenant's register exports burn the
// CPU" without guessing from stacks. All labels are low cardinality;
// routes are the gin patterns, never raw paths.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if pathSkipped(c.Request.URL.Path, cfg.SkipPaths, cfg.SkipPathPrefixes) {
			c.Next()
			return
		}

		labels := profilingLabels(c)

		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context) map[string]string {
	labels := make(map[string]string, 4)

	if method := c.Request.Method; method != "" {
		labels[telemetry.ProfilingLabelMethod] = method
	}

	route := c.FullPath()
	if route != "" {
		labels[telemetry.ProfilingLabelRoute] = route
	}

	if controller := controllerFromRoute(route); controller != "" {
		labels[telemetry.ProfilingLabelController] = controller
	}

	if tenantID := profilingTenantID(c); tenantID != "" {
		labels[telemetry.ProfilingLabelTenantID] = tenantID
	}

	return labels
}

// controllerFromRoute names the resource a route serves, e.g.
// "/api/v1/slips/:id" becomes "slips".
func controllerFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) {
			continue
		}
		if strings.HasPrefix(part, ":") || strings.HasPrefix(part, "{") {
			continue
		}
		return part
	}
	return ""
}

// isVersionSegment matches API version segments like v1 or v2.
func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}

// profilingTenantID accepts the tenant from either the JWT claim or the
// tenant middleware, whichever ran in front of us.
func profilingTenantID(c *gin.Context) string {
	for _, key := range []string{JWTTenantIDKey, TenantIDKey} {
		if value, exists := c.Get(key); exists {
			if id, ok := value.(string); ok && id != "" {
				return id
			}
		}
	}
	return ""
}
