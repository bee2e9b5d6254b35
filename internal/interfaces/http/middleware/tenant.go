package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/payops/backend/internal/infrastructure/logger"
)

// Keys under which the resolved tenant is stored on the gin context.
const (
	TenantIDKey     = "tenant_id"
	TenantCodeKey   = "tenant_code"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantInfo is what a TenantValidator reports for a known tenant.
type TenantInfo struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

// TenantValidator checks that a tenant exists and is allowed to operate.
type TenantValidator interface {
	ValidateTenant(tenantID string) (*TenantInfo, error)
}

// TenantMiddlewareConfig configures how the tenant is resolved. Every
// payroll row is tenant scoped, so the resolved ID also flows into the
// request context where the persistence callbacks pick it up.
type TenantMiddlewareConfig struct {
	// HeaderEnabled accepts the X-Tenant-ID header.
	HeaderEnabled bool
	// JWTEnabled reads the company claim placed by the JWT middleware.
	JWTEnabled bool
	// SubdomainEnabled derives the tenant from the request host.
	SubdomainEnabled bool
	// BaseDomain strips the shared suffix during subdomain extraction,
	// e.g. "payops.example.com" turns acme.payops.example.com into acme.
	BaseDomain string
	// SkipPaths bypass tenant resolution entirely (health, metrics).
	SkipPaths []string
	// Required rejects requests that carry no tenant at all.
	Required bool
	// Validator, when set, is consulted for every resolved tenant.
	Validator TenantValidator
	// Logger for resolution debug output and validation warnings.
	Logger *zap.Logger
}

// DefaultTenantConfig trusts the JWT claim first and the header second,
// which matches how the API gateway forwards internal traffic.
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		HeaderEnabled: true,
		JWTEnabled:    true,
		SkipPaths:     []string{"/health", "/healthz", "/ready", "/metrics", "/api/v1/health"},
		Required:      true,
	}
}

// TenantMiddlewareWithConfig resolves the tenant for each request and
// stores it on both the gin context and the request context.
func TenantMiddlewareWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipTenantResolution(c.Request.URL.Path, cfg.SkipPaths) {
			c.Next()
			return
		}

		tenantID, source := resolveTenantID(c, cfg)

		if tenantID != "" {
			if _, err := uuid.Parse(tenantID); err != nil {
				respondUnauthorized(c, "Invalid tenant ID format")
				return
			}
		}

		if tenantID == "" && cfg.Required {
			respondUnauthorized(c, "Tenant identification required")
			return
		}

		var info *TenantInfo
		if tenantID != "" && cfg.Validator != nil {
			var err error
			info, err = cfg.Validator.ValidateTenant(tenantID)
			if err != nil {
				log := cfg.Logger
				if log == nil {
					log = logger.FromContext(c.Request.Context())
				}
				log.Warn("Tenant validation failed",
					zap.String("tenant_id", tenantID),
					zap.Error(err),
				)
				respondUnauthorized(c, "Invalid or inactive tenant")
				return
			}
		}

		if tenantID != "" {
			c.Set(TenantIDKey, tenantID)
			if info != nil {
				c.Set(TenantCodeKey, info.Code)
			}

			// The service and persistence layers read the tenant from the
			// request context, not from gin.
			ctx := c.Request.Context()
			ctx, _ = logger.WithTenantID(ctx, logger.FromContext(ctx), tenantID)
			c.Request = c.Request.WithContext(ctx)

			if cfg.Logger != nil {
				cfg.Logger.Debug("Tenant identified",
					zap.String("tenant_id", tenantID),
					zap.String("method", source),
				)
			}
		}

		c.Next()
	}
}

// resolveTenantID tries each enabled source in trust order: the signed
// JWT claim wins over the spoofable header, which wins over the host.
func resolveTenantID(c *gin.Context, cfg TenantMiddlewareConfig) (tenantID, source string) {
	if cfg.JWTEnabled {
		if claim, exists := c.Get(JWTTenantIDKey); exists {
			if id, ok := claim.(string); ok && id != "" {
				return id, "jwt"
			}
		}
	}

	if cfg.HeaderEnabled {
		if id := c.GetHeader(TenantHeaderKey); id != "" {
			return id, "header"
		}
	}

	if cfg.SubdomainEnabled && cfg.BaseDomain != "" {
		if id := tenantFromSubdomain(c.Request.Host, cfg.BaseDomain); id != "" {
			return id, "subdomain"
		}
	}

	return "", ""
}

func skipTenantResolution(path string, skipPaths []string) bool {
	for _, skip := range skipPaths {
		if path == skip || strings.HasPrefix(path, skip+"/") {
			return true
		}
	}
	return false
}

// tenantFromSubdomain returns the first host label in front of the base
// domain, or "" when the host is the bare domain or a www alias.
func tenantFromSubdomain(host, baseDomain string) string {
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}

	if !strings.HasSuffix(host, baseDomain) {
		return ""
	}

	subdomain := strings.TrimSuffix(host, "."+baseDomain)
	if subdomain == host || subdomain == "" || subdomain == "www" {
		return ""
	}

	label, _, _ := strings.Cut(subdomain, ".")
	return label
}

func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetTenantID returns the tenant ID stored on the gin context, or "".
func GetTenantID(c *gin.Context) string {
	if value, exists := c.Get(TenantIDKey); exists {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

// GetTenantUUID returns the tenant ID parsed as a UUID. A request with
// no tenant yields uuid.Nil and no error.
func GetTenantUUID(c *gin.Context) (uuid.UUID, error) {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(tenantID)
}

// GetTenantCode returns the tenant code set by the validator, or "".
func GetTenantCode(c *gin.Context) string {
	if value, exists := c.Get(TenantCodeKey); exists {
		if code, ok := value.(string); ok {
			return code
		}
	}
	return ""
}
