package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ordena/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// CapabilityConfig holds configuration for capability middleware
type CapabilityConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when the check fails (optional)
	OnDenied func(c *gin.Context, required []identity.Capability)
}

// RequireCapability creates middleware that requires a specific capability
func RequireCapability(capability identity.Capability) gin.HandlerFunc {
	return RequireAnyCapability(capability)
}

// RequireAnyCapability creates middleware that passes when the session holds
// at least one of the listed capabilities
func RequireAnyCapability(capabilities ...identity.Capability) gin.HandlerFunc {
	return RequireAnyCapabilityWithConfig(CapabilityConfig{}, capabilities...)
}

// RequireAnyCapabilityWithConfig creates capability middleware with custom config
func RequireAnyCapabilityWithConfig(cfg CapabilityConfig, capabilities ...identity.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleCapabilityDenied(c, cfg, capabilities, "No authentication claims found")
			return
		}

		granted := false
		for _, capability := range capabilities {
			if claims.HasCapability(capability) {
				granted = true
				break
			}
		}
		if !granted {
			handleCapabilityDenied(c, cfg, capabilities, "Session lacks required capability")
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("Capability check passed",
				zap.String("user_id", claims.UserID),
				zap.Strings("session_capabilities", claims.Capabilities),
			)
		}

		c.Next()
	}
}

// handleCapabilityDenied handles capability check failures
func handleCapabilityDenied(c *gin.Context, cfg CapabilityConfig, required []identity.Capability, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, required)
		return
	}

	if cfg.Logger != nil {
		names := make([]string, len(required))
		for i, capability := range required {
			names[i] = string(capability)
		}
		cfg.Logger.Warn("Capability check failed",
			zap.Strings("required_any", names),
			zap.String("reason", reason),
			zap.String("path", c.Request.URL.Path),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "FORBIDDEN",
			"message": "Missing required capability",
		},
	})
}

// SessionCanEditPayments reports whether the authenticated session may edit
// the payment ledger. The change engine's visibility rule keys off this.
func SessionCanEditPayments(c *gin.Context) bool {
	claims := GetJWTClaims(c)
	return claims != nil && claims.HasCapability(identity.CapabilityOrdersEditPayments)
}
