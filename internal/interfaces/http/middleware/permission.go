package middleware

import (
	"net/http"

	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PermissionConfig holds configuration for role gates
type PermissionConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
}

// RequireAuthenticated rejects anonymous callers with 401.
// It must run after JWTAuth or OptionalJWTAuth.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetActor(c).IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", c.GetString(RequestIDKey)))
			return
		}
		c.Next()
	}
}

// RequireAnyRole creates middleware that admits callers holding at least one of the roles
func RequireAnyRole(roles ...identity.Role) gin.HandlerFunc {
	return RequireAnyRoleWithConfig(PermissionConfig{}, roles...)
}

// RequireAnyRoleWithConfig creates a role gate with custom config
func RequireAnyRoleWithConfig(cfg PermissionConfig, roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if !actor.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", c.GetString(RequestIDKey)))
			return
		}

		for _, r := range roles {
			if actor.HasRole(r) {
				c.Next()
				return
			}
		}

		if cfg.Logger != nil {
			cfg.Logger.Warn("Role check failed",
				zap.String("user_id", actor.UserID.String()),
				zap.Strings("required_any", identity.RolesToStrings(roles)),
				zap.Strings("held", identity.RolesToStrings(actor.Roles)),
				zap.String("path", c.Request.URL.Path),
			)
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Insufficient role for this operation", c.GetString(RequestIDKey)))
	}
}

// RequireStaff admits managers and admins
func RequireStaff(cfg PermissionConfig) gin.HandlerFunc {
	return RequireAnyRoleWithConfig(cfg, identity.RoleManager, identity.RoleAdmin)
}

// RequireAdmin admits admins only
func RequireAdmin(cfg PermissionConfig) gin.HandlerFunc {
	return RequireAnyRoleWithConfig(cfg, identity.RoleAdmin)
}
