package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/infrastructure/auth"
	"github.com/autodealer/backend/internal/infrastructure/logger"
	"github.com/autodealer/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	ActorKey      = "actor"
	UserIDKey     = "user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// TokenBlacklist is optional for checking revoked tokens
	TokenBlacklist auth.TokenBlacklist
	// Logger for middleware logging
	Logger *zap.Logger
}

// Authenticator resolves the bearer token into an Actor stored on the gin
// context. It never advances the handler chain: on failure it aborts with 401
// and reports false.
type Authenticator func(c *gin.Context) bool

// NewAuthenticator builds the token check shared by JWTAuth and gates that
// need an Actor before deciding whether to continue.
func NewAuthenticator(cfg JWTMiddlewareConfig) Authenticator {
	return func(c *gin.Context) bool {
		tokenString, ok := bearerToken(c)
		if !ok {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing or malformed authorization header")
			return false
		}

		claims, err := authenticate(c, cfg, tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return false
		}

		if err := setActor(c, claims); err != nil {
			handleAuthError(c, cfg, err, "Invalid subject in token")
			return false
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("user_id", claims.UserID),
				zap.Strings("roles", claims.Roles),
			)
		}
		return true
	}
}

// JWTAuth rejects requests without a valid, unrevoked access token and stores
// the caller's Actor in the gin context.
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	authenticate := NewAuthenticator(cfg)
	return func(c *gin.Context) {
		if authenticate(c) {
			c.Next()
		}
	}
}

// OptionalJWTAuth resolves the Actor when a valid bearer token is present and
// otherwise continues as an anonymous visitor. A bad token never blocks the
// request; it only fails to authenticate it.
func OptionalJWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := authenticate(c, cfg, tokenString)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Debug("Ignoring invalid optional bearer token",
					zap.Error(err),
					zap.String("path", c.Request.URL.Path),
				)
			}
			c.Next()
			return
		}

		_ = setActor(c, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
	return token, token != ""
}

// authenticate validates the token and checks the blacklist. Blacklist
// lookups fail open so a Redis outage does not lock everybody out.
func authenticate(c *gin.Context, cfg JWTMiddlewareConfig, tokenString string) (*auth.Claims, error) {
	claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	if cfg.TokenBlacklist == nil {
		return claims, nil
	}

	ctx := c.Request.Context()
	if claims.ID != "" {
		revoked, err := cfg.TokenBlacklist.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check token blacklist", zap.Error(err))
			}
		} else if revoked {
			return nil, auth.ErrTokenBlacklisted
		}
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, auth.ErrInvalidClaims
	}
	revoked, err := cfg.TokenBlacklist.SessionRevoked(ctx, userID, claims.GetIssuedAtTime())
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Error("Failed to check session revocation",
				zap.String("user_id", claims.UserID),
				zap.Error(err))
		}
	} else if revoked {
		return nil, auth.ErrTokenBlacklisted
	}
	return claims, nil
}

// setActor stores the claims and the derived Actor, and tags the request logger
func setActor(c *gin.Context, claims *auth.Claims) error {
	userID, err := claims.GetUserUUID()
	if err != nil {
		return auth.ErrInvalidClaims
	}
	actor := identity.NewActor(userID, identity.RolesFromStrings(claims.Roles)...)

	c.Set(JWTClaimsKey, claims)
	c.Set(ActorKey, actor)
	c.Set(UserIDKey, claims.UserID)

	ctx := c.Request.Context()
	ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
	c.Request = c.Request.WithContext(ctx)
	return nil
}

// handleAuthError aborts with 401 and a code describing why
func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code := dto.ErrCodeUnauthorized
	errorMessage := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		errorMessage = "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code = dto.ErrCodeTokenRevoked
		errorMessage = "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidTokenType), errors.Is(err, auth.ErrTokenNotYetValid), errors.Is(err, auth.ErrInvalidClaims):
		code = dto.ErrCodeTokenInvalid
		errorMessage = "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, errorMessage, c.GetString(RequestIDKey)))
}

// GetActor returns the caller's Actor, or the anonymous Actor when the
// request is not authenticated.
func GetActor(c *gin.Context) identity.Actor {
	if v, exists := c.Get(ActorKey); exists {
		if actor, ok := v.(identity.Actor); ok {
			return actor
		}
	}
	return identity.Anonymous()
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}
