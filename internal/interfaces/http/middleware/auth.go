package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orderboard/backend/internal/domain/board"
	"github.com/orderboard/backend/internal/infrastructure/auth"
	"github.com/orderboard/backend/internal/infrastructure/logger"
)

// Auth context keys
const (
	OwnerKey          = "board_owner"
	AuthUserIDKey     = "auth_user_id"
	AuthUsernameKey   = "auth_username"
	AuthShopDomainKey = "auth_shop_domain"
	AuthHeaderKey     = "Authorization"
	BearerPrefix      = "Bearer "
)

// OwnerAuthConfig holds configuration for the owner resolution middleware
type OwnerAuthConfig struct {
	// SessionVerifier validates Shopify embedded-app session tokens.
	// Optional; nil disables the shop token path.
	SessionVerifier *auth.SessionTokenVerifier
	// UserTokens validates first-party user tokens.
	// Optional; nil disables the user token path.
	UserTokens *auth.UserTokenService
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// Optional callback if the token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultOwnerAuthConfig returns default owner auth middleware configuration
func DefaultOwnerAuthConfig(sessionVerifier *auth.SessionTokenVerifier, userTokens *auth.UserTokenService) OwnerAuthConfig {
	return OwnerAuthConfig{
		SessionVerifier: sessionVerifier,
		UserTokens:      userTokens,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
			"/api/v1/health",
		},
		SkipPathPrefixes: []string{
			"/webhooks",
		},
		OnError: nil,
		Logger:  nil,
	}
}

// OwnerAuthMiddleware resolves the board owner from the bearer token. A
// Shopify session token yields a shop owner keyed by its myshopify
// domain; a first-party user token yields a user owner keyed by the
// user id. Both are HS256 tokens signed with different secrets, so a
// token verifies against exactly one path.
func OwnerAuthMiddleware(sessionVerifier *auth.SessionTokenVerifier, userTokens *auth.UserTokenService) gin.HandlerFunc {
	return OwnerAuthMiddlewareWithConfig(DefaultOwnerAuthConfig(sessionVerifier, userTokens))
}

// OwnerAuthMiddlewareWithConfig resolves the board owner with custom config
func OwnerAuthMiddlewareWithConfig(cfg OwnerAuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing token")
			return
		}

		owner, err := resolveOwner(c, cfg, tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		c.Set(OwnerKey, owner)

		// Propagate the owner to the request-scoped logger
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithOwner(ctx, log, owner.String())
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("owner resolved",
				zap.String("owner_kind", string(owner.Kind)),
				zap.String("owner_id", owner.ID),
			)
		}

		c.Next()
	}
}

// resolveOwner tries the session token path first, then the user token
// path. The error of the last attempted path is returned.
func resolveOwner(c *gin.Context, cfg OwnerAuthConfig, tokenString string) (board.OwnerRef, error) {
	var lastErr error = auth.ErrInvalidToken

	if cfg.SessionVerifier != nil {
		shopDomain, err := cfg.SessionVerifier.Verify(tokenString)
		if err == nil {
			owner, err := board.NewShopOwner(shopDomain)
			if err != nil {
				return board.OwnerRef{}, auth.ErrInvalidClaims
			}
			c.Set(AuthShopDomainKey, shopDomain)
			return owner, nil
		}
		lastErr = err
	}

	if cfg.UserTokens != nil {
		claims, err := cfg.UserTokens.Validate(tokenString)
		if err == nil {
			owner, err := board.NewUserOwner(claims.UserID)
			if err != nil {
				return board.OwnerRef{}, auth.ErrInvalidClaims
			}
			c.Set(AuthUserIDKey, claims.UserID)
			c.Set(AuthUsernameKey, claims.Username)
			return owner, nil
		}
		lastErr = err
	}

	return board.OwnerRef{}, lastErr
}

// handleAuthError handles authentication errors
func handleAuthError(c *gin.Context, cfg OwnerAuthConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := "UNAUTHORIZED"
	errorMessage := "Authentication required"

	switch err {
	case auth.ErrExpiredToken:
		errorCode = "TOKEN_EXPIRED"
		errorMessage = "Token has expired"
	case auth.ErrInvalidToken:
		errorCode = "INVALID_TOKEN"
		errorMessage = "Invalid token"
	case auth.ErrTokenNotYetValid:
		errorCode = "TOKEN_NOT_VALID"
		errorMessage = "Token is not yet valid"
	case auth.ErrAudienceMismatch:
		errorCode = "INVALID_TOKEN"
		errorMessage = "Token was issued for a different app"
	case auth.ErrMissingDest, auth.ErrInvalidClaims, auth.ErrMissingUserID:
		errorCode = "INVALID_TOKEN"
		errorMessage = "Invalid token claims"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    errorCode,
			"message": errorMessage,
		},
	})
}

// GetOwner retrieves the resolved board owner from gin.Context
func GetOwner(c *gin.Context) (board.OwnerRef, bool) {
	if value, exists := c.Get(OwnerKey); exists {
		if owner, ok := value.(board.OwnerRef); ok && !owner.IsZero() {
			return owner, true
		}
	}
	return board.OwnerRef{}, false
}

// GetAuthUserID retrieves the authenticated user id, if the caller
// authenticated with a user token
func GetAuthUserID(c *gin.Context) string {
	if userID, exists := c.Get(AuthUserIDKey); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// GetAuthShopDomain retrieves the authenticated shop domain, if the
// caller authenticated with a session token
func GetAuthShopDomain(c *gin.Context) string {
	if domain, exists := c.Get(AuthShopDomainKey); exists {
		if d, ok := domain.(string); ok {
			return d
		}
	}
	return ""
}
