package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderboard/backend/internal/infrastructure/auth"
	"github.com/orderboard/backend/internal/infrastructure/config"
)

const (
	testAPIKey    = "test-api-key"
	testAPISecret = "test-api-secret"
	testUserKey   = "user-token-secret"
)

func testShopifyConfig() config.ShopifyConfig {
	return config.ShopifyConfig{
		APIKey:    testAPIKey,
		APISecret: testAPISecret,
	}
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Secret:          testUserKey,
		TokenExpiration: time.Hour,
		Issuer:          "orderboard",
	}
}

func signSessionToken(t *testing.T, dest string) string {
	t.Helper()
	now := time.Now()
	claims := auth.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    dest + "/admin",
			Audience:  jwt.ClaimStrings{testAPIKey},
			Subject:   "42",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
		Dest: dest,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAPISecret))
	require.NoError(t, err)
	return token
}

func newAuthTestRouter(cfg OwnerAuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(OwnerAuthMiddlewareWithConfig(cfg))
	router.GET("/api/v1/kanban/board", func(c *gin.Context) {
		owner, ok := GetOwner(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no owner"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"kind": string(owner.Kind), "id": owner.ID})
	})
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/webhooks/shopify/orders-create", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func defaultTestConfig() OwnerAuthConfig {
	return DefaultOwnerAuthConfig(
		auth.NewSessionTokenVerifier(testShopifyConfig()),
		auth.NewUserTokenService(testAuthConfig()),
	)
}

func TestOwnerAuthMiddleware_SessionToken(t *testing.T) {
	router := newAuthTestRouter(defaultTestConfig())

	token := signSessionToken(t, "https://demo-store.myshopify.com")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/kanban/board", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"shop"`)
	assert.Contains(t, w.Body.String(), "demo-store.myshopify.com")
}

func TestOwnerAuthMiddleware_UserToken(t *testing.T) {
	cfg := defaultTestConfig()
	router := newAuthTestRouter(cfg)

	token, _, err := cfg.UserTokens.Generate("user-7", "alex")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/kanban/board", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"user"`)
	assert.Contains(t, w.Body.String(), "user-7")
}

func TestOwnerAuthMiddleware_MissingHeader(t *testing.T) {
	router := newAuthTestRouter(defaultTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/kanban/board", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestOwnerAuthMiddleware_MalformedHeader(t *testing.T) {
	router := newAuthTestRouter(defaultTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/kanban/board", nil)
	req.Header.Set(AuthHeaderKey, "Token abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOwnerAuthMiddleware_GarbageToken(t *testing.T) {
	router := newAuthTestRouter(defaultTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/kanban/board", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+"not-a-jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestOwnerAuthMiddleware_ExpiredSessionToken(t *testing.T) {
	router := newAuthTestRouter(defaultTestConfig())

	now := time.Now()
	claims := auth.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{testAPIKey},
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		},
		Dest: "https://demo-store.myshopify.com",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAPISecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/kanban/board", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOwnerAuthMiddleware_SkipPaths(t *testing.T) {
	router := newAuthTestRouter(defaultTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/webhooks/shopify/orders-create", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOwnerAuthMiddleware_OnErrorCallback(t *testing.T) {
	cfg := defaultTestConfig()
	var captured error
	cfg.OnError = func(c *gin.Context, err error) {
		captured = err
		c.AbortWithStatus(http.StatusTeapot)
	}
	router := newAuthTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/kanban/board", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Error(t, captured)
}

func TestGetOwner_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	owner, ok := GetOwner(c)
	assert.False(t, ok)
	assert.True(t, owner.IsZero())
}

func TestGetOwner_WrongType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(OwnerKey, "not-an-owner")

	_, ok := GetOwner(c)
	assert.False(t, ok)
}

func TestGetAuthShopDomain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetAuthShopDomain(c))

	c.Set(AuthShopDomainKey, "demo-store.myshopify.com")
	assert.Equal(t, "demo-store.myshopify.com", GetAuthShopDomain(c))
}
