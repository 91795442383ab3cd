package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderboard/backend/internal/domain/board"
)

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute)

		for i := 0; i < 5; i++ {
			assert.True(t, limiter.Allow("client1"), "request %d should be allowed", i+1)
		}
	})

	t.Run("blocks requests exceeding limit", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("client2"))
		}
		assert.False(t, limiter.Allow("client2"))
	})

	t.Run("separate budgets per key", func(t *testing.T) {
		limiter := NewRateLimiter(2, time.Minute)

		assert.True(t, limiter.Allow("clientA"))
		assert.True(t, limiter.Allow("clientA"))
		assert.False(t, limiter.Allow("clientA"))

		assert.True(t, limiter.Allow("clientB"))
		assert.True(t, limiter.Allow("clientB"))
	})

	t.Run("refills after the window", func(t *testing.T) {
		limiter := NewRateLimiter(2, 50*time.Millisecond)

		assert.True(t, limiter.Allow("client3"))
		assert.True(t, limiter.Allow("client3"))
		assert.False(t, limiter.Allow("client3"))

		time.Sleep(60 * time.Millisecond)
		assert.True(t, limiter.Allow("client3"))
	})

	t.Run("remaining counts down", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute)

		assert.Equal(t, 5, limiter.Remaining("newclient"))
		limiter.Allow("newclient")
		limiter.Allow("newclient")
		assert.Equal(t, 3, limiter.Remaining("newclient"))
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		limiter := NewRateLimiter(100, time.Minute)
		var wg sync.WaitGroup
		allowed := 0
		var mu sync.Mutex

		for i := 0; i < 150; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("concurrent-client") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}

		wg.Wait()
		assert.Equal(t, 100, allowed)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("serves requests and sets headers within limit", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)
		router := gin.New()
		router.Use(RateLimit(limiter))
		router.GET("/api/board", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req := httptest.NewRequest("GET", "/api/board", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("returns 429 once the budget is spent", func(t *testing.T) {
		limiter := NewRateLimiter(2, time.Minute)
		router := gin.New()
		router.Use(RateLimit(limiter))
		router.GET("/api/board", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", "/api/board", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/board", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")
	})

	t.Run("uses resolved owner in the rate limit key", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)

		newRouter := func(shopDomain string) *gin.Engine {
			router := gin.New()
			router.Use(func(c *gin.Context) {
				owner, err := board.NewShopOwner(shopDomain)
				require.NoError(t, err)
				c.Set(OwnerKey, owner)
				c.Next()
			})
			router.Use(RateLimit(limiter))
			router.GET("/api/board", func(c *gin.Context) {
				c.String(http.StatusOK, "ok")
			})
			return router
		}

		shopA := newRouter("store-a.myshopify.com")
		shopB := newRouter("store-b.myshopify.com")

		w1 := httptest.NewRecorder()
		shopA.ServeHTTP(w1, httptest.NewRequest("GET", "/api/board", nil))
		assert.Equal(t, http.StatusOK, w1.Code)

		w2 := httptest.NewRecorder()
		shopA.ServeHTTP(w2, httptest.NewRequest("GET", "/api/board", nil))
		assert.Equal(t, http.StatusTooManyRequests, w2.Code)

		// The other shop has its own budget.
		w3 := httptest.NewRecorder()
		shopB.ServeHTTP(w3, httptest.NewRequest("GET", "/api/board", nil))
		assert.Equal(t, http.StatusOK, w3.Code)
	})
}

func TestRateLimitByKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(1, time.Minute)
	router := gin.New()
	router.Use(RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.GetHeader("X-Shopify-Shop-Domain")
	}))
	router.POST("/webhooks/shopify/orders-create", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	send := func(shop string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/webhooks/shopify/orders-create", nil)
		req.Header.Set("X-Shopify-Shop-Domain", shop)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("store-a.myshopify.com").Code)
	assert.Equal(t, http.StatusTooManyRequests, send("store-a.myshopify.com").Code)
	// A different shop domain is a different key.
	assert.Equal(t, http.StatusOK, send("store-b.myshopify.com").Code)
}
