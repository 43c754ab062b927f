package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"appointly/config"
	"appointly/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withSecret(t *testing.T) {
	t.Helper()
	prev := config.AppConfig
	t.Cleanup(func() { config.AppConfig = prev })
	config.AppConfig.JWTSecret = "test-secret"
}

func protectedRouter(roles ...string) *gin.Engine {
	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"caller": c.GetString("callerID"), "role": c.GetString("callerRole")})
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	withSecret(t)
	client, err := utils.GenerateToken("c1", RoleClient, time.Hour)
	require.NoError(t, err)

	w := get(protectedRouter(), client)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"caller":"c1","role":"client"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(protectedRouter(), "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(protectedRouter(), "garbage").Code)
	assert.Equal(t, http.StatusForbidden, get(protectedRouter(RoleAdmin), client).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "198.51.100.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code, "other clients keep their own budget")
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Get("logger")
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
}
