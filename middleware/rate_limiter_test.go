// middleware/rate_limiter_test.go
package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	logger "github.com/evspresso/walter/logging"
	"github.com/evspresso/walter/middleware"
)

func setupLimitedRouter(t *testing.T, limit int, per time.Duration) *gin.Engine {
	t.Helper()
	logger.InitLogger(t.TempDir())
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.RateLimiter(limit, per))
	router.GET("/limited", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func doLimitedRequest(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/limited", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_BlocksPastLimit(t *testing.T) {
	router := setupLimitedRouter(t, 2, time.Minute)

	assert.Equal(t, http.StatusOK, doLimitedRequest(router, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, doLimitedRequest(router, "10.0.0.1:1234").Code)

	w := doLimitedRequest(router, "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, time.Minute.String(), w.Header().Get("X-RateLimit-Duration"))
}

func TestRateLimiter_TracksClientsSeparately(t *testing.T) {
	router := setupLimitedRouter(t, 1, time.Minute)

	assert.Equal(t, http.StatusOK, doLimitedRequest(router, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doLimitedRequest(router, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, doLimitedRequest(router, "10.0.0.2:1234").Code)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	router := setupLimitedRouter(t, 1, 30*time.Millisecond)

	assert.Equal(t, http.StatusOK, doLimitedRequest(router, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doLimitedRequest(router, "10.0.0.1:1234").Code)

	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, http.StatusOK, doLimitedRequest(router, "10.0.0.1:1234").Code)
}
