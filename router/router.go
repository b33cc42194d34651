// router/router.go

package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evspresso/walter/controller"
	"github.com/evspresso/walter/middleware"
)

func SetupRouter(
	whitelistController *controller.WhitelistController,
	jwtSecret string,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.AdminAuth(jwtSecret))

	whitelistController.RegisterRoutes(api)

	return router
}
