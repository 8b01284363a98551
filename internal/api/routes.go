// Package api exposes the CRUD surface over HTTP. The watcher runs
// detached from this layer; handlers only read and mutate rows it produces.
package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the gin router.
func SetupRouter(handler *Handler, environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/clients", handler.CreateClient)
		v1.GET("/clients", handler.ListClients)

		v1.POST("/search-requests", handler.CreateSearchRequest)
		v1.GET("/search-requests", handler.ListSearchRequests)
		v1.GET("/search-requests/:id/results", handler.ListResults)
		v1.POST("/search-requests/:id/activate", handler.ActivateSearchRequest)
		v1.POST("/search-requests/:id/deactivate", handler.DeactivateSearchRequest)

		v1.POST("/results/:id/status", handler.UpdateResultStatus)
		v1.POST("/results/:id/forward", handler.ForwardResult)
	}

	return router
}
