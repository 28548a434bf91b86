package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the API endpoints on the given router.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.Use(cors.Default())

	router.POST("/reload", handler.Reload)
	router.POST("/predict", handler.Predict)
	router.GET("/health", handler.Health)
	router.GET("/listings/count", handler.ListingCount)
}
