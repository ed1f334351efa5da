package http

import (
	"github.com/arbilens/backend/config"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log logrus.FieldLogger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/credentials/verify", handler.VerifyCredential)
		v1.DELETE("/cache", handler.ClearCache)

		research := v1.Group("/research")
		{
			research.POST("", handler.StartResearch)
			research.GET("/:sessionId", handler.GetResearch)
			research.GET("/:sessionId/export", handler.ExportResearch)
			research.PUT("/:sessionId/rows/:identifier/selection", handler.SelectOffer)
		}
	}

	return router
}
