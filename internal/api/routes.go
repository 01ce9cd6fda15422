package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.Use(CORSMiddleware(handler.Config.AllowedOrigin))

	router.GET("/health", handler.HandleHealth)
	router.GET("/download/:filename", handler.HandleDownload)

	api := router.Group("/api")
	{
		api.POST("/analyze", handler.HandleAnalyze)
		api.POST("/exams/generate", handler.HandleGenerateExam)
		api.POST("/exams/batch", handler.HandleGenerateBatch)
		api.POST("/exams/render", handler.HandleRenderWorksheet)
	}
}
