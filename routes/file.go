package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/basit/filestore-backend/handlers"
	"github.com/basit/filestore-backend/middleware"
	"github.com/basit/filestore-backend/services"
)

// RegisterFileRoutes mounts the API. The health check stays outside the
// limits applied to /api/files.
func RegisterFileRoutes(r *gin.Engine, h *handlers.FileHandler, limits ...gin.HandlerFunc) {
	api := r.Group("/api")
	api.GET("/health", handlers.HealthCheck)

	fileGroup := api.Group("/files", limits...)
	fileGroup.GET("", h.ListFiles)
	fileGroup.POST("/upload", middleware.BodyLimit(services.MaxUploadSize), h.UploadFile)
	fileGroup.GET("/:id", h.DownloadFile)
	fileGroup.DELETE("/:id", h.DeleteFile)
	fileGroup.GET("/:id/view", h.ViewFile)
}
