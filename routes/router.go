package routes

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/basit/filestore-backend/handlers"
	"github.com/basit/filestore-backend/middleware"
	"github.com/basit/filestore-backend/services"
)

// Options carries everything the router needs; nothing is read from globals.
type Options struct {
	Files        *services.FileService
	Logger       *slog.Logger
	RateLimiter  *middleware.RateLimiter
	AllowOrigins []string
}

// NewRouter builds the gin engine with the global middleware chain and all
// API routes registered.
func NewRouter(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.MaxMultipartMemory = services.MaxUploadSize

	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		cors.New(corsConfig(opts.AllowOrigins)),
	)

	var limits []gin.HandlerFunc
	if opts.RateLimiter != nil {
		limits = append(limits, opts.RateLimiter.Middleware())
	}

	RegisterFileRoutes(router, handlers.NewFileHandler(opts.Files), limits...)
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
