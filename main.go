package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"

	"github.com/basit/filestore-backend/initializers"
	"github.com/basit/filestore-backend/jobs"
	"github.com/basit/filestore-backend/middleware"
	"github.com/basit/filestore-backend/routes"
	"github.com/basit/filestore-backend/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := initializers.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := initializers.NewLogger(cfg)
	slog.SetDefault(logger)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	db, err := initializers.ConnectToDatabase(cfg)
	if err != nil {
		slog.Error("database setup failed", "error", err)
		os.Exit(1)
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	store, err := initializers.InitBlobStore(bgCtx, cfg)
	if err != nil {
		slog.Error("blob storage setup failed", "error", err)
		os.Exit(1)
	}

	files := services.NewFileService(db, store, logger)

	jobs.NewCleanup(db, store, logger).StartCleanupJob(bgCtx, cfg.CleanupInterval)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Cleanup(bgCtx)

	router := routes.NewRouter(routes.Options{
		Files:        files,
		Logger:       logger,
		RateLimiter:  limiter,
		AllowOrigins: cfg.CORSAllowOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "db_driver", cfg.DBDriver, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			// the DB closes only after in-flight requests drain
			"http-server": func(ctx context.Context) error {
				err := srv.Shutdown(ctx)
				stopBackground()
				if sqlDB, dbErr := db.DB(); dbErr == nil {
					err = errors.Join(err, sqlDB.Close())
				}
				return err
			},
		},
	)

	exitCode := <-wait
	slog.Info("server stopped", "exit_code", exitCode)
	os.Exit(exitCode)
}
