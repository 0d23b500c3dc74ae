package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/fansite/forum/internal/api"
	"github.com/fansite/forum/internal/auth"
	"github.com/fansite/forum/internal/db"
	"github.com/fansite/forum/internal/forum"
	"github.com/fansite/forum/internal/imagestore"
	"github.com/fansite/forum/pkg/config"
	"github.com/fansite/forum/pkg/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Starting forum API server")

	if err := cfg.Session.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer telemetryShutdown()

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer database.Close()

	images, err := newImageStore(&cfg.ImageStore, logger)
	if err != nil {
		return err
	}

	svc := forum.NewService(db.NewStore(database.DB), images, forum.SystemClock, logger.With(zap.String("component", "forum")), forum.Config{
		EditWindow:      cfg.Forum.EditWindow,
		MaxEdits:        cfg.Forum.MaxEdits,
		DefaultPageSize: cfg.Forum.DefaultPageSize,
		MaxPageSize:     cfg.Forum.MaxPageSize,
	})

	if strings.EqualFold(cfg.Logging.Level, "DEBUG") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(auth.SessionMiddleware(&cfg.Session))

	api.NewRouter(svc, newResolver(&cfg.Session), database).SetupRoutes(engine)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

func newImageStore(cfg *config.ImageStoreConfig, logger *zap.Logger) (forum.ImageStore, error) {
	if !cfg.Enabled() {
		logger.Warn("Image store not configured; image uploads are disabled")
		return imagestore.Disabled{}, nil
	}
	client, err := imagestore.New(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newResolver(cfg *config.SessionConfig) auth.Resolver {
	if cfg.TokenSecret == "" {
		return auth.SessionResolver{}
	}
	return auth.Chain(auth.NewTokenResolver(cfg.TokenSecret), auth.SessionResolver{})
}
