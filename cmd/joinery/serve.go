package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/joinery/internal/database"
	"github.com/bitfantasy/joinery/internal/middleware"
	"github.com/bitfantasy/joinery/internal/order/handler"
	"github.com/bitfantasy/joinery/internal/order/repository"
	"github.com/bitfantasy/joinery/internal/order/service"
	"github.com/bitfantasy/joinery/internal/order/sse"
	"github.com/bitfantasy/joinery/internal/shared/objectstore"
	"github.com/bitfantasy/joinery/internal/shared/redisx"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply pending migrations on start")
	return cmd
}

func serve(skipMigrate bool) error {
	cfg, zapLogger, err := bootstrap()
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting joinery service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := database.Open(cfg.Database, zapLogger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if !skipMigrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	depositRate, err := parseDepositRate(cfg.Workflow.DepositRate)
	if err != nil {
		return err
	}
	opts := service.Options{
		DepositRate: depositRate,
		AppBaseURL:  cfg.Workflow.AppBaseURL,
	}

	if rdb := redisx.NewClient(cfg.Redis); rdb != nil {
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			zapLogger.Warn("Redis not reachable, dedup falls back to the database", zap.Error(err))
		}
		opts.Deduper = redisx.NewDeduper(rdb, cfg.Signature.DedupTTL)
		opts.Publisher = redisx.NewPublisher(rdb, "")
		zapLogger.Info("Redis enabled", zap.String("host", cfg.Redis.Host))
	}

	archiver, err := objectstore.New(cfg.MinIO, cfg.Signature.ArchivePath)
	if err != nil {
		return err
	}
	if archiver != nil {
		if err := archiver.EnsureBucket(context.Background()); err != nil {
			zapLogger.Warn("MinIO bucket check failed", zap.Error(err))
		}
		opts.Archiver = archiver
		zapLogger.Info("Signature payload archiving enabled", zap.String("bucket", cfg.MinIO.Bucket))
	}

	hub := sse.NewHub(zapLogger)
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, hub, opts, zapLogger)
	handlers := handler.NewHandlers(services, hub, zapLogger)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/sse"})))

	registerSystemRoutes(router)
	handler.RegisterRoutes(router, handlers, cfg.JWT.Secret, cfg.Signature.WebhookToken)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		// SSE streams are long-lived
		WriteTimeout: 0,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
	return nil
}

func registerSystemRoutes(r *gin.Engine) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})
}

func parseDepositRate(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return service.DefaultDepositRate, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("workflow.deposit_rate %q: %w", raw, err)
	}
	if rate.Sign() <= 0 || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("workflow.deposit_rate %s must be in (0, 1]", rate)
	}
	return rate, nil
}
