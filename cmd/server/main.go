package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reclamassur/config"
	"reclamassur/db"
	"reclamassur/handlers"
	"reclamassur/logging"
	"reclamassur/models"
	"reclamassur/services"
	"reclamassur/services/ai"
	"reclamassur/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	logger, err := logging.Init(logging.ConfigFromEnv())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	err = db.Initialize(db.Options{
		Path:        cfg.DBPath,
		TursoURL:    cfg.TursoDatabaseURL,
		TursoToken:  cfg.TursoAuthToken,
		Environment: cfg.Environment,
	})
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(models.All()...); err != nil {
		zap.L().Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := services.SeedDefaultCatalogs(db.DB); err != nil {
		zap.L().Fatal("Failed to seed catalogs", zap.Error(err))
	}

	services.InitializeStorage(cfg)

	catalog, err := ai.LoadCatalog(cfg.AIProvidersFile)
	if err != nil {
		zap.L().Fatal("Failed to load AI provider catalog", zap.Error(err))
	}
	handlers.AICatalog = catalog
	handlers.PDFRenderer = services.NewChromePDFRenderer(cfg.ChromePath)

	if cfg.SupabaseJWTSecret == "" {
		zap.L().Warn("SUPABASE_JWT_SECRET not set, every authenticated request will be rejected")
	}
	if cfg.WebhookSecret == "" {
		if cfg.IsProduction() {
			zap.L().Error("WEBHOOK_SECRET not set, payment webhooks will be rejected")
		} else {
			zap.L().Warn("WEBHOOK_SECRET not set, payment webhook signatures are not checked")
		}
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.ErrorHandler

	// Middleware
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				zap.L().Warn("request", fields...)
				return nil
			}
			zap.L().Info("request", fields...)
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "apikey", "x-client-info"},
	}))
	e.Use(echomiddleware.BodyLimit("12M"))

	handlers.RegisterRoutes(e, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background deadline job (runs every hour)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				run := jobs.ProcessDeadlines(db.DB, cfg, now)
				zap.L().Info("deadline job finished",
					zap.Int("expired", run.Expired),
					zap.Int("alerted", run.Alerted),
					zap.Int("failed", run.Failed))
				services.Monitor.Prune()
			}
		}
	}()

	// Start server
	go func() {
		zap.L().Info("Server starting", zap.String("port", cfg.ServerPort), zap.String("environment", cfg.Environment))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Graceful shutdown failed", zap.Error(err))
	}
}
