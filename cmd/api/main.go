package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/leads-generator/discovery/internal/auth"
	"github.com/octobees/leads-generator/discovery/internal/config"
	"github.com/octobees/leads-generator/discovery/internal/database"
	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/handler"
	"github.com/octobees/leads-generator/discovery/internal/logging"
	"github.com/octobees/leads-generator/discovery/internal/metrics"
	middlewarepkg "github.com/octobees/leads-generator/discovery/internal/middleware"
	"github.com/octobees/leads-generator/discovery/internal/provider/registry"
	"github.com/octobees/leads-generator/discovery/internal/repository"
	"github.com/octobees/leads-generator/discovery/internal/router"
	"github.com/octobees/leads-generator/discovery/internal/service"
	"github.com/octobees/leads-generator/discovery/internal/service/discovery"
	"github.com/octobees/leads-generator/discovery/internal/service/normalize"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	status := cfg.Status()
	for _, w := range status.Warnings {
		logger.Warn("config", zap.String("warning", w))
	}
	for _, e := range status.Errors {
		logger.Error("config", zap.String("error", e))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, database.WithMaxConns(cfg.DatabaseMaxConns))
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	defer pool.Close()

	leadsRepo := repository.NewPGXLeadsRepository(pool)
	if err := leadsRepo.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to prepare schema", zap.Error(err))
	}

	// A nil orchestrator keeps the read endpoints up; discover answers 503.
	var discoverer service.Discoverer
	orchestrator, err := discovery.New(registry.FromConfig(ctx, cfg.Providers, nil, logger), discovery.WithLogger(logger))
	if err != nil {
		logger.Warn("discovery disabled", zap.Error(err))
	} else {
		discoverer = orchestrator
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	authService := service.NewAuthService(cfg.OperatorKeyHash, cfg.AdminKeyHash, jwtManager)
	leadsService := service.NewLeadsService(leadsRepo, discoverer,
		service.WithEmailVerifier(normalize.NewMXChecker()),
		service.WithPhoneRegion(cfg.DefaultPhoneRegion),
		service.WithLogger(logger),
	)
	promptService := service.NewPromptService(entity.CountryGhana)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(metrics.Middleware())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Leads:       handler.NewLeadsHandler(leadsService),
		Discover:    handler.NewDiscoverHandler(leadsService, promptService, cfg.DiscoveryTimeout, logger),
		AdminUpload: handler.NewAdminUploadHandler(leadsService),
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()
	logger.Info("api listening", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DiscoveryTimeout+5*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
