// Command api is the Speedway Protocol API server.
//
// Usage:
//
//	speedway-api
//	API_PORT=8080 speedway-api

// @title Speedway Protocol API
// @version 1.0.0
// @description Team speedway scorekeeping API: 15-heat match protocols with live scoring, tactical reserve and lane-choice rules, and validation against official results.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/Jakkmalm/speedway-protocol/internal/api"
	"github.com/Jakkmalm/speedway-protocol/internal/auth"
	"github.com/Jakkmalm/speedway-protocol/internal/cache"
	"github.com/Jakkmalm/speedway-protocol/internal/config"
	"github.com/Jakkmalm/speedway-protocol/internal/db"
	"github.com/Jakkmalm/speedway-protocol/internal/listener"
	"github.com/Jakkmalm/speedway-protocol/internal/live"
	"github.com/Jakkmalm/speedway-protocol/internal/maintenance"
	"github.com/Jakkmalm/speedway-protocol/internal/official"
	"github.com/Jakkmalm/speedway-protocol/internal/store"

	_ "github.com/Jakkmalm/speedway-protocol/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	st := store.New(pool)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Auth service
	authSvc := auth.NewService(cfg.JWTSecret, cfg.JWTTTL)

	// Live match feed hub
	hub := live.NewHub(logger)
	go hub.Run()

	// Official result pipeline
	validator := official.NewValidator(st, hub, logger)
	var importer *official.Importer
	if cfg.RevalidateEnabled {
		scraper := official.NewScraper(cfg.FlashscoreURL, cfg.ScrapeTimeout, cfg.ScrapeHeadless, logger)
		svemo := official.NewSvemoClient(cfg.SvemoBaseURL, cfg.SvemoAPIKey, 30, logger)
		importer = official.NewImporter(scraper, svemo, st, logger)

		// LISTEN/NOTIFY consumer for official result events
		go listener.Start(ctx, cfg.DatabaseURL, validator, logger)
		logger.Info("Official result pipeline started")
	} else {
		logger.Info("Official result pipeline disabled (REVALIDATE_ENABLED=false)")
	}

	// Start maintenance tickers (cleanup, scheduled import, catch-up sweep)
	go maintenance.Start(ctx, maintenance.Deps{
		Store:     st,
		Importer:  importer,
		Validator: validator,
	}, maintenance.DefaultConfig(), logger)

	// Create router
	router := api.NewRouter(pool, st, appCache, cfg, authSvc, hub, logger)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Speedway Protocol API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
