package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spota/spota-server/app/api"
	"github.com/spota/spota-server/app/auth"
	"github.com/spota/spota-server/app/catalog"
	"github.com/spota/spota-server/app/cfg"
	"github.com/spota/spota-server/app/database"
	"github.com/spota/spota-server/app/events"
	"github.com/spota/spota-server/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting Spota server", "version", appCfg.Version)

	// Database connection
	db, err := database.NewConnection(appCfg.DataDir)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "schema_version", version, "dirty", dirty)

	// Load source configurations
	configCache := events.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "count", configCache.GetConfigCount())

	// Core pipeline components
	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.FetchTimeout) * time.Second,
	}

	normalizer := events.NewNormalizer()
	openDataClient := events.NewClient(appCfg.EventsApiUrl, httpClient, normalizer,
		appCfg.UserAgent, appCfg.FetchLimit)
	rssClient := events.NewRSSClient(httpClient, normalizer, appCfg.UserAgent)
	extractor := events.NewDetailExtractor()

	cat := catalog.New()

	// Account backend client and session state
	sessionRepo := database.NewSessionRepository(db)
	favoriteRepo := database.NewFavoriteRepository(db)

	authClient := auth.NewClient(appCfg.BackendUrl, httpClient, appCfg.UserAgent)
	authService := auth.NewService(authClient, sessionRepo)

	initCtx, initCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := authService.Init(initCtx); err != nil {
		slog.Warn("Failed to restore auth session", "error", err)
	}
	initCancel()

	// Background scheduler
	scheduler := tasks.NewScheduler(configCache, cat, openDataClient, rssClient,
		extractor, httpClient)
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	handler := api.NewHandler(cat, configCache, openDataClient, rssClient,
		favoriteRepo, authService, scheduler)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Spota server started successfully")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("Spota server shutdown complete")
}
