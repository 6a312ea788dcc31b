// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the invitation template editor.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invitecraft/internal/cache"
	"invitecraft/internal/config"
	"invitecraft/internal/database"
	"invitecraft/internal/editor"
	"invitecraft/internal/handlers"
	"invitecraft/internal/middleware"
	"invitecraft/internal/resources"
	"invitecraft/internal/router"
	"invitecraft/internal/schema"
	"invitecraft/internal/share"
	"invitecraft/internal/storage"
	"invitecraft/internal/store"
)

// preloadTimeout bounds a single HTTP preload request.
const preloadTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"autosave_delay", cfg.AutosaveDelay,
		"network_quality", cfg.NetworkQuality,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Install the built-in theme presets (no-op if presets already exist).
	if err := database.Seed(db); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey, which keeps drafts of documents that failed to save.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()
	drafts := cache.NewDraftCache(valkeyClient, cfg.DraftTTL)

	// Initialize data stores.
	templateStore := store.NewTemplateStore(db)
	revisionStore := store.NewTemplateRevisionStore(db)
	presetStore := store.NewThemePresetStore(db)

	// Connect to S3-compatible object storage (optional, the editor works
	// without it but media uploads are disabled).
	var storageClient *storage.Client
	if cfg.HasStorage() {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3BucketPublic, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3BucketPublic)
	} else {
		slog.Warn("s3 storage not configured, media uploads disabled")
	}

	// Resource loader: media bucket objects are checked with HEAD against
	// S3, everything else is fetched over HTTP.
	preloader := storage.NewObjectPreloader(storageClient, resources.NewHTTPPreloader(preloadTimeout))
	quality := cfg.NetworkQuality
	loader := resources.NewLoader(preloader,
		resources.WithQuality(func() resources.NetworkQuality { return quality }),
		resources.WithConcurrency(cfg.PreloadConcurrency),
	)

	registry := schema.Default()
	var extract []resources.ExtractOption
	if storageClient != nil {
		extract = append(extract, resources.WithResolver(storageClient.FileURL))
	}

	// Editing sessions publish document changes on the bus; the loader
	// warms newly referenced critical media.
	bus := editor.NewBus()
	manager := editor.NewManager(templateStore, editor.Options{
		Registry:     registry,
		Delay:        cfg.AutosaveDelay,
		HistoryLimit: cfg.HistoryLimit,
		Bus:          bus,
		Drafts:       drafts,
		Revisions:    revisionStore,
		Extract:      extract,
	})
	unwarm := editor.WarmCritical(bus, loader, registry, extract...)
	defer unwarm()

	// Share links need the public site URL.
	var linker *share.Linker
	if cfg.PublicBaseURL != "" {
		linker, err = share.NewLinker(cfg.PublicBaseURL)
		if err != nil {
			slog.Error("invalid PUBLIC_BASE_URL", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("PUBLIC_BASE_URL not set, share QR codes disabled")
	}

	// Avoid handing a typed nil to the MediaStorage interface.
	var media handlers.MediaStorage
	if storageClient != nil {
		media = storageClient
	}

	api := handlers.NewAPI(manager, templateStore, revisionStore, presetStore, loader, media, linker)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
	defer limiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(api, limiter)

	// Create the HTTP server with sensible timeouts. WriteTimeout leaves
	// room for preload requests that wait on slow media hosts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Flush every open session so pending edits reach the database (or at
	// least a draft in Valkey).
	if err := manager.Shutdown(ctx); err != nil {
		slog.Error("some sessions closed with unsaved changes", "error", err)
	}

	slog.Info("server stopped gracefully")
}
