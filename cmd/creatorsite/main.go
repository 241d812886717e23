// Package main is the entry point for the creatorsite backend.
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

	"github.com/joho/godotenv"

	"creatorsite/internal/cache"
	"creatorsite/internal/config"
	"creatorsite/internal/database"
	"creatorsite/internal/draft"
	"creatorsite/internal/editor"
	"creatorsite/internal/handlers"
	"creatorsite/internal/identity"
	"creatorsite/internal/notify"
	"creatorsite/internal/publish"
	"creatorsite/internal/router"
	"creatorsite/internal/storage"
	"creatorsite/internal/store"
)

func main() {
	// Load a local .env in development; absence is fine.
	_ = godotenv.Load()

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

	// Connect to Valkey (draft store + live-document cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize data stores.
	mediaStore := store.NewMediaStore(db)
	submissionStore := store.NewSubmissionStore(db)

	// Connect to S3-compatible object storage (optional, app works without it).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, media uploads disabled")
	}

	// Versioned content store (GitHub contents API).
	publisher := publish.New(cfg.GitHubBaseURL, cfg.GitHubToken, cfg.GitHubOwner, cfg.GitHubRepo, cfg.ContentPath)

	// Contact notification bridge (optional).
	notifier := notify.NewTelegram(cfg.TelegramBaseURL, cfg.TelegramBotToken, cfg.TelegramChatID)
	if notifier == nil {
		slog.Warn("telegram not configured, contact notifications disabled")
	}

	// Identity verification for the editor API.
	verifier := identity.NewVerifier(cfg.IdentitySecret)
	if verifier == nil {
		slog.Warn("identity secret not set, editor API disabled")
	}

	// Draft store, live-document cache and the editing session manager.
	draftStore := draft.NewStore(valkeyClient, draft.DefaultTTL)
	liveCache := cache.NewLiveCache(valkeyClient, cache.DefaultLiveTTL)
	manager := editor.NewManager(editor.Deps{
		Live:      publisher,
		Drafts:    draftStore,
		Publisher: publisher,
	}, editor.Options{})

	// Create handler groups with their dependencies.
	publicHandlers := handlers.NewPublic(publisher, liveCache)
	contactHandlers := handlers.NewContact(submissionStore, notifier)
	editorHandlers := handlers.NewEditor(manager, draftStore, liveCache)
	mediaHandlers := handlers.NewMedia(storageClient, mediaStore, manager)

	// Set up the Chi router with all middleware and routes.
	r := router.New(verifier, publicHandlers, contactHandlers, editorHandlers, mediaHandlers)

	// Create the HTTP server with sensible timeouts. WriteTimeout must
	// accommodate publish commits and media uploads against remote services.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
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
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
