// Package main is the entry point for the product catalog API server.
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

	"productcatalog/internal/association"
	"productcatalog/internal/cache"
	"productcatalog/internal/config"
	"productcatalog/internal/database"
	"productcatalog/internal/events"
	"productcatalog/internal/handlers"
	"productcatalog/internal/reconcile"
	"productcatalog/internal/router"
	"productcatalog/internal/service"
	"productcatalog/internal/store"
)

func main() {
	// Bootstrap logger until the configured one is available.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger(os.Stdout))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"log_level", cfg.LogLevel,
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

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey. The client is owned here and closed at shutdown.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize data stores and the category cache.
	categoryStore := store.NewCategoryStore(db)
	fallbackLog := store.NewFallbackLogStore(db)
	categoryCache := cache.NewCategoryCache(cache.NewRedisBackend(valkeyClient))

	// Fallback events go to Kafka when brokers are configured; the outbox
	// table records them either way.
	var emitter service.FallbackEmitter
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kafkaEmitter := events.NewKafkaEmitter(events.DefaultKafkaConfig(brokers, cfg.KafkaFallbackTopic), fallbackLog)
		defer func() {
			if err := kafkaEmitter.Close(); err != nil {
				slog.Error("failed to flush fallback events", "error", err)
			}
		}()
		emitter = kafkaEmitter
		slog.Info("fallback events enabled", "brokers", brokers, "topic", cfg.KafkaFallbackTopic)
	} else {
		emitter = events.NewLogEmitter(fallbackLog)
		slog.Warn("kafka not configured, fallback events recorded in the database only")
	}

	// Association check against the product service (optional).
	var checker service.AssociationChecker
	if cfg.ProductServiceURL != "" {
		checker = association.NewHTTPChecker(cfg.ProductServiceURL, cfg.ProductServiceTimeout, association.DefaultBreakerConfig())
		slog.Info("product association check enabled", "url", cfg.ProductServiceURL)
	} else {
		checker = association.StaticChecker{Safe: true}
		slog.Warn("product service not configured, deletes skip the association check")
	}

	svc := service.New(categoryStore, categoryCache, emitter, checker)

	// In development, mirror the seeded rows so the hierarchy reads have
	// something to serve.
	if cfg.IsDev() {
		warmCache(categoryStore, categoryCache)
	}

	health := handlers.NewHealth(map[string]handlers.Check{
		"postgres": db.PingContext,
		"valkey": func(ctx context.Context) error {
			return valkeyClient.Ping(ctx).Err()
		},
	})

	// Set up the Chi router with all middleware and routes.
	r := router.New(handlers.NewCategories(svc), health)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
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
		return
	}

	slog.Info("server stopped gracefully")
}

// warmCache copies every stored category into the cache and renders the
// hierarchy snapshot. Failures are logged; the API starts regardless.
func warmCache(categoryStore *store.CategoryStore, categoryCache *cache.CategoryCache) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	categories, err := categoryStore.List(ctx)
	if err != nil {
		slog.Warn("cache warm-up skipped", "error", err)
		return
	}
	stats, err := reconcile.New(categoryStore, categoryCache).Resync(ctx, categories)
	if err != nil {
		slog.Warn("cache warm-up incomplete", "error", err)
	}
	categoryCache.ReadAll(ctx)
	slog.Info("cache warmed", "put", stats.Put, "removed", stats.Removed, "failed", stats.Failed)
}
