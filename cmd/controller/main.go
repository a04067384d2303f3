// Package main is the entry point for the driveplane controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"driveplane/internal/config"
	"driveplane/internal/controller"
	"driveplane/internal/controller/middleware"
	"driveplane/internal/drive"
	"driveplane/internal/logger"
	"driveplane/internal/notify"
	"driveplane/internal/observability"
	"driveplane/internal/store/postgres"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func main() {
	// Parse flags
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	configPath := flag.String("config", "", "Path to config file (default: driveplane.yaml in current directory)")
	flag.Parse()

	// Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log, *migrateFlag); err != nil {
		log.Error("controller stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, migrate bool) error {
	// Graceful Shutdown: Run drains the server once a signal cancels ctx.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to Postgres (the "Store")
	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer store.Close()

	// Run migrations if requested
	if migrate {
		log.Info("running database migrations")
		version, err := postgres.Migrate(store.DB())
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info("migrations completed", "schema_version", version)
	}

	// Tracing
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName: "driveplane-controller",
		Endpoint:    cfg.OTELEndpoint,
	})
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("failed to shutdown tracer", "error", err)
		}
	}()

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		return fmt.Errorf("failed to init metrics: %w", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Warn("failed to shutdown metrics", "error", err)
		}
	}()

	meter := otel.Meter("driveplane-controller")
	driveMetrics, err := observability.NewDriveMetrics(meter)
	if err != nil {
		return fmt.Errorf("failed to create drive metrics: %w", err)
	}

	// Use an Observable Gauge (Async) that queries the DB only when scraped.
	_, err = meter.Int64ObservableGauge("drive.sessions",
		metric.WithDescription("Current number of drive sessions per status"),
		metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
			counts, err := store.CountSessionsByStatus(ctx)
			if err != nil {
				log.WarnContext(ctx, "failed to count sessions", "error", err)
				return nil // Don't crash metrics scrape on DB error
			}
			for status, n := range counts {
				obs.Observe(n, metric.WithAttributes(attribute.String("status", string(status))))
			}
			return nil
		}),
	)
	if err != nil {
		log.Warn("failed to register session gauge", "error", err)
	}

	// Engine
	purchase, err := drive.NewPurchaseFlow(cfg.PurchaseFlow, cfg.LuxuryComboMultiplier)
	if err != nil {
		return err
	}

	var notifier drive.Notifier = notify.LogNotifier{Logger: log}
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(notify.Config{
			URL:     cfg.NotifyWebhookURL,
			Secret:  cfg.NotifySecret,
			Timeout: cfg.NotifyTimeout,
		}, log)
	}

	dispatcher := drive.NewDispatcher(notifier, cfg.NotifyQueueSize, log)

	engine := drive.NewService(store, drive.ServiceConfig{
		TierCacheTTL: cfg.TierCacheTTL,
		Purchase:     purchase,
		Notifier:     dispatcher,
		Metrics:      driveMetrics,
		Logger:       log,
	})

	// Start Server
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := controller.New(controller.Options{
		Addr:          addr,
		Store:         store,
		Engine:        engine,
		Logger:        log,
		SystemSecret:  cfg.SystemSecret,
		RateLimiter:   middleware.NewRateLimiter(middleware.WithLimit(cfg.RateLimit, cfg.RateLimitBurst)),
		Metrics:       metricsHandler,
		Notifications: dispatcher,
	})

	log.Info("driveplane controller starting", "addr", addr, "purchase_flow", purchase.Name())
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	log.Info("server exited properly")
	return nil
}
