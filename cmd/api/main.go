// Package main is the entry point for the portal API process. It wires
// the workflow handlers to PostgreSQL, Redis and the event bus, then
// serves the versioned REST API until a shutdown signal arrives.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/collab-hub/collab-portal/config"
	"github.com/collab-hub/collab-portal/internal/application/command"
	"github.com/collab-hub/collab-portal/internal/application/eventhandler"
	"github.com/collab-hub/collab-portal/internal/application/query"
	"github.com/collab-hub/collab-portal/internal/domain/authz"
	"github.com/collab-hub/collab-portal/internal/domain/opportunity"
	"github.com/collab-hub/collab-portal/internal/infrastructure/messaging"
	"github.com/collab-hub/collab-portal/internal/infrastructure/persistence/postgres"
	redisinfra "github.com/collab-hub/collab-portal/internal/infrastructure/persistence/redis"
	"github.com/collab-hub/collab-portal/internal/infrastructure/service"
	"github.com/collab-hub/collab-portal/internal/infrastructure/storage"
	httpapi "github.com/collab-hub/collab-portal/internal/interface/http"
	"github.com/collab-hub/collab-portal/pkg/logger"
	"github.com/collab-hub/collab-portal/pkg/retry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	}).With(logger.Component("api"))

	log.Info("starting",
		logger.String("app", cfg.App.Name),
		logger.String("version", cfg.App.Version),
		logger.String("env", string(cfg.App.Environment)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Infrastructure ────────────────────────────────────────────────────────

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	// Postgres may still be coming up when the process starts.
	err = retry.DatabaseRetrier().Do(ctx, func(ctx context.Context) error {
		if err := conn.Ping(ctx); err != nil {
			return retry.Retryable(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	migrator := postgres.NewMigrator(conn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	appRepo := postgres.NewApplicationRepository(conn)
	progressRepo := postgres.NewProgressRepository(conn)

	var registry opportunity.Registry = postgres.NewOpportunityRegistry(conn)

	health := map[string]httpapi.HealthChecker{
		"postgres": conn.Ping,
	}

	var sink *redisinfra.NotificationQueue
	if !cfg.Redis.Disabled {
		redisClient, err := redisinfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()

		registry = redisinfra.NewCachedRegistry(registry, redisClient, cfg.Features.ResolveCacheTTL, log)
		sink = redisinfra.NewNotificationQueue(redisClient, cfg.Notifier.QueueKey)
		health["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	store, err := storage.NewDiskStore(cfg.Storage.RootDir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// ── Metrics ───────────────────────────────────────────────────────────────

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	messaging.RegisterMetrics(metrics)

	// ── Event bus and notification dispatch ───────────────────────────────────

	bus := messaging.NewInMemoryEventBus(messaging.Config{
		AsyncMode:      true,
		WorkerPoolSize: 10,
		Logger:         log,
	})
	defer bus.Close()

	ids := service.NewUUIDGenerator()

	if sink != nil {
		dispatcher := eventhandler.NewNotificationDispatcher(sink, ids.NewID, log)
		if err := dispatcher.Register(bus); err != nil {
			return fmt.Errorf("register notification dispatcher: %w", err)
		}
	}

	// ── Application layer ─────────────────────────────────────────────────────

	gate := authz.NewGate(registry)

	appHandlers := httpapi.NewApplicationHandlers(
		command.NewSubmitApplicationHandler(appRepo, registry, gate, ids, bus, log),
		command.NewSetApplicationStatusHandler(appRepo, progressRepo, gate, ids, bus, log),
		command.NewWithdrawApplicationHandler(appRepo, gate, bus, log),
		query.NewListMyApplicationsHandler(appRepo, gate),
		query.NewListApplicantsHandler(appRepo, registry),
	)

	progressHandlers := httpapi.NewProgressHandlers(
		command.NewAppendProgressUpdateHandler(appRepo, progressRepo, gate, ids, bus, log, cfg.Features.StrictProgressTransitions),
		command.NewUploadSubmissionHandler(appRepo, progressRepo, store, gate, ids, bus, log),
		command.NewAddRemarkHandler(appRepo, progressRepo, gate, ids, bus, log),
		command.NewReplyToRemarkHandler(appRepo, progressRepo, gate, ids, bus, log),
		query.NewGetMyProgressHandler(progressRepo, gate),
		query.NewGetPosterViewHandler(appRepo, progressRepo, gate),
		query.NewDownloadSubmissionHandler(appRepo, progressRepo, store, gate),
		cfg.HTTP.MaxUploadBytes,
		log,
	)

	// ── HTTP server ───────────────────────────────────────────────────────────

	server := httpapi.NewServer(cfg, httpapi.Deps{
		Applications: appHandlers,
		Progress:     progressHandlers,
		Health:       health,
		Metrics:      metrics,
	}, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	log.Info("stopped")
	return nil
}
