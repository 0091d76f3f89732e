// Package main is the entry point for the notification worker. It
// drains the Redis notification queue and forwards each notification
// to the external sink with retries and a circuit breaker. Delivery is
// best-effort: a notification that keeps failing is logged and dropped,
// never blocking the queue.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/collab-hub/collab-portal/config"
	"github.com/collab-hub/collab-portal/internal/domain/notification"
	"github.com/collab-hub/collab-portal/internal/infrastructure/external/notifier"
	redisinfra "github.com/collab-hub/collab-portal/internal/infrastructure/persistence/redis"
	"github.com/collab-hub/collab-portal/pkg/logger"
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
	if cfg.Redis.Disabled {
		return errors.New("worker requires redis; REDIS_DISABLED is set")
	}
	if cfg.Notifier.SinkURL == "" {
		return errors.New("NOTIFIER_SINK_URL is required")
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	}).With(logger.Component("worker"))

	log.Info("starting",
		logger.String("app", cfg.App.Name),
		logger.String("version", cfg.App.Version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := redisinfra.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	queue := redisinfra.NewNotificationQueue(redisClient, cfg.Notifier.QueueKey)
	sink := notifier.NewClient(cfg.Notifier, log)

	drain(ctx, queue, sink, cfg.Notifier.PollTimeout, cfg.Notifier.DrainBatchSize, log)

	log.Info("stopped")
	return nil
}

// notificationQueue is the slice of the redis queue the drain loop uses.
type notificationQueue interface {
	Pop(ctx context.Context, timeout time.Duration) (notification.Notification, error)
	Len(ctx context.Context) (int64, error)
}

// drain pops notifications until the context is cancelled. At most
// batchSize notifications are delivered between context checks.
func drain(ctx context.Context, queue notificationQueue, sink notification.Sink, pollTimeout time.Duration, batchSize int, log *logger.Logger) {
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}

	for {
		if ctx.Err() != nil {
			return
		}

		if depth, err := queue.Len(ctx); err == nil && depth > 0 {
			log.Debug("queue depth", logger.Int64("depth", depth))
		}

		for i := 0; i < batchSize; i++ {
			n, err := queue.Pop(ctx, pollTimeout)
			if err != nil {
				if errors.Is(err, redisinfra.ErrQueueEmpty) || ctx.Err() != nil {
					break
				}
				log.Error("queue pop failed", logger.Err(err))
				// Back off briefly so a broken redis connection doesn't spin.
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
					return
				}
				break
			}

			if err := sink.Send(ctx, n); err != nil {
				log.Error("notification delivery failed",
					logger.String("notification_id", n.ID),
					logger.String("recipient_id", n.RecipientID),
					logger.Err(err))
				continue
			}

			log.Debug("notification delivered",
				logger.String("notification_id", n.ID),
				logger.String("recipient_id", n.RecipientID))
		}
	}
}
