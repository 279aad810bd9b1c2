// Command notifier drains the notification queue and logs each message as
// the text staff would receive.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/panaghia/restaurant/internal/config"
	"github.com/panaghia/restaurant/internal/logging"
	"github.com/panaghia/restaurant/internal/notify"
)

func main() {
	config.LoadDotEnv()
	url := os.Getenv("RABBITMQ_URL")
	config.MustNonEmpty(url, "RABBITMQ_URL")

	logger := logging.New(config.EnvDefault("LOG_LEVEL", "info")).With("service", "panaghia-notifier")
	slog.SetDefault(logger)

	client, err := notify.Dial(url)
	if err != nil {
		log.Fatalf("rabbitmq init: %v", err)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("notifier_started", "queue", notify.Queue)
	err = client.Consume(ctx, "panaghia-notifier", func(ctx context.Context, msg notify.Message) error {
		logger.Info("notification_received", "kind", msg.Kind, "at", msg.At, "text", notify.Render(msg))
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("notifier_stopped", "error", err)
		return
	}
	logger.Info("shutdown_complete")
}
