package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"routtie/internal/config"
	"routtie/internal/mqhandler"
	"routtie/internal/notify"
	"routtie/pkg/logger"
	"routtie/pkg/mq"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting routtie notifier...",
		zap.String("mq_url", cfg.MQ.URL),
	)

	// MQ Handler
	reminderDueHandler := mqhandler.NewReminderDueHandler(log)

	// MQ Consumer for reminder.due
	log.Info("Initializing MQ consumer for reminder.due...",
		zap.String("queue", "reminder.due.q"),
		zap.String("routing_key", notify.RoutingKeyReminderDue),
	)
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "reminder.due.q", notify.RoutingKeyReminderDue, log)
	if err != nil {
		log.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	consumer.SetHandler(reminderDueHandler.Handle)

	go func() {
		log.Info("Starting reminder.due consumer...")
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("Reminder consumer failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down notifier...")
}
