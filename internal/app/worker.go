package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/xingbinice/wuxianyijin/internal/config"
	"github.com/xingbinice/wuxianyijin/internal/messaging/kafka"
	"github.com/xingbinice/wuxianyijin/internal/messaging/kafka/producer"
	"github.com/xingbinice/wuxianyijin/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker relays pending outbox events to kafka until SIGINT/SIGTERM.
func RunWorker(cfg config.Config) error {
	logger := zap.L().Named("app.worker")

	if !cfg.Database.Configured() {
		return fmt.Errorf("DB_HOST is required")
	}
	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	infra, err := ConnectInfra(cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.Kafka.MaxRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(infra.DB)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, logger, 3*time.Second)

	logger.Info("worker shutting down")
	return nil
}
