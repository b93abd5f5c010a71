package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/xingbinice/wuxianyijin/internal/bootstrap"
	"github.com/xingbinice/wuxianyijin/internal/config"
	"github.com/xingbinice/wuxianyijin/internal/events"
	"github.com/xingbinice/wuxianyijin/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer listens for salary.imported events until SIGINT/SIGTERM. With
// AUTO_RECALCULATE set each event triggers a fresh calculation.
func RunConsumer(cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	var recalculator consumer.Recalculator
	if cfg.Calculation.AutoRecalculate {
		infra, err := ConnectInfra(cfg, logger)
		if err != nil {
			return err
		}
		defer infra.Close()

		services, err := NewServices(infra.DB, infra.Redis, cfg, bootstrap.NewStdoutAuditLogger(), zap.L())
		if err != nil {
			return err
		}
		recalculator = consumer.RecalculatorFunc(func(ctx context.Context) (any, error) {
			return services.Contributions.Calculate(ctx)
		})
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          events.SalaryImportedTopic,
		GroupID:        cfg.Kafka.ConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.ConsumeSalaryImported(ctx, reader, recalculator, logger)

	logger.Info("consumer shutting down")
	return nil
}
