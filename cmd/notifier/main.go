package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/example/ec-fulfillment/internal/config"
	"github.com/example/ec-fulfillment/internal/email"
	"github.com/example/ec-fulfillment/internal/infrastructure/kafka"
	"github.com/example/ec-fulfillment/internal/lock"
	"github.com/example/ec-fulfillment/internal/notification"
	"github.com/example/ec-fulfillment/internal/observability"
	"go.uber.org/zap"
)

const serviceName = "ec-fulfillment-notifier"

func main() {
	if err := run(); err != nil {
		log.Fatalf("[Notifier] %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.KafkaEnabled() {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}

	logger, err := observability.NewLogger(serviceName, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.SetupTracing(ctx, serviceName, cfg.OtelEndpoint, cfg.OtelAuthHeader)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	opts := []notification.Option{notification.WithLogger(logger.Named("notification"))}
	if cfg.RedisEnabled() {
		client := lock.NewRedisClient(cfg.RedisAddress, cfg.RedisPassword)
		defer client.Close()
		opts = append(opts, notification.WithDeduper(notification.NewRedisDeduper(client, 0)))
	}

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handler := notification.NewHandler(emailSvc, opts...)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaConsumerGroup, logger.Named("kafka"))
	defer consumer.Close()

	logger.Info("consuming events",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic),
		zap.String("group", cfg.KafkaConsumerGroup),
		zap.String("smtp", cfg.SMTPHost+":"+cfg.SMTPPort),
	)
	if err := consumer.Consume(ctx, handler.HandleMessage); err != nil && ctx.Err() == nil {
		return fmt.Errorf("consumer: %w", err)
	}
	logger.Info("shutting down")
	return nil
}
