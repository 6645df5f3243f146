package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/example/ec-fulfillment/internal/api"
	"github.com/example/ec-fulfillment/internal/auth"
	"github.com/example/ec-fulfillment/internal/checkout"
	"github.com/example/ec-fulfillment/internal/command"
	"github.com/example/ec-fulfillment/internal/config"
	"github.com/example/ec-fulfillment/internal/infrastructure/kafka"
	"github.com/example/ec-fulfillment/internal/infrastructure/store"
	"github.com/example/ec-fulfillment/internal/lock"
	"github.com/example/ec-fulfillment/internal/observability"
	"github.com/example/ec-fulfillment/internal/outbox"
	"github.com/example/ec-fulfillment/internal/query"
	"go.uber.org/zap"
)

const serviceName = "ec-fulfillment-api"

func main() {
	if err := run(); err != nil {
		log.Fatalf("[API] %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
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
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("store %s: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if err := backend.Close(context.Background()); err != nil {
			logger.Warn("store close failed", zap.Error(err))
		}
	}()
	logger.Info("store ready", zap.String("driver", cfg.StoreDriver))

	var locker lock.Locker = lock.NewLocal()
	if cfg.RedisEnabled() {
		client := lock.NewRedisClient(cfg.RedisAddress, cfg.RedisPassword)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		locker = lock.NewRedis(client, cfg.LockTTL)
		logger.Info("using redis locks", zap.String("address", cfg.RedisAddress))
	}

	orchestrator := checkout.NewOrchestrator(backend,
		checkout.WithTaxPolicy(checkout.RateTax{Rate: cfg.TaxRate}),
		checkout.WithLocker(locker),
		checkout.WithLogger(logger.Named("checkout")),
	)
	digester, err := auth.DigesterByName(cfg.PasswordDigest)
	if err != nil {
		return err
	}
	credentials := auth.NewCredentialService(backend,
		auth.WithDigester(digester),
		auth.WithHistoryDepth(cfg.PasswordHistoryDepth),
		auth.WithLogger(logger.Named("auth")),
	)
	cmdHandler := command.NewHandler(backend, orchestrator, credentials,
		command.WithDefaultCurrency(cfg.DefaultCurrency),
		command.WithLogger(logger.Named("command")),
	)
	queryHandler := query.NewHandler(backend)

	var wg sync.WaitGroup
	if cfg.KafkaEnabled() {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()

		relay := outbox.NewRelay(backend, producer,
			outbox.WithInterval(cfg.OutboxInterval),
			outbox.WithBatchSize(cfg.OutboxBatch),
			outbox.WithLogger(logger.Named("outbox")),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox relay stopped", zap.Error(err))
			}
		}()
		logger.Info("outbox relay started",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	} else {
		logger.Warn("KAFKA_BROKERS not set; events stay in the outbox")
	}

	handlers := api.NewHandlers(cmdHandler, queryHandler, logger.Named("http"))
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handlers, logger.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("server: %w", err)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown failed", zap.Error(err))
	}
	wg.Wait()
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("schema: %w", err)
		}
		return pg, nil
	case config.DriverMongo:
		client, err := store.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		m := store.NewMongo(client, cfg.MongoDatabase)
		if err := m.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("indexes: %w", err)
		}
		return m, nil
	default:
		return store.NewMemory(), nil
	}
}
