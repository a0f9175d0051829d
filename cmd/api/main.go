// Package main is the entry point for the finance event core API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/finance-tracker/eventcore/config"
	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/infra/bus"
	"github.com/finance-tracker/eventcore/internal/infra/db"
	"github.com/finance-tracker/eventcore/internal/infra/dependency"
	"github.com/finance-tracker/eventcore/internal/integration/persistence/model"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	slog.Info("Starting finance event core",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Database
	database, err := db.NewPostgresConnection(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := database.AutoMigrate(
		&model.ExpenseModel{},
		&model.IncomeModel{},
		&model.MonthlyAggregateModel{},
		&model.AggregateEntryModel{},
		&model.DashboardCacheModel{},
		&model.DashboardItemModel{},
		&model.TokenLedgerModel{},
		&model.DeletionSagaModel{},
		&model.OutboxMessageModel{},
		&model.AdviceLogModel{},
	); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed successfully")

	// Redis (idempotency ledger)
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.Error("Failed to parse redis url", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		redisOpts.DB = cfg.Redis.DB
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Error("Failed to close redis connection", "error", err)
		}
	}()

	// Event bus
	publisher, err := bus.NewPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
	if err != nil {
		slog.Error("Failed to connect to broker", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("Failed to close broker publisher", "error", err)
		}
	}()

	dbHealthChecker := database.HealthCheck
	redisHealthChecker := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return redisClient.Ping(ctx).Err() == nil
	}

	injector := dependency.NewInjector(cfg, database.DB(), redisClient, publisher, dbHealthChecker, redisHealthChecker)

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	if cfg.Outbox.Enabled {
		go injector.Relay.Start(workerCtx)
	}
	go injector.Coordinator.Start(workerCtx)

	if cfg.Broker.ConsumersEnabled {
		startConsumers(workerCtx, cfg, injector)
	}

	// HTTP server
	engine := injector.Router.Setup(cfg.Server.Environment)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}
	slog.Info("Server stopped")
}

// startConsumers opens one broker subscription per consumer group. Each
// group gets its own connection so a slow group cannot starve the others.
func startConsumers(ctx context.Context, cfg *config.Config, injector *dependency.Injector) {
	subscriptions := []struct {
		group    string
		handlers map[string]adapter.EventHandler
	}{
		{cfg.Broker.FinancialDataGroup, injector.AggregateProjector.Handlers()},
		{cfg.Broker.DashboardGroup, injector.DashboardProjector.Handlers()},
		{cfg.Broker.SagaGroup, injector.Coordinator.Handlers()},
	}

	for _, sub := range subscriptions {
		sub := sub
		consumer, err := bus.NewConsumer(cfg.Broker.URL, cfg.Broker.Exchange, cfg.Broker.MaxDeliveries, cfg.Broker.RetryDelay)
		if err != nil {
			slog.Error("Failed to connect consumer", "group", sub.group, "error", err)
			os.Exit(1)
		}
		go func() {
			defer func() {
				if err := consumer.Close(); err != nil {
					slog.Error("Failed to close consumer", "group", sub.group, "error", err)
				}
			}()
			if err := consumer.Subscribe(ctx, sub.group, sub.handlers); err != nil && ctx.Err() == nil {
				slog.Error("Consumer stopped unexpectedly", "group", sub.group, "error", err)
			}
		}()
	}
}
