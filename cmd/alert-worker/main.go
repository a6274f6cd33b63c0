package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mwsasi/personal-account-tracker/internal/alerts"
	"github.com/mwsasi/personal-account-tracker/internal/amqp"
	"github.com/mwsasi/personal-account-tracker/internal/backend"
	"github.com/mwsasi/personal-account-tracker/internal/config"
	applog "github.com/mwsasi/personal-account-tracker/internal/log"
	"github.com/mwsasi/personal-account-tracker/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.ConfigFromEnv(applog.ComponentWorker))
	applog.SetDefault(logger)

	logger.Info("Starting alert worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The worker reads the same backend as the API server
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend",
			applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err)
			}
		}()
	}

	// AMQP consumer is optional; without it the worker runs on the ticker only
	var consumer worker.ChangeConsumer
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing on interval only",
				applog.FieldError, err)
		} else {
			defer amqpClient.Close()
			consumer = amqpClient
			logger.Info("Initialized AMQP consumer", "queue", cfg.AMQPQueue)
		}
	}

	notifier := alerts.NewNotifier(result.Store, cfg.Categories(), alerts.Config{
		BudgetThreshold: cfg.BudgetAlertThreshold,
		BillDueWindow:   cfg.BillDueWindow,
	})

	alertWorker := worker.NewAlertWorker(notifier, consumer, worker.Config{
		Interval: cfg.AlertInterval,
	})
	if err := alertWorker.Start(ctx); err != nil {
		logger.Error("Failed to start alert worker", applog.FieldError, err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()
	if err := alertWorker.Stop(shutdownCtx); err != nil {
		logger.Warn("Alert worker stop error", applog.FieldError, err)
	}
	logger.Info("Alert worker shutdown complete")
}
