package main

import (
	"context"
	"errors"
	"os"

	"finanzas/internal/amqp"
	"finanzas/internal/charts"
	"finanzas/internal/cli"
	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentNotifier)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting finanzas-notifier", "queue", cfg.AMQPQueue, "backend", cfg.DataBackend)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to consume change events")
		os.Exit(1)
	}
	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend does not share data with other processes; summaries will be empty")
	}

	result := cli.InitBackend(context.Background(), logger, cfg)

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Cleanup(logger, result)
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("Failed to close AMQP consumer", applog.FieldError, err)
		}
		cli.Cleanup(logger, result)
	})

	refresher := worker.NewRefreshWorker(result.Backend.Summaries, charts.NewRenderer(), cfg.ChartOutputDir)

	logger.Info("Performing startup refresh...", applog.FieldMonth, cfg.ReportMonth)
	if err := refresher.StartupRefresh(ctx, core.Month(cfg.ReportMonth)); err != nil {
		// Don't exit - continue with normal operation
		logger.Error("Startup refresh failed", applog.FieldError, err)
	}

	go func() {
		err := consumer.ConsumeChanges(ctx, refresher.HandleChange)
		if err != nil && ctx.Err() == nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed",
				applog.FieldOperation, applog.OpConsume,
				applog.FieldError, err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
