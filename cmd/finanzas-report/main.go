package main

import (
	"context"
	"os"

	"finanzas/internal/charts"
	"finanzas/internal/cli"
	"finanzas/internal/core"
	applog "finanzas/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	month := core.Month(cfg.ReportMonth)
	logger.Info("Starting finanzas-report", applog.FieldMonth, month, "backend", cfg.DataBackend)

	ctx := context.Background()
	result := cli.InitBackend(ctx, logger, cfg)
	defer cli.Cleanup(logger, result)

	summary, err := result.Backend.Summaries.MonthSummary(ctx, month)
	if err != nil {
		cli.Cleanup(logger, result)
		cli.Fatal(logger, "Failed to build month summary", err)
	}

	if err := writeSummary(os.Stdout, summary); err != nil {
		logger.Warn("Failed to print summary table", applog.FieldError, err)
	}

	written, err := charts.NewRenderer().WriteFiles(cfg.ChartOutputDir, summary)
	if err != nil {
		cli.Cleanup(logger, result)
		cli.Fatal(logger.WithComponent(applog.ComponentCharts), "Failed to render charts", err)
	}
	for _, path := range written {
		logger.Info("Chart written", applog.FieldPath, path)
	}

	logger.Info("Report complete",
		applog.FieldMonth, month,
		"income", summary.Income.String(),
		"expense", summary.Expense.String(),
		"balance", summary.Balance.String(),
		"charts", len(written))
}
