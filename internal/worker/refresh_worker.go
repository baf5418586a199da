package worker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/amqp"
	"finanzas/internal/cache"
	"finanzas/internal/core"
)

// SummaryProvider computes the summary of one month.
type SummaryProvider interface {
	MonthSummary(ctx context.Context, month core.Month) (core.MonthSummary, error)
}

// ChartWriter renders a summary's charts into a directory.
type ChartWriter interface {
	WriteFiles(dir string, s core.MonthSummary) ([]string, error)
}

const (
	seenEvents   = 1024
	seenEventTTL = time.Hour
)

// RefreshWorker keeps the charts of every touched month current. Each change
// message re-renders the charts of the month it names into
// <outputDir>/<month>/. Redelivered events are skipped.
type RefreshWorker struct {
	summaries SummaryProvider
	charts    ChartWriter
	outputDir string
	seen      *cache.Seen[uuid.UUID]
}

func NewRefreshWorker(summaries SummaryProvider, charts ChartWriter, outputDir string) *RefreshWorker {
	return &RefreshWorker{
		summaries: summaries,
		charts:    charts,
		outputDir: outputDir,
		seen:      cache.NewSeen[uuid.UUID](seenEvents, seenEventTTL),
	}
}

// HandleChange processes one change message from AMQP. Messages without a
// month are acknowledged without work.
func (w *RefreshWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	slog.InfoContext(ctx, "Processing change message",
		"event_id", msg.EventID,
		"collection", msg.Collection,
		"op", msg.Op,
		"record_id", msg.RecordID,
		"month", msg.Month)

	if !w.seen.Mark(msg.EventID) {
		slog.DebugContext(ctx, "Duplicate change message, skipping", "event_id", msg.EventID)
		return nil
	}

	if msg.Month == "" {
		slog.WarnContext(ctx, "Change message carries no month, skipping refresh",
			"event_id", msg.EventID)
		return nil
	}

	month, err := core.ParseMonth(msg.Month)
	if err != nil {
		// Redelivery cannot fix a malformed month.
		slog.ErrorContext(ctx, "Change message carries an invalid month, skipping refresh",
			"event_id", msg.EventID,
			"month", msg.Month)
		return nil
	}

	if err := w.Refresh(ctx, month); err != nil {
		// Let the requeued delivery try again.
		w.seen.Forget(msg.EventID)
		return err
	}
	return nil
}

// Refresh recomputes month and rewrites its charts.
func (w *RefreshWorker) Refresh(ctx context.Context, month core.Month) error {
	summary, err := w.summaries.MonthSummary(ctx, month)
	if err != nil {
		return fmt.Errorf("summary for %s: %w", month, err)
	}

	written, err := w.charts.WriteFiles(filepath.Join(w.outputDir, string(month)), summary)
	if err != nil {
		return fmt.Errorf("charts for %s: %w", month, err)
	}

	slog.InfoContext(ctx, "Month refreshed",
		"month", month,
		"income", summary.Income.String(),
		"expense", summary.Expense.String(),
		"charts", len(written))
	return nil
}

// StartupRefresh renders the given months once at start so charts exist even
// before the first change arrives. Failures are logged and do not stop the
// remaining months.
func (w *RefreshWorker) StartupRefresh(ctx context.Context, months ...core.Month) error {
	var failed int
	for _, m := range months {
		if err := w.Refresh(ctx, m); err != nil {
			slog.ErrorContext(ctx, "Startup refresh failed", "month", m, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("startup refresh: %d of %d months failed", failed, len(months))
	}
	return nil
}
