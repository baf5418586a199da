package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/notify"
)

type fakeSummaries struct {
	calls []core.Month
	err   error
}

func (f *fakeSummaries) MonthSummary(_ context.Context, month core.Month) (core.MonthSummary, error) {
	f.calls = append(f.calls, month)
	if f.err != nil {
		return core.MonthSummary{}, f.err
	}
	return core.MonthSummary{Month: month, Income: decimal.NewFromInt(1)}, nil
}

type fakeCharts struct {
	dirs []string
}

func (f *fakeCharts) WriteFiles(dir string, _ core.MonthSummary) ([]string, error) {
	f.dirs = append(f.dirs, dir)
	return []string{filepath.Join(dir, "income_expense.png")}, nil
}

func message(month string) *amqp.ChangeMessage {
	return amqp.NewChangeMessage(notify.NewEvent("transactions", notify.OpCreate, 1, month))
}

func TestRefreshWorker_HandleChange(t *testing.T) {
	summaries := &fakeSummaries{}
	charts := &fakeCharts{}
	w := NewRefreshWorker(summaries, charts, "out")

	if err := w.HandleChange(context.Background(), message("2024-05")); err != nil {
		t.Fatalf("HandleChange() error = %v", err)
	}

	if len(summaries.calls) != 1 || summaries.calls[0] != "2024-05" {
		t.Errorf("summaries computed for %v, want [2024-05]", summaries.calls)
	}
	if len(charts.dirs) != 1 || charts.dirs[0] != filepath.Join("out", "2024-05") {
		t.Errorf("charts written to %v", charts.dirs)
	}
}

func TestRefreshWorker_SkipsMessagesWithoutUsableMonth(t *testing.T) {
	for _, month := range []string{"", "2024-99"} {
		summaries := &fakeSummaries{}
		w := NewRefreshWorker(summaries, &fakeCharts{}, "out")

		if err := w.HandleChange(context.Background(), message(month)); err != nil {
			t.Errorf("HandleChange(%q) error = %v, want nil", month, err)
		}
		if len(summaries.calls) != 0 {
			t.Errorf("HandleChange(%q) should not compute a summary", month)
		}
	}
}

func TestRefreshWorker_PropagatesSummaryErrors(t *testing.T) {
	boom := errors.New("storage down")
	w := NewRefreshWorker(&fakeSummaries{err: boom}, &fakeCharts{}, "out")

	if err := w.HandleChange(context.Background(), message("2024-05")); !errors.Is(err, boom) {
		t.Errorf("HandleChange() error = %v, want %v so the message is requeued", err, boom)
	}
}

func TestRefreshWorker_StartupRefresh(t *testing.T) {
	summaries := &fakeSummaries{}
	w := NewRefreshWorker(summaries, &fakeCharts{}, "out")

	if err := w.StartupRefresh(context.Background(), "2024-04", "2024-05"); err != nil {
		t.Fatalf("StartupRefresh() error = %v", err)
	}
	if len(summaries.calls) != 2 {
		t.Errorf("expected two months refreshed, got %v", summaries.calls)
	}

	failing := NewRefreshWorker(&fakeSummaries{err: errors.New("x")}, &fakeCharts{}, "out")
	if err := failing.StartupRefresh(context.Background(), "2024-05"); err == nil {
		t.Error("StartupRefresh() should report failed months")
	}
}

func TestRefreshWorker_SkipsRedeliveries(t *testing.T) {
	summaries := &fakeSummaries{}
	w := NewRefreshWorker(summaries, &fakeCharts{}, "out")
	msg := message("2024-05")

	for i := 0; i < 3; i++ {
		if err := w.HandleChange(context.Background(), msg); err != nil {
			t.Fatal(err)
		}
	}
	if len(summaries.calls) != 1 {
		t.Errorf("redelivered event refreshed %d times, want 1", len(summaries.calls))
	}
}

func TestRefreshWorker_RetriesFailedEvents(t *testing.T) {
	summaries := &fakeSummaries{err: errors.New("locked")}
	w := NewRefreshWorker(summaries, &fakeCharts{}, "out")
	msg := message("2024-05")

	if err := w.HandleChange(context.Background(), msg); err == nil {
		t.Fatal("expected the first attempt to fail")
	}
	summaries.err = nil
	if err := w.HandleChange(context.Background(), msg); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if len(summaries.calls) != 2 {
		t.Errorf("failed event should be retried, got %d attempts", len(summaries.calls))
	}
}
