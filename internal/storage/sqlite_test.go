package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

func TestSQLiteEngine_OpenUnavailable(t *testing.T) {
	// A regular file where the database directory should be
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	e := NewSQLiteEngine(filepath.Join(blocker, "data", "finanzas.db"))
	err := e.Open(context.Background())
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}

	err = e.Read(context.Background(), func(tx Tx) error { return nil })
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized after failed open, got %v", err)
	}
}

func TestSQLiteEngine_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "finanzas.db")

	e := NewSQLiteEngine(path)
	if err := e.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	id := insertTransaction(t, e, sampleTransaction(core.Income, "Salario", 15))
	b := core.Budget{
		Month:      "2024-05",
		Categories: map[string]decimal.Decimal{"Vivienda": decimal.RequireFromString("750.25")},
	}
	err := e.Atomic(ctx, func(tx Tx) error {
		_, err := tx.InsertBudget(ctx, &b)
		return err
	})
	if err != nil {
		t.Fatalf("insert budget: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := e.Read(ctx, func(tx Tx) error { return nil }); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized after close, got %v", err)
	}

	reopened := NewSQLiteEngine(path)
	if err := reopened.Open(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	err = reopened.Read(ctx, func(tx Tx) error {
		got, found, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		want := sampleTransaction(core.Income, "Salario", 15)
		want.ID = id
		if !found || !sameTransaction(got, want) {
			t.Errorf("got %+v (found=%v), want %+v", got, found, want)
		}

		budget, found, err := tx.BudgetByMonth(ctx, "2024-05")
		if !found || !budget.Categories["Vivienda"].Equal(decimal.RequireFromString("750.25")) {
			t.Errorf("unexpected budget %+v (found=%v)", budget, found)
		}
		return err
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
}

func TestRunMigrations_ReportsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	version, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if version != 2 {
		t.Fatalf("expected schema version 2, got %d", version)
	}

	// Second run is a no-op
	if again, err := RunMigrations(path); err != nil || again != version {
		t.Fatalf("rerun: version=%d err=%v", again, err)
	}
}
