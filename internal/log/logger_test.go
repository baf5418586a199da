package log

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogger_StampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentStorage, Output: &buf})

	logger.Info("opened", FieldPath, "/tmp/x.db")
	logger.WithComponent(ComponentCharts).Debug("rendered")

	out := buf.String()
	if !strings.Contains(out, "component=storage") || !strings.Contains(out, "path=/tmp/x.db") {
		t.Errorf("missing storage fields:\n%s", out)
	}
	if !strings.Contains(out, "component=charts") {
		t.Errorf("missing charts component:\n%s", out)
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if logger.Component() != ComponentApp {
		t.Errorf("Component() = %q, want %q", logger.Component(), ComponentApp)
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("save: %w", &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}), ErrorTypeValidation},
		{fmt.Errorf("update: %w", storage.ErrNotFound), ErrorTypeNotFound},
		{fmt.Errorf("open: %w", storage.ErrStorageUnavailable), ErrorTypeUnavailable},
		{storage.ErrNotInitialized, ErrorTypeUnavailable},
		{fmt.Errorf("%w: insert", storage.ErrWriteFailed), ErrorTypeDatabase},
		{errors.New("boom"), ErrorTypeInternal},
	}
	for _, tt := range tests {
		if got := ErrorType(tt.err); got != tt.want {
			t.Errorf("ErrorType(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestLogFields(t *testing.T) {
	tr := core.Transaction{
		ID:       7,
		Type:     core.Expense,
		Category: "Salud",
		Date:     core.NewDate(2024, 5, 3),
	}
	f := NewFields().WithOperation(OpCreate).WithTransaction(tr).WithError(storage.ErrNotFound)

	if f[FieldCollection] != storage.Transactions || f[FieldRecordID] != int64(7) || f[FieldMonth] != "2024-05" {
		t.Errorf("unexpected transaction fields %v", f)
	}
	if f[FieldErrorType] != ErrorTypeNotFound {
		t.Errorf("error type = %v", f[FieldErrorType])
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Errorf("ToSlice() should hold key/value pairs")
	}

	b := NewFields().WithBudget(core.Budget{Month: "2024-05"})
	if _, ok := b[FieldRecordID]; ok {
		t.Error("unsaved budget should not log a record id")
	}
}
