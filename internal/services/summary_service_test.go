package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/repository"
	"finanzas/internal/storage"
)

func newService(t *testing.T) (*SummaryService, *repository.TransactionRepository, *repository.BudgetRepository) {
	t.Helper()
	engine := storage.NewMemoryEngine()
	if err := engine.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	vocab := core.DefaultVocabulary()
	txs := repository.NewTransactionRepository(engine, vocab, nil)
	budgets := repository.NewBudgetRepository(engine, nil)
	return NewSummaryService(txs, budgets), txs, budgets
}

func save(t *testing.T, r *repository.TransactionRepository, typ core.TransactionType, amount, category string, day int) {
	t.Helper()
	_, err := r.Save(context.Background(), core.Transaction{
		Type:     typ,
		Amount:   decimal.RequireFromString(amount),
		Date:     core.NewDate(2024, 5, day),
		Category: category,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestSummaryService_MonthSummary(t *testing.T) {
	svc, txs, budgets := newService(t)
	ctx := context.Background()

	save(t, txs, core.Income, "2000", "Salario", 1)
	save(t, txs, core.Expense, "300", "Alimentación", 2)
	save(t, txs, core.Expense, "100", "Transporte", 3)
	save(t, txs, core.Expense, "100", "Ropa", 4)
	_, err := txs.Save(ctx, core.Transaction{
		Type: core.Expense, Amount: decimal.NewFromInt(999), Date: core.NewDate(2024, 6, 1), Category: "Ropa",
	})
	if err != nil {
		t.Fatal(err)
	}

	err = budgets.Save(ctx, core.Budget{Month: "2024-05", Categories: map[string]decimal.Decimal{
		"Alimentación": decimal.NewFromInt(250),
		"Transporte":   decimal.NewFromInt(150),
	}})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.MonthSummary(ctx, "2024-05")
	if err != nil {
		t.Fatalf("MonthSummary() error = %v", err)
	}

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"income", got.Income, "2000"},
		{"expense", got.Expense, "500"},
		{"balance", got.Balance, "1500"},
		{"budgeted", got.Totals.Budgeted, "400"},
		{"spent", got.Totals.Spent, "500"},
		{"difference", got.Totals.Difference, "-100"},
		{"food actual", got.Comparison["Alimentación"].Actual, "300"},
		{"transport remaining", got.Comparison["Transporte"].Remaining(), "50"},
		{"unbudgeted clothes", got.Unbudgeted["Ropa"], "100"},
	}
	for _, c := range checks {
		if !c.got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}

	if !got.HasBudget {
		t.Error("HasBudget should be true")
	}
	if _, ok := got.Comparison["Ropa"]; ok {
		t.Error("Comparison should only list budgeted categories")
	}
	if _, ok := got.ByCategory["Salario"]; ok {
		t.Error("ByCategory should only hold expenses")
	}
	if len(got.Shares) != 3 || got.Shares[0].Name != "Alimentación" || got.Shares[0].Percent != 60 {
		t.Errorf("Shares = %+v", got.Shares)
	}
	if len(got.Transactions) != 4 || got.Transactions[0].Date.String() != "2024-05-04" {
		t.Errorf("Transactions should be the month's records newest first, got %d", len(got.Transactions))
	}
}

func TestSummaryService_NoBudget(t *testing.T) {
	svc, txs, _ := newService(t)
	save(t, txs, core.Expense, "10", "Salud", 5)

	got, err := svc.MonthSummary(context.Background(), "2024-05")
	if err != nil {
		t.Fatal(err)
	}
	if got.HasBudget || got.Comparison != nil || got.Unbudgeted != nil {
		t.Errorf("summary without budget should leave budget figures empty: %+v", got)
	}
	if !got.Balance.Equal(decimal.NewFromInt(-10)) {
		t.Errorf("Balance = %s, want -10", got.Balance)
	}
}

func TestSummaryService_InvalidMonth(t *testing.T) {
	svc, _, _ := newService(t)
	if _, err := svc.MonthSummary(context.Background(), "2024/05"); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("MonthSummary() error = %v, want ErrInvalidMonth", err)
	}
}

func TestSummaryService_StorageError(t *testing.T) {
	engine := storage.NewMemoryEngine()
	vocab := core.DefaultVocabulary()
	svc := NewSummaryService(
		repository.NewTransactionRepository(engine, vocab, nil),
		repository.NewBudgetRepository(engine, nil),
	)

	if _, err := svc.MonthSummary(context.Background(), "2024-05"); !errors.Is(err, storage.ErrNotInitialized) {
		t.Errorf("MonthSummary() error = %v, want ErrNotInitialized", err)
	}
}
