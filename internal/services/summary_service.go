package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"finanzas/internal/aggregate"
	"finanzas/internal/core"
)

// TransactionReader is the part of the transaction repository summaries need.
type TransactionReader interface {
	GetByMonth(ctx context.Context, month core.Month) ([]core.Transaction, error)
}

// BudgetReader is the part of the budget repository summaries need.
type BudgetReader interface {
	GetByMonth(ctx context.Context, month core.Month) (core.Budget, bool, error)
}

// SummaryService assembles the per-month view of income, spending and budget.
type SummaryService struct {
	transactions TransactionReader
	budgets      BudgetReader
}

func NewSummaryService(transactions TransactionReader, budgets BudgetReader) *SummaryService {
	return &SummaryService{
		transactions: transactions,
		budgets:      budgets,
	}
}

// MonthSummary loads the month's transactions and budget concurrently and
// derives every figure shown for that month.
func (s *SummaryService) MonthSummary(ctx context.Context, month core.Month) (core.MonthSummary, error) {
	if err := month.Validate(); err != nil {
		return core.MonthSummary{}, fmt.Errorf("month summary: %w", &core.ValidationError{Field: "month", Err: err})
	}

	var (
		txs       []core.Transaction
		budget    core.Budget
		hasBudget bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.transactions.GetByMonth(gctx, month)
		return err
	})
	g.Go(func() error {
		var err error
		budget, hasBudget, err = s.budgets.GetByMonth(gctx, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.MonthSummary{}, fmt.Errorf("month summary for %s: %w", month, err)
	}

	byCategory := aggregate.GroupSumByCategory(
		aggregate.FilterTransactions(txs, core.TransactionFilter{Type: core.Expense}))

	summary := core.MonthSummary{
		Month:        month,
		Income:       aggregate.SumByType(txs, core.Income),
		Expense:      aggregate.SumByType(txs, core.Expense),
		Balance:      aggregate.Balance(txs),
		ByCategory:   byCategory,
		Shares:       aggregate.CategoryShares(byCategory),
		HasBudget:    hasBudget,
		Transactions: aggregate.SortByDate(txs),
	}
	if hasBudget {
		summary.Comparison = aggregate.BudgetVsActual(budget, txs)
		summary.Totals = aggregate.BudgetTotals(budget, txs)
		summary.Unbudgeted = aggregate.UnbudgetedSpending(budget, txs)
	}

	slog.DebugContext(ctx, "Month summary computed",
		"month", month,
		"transactions", len(txs),
		"has_budget", hasBudget)
	return summary, nil
}
