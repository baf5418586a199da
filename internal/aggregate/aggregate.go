// Package aggregate derives totals and comparisons from transaction and
// budget records. Every function is pure: it never touches storage and
// treats its input as already validated.
package aggregate

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

var hundred = decimal.NewFromInt(100)

// SumByType adds the amounts of every transaction of type typ.
func SumByType(txs []core.Transaction, typ core.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Type == typ {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// GroupSumByCategory sums amounts per category. Categories with no
// transactions do not appear in the result.
func GroupSumByCategory(txs []core.Transaction) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, t := range txs {
		sums[t.Category] = sums[t.Category].Add(t.Amount)
	}
	return sums
}

// Balance is income minus expense; negative means the month ran a deficit.
func Balance(txs []core.Transaction) decimal.Decimal {
	return SumByType(txs, core.Income).Sub(SumByType(txs, core.Expense))
}

// BudgetVsActual pairs every budgeted category with the expenses booked
// against it. Spending in categories the budget does not list is left out;
// see UnbudgetedSpending.
func BudgetVsActual(b core.Budget, txs []core.Transaction) map[string]core.BudgetLine {
	spent := GroupSumByCategory(expenses(txs))
	lines := make(map[string]core.BudgetLine, len(b.Categories))
	for name, budgeted := range b.Categories {
		lines[name] = core.BudgetLine{Budgeted: budgeted, Actual: spent[name]}
	}
	return lines
}

// UnbudgetedSpending returns expense sums for categories missing from b.
func UnbudgetedSpending(b core.Budget, txs []core.Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for name, amount := range GroupSumByCategory(expenses(txs)) {
		if _, ok := b.Categories[name]; !ok {
			out[name] = amount
		}
	}
	return out
}

// BudgetTotals compares the sum of all budget lines with all expenses,
// budgeted or not.
func BudgetTotals(b core.Budget, txs []core.Transaction) core.BudgetTotals {
	budgeted := decimal.Zero
	for _, amount := range b.Categories {
		budgeted = budgeted.Add(amount)
	}
	spent := SumByType(txs, core.Expense)
	return core.BudgetTotals{
		Budgeted:   budgeted,
		Spent:      spent,
		Difference: budgeted.Sub(spent),
	}
}

// CategoryShares turns per-category sums into rounded percentages of their
// total, largest first. A zero total yields zero percentages.
func CategoryShares(sums map[string]decimal.Decimal) []core.CategoryShare {
	total := decimal.Zero
	for _, amount := range sums {
		total = total.Add(amount)
	}

	shares := make([]core.CategoryShare, 0, len(sums))
	for name, amount := range sums {
		share := core.CategoryShare{Name: name, Amount: amount}
		if total.IsPositive() {
			share.Percent = int(amount.Mul(hundred).Div(total).Round(0).IntPart())
		}
		shares = append(shares, share)
	}
	slices.SortFunc(shares, func(a, b core.CategoryShare) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return shares
}

// FilterTransactions keeps the transactions matching f, preserving order.
func FilterTransactions(txs []core.Transaction, f core.TransactionFilter) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// SortByDate returns a copy ordered newest first; same-day records keep the
// most recently created on top.
func SortByDate(txs []core.Transaction) []core.Transaction {
	out := slices.Clone(txs)
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func expenses(txs []core.Transaction) []core.Transaction {
	return FilterTransactions(txs, core.TransactionFilter{Type: core.Expense})
}
