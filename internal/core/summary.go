package core

import "github.com/shopspring/decimal"

// TransactionFilter selects transactions for the list view. Zero fields match everything.
type TransactionFilter struct {
	Month    Month
	Type     TransactionType
	Category string
}

// Matches reports whether t passes every set predicate.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.Month != "" && !f.Month.Contains(t.Date) {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	return true
}

// CategoryShare is a category's slice of the expense total.
type CategoryShare struct {
	Name    string
	Amount  decimal.Decimal
	Percent int
}

// BudgetLine pairs what was budgeted for a category with what was spent.
type BudgetLine struct {
	Budgeted decimal.Decimal
	Actual   decimal.Decimal
}

// Remaining is budgeted minus actual; negative means overspent.
func (l BudgetLine) Remaining() decimal.Decimal {
	return l.Budgeted.Sub(l.Actual)
}

// BudgetTotals compares the whole budget with all expenses of the month.
type BudgetTotals struct {
	Budgeted   decimal.Decimal
	Spent      decimal.Decimal
	Difference decimal.Decimal
}

// MonthSummary is everything the tabular and chart views show for one month.
type MonthSummary struct {
	Month        Month
	Income       decimal.Decimal
	Expense      decimal.Decimal
	Balance      decimal.Decimal
	ByCategory   map[string]decimal.Decimal
	Shares       []CategoryShare
	HasBudget    bool
	Comparison   map[string]BudgetLine
	Totals       BudgetTotals
	Unbudgeted   map[string]decimal.Decimal
	Transactions []Transaction
}
