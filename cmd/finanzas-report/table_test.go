package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

func TestWriteSummary(t *testing.T) {
	s := core.MonthSummary{
		Month:   "2024-05",
		Income:  decimal.NewFromInt(2000),
		Expense: decimal.NewFromInt(350),
		Balance: decimal.NewFromInt(1650),
		Transactions: []core.Transaction{
			{Type: core.Expense, Amount: decimal.NewFromInt(350), Date: core.NewDate(2024, 5, 2), Category: "Alimentación", Description: "super"},
			{Type: core.Income, Amount: decimal.NewFromInt(2000), Date: core.NewDate(2024, 5, 1), Category: "Salario"},
		},
		HasBudget: true,
		Comparison: map[string]core.BudgetLine{
			"Alimentación": {Budgeted: decimal.NewFromInt(300), Actual: decimal.NewFromInt(300)},
		},
		Totals:     core.BudgetTotals{Budgeted: decimal.NewFromInt(300), Spent: decimal.NewFromInt(350), Difference: decimal.NewFromInt(-50)},
		Unbudgeted: map[string]decimal.Decimal{"Ropa": decimal.NewFromInt(50)},
	}

	var buf bytes.Buffer
	if err := writeSummary(&buf, s); err != nil {
		t.Fatalf("writeSummary() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Resumen 2024-05",
		"$2000.00",
		"-$350.00",
		"$1650.00",
		"2024-05-02",
		"super",
		"-$50.00",
		"Ropa (sin presupuesto)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := writeSummary(&buf, core.MonthSummary{Month: "2024-05"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Sin transacciones") {
		t.Errorf("empty month should say so:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "Presupuesto") {
		t.Errorf("no budget section expected:\n%s", buf.String())
	}
}
