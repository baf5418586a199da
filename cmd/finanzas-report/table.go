package main

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"finanzas/internal/core"
)

// writeSummary prints the tabular month view: totals, the transaction list
// and, when a budget exists, the budget comparison.
func writeSummary(w io.Writer, s core.MonthSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "Resumen %s\t\n", s.Month)
	fmt.Fprintf(tw, "Ingresos\t%s\t\n", core.FormatAmount(s.Income))
	fmt.Fprintf(tw, "Gastos\t%s\t\n", core.FormatAmount(s.Expense))
	fmt.Fprintf(tw, "Balance\t%s\t\n", core.FormatAmount(s.Balance))
	fmt.Fprintln(tw, "\t")

	if len(s.Transactions) == 0 {
		fmt.Fprintln(tw, "Sin transacciones\t")
	} else {
		fmt.Fprintln(tw, "Fecha\tTipo\tCategoría\tMonto\tDescripción\t")
		for _, t := range s.Transactions {
			amount := core.FormatAmount(t.Amount)
			if t.Type == core.Expense {
				amount = "-" + amount
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", t.Date, t.Type, t.Category, amount, t.Description)
		}
	}

	if s.HasBudget {
		fmt.Fprintln(tw, "\t")
		fmt.Fprintln(tw, "Categoría\tPresupuesto\tReal\tDiferencia\t")

		names := make([]string, 0, len(s.Comparison))
		for name := range s.Comparison {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			line := s.Comparison[name]
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", name,
				core.FormatAmount(line.Budgeted),
				core.FormatAmount(line.Actual),
				core.FormatAmount(line.Remaining()))
		}
		fmt.Fprintf(tw, "Total\t%s\t%s\t%s\t\n",
			core.FormatAmount(s.Totals.Budgeted),
			core.FormatAmount(s.Totals.Spent),
			core.FormatAmount(s.Totals.Difference))

		unbudgeted := make([]string, 0, len(s.Unbudgeted))
		for name := range s.Unbudgeted {
			unbudgeted = append(unbudgeted, name)
		}
		slices.Sort(unbudgeted)
		for _, name := range unbudgeted {
			fmt.Fprintf(tw, "%s (sin presupuesto)\t\t%s\t\t\n", name, core.FormatAmount(s.Unbudgeted[name]))
		}
	}

	return tw.Flush()
}
