// Package charts renders the month summary charts as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"finanzas/internal/core"
)

// ErrNoData is returned when a chart would have nothing to draw.
var ErrNoData = errors.New("no data to chart")

// File names used by WriteFiles.
const (
	IncomeExpenseFile    = "income_expense.png"
	ExpenseShareFile     = "expense_share.png"
	BudgetComparisonFile = "budget_comparison.png"
)

var (
	colorIncome   = drawing.Color{R: 0x2e, G: 0xa0, B: 0x4f, A: 0xff}
	colorExpense  = drawing.Color{R: 0xd9, G: 0x3f, B: 0x3f, A: 0xff}
	colorBudgeted = drawing.Color{R: 0x3b, G: 0x6e, B: 0xc4, A: 0xff}
)

type Renderer struct {
	Width    int
	Height   int
	BarWidth int
}

func NewRenderer() *Renderer {
	return &Renderer{Width: 1024, Height: 600, BarWidth: 60}
}

func (r *Renderer) background() chart.Style {
	return chart.Style{
		Padding: chart.Box{
			Top:    50,
			Left:   50,
			Right:  50,
			Bottom: 50,
		},
		FillColor: chart.ColorWhite,
	}
}

func amountFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("$%.0f", f)
	}
	return ""
}

// IncomeExpense draws the month's income and expense totals side by side.
func (r *Renderer) IncomeExpense(s core.MonthSummary) ([]byte, error) {
	if s.Income.IsZero() && s.Expense.IsZero() {
		return nil, ErrNoData
	}

	bars := []chart.Value{
		bar("Ingresos", s.Income, colorIncome),
		bar("Gastos", s.Expense, colorExpense),
	}
	return r.renderBars(fmt.Sprintf("Ingresos vs gastos %s", s.Month), bars)
}

// ExpenseShare draws each expense category's slice of the month's spending.
func (r *Renderer) ExpenseShare(s core.MonthSummary) ([]byte, error) {
	values := make([]chart.Value, 0, len(s.Shares))
	for _, share := range s.Shares {
		if !share.Amount.IsPositive() {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%d%%)", share.Name, core.FormatAmount(share.Amount), share.Percent),
			Value: share.Amount.InexactFloat64(),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.PieChart{
		Title:      fmt.Sprintf("Distribución de gastos %s", s.Month),
		Width:      r.Height,
		Height:     r.Height,
		Values:     values,
		Background: r.background(),
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render expense share chart: %w", err)
	}
	return buf.Bytes(), nil
}

// BudgetComparison draws budgeted and actual spending for every budgeted
// category, in name order.
func (r *Renderer) BudgetComparison(s core.MonthSummary) ([]byte, error) {
	if !s.HasBudget || len(s.Comparison) == 0 {
		return nil, ErrNoData
	}

	names := make([]string, 0, len(s.Comparison))
	for name := range s.Comparison {
		names = append(names, name)
	}
	slices.Sort(names)

	bars := make([]chart.Value, 0, 2*len(names))
	for _, name := range names {
		line := s.Comparison[name]
		bars = append(bars,
			bar(name+" (presupuesto)", line.Budgeted, colorBudgeted),
			bar(name+" (real)", line.Actual, colorExpense),
		)
	}
	return r.renderBars(fmt.Sprintf("Presupuesto vs real %s", s.Month), bars)
}

func bar(label string, amount decimal.Decimal, color drawing.Color) chart.Value {
	return chart.Value{
		Label: label,
		Value: amount.InexactFloat64(),
		Style: chart.Style{
			StrokeColor: color,
			FillColor:   color,
			FontSize:    12,
			FontColor:   chart.ColorBlack,
		},
	}
}

func (r *Renderer) renderBars(title string, bars []chart.Value) ([]byte, error) {
	top := 0.0
	for _, b := range bars {
		top = max(top, b.Value)
	}
	if top == 0 {
		// A flat range cannot be drawn; give the axis some height.
		top = 1
	}

	spacing := r.BarWidth / 2
	width := max(r.Width, len(bars)*(r.BarWidth+spacing)+200)

	graph := chart.BarChart{
		Title: title,
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: chart.ColorBlack,
		},
		Width:      width,
		Height:     r.Height,
		BarWidth:   r.BarWidth,
		BarSpacing: spacing,
		Background: r.background(),
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			ValueFormatter: amountFormatter,
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", title, err)
	}
	return buf.Bytes(), nil
}

// WriteFiles renders every chart with data for s into dir and returns the
// paths written. Charts without data are not written, and any file left
// from an earlier render is removed.
func (r *Renderer) WriteFiles(dir string, s core.MonthSummary) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create chart directory: %w", err)
	}

	renders := []struct {
		file   string
		render func(core.MonthSummary) ([]byte, error)
	}{
		{IncomeExpenseFile, r.IncomeExpense},
		{ExpenseShareFile, r.ExpenseShare},
		{BudgetComparisonFile, r.BudgetComparison},
	}

	var written []string
	for _, c := range renders {
		path := filepath.Join(dir, c.file)
		png, err := c.render(s)
		if errors.Is(err, ErrNoData) {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return written, fmt.Errorf("remove stale %s: %w", path, err)
			}
			continue
		}
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(path, png, 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
