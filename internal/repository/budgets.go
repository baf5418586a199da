package repository

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/notify"
	"finanzas/internal/storage"
)

// BudgetRepository stores at most one budget per month.
type BudgetRepository struct {
	engine   storage.Engine
	notifier notify.Notifier
	logger   *applog.Logger
	now      func() time.Time
}

func NewBudgetRepository(engine storage.Engine, notifier notify.Notifier) *BudgetRepository {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &BudgetRepository{
		engine:   engine,
		notifier: notifier,
		logger:   applog.For(applog.ComponentRepository),
		now:      time.Now,
	}
}

// Save upserts b by month. An existing budget for the month keeps its id and
// CreatedAt and has its categories replaced; otherwise a new one is created.
// The lookup and the write run in one atomic unit.
func (r *BudgetRepository) Save(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	categories := maps.Clone(b.Categories)
	if categories == nil {
		categories = map[string]decimal.Decimal{}
	}

	var (
		saved core.Budget
		op    notify.Op
	)
	err := r.engine.Atomic(ctx, func(tx storage.Tx) error {
		existing, found, err := tx.BudgetByMonth(ctx, b.Month)
		if err != nil {
			return err
		}
		if found {
			existing.Categories = categories
			saved, op = existing, notify.OpUpdate
			return tx.UpdateBudget(ctx, existing)
		}

		saved = core.Budget{
			ID:         b.ID,
			Month:      b.Month,
			Categories: categories,
			CreatedAt:  r.now().UTC(),
		}
		op = notify.OpCreate
		_, err = tx.InsertBudget(ctx, &saved)
		return err
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to save budget",
			applog.NewFields().WithOperation(applog.OpUpsert).WithBudget(b).WithError(err).ToSlice()...)
		return fmt.Errorf("save budget for %s: %w", b.Month, err)
	}

	r.logger.DebugContext(ctx, "Budget saved",
		applog.NewFields().WithOperation(string(op)).WithBudget(saved).ToSlice()...)
	r.notifier.Notify(ctx, notify.NewEvent(storage.Budgets, op, saved.ID, string(saved.Month)))
	return nil
}

func (r *BudgetRepository) GetByMonth(ctx context.Context, month core.Month) (core.Budget, bool, error) {
	if err := month.Validate(); err != nil {
		return core.Budget{}, false, fmt.Errorf("get budget: %w", &core.ValidationError{Field: "month", Err: err})
	}

	var (
		b     core.Budget
		found bool
	)
	err := r.engine.Read(ctx, func(tx storage.Tx) error {
		var err error
		b, found, err = tx.BudgetByMonth(ctx, month)
		return err
	})
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("get budget for %s: %w", month, err)
	}
	return b, found, nil
}

func (r *BudgetRepository) GetAll(ctx context.Context) ([]core.Budget, error) {
	var out []core.Budget
	err := r.engine.Read(ctx, func(tx storage.Tx) error {
		var err error
		out, err = tx.AllBudgets(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return out, nil
}
