// Package repository exposes the domain operations over the storage engine.
// Records are validated before they reach storage and observers are notified
// only once a write has committed.
package repository

import (
	"context"
	"fmt"
	"time"

	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/notify"
	"finanzas/internal/storage"
)

type TransactionRepository struct {
	engine   storage.Engine
	vocab    core.Vocabulary
	notifier notify.Notifier
	logger   *applog.Logger
	now      func() time.Time
}

// NewTransactionRepository builds a repository over an opened engine. A nil
// notifier discards change events.
func NewTransactionRepository(engine storage.Engine, vocab core.Vocabulary, notifier notify.Notifier) *TransactionRepository {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &TransactionRepository{
		engine:   engine,
		vocab:    vocab,
		notifier: notifier,
		logger:   applog.For(applog.ComponentRepository),
		now:      time.Now,
	}
}

// Save validates t, stamps CreatedAt when unset and stores it. It returns the
// assigned id.
func (r *TransactionRepository) Save(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(r.vocab); err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now().UTC()
	}

	err := r.engine.Atomic(ctx, func(tx storage.Tx) error {
		_, err := tx.InsertTransaction(ctx, &t)
		return err
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to save transaction",
			applog.NewFields().WithOperation(applog.OpCreate).WithTransaction(t).WithError(err).ToSlice()...)
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	r.logger.DebugContext(ctx, "Transaction saved",
		applog.NewFields().WithOperation(applog.OpCreate).WithTransaction(t).ToSlice()...)
	r.notifier.Notify(ctx, notify.NewEvent(storage.Transactions, notify.OpCreate, t.ID, string(t.Date.Month())))
	return t.ID, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (core.Transaction, bool, error) {
	var (
		t     core.Transaction
		found bool
	)
	err := r.engine.Read(ctx, func(tx storage.Tx) error {
		var err error
		t, found, err = tx.GetTransaction(ctx, id)
		return err
	})
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, found, nil
}

func (r *TransactionRepository) GetAll(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	err := r.engine.Read(ctx, func(tx storage.Tx) error {
		var err error
		out, err = tx.AllTransactions(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// GetByMonth returns every transaction dated within month.
func (r *TransactionRepository) GetByMonth(ctx context.Context, month core.Month) ([]core.Transaction, error) {
	if err := month.Validate(); err != nil {
		return nil, fmt.Errorf("list transactions by month: %w", &core.ValidationError{Field: "month", Err: err})
	}

	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]core.Transaction, 0, len(all))
	for _, t := range all {
		if month.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Filter returns the transactions matching every set predicate of f. A
// category or type predicate is answered from its index.
func (r *TransactionRepository) Filter(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	if f.Month != "" {
		if err := f.Month.Validate(); err != nil {
			return nil, fmt.Errorf("filter transactions: %w", &core.ValidationError{Field: "month", Err: err})
		}
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, fmt.Errorf("filter transactions: %w", &core.ValidationError{Field: "type", Err: core.ErrInvalidType})
	}

	var candidates []core.Transaction
	err := r.engine.Read(ctx, func(tx storage.Tx) error {
		var err error
		switch {
		case f.Category != "":
			candidates, err = tx.TransactionsByIndex(ctx, storage.IndexCategory, f.Category)
		case f.Type != "":
			candidates, err = tx.TransactionsByIndex(ctx, storage.IndexType, string(f.Type))
		default:
			candidates, err = tx.AllTransactions(ctx)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("filter transactions: %w", err)
	}

	out := make([]core.Transaction, 0, len(candidates))
	for _, t := range candidates {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Update replaces the stored record with t, keeping its original CreatedAt.
func (r *TransactionRepository) Update(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(r.vocab); err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	if t.ID == 0 {
		return fmt.Errorf("update transaction: %w", storage.ErrNotFound)
	}

	err := r.engine.Atomic(ctx, func(tx storage.Tx) error {
		stored, found, err := tx.GetTransaction(ctx, t.ID)
		if err != nil {
			return err
		}
		if !found {
			return storage.ErrNotFound
		}
		t.CreatedAt = stored.CreatedAt
		return tx.UpdateTransaction(ctx, t)
	})
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}

	r.logger.DebugContext(ctx, "Transaction updated",
		applog.NewFields().WithOperation(applog.OpUpdate).WithTransaction(t).ToSlice()...)
	r.notifier.Notify(ctx, notify.NewEvent(storage.Transactions, notify.OpUpdate, t.ID, string(t.Date.Month())))
	return nil
}

// Delete removes the transaction with id. Deleting an absent id is a no-op.
func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	var (
		removed core.Transaction
		found   bool
	)
	err := r.engine.Atomic(ctx, func(tx storage.Tx) error {
		var err error
		removed, found, err = tx.GetTransaction(ctx, id)
		if err != nil || !found {
			return err
		}
		_, err = tx.DeleteTransaction(ctx, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if !found {
		return nil
	}

	r.logger.DebugContext(ctx, "Transaction deleted",
		applog.NewFields().WithOperation(applog.OpDelete).WithTransaction(removed).ToSlice()...)
	r.notifier.Notify(ctx, notify.NewEvent(storage.Transactions, notify.OpDelete, id, string(removed.Date.Month())))
	return nil
}
