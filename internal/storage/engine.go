// Package storage keeps the transaction and budget collections.
//
// An Engine is opened once and then used through units of work: Read for
// lookups and Atomic for anything that writes. Every operation of a unit
// commits together or not at all, and Atomic units never interleave, which
// is what keeps the one-budget-per-month invariant intact under concurrent
// upserts.
package storage

import (
	"context"

	"finanzas/internal/core"
)

// Collection names, as used in logs and change events.
const (
	Transactions = "transactions"
	Budgets      = "budgets"
)

// Index names a secondary index.
type Index string

const (
	// Non-unique indexes over transactions.
	IndexType     Index = "type"
	IndexCategory Index = "category"
	IndexDate     Index = "date"

	// Unique index over budgets.
	IndexMonth Index = "month"
)

type Engine interface {
	// Open prepares the storage area, creating both collections and their
	// indexes on first use. Calling it again is a no-op.
	Open(ctx context.Context) error
	// Read runs fn in a unit that may not write.
	Read(ctx context.Context, fn func(tx Tx) error) error
	// Atomic runs fn in a serialized unit. If fn returns an error nothing it
	// wrote is kept.
	Atomic(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// Tx exposes the collection operations inside a unit of work.
type Tx interface {
	// InsertTransaction stores t, assigning an id when t.ID is zero. The id is
	// written back into t and returned.
	InsertTransaction(ctx context.Context, t *core.Transaction) (int64, error)
	// GetTransaction reports found=false for an absent id.
	GetTransaction(ctx context.Context, id int64) (core.Transaction, bool, error)
	AllTransactions(ctx context.Context) ([]core.Transaction, error)
	// TransactionsByIndex returns every transaction whose indexed field equals value.
	TransactionsByIndex(ctx context.Context, index Index, value string) ([]core.Transaction, error)
	// UpdateTransaction replaces the stored record wholesale.
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	// DeleteTransaction reports whether a record was removed; absent ids are not an error.
	DeleteTransaction(ctx context.Context, id int64) (bool, error)

	InsertBudget(ctx context.Context, b *core.Budget) (int64, error)
	GetBudget(ctx context.Context, id int64) (core.Budget, bool, error)
	AllBudgets(ctx context.Context) ([]core.Budget, error)
	// BudgetByMonth looks up the unique month index.
	BudgetByMonth(ctx context.Context, month core.Month) (core.Budget, bool, error)
	UpdateBudget(ctx context.Context, b core.Budget) error
	DeleteBudget(ctx context.Context, id int64) (bool, error)
}
