package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

const timestampLayout = time.RFC3339Nano

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds the SQL for both collections.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const transactionColumns = `id, type, amount, date, category, description, created_at`

const createTransaction = `
INSERT INTO transactions (id, type, amount, date, category, description, created_at)
VALUES (NULLIF(?, 0), ?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createTransaction,
		t.ID,
		string(t.Type),
		t.Amount.String(),
		t.Date.String(),
		t.Category,
		t.Description,
		formatTimestamp(t.CreatedAt),
	).Scan(&id)
	return id, err
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

const (
	listTransactions           = `SELECT ` + transactionColumns + ` FROM transactions`
	listTransactionsByType     = listTransactions + ` WHERE type = ?`
	listTransactionsByCategory = listTransactions + ` WHERE category = ?`
	listTransactionsByDate     = listTransactions + ` WHERE date = ?`
)

func (q *Queries) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return q.queryTransactions(ctx, listTransactions)
}

// ListTransactionsByIndex maps index names onto fixed statements; the value is always bound.
func (q *Queries) ListTransactionsByIndex(ctx context.Context, index Index, value string) ([]core.Transaction, error) {
	var query string
	switch index {
	case IndexType:
		query = listTransactionsByType
	case IndexCategory:
		query = listTransactionsByCategory
	case IndexDate:
		query = listTransactionsByDate
	default:
		return nil, fmt.Errorf("%w: transactions.%s", ErrUnknownIndex, index)
	}
	return q.queryTransactions(ctx, query, value)
}

func (q *Queries) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const updateTransaction = `
UPDATE transactions
SET type = ?, amount = ?, date = ?, category = ?, description = ?, created_at = ?
WHERE id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		string(t.Type),
		t.Amount.String(),
		t.Date.String(),
		t.Category,
		t.Description,
		formatTimestamp(t.CreatedAt),
		t.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const budgetColumns = `id, month, categories, created_at`

const createBudget = `
INSERT INTO budgets (id, month, categories, created_at)
VALUES (NULLIF(?, 0), ?, ?, ?)
RETURNING id`

func (q *Queries) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	categories, err := encodeCategories(b.Categories)
	if err != nil {
		return 0, err
	}
	var id int64
	err = q.db.QueryRowContext(ctx, createBudget,
		b.ID,
		string(b.Month),
		categories,
		formatTimestamp(b.CreatedAt),
	).Scan(&id)
	return id, err
}

const (
	getBudget        = `SELECT ` + budgetColumns + ` FROM budgets WHERE id = ?`
	getBudgetByMonth = `SELECT ` + budgetColumns + ` FROM budgets WHERE month = ?`
	listBudgets      = `SELECT ` + budgetColumns + ` FROM budgets`
)

func (q *Queries) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	return scanBudget(q.db.QueryRowContext(ctx, getBudget, id))
}

func (q *Queries) GetBudgetByMonth(ctx context.Context, month core.Month) (core.Budget, error) {
	return scanBudget(q.db.QueryRowContext(ctx, getBudgetByMonth, string(month)))
}

func (q *Queries) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

const updateBudget = `UPDATE budgets SET month = ?, categories = ?, created_at = ? WHERE id = ?`

func (q *Queries) UpdateBudget(ctx context.Context, b core.Budget) (int64, error) {
	categories, err := encodeCategories(b.Categories)
	if err != nil {
		return 0, err
	}
	res, err := q.db.ExecContext(ctx, updateBudget,
		string(b.Month),
		categories,
		formatTimestamp(b.CreatedAt),
		b.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteBudget = `DELETE FROM budgets WHERE id = ?`

func (q *Queries) DeleteBudget(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteBudget, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var t core.Transaction
	var typ, amount, date, createdAt string
	if err := s.Scan(&t.ID, &typ, &amount, &date, &t.Category, &t.Description, &createdAt); err != nil {
		return core.Transaction{}, err
	}

	t.Type = core.TransactionType(typ)

	var err error
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("decode amount of transaction %d: %w", t.ID, err)
	}
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("decode date of transaction %d: %w", t.ID, err)
	}
	if t.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("decode created_at of transaction %d: %w", t.ID, err)
	}
	return t, nil
}

func scanBudget(s scanner) (core.Budget, error) {
	var b core.Budget
	var month, categories, createdAt string
	if err := s.Scan(&b.ID, &month, &categories, &createdAt); err != nil {
		return core.Budget{}, err
	}

	b.Month = core.Month(month)
	if err := json.Unmarshal([]byte(categories), &b.Categories); err != nil {
		return core.Budget{}, fmt.Errorf("decode categories of budget %d: %w", b.ID, err)
	}
	if b.Categories == nil {
		b.Categories = map[string]decimal.Decimal{}
	}

	var err error
	if b.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return core.Budget{}, fmt.Errorf("decode created_at of budget %d: %w", b.ID, err)
	}
	return b, nil
}

func encodeCategories(c map[string]decimal.Decimal) (string, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode budget categories: %w", err)
	}
	return string(b), nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(timestampLayout, s)
}
