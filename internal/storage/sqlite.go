package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"finanzas/internal/core"

	_ "modernc.org/sqlite"
)

const sqlitePragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// SQLiteEngine is the durable Engine backed by a single SQLite file.
type SQLiteEngine struct {
	path string

	mu      sync.Mutex
	db      *sql.DB
	queries *Queries
	ready   atomic.Bool
}

func NewSQLiteEngine(dbPath string) *SQLiteEngine {
	return &SQLiteEngine{path: dbPath}
}

func (e *SQLiteEngine) Open(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(e.path), 0755); err != nil {
		return fmt.Errorf("%w: create db directory: %w", ErrStorageUnavailable, err)
	}

	dsn := e.path + sqlitePragmas
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("%w: open sqlite database: %w", ErrStorageUnavailable, err)
	}

	// One connection: every unit of work is a SQL transaction that runs alone,
	// so a read-then-write unit cannot interleave with another writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("%w: ping database: %w", ErrStorageUnavailable, err)
	}

	version, err := RunMigrations(dsn)
	if err != nil {
		db.Close()
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	e.db = db
	e.queries = New(db)
	e.ready.Store(true)

	slog.InfoContext(ctx, "SQLite storage opened", "path", e.path, "schema_version", version)
	return nil
}

func (e *SQLiteEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ready.Store(false)
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	e.queries = nil
	return err
}

func (e *SQLiteEngine) Read(ctx context.Context, fn func(tx Tx) error) error {
	return e.run(ctx, true, fn)
}

func (e *SQLiteEngine) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	return e.run(ctx, false, fn)
}

func (e *SQLiteEngine) run(ctx context.Context, readOnly bool, fn func(tx Tx) error) error {
	if !e.ready.Load() {
		return ErrNotInitialized
	}

	sqlTx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		if readOnly {
			return fmt.Errorf("begin read: %w", err)
		}
		return fmt.Errorf("%w: begin: %w", ErrWriteFailed, err)
	}

	if err := fn(&sqliteTx{q: e.queries.WithTx(sqlTx), readOnly: readOnly}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			slog.WarnContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}

	if readOnly {
		return sqlTx.Rollback()
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrWriteFailed, err)
	}
	return nil
}

type sqliteTx struct {
	q        *Queries
	readOnly bool
}

func (t *sqliteTx) writable() error {
	if t.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (t *sqliteTx) InsertTransaction(ctx context.Context, tr *core.Transaction) (int64, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	id, err := t.q.CreateTransaction(ctx, *tr)
	if err != nil {
		return 0, fmt.Errorf("%w: insert transaction: %w", ErrWriteFailed, err)
	}
	tr.ID = id
	return id, nil
}

func (t *sqliteTx) GetTransaction(ctx context.Context, id int64) (core.Transaction, bool, error) {
	tr, err := t.q.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, false, nil
	}
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return tr, true, nil
}

func (t *sqliteTx) AllTransactions(ctx context.Context) ([]core.Transaction, error) {
	out, err := t.q.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (t *sqliteTx) TransactionsByIndex(ctx context.Context, index Index, value string) ([]core.Transaction, error) {
	out, err := t.q.ListTransactionsByIndex(ctx, index, value)
	if err != nil {
		return nil, fmt.Errorf("list transactions by %s: %w", index, err)
	}
	return out, nil
}

func (t *sqliteTx) UpdateTransaction(ctx context.Context, tr core.Transaction) error {
	if err := t.writable(); err != nil {
		return err
	}
	n, err := t.q.UpdateTransaction(ctx, tr)
	if err != nil {
		return fmt.Errorf("%w: update transaction %d: %w", ErrWriteFailed, tr.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", tr.ID, ErrNotFound)
	}
	return nil
}

func (t *sqliteTx) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	if err := t.writable(); err != nil {
		return false, err
	}
	n, err := t.q.DeleteTransaction(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%w: delete transaction %d: %w", ErrWriteFailed, id, err)
	}
	return n > 0, nil
}

func (t *sqliteTx) InsertBudget(ctx context.Context, b *core.Budget) (int64, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	id, err := t.q.CreateBudget(ctx, *b)
	if err != nil {
		return 0, fmt.Errorf("%w: insert budget for %s: %w", ErrWriteFailed, b.Month, err)
	}
	b.ID = id
	return id, nil
}

func (t *sqliteTx) GetBudget(ctx context.Context, id int64) (core.Budget, bool, error) {
	b, err := t.q.GetBudget(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, false, nil
	}
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("get budget %d: %w", id, err)
	}
	return b, true, nil
}

func (t *sqliteTx) AllBudgets(ctx context.Context) ([]core.Budget, error) {
	out, err := t.q.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return out, nil
}

func (t *sqliteTx) BudgetByMonth(ctx context.Context, month core.Month) (core.Budget, bool, error) {
	b, err := t.q.GetBudgetByMonth(ctx, month)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, false, nil
	}
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("get budget for %s: %w", month, err)
	}
	return b, true, nil
}

func (t *sqliteTx) UpdateBudget(ctx context.Context, b core.Budget) error {
	if err := t.writable(); err != nil {
		return err
	}
	n, err := t.q.UpdateBudget(ctx, b)
	if err != nil {
		return fmt.Errorf("%w: update budget %d: %w", ErrWriteFailed, b.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("budget %d: %w", b.ID, ErrNotFound)
	}
	return nil
}

func (t *sqliteTx) DeleteBudget(ctx context.Context, id int64) (bool, error) {
	if err := t.writable(); err != nil {
		return false, err
	}
	n, err := t.q.DeleteBudget(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%w: delete budget %d: %w", ErrWriteFailed, id, err)
	}
	return n > 0, nil
}
