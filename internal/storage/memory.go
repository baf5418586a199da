package storage

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

// MemoryEngine keeps both collections in process memory. Units of work are
// serialized by a single mutex; a failed Atomic unit restores the snapshot
// taken when it started.
type MemoryEngine struct {
	mu    sync.Mutex
	state *memoryState
}

type memoryState struct {
	transactions map[int64]core.Transaction
	budgets      map[int64]core.Budget
	months       map[core.Month]int64

	nextTransactionID int64
	nextBudgetID      int64
}

func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{}
}

func (e *MemoryEngine) Open(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		e.state = &memoryState{
			transactions:      map[int64]core.Transaction{},
			budgets:           map[int64]core.Budget{},
			months:            map[core.Month]int64{},
			nextTransactionID: 1,
			nextBudgetID:      1,
		}
	}
	return nil
}

func (e *MemoryEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = nil
	return nil
}

func (e *MemoryEngine) Read(_ context.Context, fn func(tx Tx) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return ErrNotInitialized
	}
	return fn(&memoryTx{s: e.state, readOnly: true})
}

func (e *MemoryEngine) Atomic(_ context.Context, fn func(tx Tx) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return ErrNotInitialized
	}
	snapshot := e.state.clone()
	if err := fn(&memoryTx{s: e.state}); err != nil {
		e.state = snapshot
		return err
	}
	return nil
}

func (s *memoryState) clone() *memoryState {
	c := *s
	c.transactions = maps.Clone(s.transactions)
	c.months = maps.Clone(s.months)
	c.budgets = make(map[int64]core.Budget, len(s.budgets))
	for id, b := range s.budgets {
		c.budgets[id] = copyBudget(b)
	}
	return &c
}

func copyBudget(b core.Budget) core.Budget {
	b.Categories = maps.Clone(b.Categories)
	if b.Categories == nil {
		b.Categories = map[string]decimal.Decimal{}
	}
	return b
}

type memoryTx struct {
	s        *memoryState
	readOnly bool
}

func (t *memoryTx) writable() error {
	if t.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (t *memoryTx) InsertTransaction(_ context.Context, tr *core.Transaction) (int64, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	id := tr.ID
	if id == 0 {
		id = t.s.nextTransactionID
	} else if _, exists := t.s.transactions[id]; exists {
		return 0, fmt.Errorf("%w: insert transaction: id %d already exists", ErrWriteFailed, id)
	}
	if id >= t.s.nextTransactionID {
		t.s.nextTransactionID = id + 1
	}
	tr.ID = id
	t.s.transactions[id] = *tr
	return id, nil
}

func (t *memoryTx) GetTransaction(_ context.Context, id int64) (core.Transaction, bool, error) {
	tr, ok := t.s.transactions[id]
	return tr, ok, nil
}

func (t *memoryTx) AllTransactions(_ context.Context) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(t.s.transactions))
	for _, tr := range t.s.transactions {
		out = append(out, tr)
	}
	return out, nil
}

func (t *memoryTx) TransactionsByIndex(_ context.Context, index Index, value string) ([]core.Transaction, error) {
	var key func(core.Transaction) string
	switch index {
	case IndexType:
		key = func(tr core.Transaction) string { return string(tr.Type) }
	case IndexCategory:
		key = func(tr core.Transaction) string { return tr.Category }
	case IndexDate:
		key = func(tr core.Transaction) string { return tr.Date.String() }
	default:
		return nil, fmt.Errorf("%w: transactions.%s", ErrUnknownIndex, index)
	}

	var out []core.Transaction
	for _, tr := range t.s.transactions {
		if key(tr) == value {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (t *memoryTx) UpdateTransaction(_ context.Context, tr core.Transaction) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.s.transactions[tr.ID]; !ok {
		return fmt.Errorf("transaction %d: %w", tr.ID, ErrNotFound)
	}
	t.s.transactions[tr.ID] = tr
	return nil
}

func (t *memoryTx) DeleteTransaction(_ context.Context, id int64) (bool, error) {
	if err := t.writable(); err != nil {
		return false, err
	}
	if _, ok := t.s.transactions[id]; !ok {
		return false, nil
	}
	delete(t.s.transactions, id)
	return true, nil
}

func (t *memoryTx) InsertBudget(_ context.Context, b *core.Budget) (int64, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	if _, taken := t.s.months[b.Month]; taken {
		return 0, fmt.Errorf("%w: insert budget: month %s already exists", ErrWriteFailed, b.Month)
	}
	id := b.ID
	if id == 0 {
		id = t.s.nextBudgetID
	} else if _, exists := t.s.budgets[id]; exists {
		return 0, fmt.Errorf("%w: insert budget: id %d already exists", ErrWriteFailed, id)
	}
	if id >= t.s.nextBudgetID {
		t.s.nextBudgetID = id + 1
	}
	b.ID = id
	t.s.budgets[id] = copyBudget(*b)
	t.s.months[b.Month] = id
	return id, nil
}

func (t *memoryTx) GetBudget(_ context.Context, id int64) (core.Budget, bool, error) {
	b, ok := t.s.budgets[id]
	if !ok {
		return core.Budget{}, false, nil
	}
	return copyBudget(b), true, nil
}

func (t *memoryTx) AllBudgets(_ context.Context) ([]core.Budget, error) {
	out := make([]core.Budget, 0, len(t.s.budgets))
	for _, b := range t.s.budgets {
		out = append(out, copyBudget(b))
	}
	return out, nil
}

func (t *memoryTx) BudgetByMonth(ctx context.Context, month core.Month) (core.Budget, bool, error) {
	id, ok := t.s.months[month]
	if !ok {
		return core.Budget{}, false, nil
	}
	return t.GetBudget(ctx, id)
}

func (t *memoryTx) UpdateBudget(_ context.Context, b core.Budget) error {
	if err := t.writable(); err != nil {
		return err
	}
	old, ok := t.s.budgets[b.ID]
	if !ok {
		return fmt.Errorf("budget %d: %w", b.ID, ErrNotFound)
	}
	if owner, taken := t.s.months[b.Month]; taken && owner != b.ID {
		return fmt.Errorf("%w: update budget %d: month %s already exists", ErrWriteFailed, b.ID, b.Month)
	}
	delete(t.s.months, old.Month)
	t.s.months[b.Month] = b.ID
	t.s.budgets[b.ID] = copyBudget(b)
	return nil
}

func (t *memoryTx) DeleteBudget(_ context.Context, id int64) (bool, error) {
	if err := t.writable(); err != nil {
		return false, err
	}
	b, ok := t.s.budgets[id]
	if !ok {
		return false, nil
	}
	delete(t.s.budgets, id)
	delete(t.s.months, b.Month)
	return true, nil
}
