package backend

import (
	"context"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/notify"
	"finanzas/internal/repository"
	"finanzas/internal/services"
	"finanzas/internal/storage"
)

// Backend bundles an opened storage engine with everything built on top of it.
type Backend struct {
	Engine       storage.Engine
	Transactions *repository.TransactionRepository
	Budgets      *repository.BudgetRepository
	Summaries    *services.SummaryService

	// Hub receives every committed change; subscribe for in-process updates.
	Hub *notify.Hub

	// AMQP is nil when change fan-out is disabled or the broker was unreachable.
	AMQP *amqp.Client
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and its cleanup function
type BackendResult struct {
	Backend *Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Optional change fan-out
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Vocabulary core.Vocabulary
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
