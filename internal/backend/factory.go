package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finanzas/internal/amqp"
	"finanzas/internal/notify"
	"finanzas/internal/repository"
	"finanzas/internal/services"
	"finanzas/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend opens the configured engine and wires repositories, the
// summary service and change notification on top of it.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var engine storage.Engine
	switch config.Type {
	case SQLiteBackend:
		engine = storage.NewSQLiteEngine(config.SQLiteDBPath)
	case MemoryBackend:
		engine = storage.NewMemoryEngine()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	if err := engine.Open(ctx); err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", config.Type, err)
	}

	hub := notify.NewHub()
	notifiers := notify.Multi{hub}

	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change fan-out", "error", err)
		} else {
			amqpClient = client
			notifiers = append(notifiers, client)
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	transactions := repository.NewTransactionRepository(engine, config.Vocabulary, notifiers)
	budgets := repository.NewBudgetRepository(engine, notifiers)

	f.logger.Info("Initialized backend",
		"type", config.Type,
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	b := &Backend{
		Engine:       engine,
		Transactions: transactions,
		Budgets:      budgets,
		Summaries:    services.NewSummaryService(transactions, budgets),
		Hub:          hub,
		AMQP:         amqpClient,
	}

	return &BackendResult{
		Backend: b,
		Cleanup: func() error {
			var errs []error
			if amqpClient != nil {
				errs = append(errs, amqpClient.Close())
			}
			errs = append(errs, engine.Close())
			return errors.Join(errs...)
		},
	}, nil
}
