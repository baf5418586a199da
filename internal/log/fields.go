package log

import (
	"errors"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldDuration   = "duration_ms"
	FieldCollection = "collection"
	FieldRecordID   = "record_id"
	FieldMonth      = "month"
	FieldType       = "type"
	FieldCategory   = "category"
	FieldAmount     = "amount"
	FieldCount      = "count"
	FieldEventID    = "event_id"
	FieldPath       = "path"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentStorage    = "storage"
	ComponentRepository = "repository"
	ComponentAMQP       = "amqp"
	ComponentSummary    = "summary"
	ComponentCharts     = "charts"
	ComponentBackend    = "backend"
	ComponentNotifier   = "notifier"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpUpsert   = "upsert"
	OpRender   = "render"
	OpConsume  = "consume"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeUnavailable   = "unavailable_error"
	ErrorTypeInternal      = "internal_error"
)

// ErrorType classifies err into one of the ErrorType categories.
func ErrorType(err error) string {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return ErrorTypeValidation
	case errors.Is(err, storage.ErrNotFound):
		return ErrorTypeNotFound
	case errors.Is(err, storage.ErrStorageUnavailable), errors.Is(err, storage.ErrNotInitialized):
		return ErrorTypeUnavailable
	case errors.Is(err, storage.ErrWriteFailed), errors.Is(err, storage.ErrUnknownIndex):
		return ErrorTypeDatabase
	default:
		return ErrorTypeInternal
	}
}

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds the error message and its category.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = ErrorType(err)
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithTransaction(t core.Transaction) LogFields {
	f[FieldCollection] = storage.Transactions
	if t.ID != 0 {
		f[FieldRecordID] = t.ID
	}
	f[FieldType] = string(t.Type)
	f[FieldCategory] = t.Category
	f[FieldAmount] = t.Amount.String()
	f[FieldMonth] = string(t.Date.Month())
	return f
}

func (f LogFields) WithBudget(b core.Budget) LogFields {
	f[FieldCollection] = storage.Budgets
	if b.ID != 0 {
		f[FieldRecordID] = b.ID
	}
	f[FieldMonth] = string(b.Month)
	f[FieldCount] = len(b.Categories)
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
