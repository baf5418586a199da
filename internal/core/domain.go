package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"

	maxDescriptionLength = 200
)

type (
	TransactionType string

	// Date is a calendar day in UTC, serialized as YYYY-MM-DD.
	Date struct {
		time.Time
	}

	// Month is a YYYY-MM string.
	Month string

	Transaction struct {
		ID          int64           `json:"id,omitempty"`
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Date        Date            `json:"date"`
		Category    string          `json:"category"`
		Description string          `json:"description,omitempty"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	Budget struct {
		ID         int64                      `json:"id,omitempty"`
		Month      Month                      `json:"month"`
		Categories map[string]decimal.Decimal `json:"categories"`
		CreatedAt  time.Time                  `json:"createdAt"`
	}
)

var (
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrEmptyCategory      = errors.New("empty category")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// ValidationError names the field whose constraint was violated.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t TransactionType) String() string {
	return string(t)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date. Impossible days such as 2024-02-30 are rejected.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Month returns the month the date falls in.
func (d Date) Month() Month {
	return Month(d.Format(monthLayout))
}

// MarshalJSON overrides the promoted time.Time encoding with the ISO day.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseMonth validates a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(monthLayout, s); err != nil {
		return "", ErrInvalidMonth
	}
	return Month(s), nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month(t.Format(monthLayout))
}

func (m Month) Validate() error {
	_, err := ParseMonth(string(m))
	return err
}

// Contains reports whether d falls within the month.
func (m Month) Contains(d Date) bool {
	return !d.IsZero() && d.Month() == m
}

func (m Month) String() string {
	return string(m)
}

// Validate checks the transaction against v. An empty vocabulary for the
// transaction type only requires a non-empty category.
func (t Transaction) Validate(v Vocabulary) error {
	if !t.Type.Valid() {
		return invalid("type", ErrInvalidType)
	}
	if t.Amount.IsNegative() {
		return invalid("amount", ErrInvalidAmount)
	}
	if err := t.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	if strings.TrimSpace(t.Category) == "" {
		return invalid("category", ErrEmptyCategory)
	}
	if !v.Allows(t.Type, t.Category) {
		return invalid("category", ErrUnknownCategory)
	}
	if utf8.RuneCountInString(t.Description) > maxDescriptionLength {
		return invalid("description", ErrDescriptionTooLong)
	}
	return nil
}

// Validate checks the month and every budget line. Category names are free
// text; only emptiness is rejected.
func (b Budget) Validate() error {
	if err := b.Month.Validate(); err != nil {
		return invalid("month", err)
	}
	for name, amount := range b.Categories {
		if strings.TrimSpace(name) == "" {
			return invalid("categories", ErrEmptyCategory)
		}
		if amount.IsNegative() {
			return invalid("categories."+name, ErrInvalidAmount)
		}
	}
	return nil
}
