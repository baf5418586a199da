package core

import "slices"

// Vocabulary holds the allowed category names per transaction type.
type Vocabulary struct {
	Income  []string
	Expense []string
}

// DefaultVocabulary returns the categories the application ships with.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Income:  []string{"Salario", "Inversiones", "Regalos", "Otros ingresos"},
		Expense: []string{"Alimentación", "Transporte", "Vivienda", "Salud", "Educación", "Ropa", "Otros gastos"},
	}
}

// For returns the categories allowed for t.
func (v Vocabulary) For(t TransactionType) []string {
	switch t {
	case Income:
		return v.Income
	case Expense:
		return v.Expense
	default:
		return nil
	}
}

// Allows reports whether category may be used with t. An empty list accepts anything.
func (v Vocabulary) Allows(t TransactionType, category string) bool {
	allowed := v.For(t)
	if len(allowed) == 0 {
		return true
	}
	return slices.Contains(allowed, category)
}
