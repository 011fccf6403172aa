package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Expense Kind = "Despesa"
	Income  Kind = "Receita"
)

type (
	// Kind tells whether a movement takes money out (Expense) or brings it in (Income).
	Kind string

	Money struct {
		Cents int64
	}

	// Movement is a single income or expense record of the ledger.
	Movement struct {
		ID          string
		Description string
		Amount      Money
		Category    string
		Kind        Kind
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidKind      = errors.New("invalid kind")
)

// Valid reports whether k belongs to the kind vocabulary.
func (k Kind) Valid() bool {
	switch k {
	case Expense, Income:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind accepts the persisted labels ("Despesa", "Receita") and the
// lowercase forms used in URLs and form fields.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "despesa", "expense":
		return Expense, nil
	case "receita", "income":
		return Income, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

// Signed returns the amount with the sign a movement of kind k contributes to
// the balance: income adds, expense subtracts.
func (m Money) Signed(k Kind) Money {
	if k == Expense {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (e Movement) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, e.Kind)
	}
	return nil
}
