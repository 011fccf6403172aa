// Package form implements the entry form state machine that feeds the ledger.
//
// The kind of the pending movement is fixed when the form is opened and read
// back at submit time; it is never inferred from what the page shows.
package form

import (
	"errors"
	"strings"
	"sync"

	"movimentos/internal/core"
	"movimentos/internal/taxonomy"
)

// State is the visibility state of the entry form.
type State int

const (
	Hidden State = iota
	OpenForExpense
	OpenForIncome
)

func (s State) String() string {
	switch s {
	case OpenForExpense:
		return "open_for_expense"
	case OpenForIncome:
		return "open_for_income"
	default:
		return "hidden"
	}
}

// NoticeInvalidInput is the blocking notice shown when a submission is rejected.
const NoticeInvalidInput = "Por favor, preencha todos os campos corretamente."

var (
	ErrFormClosed      = errors.New("form is not open")
	ErrUnknownCategory = errors.New("unknown category")
)

// Vocabulary is the closed set of categories the form may submit.
type Vocabulary interface {
	Contains(name string) bool
}

// InvalidInputError reports a rejected submission. The ledger is not touched.
type InvalidInputError struct {
	Err error
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Err.Error()
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

// Notice returns the message shown to the user.
func (e *InvalidInputError) Notice() string {
	return NoticeInvalidInput
}

// Input is what the user typed. Amount is the raw text of the amount field.
type Input struct {
	Description string
	Amount      string
	Category    string
}

// Fields are the values the form displays.
type Fields struct {
	Description string
	Amount      string
	Category    string
}

// Collector tracks the form state and the pending kind.
type Collector struct {
	mu      sync.Mutex
	vocab   Vocabulary
	state   State
	pending core.Kind
	fields  Fields
}

// NewCollector returns a hidden form accepting the categories in vocab.
// A nil vocab means taxonomy.DefaultCategories.
func NewCollector(vocab Vocabulary) *Collector {
	if vocab == nil {
		vocab = taxonomy.New(taxonomy.DefaultCategories)
	}
	return &Collector{vocab: vocab, state: Hidden}
}

// Open shows the form for kind, clearing the fields and preselecting the
// kind's default category.
func (c *Collector) Open(kind core.Kind) error {
	if !kind.Valid() {
		return core.ErrInvalidKind
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = kind
	c.state = OpenForExpense
	if kind == core.Income {
		c.state = OpenForIncome
	}
	c.fields = Fields{Category: taxonomy.DefaultFor(kind)}
	return nil
}

// Cancel hides the form.
func (c *Collector) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hideLocked()
}

// Submit validates in and returns the movement to append. On success the form
// goes back to Hidden; on InvalidInputError it stays open with the typed values.
func (c *Collector) Submit(in Input) (core.Movement, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Hidden {
		return core.Movement{}, ErrFormClosed
	}

	desc := strings.TrimSpace(in.Description)
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = taxonomy.DefaultFor(c.pending)
	}
	known := c.vocab.Contains(category)
	shown := category
	if !known {
		shown = taxonomy.DefaultFor(c.pending)
	}
	c.fields = Fields{Description: in.Description, Amount: in.Amount, Category: shown}

	if desc == "" {
		return core.Movement{}, &InvalidInputError{Err: core.ErrEmptyDescription}
	}
	cents, err := core.ParseDecimalToCents(in.Amount)
	if err != nil {
		return core.Movement{}, &InvalidInputError{Err: err}
	}
	if !known {
		return core.Movement{}, &InvalidInputError{Err: ErrUnknownCategory}
	}

	m := core.Movement{
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Kind:        c.pending,
	}
	if err := m.Validate(); err != nil {
		return core.Movement{}, &InvalidInputError{Err: err}
	}

	c.hideLocked()
	return m, nil
}

// Restore reopens the form for kind with fields, used when a validated
// submission could not be committed.
func (c *Collector) Restore(kind core.Kind, fields Fields) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = kind
	c.state = OpenForExpense
	if kind == core.Income {
		c.state = OpenForIncome
	}
	c.fields = fields
}

func (c *Collector) hideLocked() {
	c.state = Hidden
	c.pending = ""
	c.fields = Fields{}
}

// State returns the current state.
func (c *Collector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PendingKind returns the kind chosen at open time, empty when hidden.
func (c *Collector) PendingKind() core.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Fields returns the values currently displayed by the form.
func (c *Collector) Fields() Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields
}
