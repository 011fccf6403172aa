package core

// CategoryAmount represents an amount aggregated by category name.
// For the ledger distribution the amount is signed: expenses count
// positively, income negatively.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Totals is the all-time income/expense breakdown of a ledger.
type Totals struct {
	Income  Money
	Expense Money
}

// Balance returns income minus expense.
func (t Totals) Balance() Money {
	return t.Income.Sub(t.Expense)
}

// SumTotals recomputes the totals from scratch over ms.
func SumTotals(ms []Movement) Totals {
	var t Totals
	for _, m := range ms {
		switch m.Kind {
		case Income:
			t.Income = t.Income.Add(m.Amount)
		case Expense:
			t.Expense = t.Expense.Add(m.Amount)
		}
	}
	return t
}
