// Package projector derives the display views of a ledger.
//
// Every function is a pure projection of the movements it receives; nothing
// is accumulated between calls.
package projector

import (
	"movimentos/internal/core"
)

// EmptyPlaceholder is the single row text shown for an empty ledger.
const EmptyPlaceholder = "Nenhum movimento encontrado."

// ExpenseLabel prefixes the expense total. The label says "this month" but the
// total covers the whole ledger: no date filtering is applied.
const ExpenseLabel = "Gastos deste mês: "

// Row is one line of the movements table. Index is the row's current
// position; ID stays valid across re-renders.
type Row struct {
	Index       int
	ID          string
	Description string
	Amount      string
	Category    string
	Kind        core.Kind
}

// TableView is the full movements table; it always replaces the previous one.
type TableView struct {
	Rows        []Row
	Empty       bool
	Placeholder string
}

// Distribution is the per-category net series fed to the pie chart.
type Distribution struct {
	Categories []core.CategoryAmount
}

// Labels returns the category names in first-seen order.
func (d Distribution) Labels() []string {
	out := make([]string, len(d.Categories))
	for i, c := range d.Categories {
		out[i] = c.Name
	}
	return out
}

// Values returns the net values in reais, aligned with Labels.
func (d Distribution) Values() []float64 {
	out := make([]float64, len(d.Categories))
	for i, c := range d.Categories {
		out[i] = c.Amount.Reais()
	}
	return out
}

// SummaryView holds the balance and the expense total.
type SummaryView struct {
	TotalIncome  core.Money
	TotalExpense core.Money
	Balance      core.Money
	BalanceText  string
	ExpenseText  string
}

// View bundles every projection of one ledger state.
type View struct {
	Table        TableView
	Distribution Distribution
	Summary      SummaryView
	Chart        ChartConfig
}

// Table produces one row per movement in ledger order, or the placeholder.
func Table(ms []core.Movement) TableView {
	if len(ms) == 0 {
		return TableView{Empty: true, Placeholder: EmptyPlaceholder}
	}
	rows := make([]Row, len(ms))
	for i, m := range ms {
		rows[i] = Row{
			Index:       i,
			ID:          m.ID,
			Description: m.Description,
			Amount:      FormatBRL(m.Amount),
			Category:    m.Category,
			Kind:        m.Kind,
		}
	}
	return TableView{Rows: rows}
}

// CategoryNet computes the net of every category present, in first-seen
// order. Expenses count positively and income negatively; this is a display
// convention for the chart, not a balance.
func CategoryNet(ms []core.Movement) Distribution {
	index := make(map[string]int)
	var cats []core.CategoryAmount
	for _, m := range ms {
		i, ok := index[m.Category]
		if !ok {
			i = len(cats)
			index[m.Category] = i
			cats = append(cats, core.CategoryAmount{Name: m.Category})
		}
		// Signed gives income-positive; the chart wants the opposite.
		cats[i].Amount = cats[i].Amount.Sub(m.Amount.Signed(m.Kind))
	}
	return Distribution{Categories: cats}
}

// Summary recomputes the totals from scratch.
func Summary(ms []core.Movement) SummaryView {
	totals := core.SumTotals(ms)
	balance := totals.Balance()
	return SummaryView{
		TotalIncome:  totals.Income,
		TotalExpense: totals.Expense,
		Balance:      balance,
		BalanceText:  FormatBRL(balance),
		ExpenseText:  ExpenseLabel + FormatBRL(totals.Expense),
	}
}

// Project computes every view of ms.
func Project(ms []core.Movement) View {
	dist := CategoryNet(ms)
	return View{
		Table:        Table(ms),
		Distribution: dist,
		Summary:      Summary(ms),
		Chart:        Chart(dist),
	}
}
