package projector

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"movimentos/internal/core"
)

func movement(desc string, cents int64, cat string, kind core.Kind) core.Movement {
	return core.Movement{ID: desc, Description: desc, Amount: core.Money{Cents: cents}, Category: cat, Kind: kind}
}

func exampleLedger() []core.Movement {
	return []core.Movement{
		movement("Water bill", 12050, "Water", core.Expense),
		movement("Salary", 300000, "Other", core.Income),
	}
}

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "R$ 0,00"},
		{12050, "R$ 120,50"},
		{300000, "R$ 3.000,00"},
		{287950, "R$ 2.879,50"},
		{-287950, "-R$ 2.879,50"},
		{5, "R$ 0,05"},
	}
	for _, tc := range cases {
		if got := FormatBRL(core.Money{Cents: tc.cents}); got != tc.want {
			t.Fatalf("FormatBRL(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestTable(t *testing.T) {
	empty := Table(nil)
	if !empty.Empty || empty.Placeholder != EmptyPlaceholder || len(empty.Rows) != 0 {
		t.Fatalf("unexpected empty table: %+v", empty)
	}

	view := Table(exampleLedger())
	if view.Empty || len(view.Rows) != 2 {
		t.Fatalf("unexpected table: %+v", view)
	}
	first := view.Rows[0]
	if first.Index != 0 || first.ID != "Water bill" || first.Amount != "R$ 120,50" || first.Kind != core.Expense {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if view.Rows[1].Index != 1 || view.Rows[1].Description != "Salary" {
		t.Fatalf("rows must follow ledger order: %+v", view.Rows)
	}
}

func TestCategoryNet(t *testing.T) {
	ms := append(exampleLedger(),
		movement("Refund", 2050, "Water", core.Income),
		movement("Bonus", 1000, "Other", core.Income),
		movement("Bus", 450, "Transport", core.Expense),
	)
	d := CategoryNet(ms)

	if want := []string{"Water", "Other", "Transport"}; !reflect.DeepEqual(d.Labels(), want) {
		t.Fatalf("labels = %v, want first-seen order %v", d.Labels(), want)
	}
	checks := map[string]int64{"Water": 10000, "Other": -301000, "Transport": 450}
	for name, want := range checks {
		got, ok := netOf(d, name)
		if !ok || got.Cents != want {
			t.Fatalf("net(%s) = %d (present=%v), want %d", name, got.Cents, ok, want)
		}
	}
	if _, ok := netOf(d, "Missing"); ok {
		t.Fatalf("unexpected category")
	}
	if got := d.Values(); got[0] != 100 || got[1] != -3010 || got[2] != 4.5 {
		t.Fatalf("unexpected values %v", got)
	}
}

func TestSummaryExample(t *testing.T) {
	s := Summary(exampleLedger())
	if s.Balance.Cents != 287950 || s.TotalExpense.Cents != 12050 || s.TotalIncome.Cents != 300000 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.BalanceText != "R$ 2.879,50" {
		t.Fatalf("balance text = %q", s.BalanceText)
	}
	if s.ExpenseText != "Gastos deste mês: R$ 120,50" {
		t.Fatalf("expense text = %q", s.ExpenseText)
	}

	d := CategoryNet(exampleLedger())
	if w, _ := netOf(d, "Water"); w.Cents != 12050 {
		t.Fatalf("water net = %d", w.Cents)
	}
	if o, _ := netOf(d, "Other"); o.Cents != -300000 {
		t.Fatalf("other net = %d", o.Cents)
	}
}

func TestSummaryEmptyAndNegative(t *testing.T) {
	if s := Summary(nil); s.BalanceText != "R$ 0,00" || s.ExpenseText != "Gastos deste mês: R$ 0,00" {
		t.Fatalf("unexpected empty summary %+v", s)
	}
	s := Summary([]core.Movement{movement("Rent", 150000, "Aluguel", core.Expense)})
	if s.Balance.Cents != -150000 || !strings.HasPrefix(s.BalanceText, "-R$") {
		t.Fatalf("unexpected negative summary %+v", s)
	}
}

func TestChartConfig(t *testing.T) {
	view := Project(exampleLedger())
	raw, err := view.Chart.JSON()
	if err != nil {
		t.Fatalf("encode chart: %v", err)
	}

	var decoded struct {
		Type string `json:"type"`
		Data struct {
			Labels   []string `json:"labels"`
			Datasets []struct {
				Label           string    `json:"label"`
				Data            []float64 `json:"data"`
				BackgroundColor []string  `json:"backgroundColor"`
			} `json:"datasets"`
		} `json:"data"`
		Options struct {
			Responsive bool `json:"responsive"`
			Plugins    struct {
				Legend struct {
					Display  bool   `json:"display"`
					Position string `json:"position"`
				} `json:"legend"`
			} `json:"plugins"`
		} `json:"options"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	if decoded.Type != "pie" || !decoded.Options.Responsive || decoded.Options.Plugins.Legend.Position != "top" {
		t.Fatalf("unexpected chart options: %s", raw)
	}
	ds := decoded.Data.Datasets
	if len(ds) != 1 || ds[0].Label != ChartDatasetLabel || len(ds[0].BackgroundColor) != 4 {
		t.Fatalf("unexpected dataset: %s", raw)
	}
	if !reflect.DeepEqual(decoded.Data.Labels, []string{"Water", "Other"}) || ds[0].Data[0] != 120.5 || ds[0].Data[1] != -3000 {
		t.Fatalf("unexpected series: %s", raw)
	}
}

func TestProjectEmptyLedger(t *testing.T) {
	view := Project(nil)
	if !view.Table.Empty || len(view.Distribution.Categories) != 0 {
		t.Fatalf("unexpected empty view %+v", view)
	}
	raw, _ := view.Chart.JSON()
	if !strings.Contains(raw, `"labels":[]`) || !strings.Contains(raw, `"data":[]`) {
		t.Fatalf("empty chart must carry empty series: %s", raw)
	}
}

func netOf(d Distribution, name string) (core.Money, bool) {
	for _, c := range d.Categories {
		if c.Name == name {
			return c.Amount, true
		}
	}
	return core.Money{}, false
}
