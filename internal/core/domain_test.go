package core

import (
	"errors"
	"testing"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -5}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
	if err := (Money{Cents: MaxAmountCents}).Validate(); err != nil {
		t.Fatalf("expected ok at the maximum, got %v", err)
	}
	if err := (Money{Cents: MaxAmountCents + 1}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount above the maximum, got %v", err)
	}
}

func TestMovementValidate(t *testing.T) {
	good := Movement{
		Description: "Conta de água",
		Amount:      Money{Cents: 12050},
		Category:    "Água",
		Kind:        Expense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		m    Movement
		want error
	}{
		{Movement{Description: "  ", Amount: Money{Cents: 1}, Category: "c", Kind: Expense}, ErrEmptyDescription},
		{Movement{Description: "a", Amount: Money{Cents: 0}, Category: "c", Kind: Income}, ErrInvalidAmount},
		{Movement{Description: "a", Amount: Money{Cents: 1}, Category: "", Kind: Income}, ErrEmptyCategory},
		{Movement{Description: "a", Amount: Money{Cents: 1}, Category: "c", Kind: "Transferência"}, ErrInvalidKind},
	}
	for i, tc := range bads {
		if err := tc.m.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"Despesa": Expense,
		"despesa": Expense,
		"expense": Expense,
		"Receita": Income,
		" income ": Income,
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseKind("transfer"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestSumTotals(t *testing.T) {
	ms := []Movement{
		{Description: "Water bill", Amount: Money{Cents: 12050}, Category: "Água", Kind: Expense},
		{Description: "Salary", Amount: Money{Cents: 300000}, Category: "Outros", Kind: Income},
	}
	got := SumTotals(ms)
	if got.Income.Cents != 300000 || got.Expense.Cents != 12050 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.Balance().Cents != 287950 {
		t.Fatalf("balance = %d, want 287950", got.Balance().Cents)
	}
	big := Movement{Description: "Big", Amount: Money{Cents: MaxAmountCents}, Category: "Outros", Kind: Expense}
	if b := SumTotals([]Movement{big, big}).Balance().Cents; b != -2*MaxAmountCents {
		t.Fatalf("balance of two maximal expenses = %d", b)
	}
	if SumTotals(nil).Balance().Cents != 0 {
		t.Fatalf("empty ledger must have zero balance")
	}
}
