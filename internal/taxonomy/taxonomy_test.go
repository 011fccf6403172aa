package taxonomy

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"movimentos/internal/core"
)

func TestNewDedupesAndKeepsDefaults(t *testing.T) {
	s := New([]string{"Luz", " Luz ", "", "Aluguel"})
	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Luz", "Aluguel", "Água", "Outros"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !s.Contains("Água") || s.Contains("Mercado") {
		t.Fatalf("unexpected Contains results")
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	s := NewFromFile(filepath.Join(dir, "missing.txt"))
	cats, _ := s.List(context.Background())
	if !reflect.DeepEqual(cats, DefaultCategories) {
		t.Fatalf("expected defaults when file missing, got %v", cats)
	}

	path := filepath.Join(dir, "categorias.txt")
	if err := os.WriteFile(path, []byte("# categorias\nÁgua\nMercado\nÁgua\n\nOutros\n"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	cats, _ = NewFromFile(path).List(context.Background())
	if want := []string{"Água", "Mercado", "Outros"}; !reflect.DeepEqual(cats, want) {
		t.Fatalf("got %v, want %v", cats, want)
	}
}

func TestDefaultFor(t *testing.T) {
	if DefaultFor(core.Expense) != "Água" || DefaultFor(core.Income) != "Outros" {
		t.Fatalf("unexpected kind defaults")
	}
}
