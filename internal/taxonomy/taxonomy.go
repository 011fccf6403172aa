// Package taxonomy holds the category vocabulary offered by the entry form.
package taxonomy

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"

	"movimentos/internal/core"
)

const (
	DefaultExpenseCategory = "Água"
	DefaultIncomeCategory  = "Outros"
)

// DefaultCategories is used when no seed file is available.
var DefaultCategories = []string{
	"Água",
	"Luz",
	"Internet",
	"Aluguel",
	"Alimentação",
	"Transporte",
	"Saúde",
	"Lazer",
	"Salário",
	"Outros",
}

// Reader lists the categories the form offers.
type Reader interface {
	List(ctx context.Context) ([]string, error)
}

type Store struct {
	mu   sync.Mutex
	cats []string
}

// New builds a vocabulary from cats, dropping blanks and duplicates while
// keeping the given order. The kind defaults are always present.
func New(cats []string) *Store {
	all := append(append([]string(nil), cats...), DefaultExpenseCategory, DefaultIncomeCategory)
	return &Store{cats: dedupe(all)}
}

// NewFromFile seeds the vocabulary from a one-category-per-line file.
// Blank lines and lines starting with # are ignored.
func NewFromFile(path string) *Store {
	cats := readLines(path)
	if len(cats) == 0 {
		cats = DefaultCategories
	}
	return New(cats)
}

// List returns a copy of the categories.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cats...), nil
}

// Contains reports whether name is part of the vocabulary.
func (s *Store) Contains(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cats {
		if c == name {
			return true
		}
	}
	return false
}

// DefaultFor returns the category the form preselects when opened for kind.
func DefaultFor(kind core.Kind) string {
	if kind == core.Income {
		return DefaultIncomeCategory
	}
	return DefaultExpenseCategory
}

func readLines(path string) []string {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
