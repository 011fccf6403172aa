package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"movimentos/internal/core"
)

var errMissingTarget = errors.New("missing id or index")

// removeTarget names the movement a removal request points at. ID wins over
// Index when both are sent.
type removeTarget struct {
	ID    string
	Index int
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// parseKind reads the kind query/form parameter ("despesa" or "receita").
func parseKind(r *http.Request) (core.Kind, error) {
	return core.ParseKind(r.FormValue("kind"))
}

// parseIndex parses a row index. Negative values parse fine; range checks
// belong to the ledger.
func parseIndex(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseRemoveTarget(r *http.Request) (removeTarget, error) {
	if id := sanitizeInput(r.PostForm.Get("id")); id != "" {
		return removeTarget{ID: id}, nil
	}
	raw := r.PostForm.Get("index")
	if strings.TrimSpace(raw) == "" {
		return removeTarget{}, errMissingTarget
	}
	i, err := parseIndex(raw)
	if err != nil {
		return removeTarget{}, err
	}
	return removeTarget{Index: i}, nil
}

// kindClass maps a kind to the css class used by rows and buttons.
func kindClass(k core.Kind) string {
	if k == core.Income {
		return "income"
	}
	return "expense"
}
