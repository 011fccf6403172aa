package ledger

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"movimentos/internal/core"
)

// ErrCorrupt marks a persisted value that is not a valid array of movements.
var ErrCorrupt = errors.New("persisted ledger is corrupt")

// persistedMovement is the stored shape of one record. The Portuguese field
// names are the storage contract shared with existing data.
type persistedMovement struct {
	ID        string   `json:"id,omitempty"`
	Descricao *string  `json:"descricao"`
	Valor     *float64 `json:"valor"`
	Categoria *string  `json:"categoria"`
	Tipo      *string  `json:"tipo"`
}

// Encode serializes the ledger in insertion order.
func Encode(ms []core.Movement) ([]byte, error) {
	out := make([]persistedMovement, len(ms))
	for i, m := range ms {
		desc, cat, kind := m.Description, m.Category, string(m.Kind)
		valor := m.Amount.Reais()
		out[i] = persistedMovement{
			ID:        m.ID,
			Descricao: &desc,
			Valor:     &valor,
			Categoria: &cat,
			Tipo:      &kind,
		}
	}
	return json.Marshal(out)
}

// Decode parses a persisted ledger. Any shape mismatch fails the whole value
// with ErrCorrupt; callers treat that as absent data. Records stored without
// an id (or with a duplicate one) get a fresh one; assigned counts them.
func Decode(data []byte) (ms []core.Movement, assigned int, err error) {
	var raw []persistedMovement
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	out := make([]core.Movement, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, p := range raw {
		if p.Descricao == nil || p.Valor == nil || p.Categoria == nil || p.Tipo == nil {
			return nil, 0, fmt.Errorf("%w: record %d is missing fields", ErrCorrupt, i)
		}
		amount, err := core.MoneyFromFloat(*p.Valor)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: record %d: %v", ErrCorrupt, i, err)
		}
		m := core.Movement{
			ID:          p.ID,
			Description: *p.Descricao,
			Amount:      amount,
			Category:    *p.Categoria,
			Kind:        core.Kind(*p.Tipo),
		}
		if err := m.Validate(); err != nil {
			return nil, 0, fmt.Errorf("%w: record %d: %v", ErrCorrupt, i, err)
		}
		if _, dup := seen[m.ID]; m.ID == "" || dup {
			m.ID = uuid.NewString()
			assigned++
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out, assigned, nil
}
