package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Ledger operations carried by LedgerChangedMessage.
const (
	OpAppended = "appended"
	OpRemoved  = "removed"
)

var ErrUnknownOp = errors.New("unknown ledger operation")

// LedgerChangedMessage announces a committed ledger mutation. It carries only
// identifiers; consumers reload the ledger from the shared store.
type LedgerChangedMessage struct {
	Op         string    `json:"op"`
	MovementID string    `json:"movement_id"`
	Revision   uint64    `json:"revision"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage creates a message stamped with the current time.
func NewLedgerChangedMessage(op, movementID string, revision uint64) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Op:         op,
		MovementID: movementID,
		Revision:   revision,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes a message and checks its operation.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Op {
	case OpAppended, OpRemoved:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, msg.Op)
	}
	return &msg, nil
}
