package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind names what happened to a transaction or category.
type EventKind string

const (
	TransactionSaved   EventKind = "transaction.saved"
	TransactionDeleted EventKind = "transaction.deleted"
	// CategoryUpdated means every row of the category shows a stale label.
	CategoryUpdated EventKind = "category.updated"
)

// LedgerEvent announces a committed change. It carries only ids: consumers
// reload the current rows from the store.
type LedgerEvent struct {
	ID            string    `json:"id"`
	Kind          EventKind `json:"kind"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	CategoryID    int64     `json:"category_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewLedgerEvent creates an event with a fresh message id
func NewLedgerEvent(kind EventKind, transactionID int64) *LedgerEvent {
	return &LedgerEvent{
		ID:            uuid.NewString(),
		Kind:          kind,
		TransactionID: transactionID,
		OccurredAt:    time.Now().UTC(),
	}
}

// NewCategoryEvent creates an event about a category change.
func NewCategoryEvent(kind EventKind, categoryID int64) *LedgerEvent {
	return &LedgerEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		CategoryID: categoryID,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and validates a message body
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Kind {
	case TransactionSaved, TransactionDeleted:
		if e.TransactionID <= 0 {
			return nil, fmt.Errorf("event %s has no transaction id", e.ID)
		}
	case CategoryUpdated:
		if e.CategoryID <= 0 {
			return nil, fmt.Errorf("event %s has no category id", e.ID)
		}
	default:
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return &e, nil
}
