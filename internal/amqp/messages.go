package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Actions carried by transaction events. The audit worker persists
// them verbatim, so they must match the audit_log check constraint.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent notifies the audit worker that a transaction
// changed. It carries identifiers only; consumers that need the full
// record fetch it from the database.
type TransactionEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Action        string    `json:"action"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewTransactionEvent(transactionID, ownerID uuid.UUID, action string) *TransactionEvent {
	return &TransactionEvent{
		TransactionID: transactionID,
		OwnerID:       ownerID,
		Action:        action,
		OccurredAt:    time.Now().UTC(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return nil, fmt.Errorf("unknown event action %q", e.Action)
	}
	return &e, nil
}
