package messaging

import (
	"time"

	"github.com/google/uuid"

	"txledger/internal/domain/ledger"
)

// EntryView is the wire shape of one ledger.Entry inside a
// TransactionCompletedEvent.
type EntryView struct {
	AccountID uuid.UUID `json:"account_id"`
	Amount    string    `json:"amount"`
	Direction string    `json:"direction"`
}

// TransactionCompletedEvent is published exactly once per committed
// transaction, carrying its full double-entry posting.
type TransactionCompletedEvent struct {
	TransactionID  uuid.UUID   `json:"transaction_id"`
	IdempotencyKey string      `json:"idempotency_key,omitempty"`
	Type           string      `json:"type"`
	Reference      string      `json:"reference,omitempty"`
	Entries        []EntryView `json:"entries"`
	Timestamp      time.Time   `json:"timestamp"`
}

// newTransactionCompletedEvent builds the wire event for a committed
// transaction and its postings, shared by the Kafka publisher and the
// in-memory test capture publisher.
func newTransactionCompletedEvent(tx ledger.Transaction, entries []ledger.Entry) TransactionCompletedEvent {
	event := TransactionCompletedEvent{
		TransactionID:  tx.ID,
		IdempotencyKey: tx.IdempotencyKey,
		Type:           string(tx.Type),
		Reference:      tx.Reference,
		Timestamp:      tx.CreatedAt,
	}
	for _, e := range entries {
		event.Entries = append(event.Entries, EntryView{
			AccountID: e.AccountID,
			Amount:    e.Amount.String(),
			Direction: string(e.Direction),
		})
	}
	return event
}
