package messaging

import (
	"sync"

	"txledger/internal/domain/ledger"
)

// EventCapture is an in-memory EventPublisher for tests: it records
// every published transaction-completed event instead of shipping it
// to Kafka, so a test can assert on what the processor published.
type EventCapture struct {
	mu     sync.RWMutex
	events []TransactionCompletedEvent
}

// NewEventCapture creates an empty capture publisher.
func NewEventCapture() *EventCapture {
	return &EventCapture{}
}

// PublishTransactionCompleted records event. It never returns an
// error: publication is best-effort in production, and a test double
// has nothing to fail on.
func (e *EventCapture) PublishTransactionCompleted(tx ledger.Transaction, entries []ledger.Entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, newTransactionCompletedEvent(tx, entries))
}

// Events returns a copy of every event captured so far.
func (e *EventCapture) Events() []TransactionCompletedEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]TransactionCompletedEvent, len(e.events))
	copy(out, e.events)
	return out
}

// Reset clears all captured events, for reuse between test cases.
func (e *EventCapture) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = nil
}

// Close is a no-op: there is no underlying connection to release.
func (e *EventCapture) Close() error { return nil }

// IsHealthy always reports healthy; a capture publisher cannot fail.
func (e *EventCapture) IsHealthy() bool { return true }
