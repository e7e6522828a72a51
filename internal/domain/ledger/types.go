// Package ledger implements the transaction-processing engine: the
// state machine that validates, locks, applies, records, and commits
// deposit/withdrawal/transfer requests against account balances.
package ledger

import (
	"time"

	"github.com/google/uuid"

	"txledger/internal/domain/money"
)

// Currency is a supported account currency tag.
type Currency string

const (
	USD Currency = "USD"
	INR Currency = "INR"
)

// ParseCurrency normalizes and validates a currency tag.
func ParseCurrency(s string) (Currency, bool) {
	switch Currency(normalizeUpper(s)) {
	case USD:
		return USD, true
	case INR:
		return INR, true
	default:
		return "", false
	}
}

func normalizeUpper(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// TransactionType distinguishes the three operations the processor
// understands.
type TransactionType string

const (
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
	Transfer   TransactionType = "TRANSFER"
)

// TransactionStatus is retained for forward compatibility (e.g. future
// asynchronous settlement); the processor itself only ever persists
// Completed.
type TransactionStatus string

const (
	Pending   TransactionStatus = "PENDING"
	Completed TransactionStatus = "COMPLETED"
	Failed    TransactionStatus = "FAILED"
)

// Direction tags a LedgerEntry's sign.
type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// Account is a monetary account owned by a single currency.
type Account struct {
	ID        uuid.UUID
	Name      string
	Currency  Currency
	Balance   money.Money
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transaction is the immutable header row for one processed request.
type Transaction struct {
	ID             uuid.UUID
	IdempotencyKey string // empty means absent
	Type           TransactionType
	Status         TransactionStatus
	Reference      string
	CreatedAt      time.Time
}

// Entry is one signed posting against one account, part of exactly one
// Transaction.
type Entry struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	Amount        money.Money // signed: negative for DEBIT, positive for CREDIT
	Direction     Direction
	CreatedAt     time.Time
}

// Request is a validated transaction request submitted to the
// processor. Amount is always positive; signedness is derived when
// building ledger entries.
type Request struct {
	AccountID  uuid.UUID
	Type       TransactionType
	Amount     money.Money
	Reference  string
	ReceiverID uuid.UUID // zero UUID means absent
}

func (r Request) hasReceiver() bool {
	return r.ReceiverID != uuid.Nil
}
