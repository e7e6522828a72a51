// Package store defines the abstraction over a transactional relational
// store that the transaction processor drives: begin, row-locking
// selects, inserts, updates, commit, and rollback. It is
// the only layer in the core that talks to persistent storage.
package store

import (
	"context"

	"github.com/google/uuid"

	"txledger/internal/domain/ledger"
	"txledger/internal/domain/money"
)

// Store is the non-transactional surface (account creation/lookup and
// read-only history) plus the factory for write-path Sessions.
type Store interface {
	// Begin opens an interactive transaction at READ COMMITTED isolation.
	// The core's correctness does not require SERIALIZABLE because
	// explicit row locks provide the ordering.
	Begin(ctx context.Context) (Session, error)

	CreateAccount(ctx context.Context, name string, currency ledger.Currency) (*ledger.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*ledger.Account, error)
	GetAccountHistory(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]ledger.Entry, error)

	// FindTransactionByKey is the read-only, non-transactional lookup
	// used for the idempotency pre-check and for the single re-check
	// after a commit-time DuplicateKey conflict.
	FindTransactionByKey(ctx context.Context, key string) (*ledger.Transaction, error)
}

// Session is a single interactive store transaction. Every method may
// fail with an *apperr.Error of kind StoreUnavailable (transport/host
// error) or Serialization (optimistic-concurrency or deadlock abort).
type Session interface {
	// LockAccounts performs a single selection of all rows whose id is
	// in ids, acquiring an exclusive row lock on each. Rows not present
	// are simply absent from the result; callers must not assume the
	// returned slice is the same length as ids.
	LockAccounts(ctx context.Context, ids []uuid.UUID) ([]ledger.Account, error)

	// InsertTransaction writes a new Transaction row. It fails with an
	// *apperr.Error of kind DuplicateKey if the row's idempotency key
	// collides with an existing row — the authoritative uniqueness
	// check, not a pre-read.
	InsertTransaction(ctx context.Context, tx *ledger.Transaction) error

	InsertEntries(ctx context.Context, entries []ledger.Entry) error
	UpdateBalance(ctx context.Context, accountID uuid.UUID, newBalance money.Money) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
