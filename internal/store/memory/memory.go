// Package memory implements store.Store entirely in process memory. It
// exists for fast unit tests of the processor state machine; it is not
// used in production (see internal/store/postgres for that).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"txledger/internal/domain/ledger"
	"txledger/internal/domain/money"
	"txledger/internal/pkg/apperr"
	"txledger/internal/store"
)

// Store is a single-mutex in-memory implementation of store.Store. A
// Begin call holds the mutex for the lifetime of the session, which is
// a reasonable stand-in for row locks when there is only one "row
// table" held in a map.
type Store struct {
	mu           sync.Mutex
	accounts     map[uuid.UUID]*ledger.Account
	transactions map[uuid.UUID]*ledger.Transaction
	byKey        map[string]uuid.UUID
	entries      []ledger.Entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		accounts:     make(map[uuid.UUID]*ledger.Account),
		transactions: make(map[uuid.UUID]*ledger.Transaction),
		byKey:        make(map[string]uuid.UUID),
	}
}

func (s *Store) CreateAccount(_ context.Context, name string, currency ledger.Currency) (*ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	acc := &ledger.Account{
		ID:        uuid.New(),
		Name:      name,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.accounts[acc.ID] = acc

	cp := *acc
	return &cp, nil
}

func (s *Store) GetAccount(_ context.Context, id uuid.UUID) (*ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *acc
	return &cp, nil
}

func (s *Store) GetAccountHistory(_ context.Context, accountID uuid.UUID, limit, offset int) ([]ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []ledger.Entry
	for _, e := range s.entries {
		if e.AccountID == accountID {
			matched = append(matched, e)
		}
	}

	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}

	if offset >= len(matched) {
		return []ledger.Entry{}, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *Store) FindTransactionByKey(_ context.Context, key string) (*ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byKey[key]
	if !ok {
		return nil, nil
	}
	tx := *s.transactions[id]
	return &tx, nil
}

// Begin locks the store for the duration of the session.
func (s *Store) Begin(_ context.Context) (store.Session, error) {
	s.mu.Lock()
	return &session{store: s}, nil
}

type session struct {
	store  *Store
	done   bool
	dirty  []ledger.Account
	newTxs []*ledger.Transaction
	newEs  []ledger.Entry
}

func (sn *session) LockAccounts(_ context.Context, ids []uuid.UUID) ([]ledger.Account, error) {
	var out []ledger.Account
	for _, id := range ids {
		if acc, ok := sn.store.accounts[id]; ok {
			out = append(out, *acc)
		}
	}
	return out, nil
}

func (sn *session) InsertTransaction(_ context.Context, tx *ledger.Transaction) error {
	if tx.IdempotencyKey != "" {
		if _, exists := sn.store.byKey[tx.IdempotencyKey]; exists {
			return apperr.New(apperr.KindDuplicateKey, "idempotency key already used")
		}
	}
	sn.newTxs = append(sn.newTxs, tx)
	return nil
}

func (sn *session) InsertEntries(_ context.Context, entries []ledger.Entry) error {
	sn.newEs = append(sn.newEs, entries...)
	return nil
}

func (sn *session) UpdateBalance(_ context.Context, accountID uuid.UUID, newBalance money.Money) error {
	acc, ok := sn.store.accounts[accountID]
	if !ok {
		return apperr.New(apperr.KindAccountNotFound, "account not found")
	}
	updated := *acc
	updated.Balance = newBalance
	updated.UpdatedAt = time.Now().UTC()
	sn.dirty = append(sn.dirty, updated)
	return nil
}

func (sn *session) Commit(_ context.Context) error {
	defer sn.finish()

	for _, tx := range sn.newTxs {
		sn.store.transactions[tx.ID] = tx
		if tx.IdempotencyKey != "" {
			sn.store.byKey[tx.IdempotencyKey] = tx.ID
		}
	}
	sn.store.entries = append(sn.store.entries, sn.newEs...)
	for _, acc := range sn.dirty {
		cp := acc
		sn.store.accounts[acc.ID] = &cp
	}
	return nil
}

func (sn *session) Rollback(_ context.Context) error {
	defer sn.finish()
	return nil
}

func (sn *session) finish() {
	if !sn.done {
		sn.done = true
		sn.store.mu.Unlock()
	}
}
