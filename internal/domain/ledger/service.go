package ledger

import (
	"context"

	"github.com/google/uuid"

	"txledger/internal/pkg/apperr"
	"txledger/internal/pkg/validation"
	"txledger/internal/store"
)

const (
	minHistoryLimit = 1
	maxHistoryLimit = 1000
)

// Service is the in-process API the HTTP layer consumes.
type Service struct {
	store     store.Store
	processor *Processor
}

// NewService wires a Service atop a Store and an optional EventPublisher.
func NewService(s store.Store, publisher EventPublisher) *Service {
	return &Service{store: s, processor: NewProcessor(s, publisher)}
}

// CreateAccount validates the currency, allocates a new id, and
// persists the account with a zero balance.
func (s *Service) CreateAccount(ctx context.Context, name string, currencyInput string) (*Account, error) {
	if err := validation.AccountName(name); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err.Error(), err)
	}
	currency, ok := ParseCurrency(currencyInput)
	if !ok {
		return nil, apperr.New(apperr.KindValidation, "currency must be one of USD, INR")
	}
	return s.store.CreateAccount(ctx, name, currency)
}

// GetAccount looks up an account by id.
func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	acc, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, apperr.New(apperr.KindAccountNotFound, "account not found")
	}
	return acc, nil
}

// ProcessTransaction runs req through the processor's state machine.
func (s *Service) ProcessTransaction(ctx context.Context, req Request, idempotencyKey string) (*Transaction, error) {
	return s.processor.Process(ctx, req, idempotencyKey)
}

// GetAccountHistory returns the account's ledger entries ordered by
// created_at descending, with limit clamped to [1, 1000] and offset
// floored at 0.
func (s *Service) GetAccountHistory(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Entry, error) {
	if limit < minHistoryLimit {
		limit = minHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.GetAccountHistory(ctx, accountID, limit, offset)
}
