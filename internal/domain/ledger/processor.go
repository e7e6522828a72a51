package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"txledger/internal/domain/money"
	"txledger/internal/pkg/apperr"
	"txledger/internal/pkg/metrics"
	"txledger/internal/store"
)

// maxStoreRetries bounds the retries the processor performs on
// transient store errors.
const maxStoreRetries = 2

// EventPublisher is the narrow slice of messaging.EventPublisher the
// processor needs, kept here to avoid a domain -> infrastructure import.
type EventPublisher interface {
	PublishTransactionCompleted(tx Transaction, entries []Entry)
}

// NoOpPublisher discards every event; used when no publisher is wired.
type NoOpPublisher struct{}

func (NoOpPublisher) PublishTransactionCompleted(Transaction, []Entry) {}

// Processor drives a Request through Received -> Locked -> Validated ->
// Applied -> Recorded -> Committed (or -> Failed).
type Processor struct {
	store     store.Store
	publisher EventPublisher
}

// NewProcessor builds a Processor. A nil publisher is replaced with a
// NoOpPublisher so callers need not special-case it.
func NewProcessor(s store.Store, publisher EventPublisher) *Processor {
	if publisher == nil {
		publisher = NoOpPublisher{}
	}
	return &Processor{store: s, publisher: publisher}
}

// Process runs a single transaction request through the full state
// machine and returns the committed transaction.
func (p *Processor) Process(ctx context.Context, req Request, idempotencyKey string) (*Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperr.New(apperr.KindInvalidAmount, "amount must be strictly positive")
	}
	if req.Type == Transfer && !req.hasReceiver() {
		return nil, apperr.New(apperr.KindValidation, "receiver_id required for TRANSFER")
	}
	if req.Type == Transfer && req.AccountID == req.ReceiverID {
		return nil, apperr.New(apperr.KindSelfTransfer, "cannot transfer to the same account")
	}

	// Idempotency pre-check: an optimistic short-circuit before locking.
	if idempotencyKey != "" {
		if existing, err := p.store.FindTransactionByKey(ctx, idempotencyKey); err != nil {
			return nil, err
		} else if existing != nil {
			return existing, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt <= maxStoreRetries; attempt++ {
		tx, entries, err := p.attempt(ctx, req, idempotencyKey)
		if err == nil {
			p.publisher.PublishTransactionCompleted(*tx, entries)
			metrics.LedgerOperationsTotal.WithLabelValues(string(req.Type), "success").Inc()
			metrics.TransactionAmountMinorUnits.Observe(float64(req.Amount.MinorUnits()))
			return tx, nil
		}

		appErr, ok := apperr.Of(err)
		if !ok {
			return nil, apperr.Wrap(apperr.KindInternal, "unexpected processor failure", err)
		}

		if appErr.Kind == apperr.KindDuplicateKey {
			// Exactly one re-check of the registry, never more.
			existing, findErr := p.store.FindTransactionByKey(ctx, idempotencyKey)
			if findErr != nil {
				return nil, findErr
			}
			if existing != nil {
				return existing, nil
			}
			// The unique index rejected us but the row isn't visible
			// yet (race with an in-flight commit); report as transient.
			lastErr = appErr
			metrics.StoreRetriesTotal.Inc()
			continue
		}

		if appErr.Kind.Retryable() && attempt < maxStoreRetries {
			lastErr = appErr
			metrics.StoreRetriesTotal.Inc()
			continue
		}

		metrics.LedgerOperationsTotal.WithLabelValues(string(req.Type), "error_"+string(appErr.Kind)).Inc()
		return nil, appErr
	}

	metrics.LedgerOperationsTotal.WithLabelValues(string(req.Type), "error_exhausted_retries").Inc()
	return nil, lastErr
}

// attempt runs one full Locked -> Validated -> Applied -> Recorded ->
// Committed pass in a single store session.
func (p *Processor) attempt(ctx context.Context, req Request, idempotencyKey string) (*Transaction, []Entry, error) {
	session, err := p.store.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}

	tx, entries, err := p.runInSession(ctx, session, req, idempotencyKey)
	if err != nil {
		_ = session.Rollback(ctx)
		return nil, nil, err
	}

	if err := session.Commit(ctx); err != nil {
		return nil, nil, err
	}

	return tx, entries, nil
}

func (p *Processor) runInSession(ctx context.Context, session store.Session, req Request, idempotencyKey string) (*Transaction, []Entry, error) {
	// Locked.
	ids := LockSet(req)
	accounts, err := session.LockAccounts(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[uuid.UUID]*Account, len(accounts))
	for i := range accounts {
		byID[accounts[i].ID] = &accounts[i]
	}

	sender, ok := byID[req.AccountID]
	if !ok {
		return nil, nil, apperr.New(apperr.KindAccountNotFound, "account not found")
	}

	var receiver *Account
	if req.Type == Transfer {
		receiver, ok = byID[req.ReceiverID]
		if !ok {
			return nil, nil, apperr.New(apperr.KindAccountNotFound, "receiver account not found")
		}
	}

	// Validated.
	if err := validate(req, sender, receiver); err != nil {
		return nil, nil, err
	}

	// Applied (in-memory mutation of the locked snapshot).
	updates, entries, err := apply(req, sender, receiver)
	if err != nil {
		return nil, nil, err
	}

	// Recorded.
	now := time.Now().UTC()
	tx := &Transaction{
		ID:             uuid.New(),
		IdempotencyKey: idempotencyKey,
		Type:           req.Type,
		Status:         Completed,
		Reference:      req.Reference,
		CreatedAt:      now,
	}

	if err := session.InsertTransaction(ctx, tx); err != nil {
		return nil, nil, err
	}

	for i := range entries {
		entries[i].ID = uuid.New()
		entries[i].TransactionID = tx.ID
		entries[i].CreatedAt = now
	}
	if err := session.InsertEntries(ctx, entries); err != nil {
		return nil, nil, err
	}

	for accountID, balance := range updates {
		if err := session.UpdateBalance(ctx, accountID, balance); err != nil {
			return nil, nil, err
		}
	}

	return tx, entries, nil
}

func validate(req Request, sender, receiver *Account) error {
	switch req.Type {
	case Withdrawal:
		if !sender.Balance.GreaterThanOrEqual(req.Amount) {
			return apperr.New(apperr.KindInsufficientFunds, "insufficient funds for withdrawal")
		}
	case Transfer:
		if sender.Currency != receiver.Currency {
			return apperr.New(apperr.KindCurrencyMismatch, "sender and receiver currencies differ")
		}
		if !sender.Balance.GreaterThanOrEqual(req.Amount) {
			return apperr.New(apperr.KindInsufficientFunds, "insufficient funds for transfer")
		}
	case Deposit:
		// No balance precondition; overflow is checked in apply.
	}
	return nil
}

// apply computes the new balances and the ledger entries for req,
// returning the balance updates to persist keyed by account id.
func apply(req Request, sender, receiver *Account) (map[uuid.UUID]money.Money, []Entry, error) {
	updates := make(map[uuid.UUID]money.Money, 2)

	switch req.Type {
	case Deposit:
		newBalance, err := sender.Balance.Add(req.Amount)
		if err != nil {
			return nil, nil, apperr.Wrap(apperr.KindInvalidAmount, "deposit overflows account balance", err)
		}
		updates[sender.ID] = newBalance
		return updates, []Entry{
			{AccountID: sender.ID, Amount: req.Amount, Direction: Credit},
		}, nil

	case Withdrawal:
		newBalance, err := sender.Balance.Sub(req.Amount)
		if err != nil {
			return nil, nil, apperr.Wrap(apperr.KindInternal, "withdrawal balance computation failed", err)
		}
		updates[sender.ID] = newBalance
		return updates, []Entry{
			{AccountID: sender.ID, Amount: req.Amount.Neg(), Direction: Debit},
		}, nil

	case Transfer:
		newSenderBalance, err := sender.Balance.Sub(req.Amount)
		if err != nil {
			return nil, nil, apperr.Wrap(apperr.KindInternal, "transfer debit computation failed", err)
		}
		newReceiverBalance, err := receiver.Balance.Add(req.Amount)
		if err != nil {
			return nil, nil, apperr.Wrap(apperr.KindInvalidAmount, "transfer overflows receiver balance", err)
		}
		updates[sender.ID] = newSenderBalance
		updates[receiver.ID] = newReceiverBalance
		return updates, []Entry{
			{AccountID: sender.ID, Amount: req.Amount.Neg(), Direction: Debit},
			{AccountID: receiver.ID, Amount: req.Amount, Direction: Credit},
		}, nil

	default:
		return nil, nil, apperr.New(apperr.KindValidation, "unknown transaction type")
	}
}

