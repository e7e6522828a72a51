// Package postgres implements store.Store on top of pgx: a pooled
// connection, SELECT ... FOR UPDATE row locking inside an explicit
// transaction, and a unique-index-backed transactions.idempotency_key
// column for the authoritative idempotency check.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"txledger/internal/domain/ledger"
	"txledger/internal/domain/money"
	"txledger/internal/pkg/apperr"
	"txledger/internal/store"
)

// Store implements store.Store on a pgxpool.Pool.
type Store struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// New opens a connection pool per cfg and verifies it with a ping.
func New(ctx context.Context, cfg *Config) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("postgres store connected: max=%d min=%d lock_timeout=%s", poolConfig.MaxConns, poolConfig.MinConns, cfg.LockTimeout)

	return &Store{pool: pool, lockTimeout: cfg.LockTimeout}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Truncate clears every ledger table. It exists for integration tests
// that share one container across cases and need a clean slate between
// them; production code never calls it.
func (s *Store) Truncate(ctx context.Context) error {
	const query = `TRUNCATE TABLE ledger_entries, transactions, accounts RESTART IDENTITY CASCADE`
	_, err := s.pool.Exec(ctx, query)
	return err
}

func (s *Store) CreateAccount(ctx context.Context, name string, currency ledger.Currency) (*ledger.Account, error) {
	const query = `
		INSERT INTO accounts (id, name, currency, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, created_at, updated_at
	`
	acc := &ledger.Account{
		ID:       uuid.New(),
		Name:     name,
		Currency: currency,
		Balance:  money.Zero,
	}
	now := time.Now().UTC()

	err := s.pool.QueryRow(ctx, query, acc.ID, acc.Name, string(acc.Currency), acc.Balance.String(), now).
		Scan(&acc.ID, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return nil, classify(err, "failed to create account")
	}
	return acc, nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	const query = `
		SELECT id, name, currency, balance, created_at, updated_at
		FROM accounts WHERE id = $1
	`
	acc, err := scanAccount(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err, "failed to get account")
	}
	return acc, nil
}

func (s *Store) GetAccountHistory(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]ledger.Entry, error) {
	const query = `
		SELECT id, transaction_id, account_id, amount, direction, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, classify(err, "failed to query account history")
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, classify(err, "failed to scan ledger entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "failed to iterate account history")
	}
	return entries, nil
}

func (s *Store) FindTransactionByKey(ctx context.Context, key string) (*ledger.Transaction, error) {
	const query = `
		SELECT id, idempotency_key, type, status, reference, created_at
		FROM transactions WHERE idempotency_key = $1
	`
	tx, err := scanTransaction(s.pool.QueryRow(ctx, query, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err, "failed to look up transaction by idempotency key")
	}
	return tx, nil
}

// Begin opens a pgx transaction at the default READ COMMITTED isolation
// level and applies the configured lock_timeout for the session:
// explicit row locks, not SERIALIZABLE, provide ordering.
func (s *Store) Begin(ctx context.Context) (store.Session, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, classify(err, "failed to begin transaction")
	}

	if s.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			return nil, classify(err, "failed to set lock_timeout")
		}
	}

	return &session{tx: tx}, nil
}

type session struct {
	tx pgx.Tx
}

// LockAccounts selects every row in ids with FOR UPDATE in a single
// statement; the ORDER BY id makes Postgres acquire the locks in id
// order, the same order ledger.LockSet produces.
func (sn *session) LockAccounts(ctx context.Context, ids []uuid.UUID) ([]ledger.Account, error) {
	const query = `
		SELECT id, name, currency, balance, created_at, updated_at
		FROM accounts
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`
	rows, err := sn.tx.Query(ctx, query, ids)
	if err != nil {
		return nil, classify(err, "failed to lock accounts")
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		acc, err := scanEntityAccount(rows)
		if err != nil {
			return nil, classify(err, "failed to scan locked account")
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "failed to iterate locked accounts")
	}
	return accounts, nil
}

func (sn *session) InsertTransaction(ctx context.Context, txn *ledger.Transaction) error {
	const query = `
		INSERT INTO transactions (id, idempotency_key, type, status, reference, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
	`
	_, err := sn.tx.Exec(ctx, query, txn.ID, txn.IdempotencyKey, string(txn.Type), string(txn.Status), txn.Reference, txn.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperr.Wrap(apperr.KindDuplicateKey, "idempotency key already used", err)
		}
		return classify(err, "failed to insert transaction")
	}
	return nil
}

func (sn *session) InsertEntries(ctx context.Context, entries []ledger.Entry) error {
	const query = `
		INSERT INTO ledger_entries (id, transaction_id, account_id, amount, direction, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, e := range entries {
		if _, err := sn.tx.Exec(ctx, query, e.ID, e.TransactionID, e.AccountID, e.Amount.String(), string(e.Direction), e.CreatedAt); err != nil {
			return classify(err, "failed to insert ledger entry")
		}
	}
	return nil
}

func (sn *session) UpdateBalance(ctx context.Context, accountID uuid.UUID, newBalance money.Money) error {
	const query = `UPDATE accounts SET balance = $1, updated_at = $2 WHERE id = $3`
	tag, err := sn.tx.Exec(ctx, query, newBalance.String(), time.Now().UTC(), accountID)
	if err != nil {
		return classify(err, "failed to update account balance")
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.KindAccountNotFound, "account not found")
	}
	return nil
}

func (sn *session) Commit(ctx context.Context) error {
	if err := sn.tx.Commit(ctx); err != nil {
		return classify(err, "failed to commit transaction")
	}
	return nil
}

func (sn *session) Rollback(ctx context.Context) error {
	if err := sn.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return classify(err, "failed to roll back transaction")
	}
	return nil
}

// row is the minimal scan surface shared by pgx.Row and pgx.Rows.
type row interface {
	Scan(dest ...any) error
}

func scanAccount(r row) (*ledger.Account, error) {
	acc, err := scanEntityAccount(r)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func scanEntityAccount(r row) (ledger.Account, error) {
	var (
		acc         ledger.Account
		currencyStr string
		balanceStr  string
	)
	err := r.Scan(&acc.ID, &acc.Name, &currencyStr, &balanceStr, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return ledger.Account{}, err
	}
	acc.Currency = ledger.Currency(currencyStr)
	balance, parseErr := money.Parse(balanceStr)
	if parseErr != nil {
		return ledger.Account{}, fmt.Errorf("corrupt balance for account %s: %w", acc.ID, parseErr)
	}
	acc.Balance = balance
	return acc, nil
}

func scanTransaction(r row) (*ledger.Transaction, error) {
	var (
		tx             ledger.Transaction
		idempotencyKey *string
		typeStr        string
		statusStr      string
	)
	err := r.Scan(&tx.ID, &idempotencyKey, &typeStr, &statusStr, &tx.Reference, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}
	if idempotencyKey != nil {
		tx.IdempotencyKey = *idempotencyKey
	}
	tx.Type = ledger.TransactionType(typeStr)
	tx.Status = ledger.TransactionStatus(statusStr)
	return &tx, nil
}

func scanEntry(r row) (ledger.Entry, error) {
	var (
		e          ledger.Entry
		amountStr  string
		directionS string
	)
	err := r.Scan(&e.ID, &e.TransactionID, &e.AccountID, &amountStr, &directionS, &e.CreatedAt)
	if err != nil {
		return ledger.Entry{}, err
	}
	amount, parseErr := money.Parse(amountStr)
	if parseErr != nil {
		return ledger.Entry{}, fmt.Errorf("corrupt amount for entry %s: %w", e.ID, parseErr)
	}
	e.Amount = amount
	e.Direction = ledger.Direction(directionS)
	return e, nil
}

// Postgres error codes this store classifies specially.
const (
	pgUniqueViolation    = "23505"
	pgSerializationError = "40001"
	pgDeadlockDetected   = "40P01"
	pgLockNotAvailable   = "55P03"
	pgQueryCanceled      = "57014" // lock_timeout expiry

	pgClassConnectionException = "08"
)

// classify maps a pgx/driver error to an *apperr.Error, distinguishing
// transient conditions the processor should retry (Serialization,
// StoreUnavailable) from a plain internal failure.
func classify(err error, message string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationError, pgDeadlockDetected, pgLockNotAvailable, pgQueryCanceled:
			return apperr.Wrap(apperr.KindSerialization, message, err)
		}
		if strings.HasPrefix(pgErr.Code, pgClassConnectionException) {
			return apperr.Wrap(apperr.KindStoreUnavailable, message, err)
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, pgx.ErrTxClosed) {
		return apperr.Wrap(apperr.KindStoreUnavailable, message, err)
	}

	return apperr.Wrap(apperr.KindInternal, message, err)
}
