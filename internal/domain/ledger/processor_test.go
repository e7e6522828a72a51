package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txledger/internal/domain/ledger"
	"txledger/internal/domain/money"
	"txledger/internal/pkg/apperr"
	"txledger/internal/store/memory"
)

func mustMoney(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.Parse(s)
	require.NoError(t, err)
	return m
}

func newService(t *testing.T) (*ledger.Service, *ledger.Account, *ledger.Account) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	svc := ledger.NewService(store, nil)

	a, err := svc.CreateAccount(ctx, "Alice", "usd")
	require.NoError(t, err)
	b, err := svc.CreateAccount(ctx, "Bob", "USD")
	require.NoError(t, err)
	return svc, a, b
}

func TestDepositWithdrawFlow(t *testing.T) {
	ctx := context.Background()
	svc, alice, _ := newService(t)

	_, err := svc.ProcessTransaction(ctx, ledger.Request{
		AccountID: alice.ID,
		Type:      ledger.Deposit,
		Amount:    mustMoney(t, "100.00"),
	}, "")
	require.NoError(t, err)

	_, err = svc.ProcessTransaction(ctx, ledger.Request{
		AccountID: alice.ID,
		Type:      ledger.Withdrawal,
		Amount:    mustMoney(t, "40.00"),
	}, "")
	require.NoError(t, err)

	got, err := svc.GetAccount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "60.00", got.Balance.String())

	entries, err := svc.GetAccountHistory(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestWithdrawalInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	svc, alice, _ := newService(t)

	_, err := svc.ProcessTransaction(ctx, ledger.Request{
		AccountID: alice.ID,
		Type:      ledger.Withdrawal,
		Amount:    mustMoney(t, "10.00"),
	}, "")

	require.Error(t, err)
	appErr, ok := apperr.Of(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInsufficientFunds, appErr.Kind)
}

func TestTransferMovesFundsAndDoubleEntries(t *testing.T) {
	ctx := context.Background()
	svc, alice, bob := newService(t)

	_, err := svc.ProcessTransaction(ctx, ledger.Request{
		AccountID: alice.ID,
		Type:      ledger.Deposit,
		Amount:    mustMoney(t, "100.00"),
	}, "")
	require.NoError(t, err)

	tx, err := svc.ProcessTransaction(ctx, ledger.Request{
		AccountID:  alice.ID,
		ReceiverID: bob.ID,
		Type:       ledger.Transfer,
		Amount:     mustMoney(t, "30.00"),
	}, "")
	require.NoError(t, err)

	aliceAcc, _ := svc.GetAccount(ctx, alice.ID)
	bobAcc, _ := svc.GetAccount(ctx, bob.ID)
	assert.Equal(t, "70.00", aliceAcc.Balance.String())
	assert.Equal(t, "30.00", bobAcc.Balance.String())

	aliceEntries, _ := svc.GetAccountHistory(ctx, alice.ID, 10, 0)
	bobEntries, _ := svc.GetAccountHistory(ctx, bob.ID, 10, 0)
	require.Len(t, aliceEntries, 2)
	require.Len(t, bobEntries, 1)

	transferLeg := aliceEntries[0]
	assert.Equal(t, tx.ID, transferLeg.TransactionID)
	assert.Equal(t, ledger.Debit, transferLeg.Direction)

	sum, err := transferLeg.Amount.Add(bobEntries[0].Amount)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestSelfTransferRejected(t *testing.T) {
	ctx := context.Background()
	svc, alice, _ := newService(t)

	_, err := svc.ProcessTransaction(ctx, ledger.Request{
		AccountID:  alice.ID,
		ReceiverID: alice.ID,
		Type:       ledger.Transfer,
		Amount:     mustMoney(t, "10.00"),
	}, "")

	require.Error(t, err)
	appErr, ok := apperr.Of(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindSelfTransfer, appErr.Kind)
}

func TestTransferMissingReceiverRejected(t *testing.T) {
	ctx := context.Background()
	svc, alice, _ := newService(t)

	_, err := svc.ProcessTransaction(ctx, ledger.Request{
		AccountID: alice.ID,
		Type:      ledger.Transfer,
		Amount:    mustMoney(t, "10.00"),
	}, "")

	require.Error(t, err)
	appErr, ok := apperr.Of(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
}

func TestCurrencyMismatchRejected(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := ledger.NewService(store, nil)
	ctxBg := context.Background()

	usd, err := svc.CreateAccount(ctxBg, "Alice", "USD")
	require.NoError(t, err)
	inr, err := svc.CreateAccount(ctxBg, "Ravi", "INR")
	require.NoError(t, err)

	_, err = svc.ProcessTransaction(ctx, ledger.Request{
		AccountID: usd.ID,
		Type:      ledger.Deposit,
		Amount:    mustMoney(t, "100.00"),
	}, "")
	require.NoError(t, err)

	_, err = svc.ProcessTransaction(ctx, ledger.Request{
		AccountID:  usd.ID,
		ReceiverID: inr.ID,
		Type:       ledger.Transfer,
		Amount:     mustMoney(t, "10.00"),
	}, "")

	require.Error(t, err)
	appErr, ok := apperr.Of(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindCurrencyMismatch, appErr.Kind)
}

func TestIdempotentRetryReturnsSameTransaction(t *testing.T) {
	ctx := context.Background()
	svc, alice, _ := newService(t)

	_, err := svc.ProcessTransaction(ctx, ledger.Request{
		AccountID: alice.ID,
		Type:      ledger.Deposit,
		Amount:    mustMoney(t, "100.00"),
	}, "")
	require.NoError(t, err)

	first, err := svc.ProcessTransaction(ctx, ledger.Request{
		AccountID: alice.ID,
		Type:      ledger.Withdrawal,
		Amount:    mustMoney(t, "50.00"),
	}, "key1")
	require.NoError(t, err)

	second, err := svc.ProcessTransaction(ctx, ledger.Request{
		AccountID: alice.ID,
		Type:      ledger.Withdrawal,
		Amount:    mustMoney(t, "50.00"),
	}, "key1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	got, err := svc.GetAccount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", got.Balance.String())

	entries, err := svc.GetAccountHistory(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2) // 1 deposit + 1 withdrawal, not 2 withdrawals
}

func TestConcurrentWithdrawalRace(t *testing.T) {
	ctx := context.Background()
	svc, alice, _ := newService(t)

	_, err := svc.ProcessTransaction(ctx, ledger.Request{
		AccountID: alice.ID,
		Type:      ledger.Deposit,
		Amount:    mustMoney(t, "100.00"),
	}, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, failures := 0, 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ProcessTransaction(ctx, ledger.Request{
				AccountID: alice.ID,
				Type:      ledger.Withdrawal,
				Amount:    mustMoney(t, "20.00"),
			}, "")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else {
				failures++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, successes)
	assert.Equal(t, 5, failures)

	got, err := svc.GetAccount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", got.Balance.String())

	entries, err := svc.GetAccountHistory(ctx, alice.ID, 100, 0)
	require.NoError(t, err)
	require.Len(t, entries, 6) // 1 deposit + 5 successful withdrawals
}
