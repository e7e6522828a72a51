package messaging_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"txledger/internal/domain/ledger"
	"txledger/internal/domain/money"
	"txledger/internal/infrastructure/messaging"
	"txledger/internal/store/memory"
)

func mustParse(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.Parse(s)
	require.NoError(t, err)
	return m
}

func TestEventCaptureRecordsTransactionCompleted(t *testing.T) {
	st := memory.New()
	capture := messaging.NewEventCapture()
	svc := ledger.NewService(st, capture)

	acc, err := svc.CreateAccount(context.Background(), "Eve", "USD")
	require.NoError(t, err)

	_, err = svc.ProcessTransaction(context.Background(), ledger.Request{
		AccountID: acc.ID,
		Type:      ledger.Deposit,
		Amount:    mustParse(t, "10.00"),
	}, "")
	require.NoError(t, err)

	events := capture.Events()
	require.Len(t, events, 1)
	require.Equal(t, "DEPOSIT", events[0].Type)
	require.Len(t, events[0].Entries, 1)

	capture.Reset()
	require.Empty(t, capture.Events())
}
