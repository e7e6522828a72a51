package ledger_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"txledger/test/integration/testenv"
)

func TestTransferMovesFunds(t *testing.T) {
	store := testenv.SetupPostgresContainer(t)
	router, _ := testenv.NewTestRouter(t, store)
	require.NoError(t, store.Truncate(t.Context()))

	alice := testenv.CreateAccount(t, router, "Alice", "USD")
	bob := testenv.CreateAccount(t, router, "Bob", "USD")

	_, code := testenv.DoTransaction(t, router, alice, map[string]string{
		"type": "DEPOSIT", "amount": "100.00",
	}, "")
	require.Equal(t, http.StatusCreated, code)

	_, code = testenv.DoTransaction(t, router, alice, map[string]string{
		"type": "TRANSFER", "amount": "30.00", "receiver_id": bob,
	}, "")
	require.Equal(t, http.StatusCreated, code)

	require.Equal(t, "70.00", testenv.GetBalance(t, router, alice))
	require.Equal(t, "30.00", testenv.GetBalance(t, router, bob))
}

func TestSelfTransferRejected(t *testing.T) {
	store := testenv.SetupPostgresContainer(t)
	router, _ := testenv.NewTestRouter(t, store)
	require.NoError(t, store.Truncate(t.Context()))

	alice := testenv.CreateAccount(t, router, "Alice", "USD")
	testenv.DoTransaction(t, router, alice, map[string]string{"type": "DEPOSIT", "amount": "50.00"}, "")

	result, code := testenv.DoTransaction(t, router, alice, map[string]string{
		"type": "TRANSFER", "amount": "10.00", "receiver_id": alice,
	}, "")

	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "SELF_TRANSFER_NOT_ALLOWED", result["code"])
	require.Equal(t, "50.00", testenv.GetBalance(t, router, alice))
}
