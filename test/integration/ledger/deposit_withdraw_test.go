package ledger_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"txledger/test/integration/testenv"
)

func TestDepositWithdrawFlow(t *testing.T) {
	store := testenv.SetupPostgresContainer(t)
	router, _ := testenv.NewTestRouter(t, store)
	require.NoError(t, store.Truncate(t.Context()))

	id := testenv.CreateAccount(t, router, "Bob", "USD")

	_, code := testenv.DoTransaction(t, router, id, map[string]string{
		"type": "DEPOSIT", "amount": "100.00",
	}, "")
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "100.00", testenv.GetBalance(t, router, id))

	_, code = testenv.DoTransaction(t, router, id, map[string]string{
		"type": "WITHDRAWAL", "amount": "40.00",
	}, "")
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "60.00", testenv.GetBalance(t, router, id))

	result, code := testenv.DoTransaction(t, router, id, map[string]string{
		"type": "WITHDRAWAL", "amount": "1000.00",
	}, "")
	require.Equal(t, http.StatusBadRequest, code)
	require.NotEmpty(t, result["message"])
	require.Equal(t, "60.00", testenv.GetBalance(t, router, id))
}
