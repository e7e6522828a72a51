package ledger_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"txledger/test/integration/testenv"
)

func TestIdempotentRetryReturnsSameTransaction(t *testing.T) {
	store := testenv.SetupPostgresContainer(t)
	router, _ := testenv.NewTestRouter(t, store)
	require.NoError(t, store.Truncate(t.Context()))

	id := testenv.CreateAccount(t, router, "Carol", "USD")
	key := "retry-key-1"

	first, code := testenv.DoTransaction(t, router, id, map[string]string{
		"type": "DEPOSIT", "amount": "25.00",
	}, key)
	require.Equal(t, http.StatusCreated, code)

	second, code := testenv.DoTransaction(t, router, id, map[string]string{
		"type": "DEPOSIT", "amount": "25.00",
	}, key)
	require.Equal(t, http.StatusCreated, code)

	require.Equal(t, first["id"], second["id"])
	require.Equal(t, "25.00", testenv.GetBalance(t, router, id))
}
