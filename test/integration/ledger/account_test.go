package ledger_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"txledger/test/integration/testenv"
)

func TestCreateAndGetAccount(t *testing.T) {
	store := testenv.SetupPostgresContainer(t)
	router, _ := testenv.NewTestRouter(t, store)
	require.NoError(t, store.Truncate(t.Context()))

	id := testenv.CreateAccount(t, router, "Alice", "USD")
	balance := testenv.GetBalance(t, router, id)

	require.Equal(t, "0.00", balance)

	_, code := testenv.DoTransaction(t, router, "not-a-uuid", map[string]string{"type": "DEPOSIT", "amount": "10.00"}, "")
	require.Equal(t, http.StatusBadRequest, code)
}
