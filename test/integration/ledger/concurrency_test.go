package ledger_test

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"txledger/test/integration/testenv"
)

// TestConcurrentWithdrawalRace fires 10 concurrent withdrawals of 20.00
// against a 100.00 balance: exactly 5 must succeed and the final
// balance must land at 0.00, proving the row lock serializes the race
// rather than letting two withdrawals both read a stale balance.
func TestConcurrentWithdrawalRace(t *testing.T) {
	store := testenv.SetupPostgresContainer(t)
	router, _ := testenv.NewTestRouter(t, store)
	require.NoError(t, store.Truncate(t.Context()))

	id := testenv.CreateAccount(t, router, "Dana", "USD")
	_, code := testenv.DoTransaction(t, router, id, map[string]string{
		"type": "DEPOSIT", "amount": "100.00",
	}, "")
	require.Equal(t, http.StatusCreated, code)

	const n = 10
	var wg sync.WaitGroup
	var succeeded, failed int64
	wg.Add(n)

	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, code := testenv.DoTransaction(t, router, id, map[string]string{
				"type": "WITHDRAWAL", "amount": "20.00",
			}, "")
			if code == http.StatusCreated {
				atomic.AddInt64(&succeeded, 1)
			} else {
				atomic.AddInt64(&failed, 1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 5, succeeded)
	require.EqualValues(t, 5, failed)
	require.Equal(t, "0.00", testenv.GetBalance(t, router, id))
}
