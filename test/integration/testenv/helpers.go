package testenv

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// CreateAccount issues POST /accounts and returns the new account id.
func CreateAccount(t *testing.T, r *gin.Engine, name, currency string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"name": name, "currency": currency})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	return result["id"].(string)
}

// GetBalance issues GET /accounts/:id and returns the balance string.
func GetBalance(t *testing.T, r *gin.Engine, accountID string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/accounts/"+accountID, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	return result["balance"].(string)
}

// DoTransaction posts body (type, amount, reference, idempotency key)
// to the unified /accounts/:id/transactions endpoint and returns the
// decoded JSON response and status code.
func DoTransaction(t *testing.T, r *gin.Engine, accountID string, body map[string]string, idempotencyKey string) (map[string]interface{}, int) {
	t.Helper()
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/accounts/"+accountID+"/transactions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var result map[string]interface{}
	_ = json.Unmarshal(resp.Body.Bytes(), &result)
	return result, resp.Code
}
