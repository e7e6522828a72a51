package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Executor struct {
	client  *http.Client
	baseURL string
}

func New(baseURL string) *Executor {
	return &Executor{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        1000,
				MaxIdleConnsPerHost: 100,
				MaxConnsPerHost:     100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: baseURL,
	}
}

func (e *Executor) CreateAccount(ctx context.Context, name, currency string) (string, error) {
	payload := map[string]string{
		"name":     name,
		"currency": currency,
	}

	respBody, err := e.post(ctx, "/accounts", payload)
	if err != nil {
		return "", err
	}

	var result struct {
		ID string `json:"id"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse create account response: %w", err)
	}

	return result.ID, nil
}

// Deposit posts a DEPOSIT to the unified transaction endpoint. amount
// is a decimal string ("12.34") matching the service's fixed-scale
// money encoding.
func (e *Executor) Deposit(ctx context.Context, accountID, amount string) error {
	return e.transact(ctx, accountID, "DEPOSIT", amount, "")
}

func (e *Executor) Withdraw(ctx context.Context, accountID, amount string) error {
	return e.transact(ctx, accountID, "WITHDRAWAL", amount, "")
}

func (e *Executor) Transfer(ctx context.Context, fromID, toID, amount string) error {
	return e.transact(ctx, fromID, "TRANSFER", amount, toID)
}

func (e *Executor) transact(ctx context.Context, accountID, txType, amount, receiverID string) error {
	payload := map[string]string{
		"type":   txType,
		"amount": amount,
	}
	if receiverID != "" {
		payload["receiver_id"] = receiverID
	}
	_, err := e.post(ctx, fmt.Sprintf("/accounts/%s/transactions", accountID), payload)
	return err
}

func (e *Executor) GetBalance(ctx context.Context, accountID string) (string, error) {
	resp, err := e.get(ctx, fmt.Sprintf("/accounts/%s", accountID))
	if err != nil {
		return "", err
	}

	var result struct {
		Balance string `json:"balance"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return "", fmt.Errorf("failed to parse account response: %w", err)
	}

	return result.Balance, nil
}

func (e *Executor) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	
	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Load-Test", "true")
	
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	
	var respBody bytes.Buffer
	if _, err := respBody.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, respBody.String())
	}
	
	return respBody.Bytes(), nil
}

func (e *Executor) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", e.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	
	req.Header.Set("X-Load-Test", "true")
	
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	
	var respBody bytes.Buffer
	if _, err := respBody.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, respBody.String())
	}
	
	return respBody.Bytes(), nil
}