// Command simulator fires a mixed load of deposits, withdrawals, and
// transfers against a running txledger instance, for manual soak
// testing outside the perf-test harness.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"txledger/internal/pkg/metrics"
)

var baseURL = getenv("BASE_URL", "http://localhost:8080")

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func createAccount(name string) (string, error) {
	body, _ := json.Marshal(map[string]string{"name": name, "currency": "USD"})
	start := time.Now()
	resp, err := http.Post(baseURL+"/accounts", "application/json", bytes.NewReader(body))
	duration := time.Since(start)
	status := 0
	if err != nil {
		metrics.Record("/accounts", status, duration)
		return "", err
	}
	defer resp.Body.Close()
	status = resp.StatusCode
	metrics.Record("/accounts", status, duration)
	var data struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}
	return data.ID, nil
}

func transact(accountID, txType, amount, receiverID string) {
	endpoint := fmt.Sprintf("/accounts/%s/transactions", accountID)
	payload := map[string]string{"type": txType, "amount": amount}
	if receiverID != "" {
		payload["receiver_id"] = receiverID
	}
	body, _ := json.Marshal(payload)
	start := time.Now()
	resp, err := http.Post(baseURL+endpoint, "application/json", bytes.NewReader(body))
	duration := time.Since(start)
	status := 0
	if err == nil {
		status = resp.StatusCode
		resp.Body.Close()
	} else {
		log.Printf("%s error: %v", txType, err)
	}
	metrics.Record(endpoint, status, duration)
}

func randomOp(ids []string) {
	switch rand.Intn(3) {
	case 0:
		id := ids[rand.Intn(len(ids))]
		transact(id, "DEPOSIT", fmt.Sprintf("%d.00", rand.Intn(100)+1), "")
	case 1:
		id := ids[rand.Intn(len(ids))]
		transact(id, "WITHDRAWAL", fmt.Sprintf("%d.00", rand.Intn(50)+1), "")
	case 2:
		from := ids[rand.Intn(len(ids))]
		to := ids[rand.Intn(len(ids))]
		for to == from {
			to = ids[rand.Intn(len(ids))]
		}
		transact(from, "TRANSFER", fmt.Sprintf("%d.00", rand.Intn(30)+1), to)
	}
}

func main() {
	const (
		numAccounts = 100
		totalOps    = 10000
		blockSize   = 100
		blockPause  = 100 * time.Millisecond
	)

	ids := make([]string, 0, numAccounts)
	for i := 0; i < numAccounts; i++ {
		name := fmt.Sprintf("User%d", i+1)
		id, err := createAccount(name)
		if err != nil {
			log.Fatalf("cannot create account %s: %v", name, err)
		}
		ids = append(ids, id)
		transact(id, "DEPOSIT", "1000.00", "")
	}

	for sent := 0; sent < totalOps; {
		var wg sync.WaitGroup
		for i := 0; i < blockSize && sent < totalOps; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				randomOp(ids)
			}()
			sent++
		}
		wg.Wait()
		time.Sleep(blockPause)
	}

	for _, m := range metrics.List() {
		log.Printf("%s status=%d duration=%s", m.Endpoint, m.Status, m.Duration)
	}
}
