// Package metrics holds the process's Prometheus collectors alongside a
// lightweight in-memory request log for the plain JSON metrics
// endpoint.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

var (
	AccountsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_created_total",
			Help: "Total number of accounts created",
		},
	)

	// LedgerOperationsTotal is keyed by operation (DEPOSIT, WITHDRAWAL,
	// TRANSFER) and outcome (success, error_<kind>,
	// error_exhausted_retries).
	LedgerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Total number of processed ledger transactions",
		},
		[]string{"operation", "outcome"},
	)

	TransactionAmountMinorUnits = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_transaction_amount_minor_units",
			Help:    "Distribution of transaction amounts in minor currency units",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
		},
	)

	// StoreRetriesTotal counts retries the processor performs after a
	// transient StoreUnavailable or Serialization failure.
	StoreRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_store_retries_total",
			Help: "Total number of transaction-processor retries after a transient store error",
		},
	)
)

// RequestMetric is one recorded HTTP request, served by GET /metrics
// for a lightweight JSON view alongside the Prometheus exposition at
// GET /prometheus.
type RequestMetric struct {
	Endpoint string        `json:"endpoint"`
	Status   int           `json:"status"`
	Duration time.Duration `json:"duration"`
}

var (
	requestsMu  sync.Mutex
	requestList []RequestMetric
)

// maxRequestHistory bounds the in-memory JSON request log so a
// long-running process doesn't grow it without limit.
const maxRequestHistory = 1000

// Record appends a request metric, evicting the oldest entry once the
// list reaches maxRequestHistory.
func Record(endpoint string, status int, duration time.Duration) {
	requestsMu.Lock()
	defer requestsMu.Unlock()
	requestList = append(requestList, RequestMetric{Endpoint: endpoint, Status: status, Duration: duration})
	if len(requestList) > maxRequestHistory {
		requestList = requestList[len(requestList)-maxRequestHistory:]
	}
}

// List returns a copy of the recorded request metrics.
func List() []RequestMetric {
	requestsMu.Lock()
	defer requestsMu.Unlock()
	out := make([]RequestMetric, len(requestList))
	copy(out, requestList)
	return out
}
