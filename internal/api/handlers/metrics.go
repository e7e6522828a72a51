package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"txledger/internal/pkg/metrics"
)

// MakeMetricsHandler builds GET /metrics: the lightweight JSON request
// log for quick manual inspection without a Prometheus scraper.
func MakeMetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.List())
	}
}

// PrometheusHandler builds GET /prometheus: the text-exposition
// endpoint scrapers hit, separate from the JSON log above.
func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return gin.WrapH(h)
}
